package bridge

import (
	"net/url"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestBuildParamsFullDerivation(t *testing.T) {
	cfg := &Config{
		Method:       "GET",
		ScriptName:   "/app",
		DocumentRoot: "/srv/www",
		URL:          mustParse(t, "https://example.com/app/show?id=5"),
	}

	params := BuildParams(nil, cfg)

	want := map[string]string{
		"REQUEST_METHOD":  "GET",
		"SCRIPT_NAME":     "/app",
		"SCRIPT_FILENAME": "/srv/www/app",
		"PATH_INFO":       "/show",
		"PATH_TRANSLATED": "/srv/www/show",
		"HTTP_HOST":       "example.com",
		"QUERY_STRING":    "id=5",
		"REQUEST_URI":     "/show?id=5",
		"HTTPS":           "on",
	}
	for name, value := range want {
		if got := params[name]; got != value {
			t.Errorf("%s: expected %q, got %q", name, value, got)
		}
	}
}

func TestBuildParamsScriptNameFromEnvironment(t *testing.T) {
	env := map[string]string{"SCRIPT_NAME": "/index.php"}
	cfg := &Config{
		Method:       "GET",
		DocumentRoot: "/var/www",
		URL:          mustParse(t, "http://example.com/index.php/extra"),
	}

	params := BuildParams(env, cfg)

	if got := params["SCRIPT_NAME"]; got != "/index.php" {
		t.Errorf("expected environment SCRIPT_NAME to survive, got %q", got)
	}
	if got := params["SCRIPT_FILENAME"]; got != "/var/www/index.php" {
		t.Errorf("expected SCRIPT_FILENAME derived from environment script name, got %q", got)
	}
	if got := params["PATH_INFO"]; got != "/extra" {
		t.Errorf("expected script prefix stripped from PATH_INFO, got %q", got)
	}
}

func TestBuildParamsNoURL(t *testing.T) {
	cfg := &Config{Method: "POST"}

	params := BuildParams(map[string]string{"REMOTE_ADDR": "10.0.0.1"}, cfg)

	if got := params["REQUEST_METHOD"]; got != "POST" {
		t.Errorf("expected REQUEST_METHOD POST, got %q", got)
	}
	if got := params["REMOTE_ADDR"]; got != "10.0.0.1" {
		t.Errorf("expected environment baseline to survive, got %q", got)
	}
	for _, name := range []string{"PATH_INFO", "REQUEST_URI", "QUERY_STRING", "HTTP_HOST", "HTTPS"} {
		if _, ok := params[name]; ok {
			t.Errorf("%s must not be set without a URL", name)
		}
	}
}

func TestBuildParamsIPLiteralHost(t *testing.T) {
	cases := []string{
		"http://127.0.0.1:9000/x",
		"http://[::1]:9000/x",
	}
	for _, raw := range cases {
		cfg := &Config{Method: "GET", URL: mustParse(t, raw)}
		params := BuildParams(nil, cfg)
		if host, ok := params["HTTP_HOST"]; ok {
			t.Errorf("%s: HTTP_HOST must not be set for IP literal, got %q", raw, host)
		}
	}
}

func TestBuildParamsNoQuery(t *testing.T) {
	cfg := &Config{Method: "GET", URL: mustParse(t, "http://example.com/a/b")}

	params := BuildParams(nil, cfg)

	if _, ok := params["QUERY_STRING"]; ok {
		t.Error("QUERY_STRING must not be set without a query component")
	}
	if got := params["REQUEST_URI"]; got != "/a/b" {
		t.Errorf("expected bare path REQUEST_URI, got %q", got)
	}
	if _, ok := params["HTTPS"]; ok {
		t.Error("HTTPS must not be set for http scheme")
	}
}

func TestBuildParamsPathFullyStripped(t *testing.T) {
	// script name covers the whole path: no PATH_INFO, and REQUEST_URI
	// falls back to the full URL path
	cfg := &Config{
		Method:       "GET",
		ScriptName:   "/app",
		DocumentRoot: "/srv",
		URL:          mustParse(t, "http://example.com/app?x=1"),
	}

	params := BuildParams(nil, cfg)

	if _, ok := params["PATH_INFO"]; ok {
		t.Error("PATH_INFO must not be set when the path-info is empty")
	}
	if _, ok := params["PATH_TRANSLATED"]; ok {
		t.Error("PATH_TRANSLATED must not be set when the path-info is empty")
	}
	if got := params["REQUEST_URI"]; got != "/app?x=1" {
		t.Errorf("expected REQUEST_URI /app?x=1, got %q", got)
	}
}

func TestBuildParamsContentLength(t *testing.T) {
	t.Run("derived from body", func(t *testing.T) {
		cfg := &Config{Method: "POST", Data: "hello"}
		params := BuildParams(nil, cfg)
		if got := params["CONTENT_LENGTH"]; got != "5" {
			t.Errorf("expected CONTENT_LENGTH 5, got %q", got)
		}
	})

	t.Run("environment wins", func(t *testing.T) {
		cfg := &Config{Method: "POST", Data: "hello"}
		params := BuildParams(map[string]string{"CONTENT_LENGTH": "99"}, cfg)
		if got := params["CONTENT_LENGTH"]; got != "99" {
			t.Errorf("expected environment CONTENT_LENGTH to win, got %q", got)
		}
	})

	t.Run("absent without body", func(t *testing.T) {
		cfg := &Config{Method: "GET"}
		params := BuildParams(nil, cfg)
		if _, ok := params["CONTENT_LENGTH"]; ok {
			t.Error("CONTENT_LENGTH must not be set without a body")
		}
	})
}

func TestBuildParamsNoRootNoScriptFilename(t *testing.T) {
	cfg := &Config{Method: "GET", ScriptName: "/app", URL: mustParse(t, "http://h.example/app/x")}

	params := BuildParams(nil, cfg)

	if _, ok := params["SCRIPT_FILENAME"]; ok {
		t.Error("SCRIPT_FILENAME must not be set without a document root")
	}
	if _, ok := params["PATH_TRANSLATED"]; ok {
		t.Error("PATH_TRANSLATED must not be set without a document root")
	}
	if got := params["PATH_INFO"]; got != "/x" {
		t.Errorf("expected PATH_INFO /x, got %q", got)
	}
}

package bridge

import (
	"net/url"
	"path/filepath"
	"strings"
)

// cgiMetaVars are the CGI/1.1 defined meta-variables that pass the
// environment whitelist by default, next to anything prefixed HTTP_.
var cgiMetaVars = map[string]bool{
	"AUTH_TYPE":         true,
	"CONTENT_LENGTH":    true,
	"CONTENT_TYPE":      true,
	"GATEWAY_INTERFACE": true,
	"PATH_INFO":         true,
	"PATH_TRANSLATED":   true,
	"QUERY_STRING":      true,
	"REMOTE_ADDR":       true,
	"REMOTE_HOST":       true,
	"REMOTE_IDENT":      true,
	"REMOTE_USER":       true,
	"REQUEST_METHOD":    true,
	"SCRIPT_NAME":       true,
	"SERVER_NAME":       true,
	"SERVER_PORT":       true,
	"SERVER_PROTOCOL":   true,
	"SERVER_SOFTWARE":   true,
}

// Config carries the full option surface of one invocation. It is assembled
// once in main from flags, positional arguments and the optional defaults
// file, and read-only afterwards.
type Config struct {
	Address string
	URL     *url.URL

	Method       string
	Data         string
	DocumentRoot string
	ScriptName   string

	PassEnv  []string
	EnvClear bool
	EnvFull  bool

	IncludeHeaders bool
	FailOnStatus   bool
	StatusLimit    int

	OutputDir      string
	OutputFile     string
	RemoteName     bool
	DumpHeaderFile string
	StderrFile     string

	Gateway string

	Colorize bool
	Verbose  bool
}

// IsEnvWhitelisted reports whether the named environment variable may be
// forwarded as a FastCGI parameter. Full-env passes everything; otherwise,
// unless no-env was requested, HTTP_* and the CGI meta-variables pass.
// Explicit -e additions always pass.
func (c *Config) IsEnvWhitelisted(name string) bool {
	if c.EnvFull {
		return true
	}
	if !c.EnvClear {
		if strings.HasPrefix(name, "HTTP_") || cgiMetaVars[name] {
			return true
		}
	}
	for _, v := range c.PassEnv {
		if v == name {
			return true
		}
	}
	return false
}

// FilterEnviron applies the whitelist to a raw environ snapshot (the
// "NAME=value" form of os.Environ). The ambient process environment is read
// exactly once, at the boundary, and handed to the deriver as a plain value.
func FilterEnviron(environ []string, cfg *Config) map[string]string {
	env := make(map[string]string)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if cfg.IsEnvWhitelisted(name) {
			env[name] = value
		}
	}
	return env
}

// OutputFileName resolves the primary output destination name. Empty string
// means standard output. With -O the name is the last non-empty segment of
// the URL path; a path without one is ErrEmptyRemoteName.
func (c *Config) OutputFileName() (string, error) {
	if !c.RemoteName {
		return c.OutputFile, nil
	}

	// -O requires a URL, main enforces that before we get here
	segments := strings.Split(c.URL.EscapedPath(), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i], nil
		}
	}
	return "", ErrEmptyRemoteName
}

// ResolveOutputPath places a destination file under the output directory
// when one is configured.
func (c *Config) ResolveOutputPath(name string) string {
	if c.OutputDir == "" {
		return name
	}
	return filepath.Join(c.OutputDir, name)
}

package bridge

import (
	"net"
	"strconv"
	"strings"
)

/*
Parameter derivation. The whitelisted environment snapshot forms the
baseline; everything derived from flags and the URL is layered on top, in a
fixed order, because later steps read values written by earlier ones (the
script name in particular may come from the environment rather than a flag).
*/

// BuildParams produces the complete FastCGI parameter set for one request.
// Pure function of its inputs; env is the pre-filtered environment snapshot.
func BuildParams(env map[string]string, cfg *Config) map[string]string {
	params := make(map[string]string, len(env)+8)
	for name, value := range env {
		params[name] = value
	}

	params["REQUEST_METHOD"] = cfg.Method

	scriptName := cfg.ScriptName
	if scriptName != "" {
		params["SCRIPT_NAME"] = scriptName
	} else {
		scriptName = params["SCRIPT_NAME"]
	}

	if scriptName != "" && cfg.DocumentRoot != "" {
		// the root is expected to carry no trailing slash, the script
		// name supplies the separator
		params["SCRIPT_FILENAME"] = cfg.DocumentRoot + scriptName
	}

	if u := cfg.URL; u != nil {
		path := u.EscapedPath()
		pathInfo := strings.TrimPrefix(path, scriptName)

		if pathInfo != "" {
			params["PATH_INFO"] = pathInfo
			if cfg.DocumentRoot != "" {
				params["PATH_TRANSLATED"] = cfg.DocumentRoot + pathInfo
			}
		}

		// HTTP_HOST only for domain-form hosts, never IP literals
		if host := u.Hostname(); host != "" && net.ParseIP(host) == nil {
			params["HTTP_HOST"] = host
		}

		requestPath := pathInfo
		if requestPath == "" {
			requestPath = path
		}
		if u.RawQuery != "" || u.ForceQuery {
			params["QUERY_STRING"] = u.RawQuery
			params["REQUEST_URI"] = requestPath + "?" + u.RawQuery
		} else {
			params["REQUEST_URI"] = requestPath
		}

		if u.Scheme == "https" {
			params["HTTPS"] = "on"
		}
	}

	if cfg.Data != "" {
		// an environment-provided CONTENT_LENGTH wins over the derived one
		if _, ok := params["CONTENT_LENGTH"]; !ok {
			params["CONTENT_LENGTH"] = strconv.Itoa(len(cfg.Data))
		}
	}

	return params
}

package gateway

import (
	"bytes"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"

	"fcgicurl/assets"
	"fcgicurl/bridge"
	"fcgicurl/fcgi"
)

/*
HTTP to FastCGI gateway mode. Each incoming HTTP request is translated to a
FastCGI parameter set, forwarded to the backend over a fresh connection, and
the parsed response header block plus status become the HTTP response. Every
handler invocation owns its connection and buffers, so concurrent requests
never share state.
*/

// Server forwards HTTP requests to one FastCGI backend.
type Server struct {
	Backend      string
	DocumentRoot string
	ScriptName   string
	Colorize     bool
	Verbose      bool
}

// ListenAndServe blocks serving HTTP on listen until the listener fails.
func (s *Server) ListenAndServe(listen string) error {
	srv := &fasthttp.Server{
		Handler: s.handle,
		Name:    "fcgicurl-gateway",
	}
	return srv.ListenAndServe(listen)
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	params := s.requestParams(ctx)

	client, err := fcgi.Dial(s.Backend)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	defer client.Close()

	resp, err := client.Send(params, bytes.NewReader(ctx.PostBody()))
	if err != nil {
		s.fail(ctx, err)
		return
	}

	if resp.Stderr != nil {
		assets.PrintWarning(fmt.Sprintf("backend stderr: %s", strings.TrimSpace(string(resp.Stderr))), s.Colorize)
	}
	if resp.Stdout == nil {
		s.fail(ctx, fmt.Errorf("backend produced no output"))
		return
	}

	outcome, err := bridge.ParseHeaders(resp.Stdout)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	code, err := bridge.StatusCode(outcome.Headers)
	if err != nil {
		s.fail(ctx, err)
		return
	}

	for name, value := range outcome.Headers {
		if name == "status" {
			continue
		}
		ctx.Response.Header.Set(name, value)
	}
	ctx.SetStatusCode(code)
	ctx.Write(outcome.Body)

	if s.Verbose {
		assets.PrintInfo(fmt.Sprintf("%s %s -> %d", ctx.Method(), ctx.Path(), code), s.Colorize)
	}
}

func (s *Server) fail(ctx *fasthttp.RequestCtx, err error) {
	assets.PrintError(fmt.Sprintf("%s %s: %v", ctx.Method(), ctx.Path(), err), s.Colorize)
	ctx.Error("bad gateway", fasthttp.StatusBadGateway)
}

// requestParams maps an HTTP request onto CGI meta-variables, the same
// mapping a web server performs in front of a FastCGI application.
func (s *Server) requestParams(ctx *fasthttp.RequestCtx) map[string]string {
	path := string(ctx.Path())
	scriptName := s.ScriptName
	pathInfo := strings.TrimPrefix(path, scriptName)

	params := map[string]string{
		"GATEWAY_INTERFACE": "CGI/1.1",
		"SERVER_SOFTWARE":   "fcgicurl",
		"SERVER_PROTOCOL":   "HTTP/1.1",
		"REQUEST_METHOD":    string(ctx.Method()),
		"REQUEST_URI":       string(ctx.RequestURI()),
		"QUERY_STRING":      string(ctx.URI().QueryString()),
		"SERVER_NAME":       string(ctx.Host()),
	}

	if scriptName != "" {
		params["SCRIPT_NAME"] = scriptName
		if s.DocumentRoot != "" {
			params["SCRIPT_FILENAME"] = s.DocumentRoot + scriptName
		}
	}
	if pathInfo != "" {
		params["PATH_INFO"] = pathInfo
		if s.DocumentRoot != "" {
			params["PATH_TRANSLATED"] = s.DocumentRoot + pathInfo
		}
	}

	if addr := ctx.RemoteAddr(); addr != nil {
		host, port, err := net.SplitHostPort(addr.String())
		if err != nil {
			host = addr.String()
		}
		params["REMOTE_ADDR"] = host
		if port != "" {
			params["REMOTE_PORT"] = port
		}
	}

	if ct := ctx.Request.Header.ContentType(); len(ct) > 0 {
		params["CONTENT_TYPE"] = string(ct)
	}
	if body := ctx.PostBody(); len(body) > 0 {
		params["CONTENT_LENGTH"] = strconv.Itoa(len(body))
	}
	if ctx.IsTLS() {
		params["HTTPS"] = "on"
	}

	ctx.Request.Header.VisitAll(func(key, value []byte) {
		name := "HTTP_" + strings.ToUpper(strings.ReplaceAll(string(key), "-", "_"))
		params[name] = string(value)
	})

	return params
}

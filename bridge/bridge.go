package bridge

import (
	"fmt"
	"io"
	"os"
	"strings"

	"fcgicurl/assets"
	"fcgicurl/fcgi"
)

/*
This package holds the core of the client: deriving the FastCGI parameter
set, choosing the request body source, and routing the response streams to
their destinations. The transport is an opaque capability behind the
Transport interface so everything here stays testable without sockets.

One invocation is one request: build parameters, send, route. No retries,
no pooling, no timeout layer.
*/

// Transport issues one FastCGI request and returns the collected response
// streams. Either stream may be nil when the server never produced it.
type Transport interface {
	Send(params map[string]string, stdin io.Reader) (*fcgi.Response, error)
}

// Execute runs one complete request/response exchange.
func Execute(cfg *Config, env map[string]string, transport Transport) error {
	params := BuildParams(env, cfg)
	if cfg.Verbose {
		assets.PrintInfo(fmt.Sprintf("sending %d parameters to %s", len(params), cfg.Address), cfg.Colorize)
	}

	resp, err := transport.Send(params, RequestBody(cfg))
	if err != nil {
		return fmt.Errorf("fastcgi request: %w", err)
	}

	var routeErr error
	if resp.Stdout != nil {
		routeErr = routeStdout(cfg, resp.Stdout)
	}

	// the diagnostic stream is written regardless of how body routing
	// went, it is never parsed and never withheld
	if resp.Stderr != nil {
		if err := writeDiagnostics(cfg, resp.Stderr); err != nil && routeErr == nil {
			routeErr = err
		}
	}

	return routeErr
}

// RequestBody selects the byte source for the request body: the -d literal
// when given, process stdin for non-GET methods, an empty source otherwise.
func RequestBody(cfg *Config) io.Reader {
	if cfg.Data != "" {
		return strings.NewReader(cfg.Data)
	}
	if cfg.Method != "GET" {
		return os.Stdin
	}
	return strings.NewReader("")
}

func routeStdout(cfg *Config, raw []byte) (err error) {
	name, err := cfg.OutputFileName()
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if name != "" {
		// opened on first write so an aborted exchange never creates
		// or truncates the destination file
		f := &lazyFile{path: cfg.ResolveOutputPath(name)}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		out = f
	}

	router := &Router{
		IncludeHeaders: cfg.IncludeHeaders,
		FailOnStatus:   cfg.FailOnStatus,
		StatusLimit:    cfg.StatusLimit,
	}
	if cfg.DumpHeaderFile != "" {
		dump := &lazyFile{path: cfg.ResolveOutputPath(cfg.DumpHeaderFile)}
		defer func() {
			if cerr := dump.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		router.DumpHeaders = dump
	}

	return router.Route(raw, out)
}

func writeDiagnostics(cfg *Config, data []byte) (err error) {
	var out io.Writer = os.Stderr
	if cfg.StderrFile != "" {
		f := &lazyFile{path: cfg.ResolveOutputPath(cfg.StderrFile)}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		out = f
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write diagnostic output: %w", err)
	}
	return nil
}

// lazyFile defers create/truncate until the first write, so destinations
// stay untouched on exchanges that abort before emitting anything.
type lazyFile struct {
	path string
	file *os.File
}

func (l *lazyFile) Write(p []byte) (int, error) {
	if l.file == nil {
		f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return 0, fmt.Errorf("open %s: %w", l.path, err)
		}
		l.file = f
	}
	return l.file.Write(p)
}

func (l *lazyFile) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", l.path, err)
	}
	return nil
}

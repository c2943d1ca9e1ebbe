package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"fcgicurl/assets"
	"fcgicurl/bridge"
	"fcgicurl/fcgi"
	"fcgicurl/gateway"
	"fcgicurl/utils"
)

/*
The main package is the entry point of fcgicurl. It is responsible for the
command-line surface (flags, positional ADDRESS and URL arguments), loading
the optional defaults file, computing the whitelisted environment snapshot,
dialing the backend, and turning any fatal condition into a single
diagnostic line plus a non-zero exit status.
*/

func main() {
	cfg := &bridge.Config{}
	var passEnv utils.EnvList
	var configFile string

	flag.StringVar(&cfg.Method, "X", "GET", "REQUEST_METHOD to send")
	flag.StringVar(&cfg.Data, "d", "", "Send given string as the request body")
	flag.StringVar(&cfg.DocumentRoot, "root", "", "Document root at the server (absolute path, no trailing slash)")
	flag.StringVar(&cfg.ScriptName, "script", "", "Set the SCRIPT_NAME parameter")
	flag.Var(&passEnv, "e", "Pass environment variable VAR as FastCGI parameter (repeatable)")
	flag.BoolVar(&cfg.EnvClear, "no-env", false, "Pass only explicitly whitelisted environment variables")
	flag.BoolVar(&cfg.EnvFull, "E", false, "Pass all environment variables unmodified")
	flag.StringVar(&cfg.OutputDir, "output-dir", "", "Write output files to DIR")
	flag.StringVar(&cfg.OutputFile, "o", "", "Send output to FILE instead of stdout")
	flag.BoolVar(&cfg.RemoteName, "O", false, "Use the final segment of the URL path as output filename")
	flag.StringVar(&cfg.StderrFile, "stderr", "", "Write the FastCGI STDERR stream to FILE")
	flag.StringVar(&cfg.DumpHeaderFile, "D", "", "Dump the received header block to FILE")
	flag.BoolVar(&cfg.IncludeHeaders, "i", false, "Include the header block in the output")
	flag.BoolVar(&cfg.FailOnStatus, "f", false, "Fail when the response status is greater than 400")
	flag.StringVar(&cfg.Gateway, "gateway", "", "Run as HTTP to FastCGI gateway listening on ADDR")
	flag.StringVar(&configFile, "config", "", "Load defaults from YAML FILE")
	flag.BoolVar(&cfg.Colorize, "c", false, "Colorize diagnostic output")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose output")

	flag.Usage = func() {
		assets.PrintBanner()
		printUsage()
	}

	flag.Parse()

	utils.InitColors(cfg.Colorize)
	cfg.PassEnv = passEnv

	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	args := flag.Args()
	if len(args) > 2 {
		fatal(cfg, "too many arguments, expected ADDRESS [URL]")
	}
	if len(args) > 0 {
		cfg.Address = args[0]
	}
	if len(args) > 1 {
		u, err := url.Parse(args[1])
		if err != nil {
			fatal(cfg, fmt.Sprintf("invalid url %q: %v", args[1], err))
		}
		cfg.URL = u
	}

	if configFile != "" {
		defaults, err := bridge.LoadDefaults(configFile)
		if err != nil {
			fatal(cfg, err.Error())
		}
		applyDefaults(cfg, defaults, explicit)
	}

	if cfg.Address == "" {
		flag.Usage()
		fatal(cfg, "the ADDRESS argument is required")
	}
	if cfg.EnvClear && cfg.EnvFull {
		fatal(cfg, "-E conflicts with -no-env")
	}
	if cfg.RemoteName && explicit["o"] {
		fatal(cfg, "-O conflicts with -o")
	}
	if cfg.RemoteName && cfg.URL == nil {
		fatal(cfg, "-O requires a URL argument")
	}

	if cfg.Gateway != "" {
		srv := &gateway.Server{
			Backend:      cfg.Address,
			DocumentRoot: cfg.DocumentRoot,
			ScriptName:   cfg.ScriptName,
			Colorize:     cfg.Colorize,
			Verbose:      cfg.Verbose,
		}
		assets.PrintInfo(fmt.Sprintf("gateway listening on %s, backend %s", cfg.Gateway, cfg.Address), cfg.Colorize)
		if err := srv.ListenAndServe(cfg.Gateway); err != nil {
			fatal(cfg, err.Error())
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	env := bridge.FilterEnviron(os.Environ(), cfg)

	client, err := fcgi.DialContext(ctx, cfg.Address)
	if err != nil {
		fatal(cfg, err.Error())
	}
	defer client.Close()

	if err := bridge.Execute(cfg, env, client); err != nil {
		fatal(cfg, err.Error())
	}
}

func fatal(cfg *bridge.Config, message string) {
	assets.PrintError(message, cfg.Colorize)
	os.Exit(1)
}

// applyDefaults fills config values from the defaults file without touching
// anything the user set explicitly on the command line.
func applyDefaults(cfg *bridge.Config, d bridge.Defaults, explicit map[string]bool) {
	if cfg.Address == "" && d.Address != "" {
		cfg.Address = d.Address
	}
	if !explicit["root"] && d.DocumentRoot != "" {
		cfg.DocumentRoot = d.DocumentRoot
	}
	if !explicit["script"] && d.ScriptName != "" {
		cfg.ScriptName = d.ScriptName
	}
	if !explicit["X"] && d.RequestMethod != "" {
		cfg.Method = d.RequestMethod
	}
	if !explicit["output-dir"] && d.OutputDir != "" {
		cfg.OutputDir = d.OutputDir
	}
	cfg.PassEnv = append(cfg.PassEnv, d.PassEnv...)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: fcgicurl [OPTIONS] ADDRESS [URL]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "  ADDRESS           FastCGI server, either HOST:PORT or a unix socket path")
	fmt.Fprintln(os.Stderr, "  URL               URL assumed to be served by the FastCGI server at ADDRESS")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "[OPTIONS] REQUEST OPTIONS:")
	fmt.Fprintln(os.Stderr, "  -X                REQUEST_METHOD to send (default: GET)")
	fmt.Fprintln(os.Stderr, "  -d                Send given string as the request body")
	fmt.Fprintln(os.Stderr, "  -root             Document root at the server (absolute path, no trailing slash)")
	fmt.Fprintln(os.Stderr, "  -script           Set the SCRIPT_NAME parameter")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "[OPTIONS] ENVIRONMENT OPTIONS:")
	fmt.Fprintln(os.Stderr, "  -e                Pass environment variable VAR as FastCGI parameter. Repeatable.")
	fmt.Fprintln(os.Stderr, "  -no-env           Pass only explicitly whitelisted environment variables")
	fmt.Fprintln(os.Stderr, "  -E                Pass all environment variables unmodified")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "[OPTIONS] OUTPUT OPTIONS:")
	fmt.Fprintln(os.Stderr, "  -o                Send output to FILE instead of stdout")
	fmt.Fprintln(os.Stderr, "  -O                Use the final segment of the URL path as output filename")
	fmt.Fprintln(os.Stderr, "  -output-dir       Write output files to DIR")
	fmt.Fprintln(os.Stderr, "  -stderr           Write the FastCGI STDERR stream to FILE")
	fmt.Fprintln(os.Stderr, "  -D                Dump the received header block to FILE")
	fmt.Fprintln(os.Stderr, "  -i                Include the header block in the output (default: false)")
	fmt.Fprintln(os.Stderr, "  -f                Fail when the response status is greater than 400 (default: false)")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "[OPTIONS] GENERAL OPTIONS:")
	fmt.Fprintln(os.Stderr, "  -gateway          Run as HTTP to FastCGI gateway listening on ADDR")
	fmt.Fprintln(os.Stderr, "  -config           Load defaults from YAML FILE")
	fmt.Fprintln(os.Stderr, "  -c                Colorize diagnostic output (default: false)")
	fmt.Fprintln(os.Stderr, "  -v                Verbose output (default: false)")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "[EXAMPLES]:")
	fmt.Fprintln(os.Stderr, "  Simple request:   fcgicurl 127.0.0.1:9000 http://localhost/index.php")
	fmt.Fprintln(os.Stderr, "  Unix socket:      fcgicurl /run/php/php-fpm.sock http://localhost/status")
	fmt.Fprintln(os.Stderr, "  POST with body:   fcgicurl -X POST -d 'name=value' 127.0.0.1:9000 http://localhost/form.php")
	fmt.Fprintln(os.Stderr, "  Save to file:     fcgicurl -O 127.0.0.1:9000 http://localhost/report.pdf")
	fmt.Fprintln(os.Stderr, "  Gateway mode:     fcgicurl -gateway :8080 -root /srv/www -script /index.php 127.0.0.1:9000")
}

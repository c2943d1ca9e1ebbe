package assets

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	InfoColor    = color.New(color.FgBlue)
	ErrorColor   = color.New(color.FgRed)
	WarningColor = color.New(color.FgYellow)
	SuccessColor = color.New(color.FgGreen)
)

const banner = `fcgicurl - talk to a FastCGI server directly`

// PrintBanner writes the one-line tool banner to stderr. Payload output goes
// to stdout, so everything user-facing here stays on stderr.
func PrintBanner() {
	fmt.Fprintln(os.Stderr, banner)
	fmt.Fprintln(os.Stderr)
}

// PrintError writes a single fatal diagnostic line to stderr.
func PrintError(message string, colorize bool) {
	if colorize {
		ErrorColor.Fprint(os.Stderr, "[error]")
		fmt.Fprintf(os.Stderr, " :: %s\n", message)
	} else {
		fmt.Fprintf(os.Stderr, "[error] :: %s\n", message)
	}
}

// PrintWarning writes a non-fatal diagnostic line to stderr.
func PrintWarning(message string, colorize bool) {
	if colorize {
		WarningColor.Fprint(os.Stderr, "[warning]")
		fmt.Fprintf(os.Stderr, " :: %s\n", message)
	} else {
		fmt.Fprintf(os.Stderr, "[warning] :: %s\n", message)
	}
}

// PrintInfo writes an informational line to stderr (verbose mode only).
func PrintInfo(message string, colorize bool) {
	if colorize {
		InfoColor.Fprint(os.Stderr, "[info]")
		fmt.Fprintf(os.Stderr, " :: %s\n", message)
	} else {
		fmt.Fprintf(os.Stderr, "[info] :: %s\n", message)
	}
}

package utils

import (
	"github.com/fatih/color"
)

var (
	Green   = color.New(color.FgGreen)
	Red     = color.New(color.FgRed)
	Yellow  = color.New(color.FgYellow)
	Blue    = color.New(color.FgBlue)
	Cyan    = color.New(color.FgCyan)
	Magenta = color.New(color.FgMagenta)
	White   = color.New(color.FgWhite)
)

func InitColors(enabled bool) {
	color.NoColor = !enabled
}

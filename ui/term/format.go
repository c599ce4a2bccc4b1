package term

import (
	"os"

	"golang.org/x/term"
)

type Color int

const (
	ColorNone Color = iota
	ColorRed
	ColorGreen
	ColorYellow
)

var colorCodes = map[Color]string{
	ColorRed:    "\x1b[31m",
	ColorGreen:  "\x1b[32m",
	ColorYellow: "\x1b[33m",
}

const (
	boldCode  = "\x1b[1m"
	resetCode = "\x1b[0m"
)

// Style describes the emphasis applied to a token of log output.
type Style struct {
	Color Color
	Bold  bool
}

// Formatter wraps text in ANSI escape codes, or passes it through unchanged
// when color is disabled.
type Formatter struct {
	enabled bool
}

// NewFormatter builds a formatter for the given color mode: "always",
// "never", or "auto" (color only when stdout is a terminal).
func NewFormatter(mode string) *Formatter {
	var enabled bool
	switch mode {
	case "always":
		enabled = true
	case "never":
		enabled = false
	default:
		enabled = term.IsTerminal(int(os.Stdout.Fd()))
	}
	return &Formatter{enabled: enabled}
}

// Apply renders text with the given style.
func (f *Formatter) Apply(text string, style Style) string {
	if !f.enabled {
		return text
	}

	out := colorCodes[style.Color]
	if style.Bold {
		out += boldCode
	}
	return out + text + resetCode
}

// Package ui holds the terminal output helpers shared by the commands.
// Colors degrade to plain text automatically when stdout is not a TTY.
package ui

import (
	"fmt"
	"io"

	"github.com/gookit/color"
)

var (
	header  = color.Style{color.FgMagenta, color.OpBold}
	info    = color.FgBlue
	success = color.FgGreen
	warning = color.FgYellow
	failure = color.FgRed
)

// Headerf prints a section header line.
func Headerf(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, header.Sprintf(format, a...))
}

// Infof prints a progress line.
func Infof(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, info.Render(fmt.Sprintf(format, a...)))
}

// Successf prints a checkmarked success line.
func Successf(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, success.Render("✓ "+fmt.Sprintf(format, a...)))
}

// Warnf prints a non-fatal warning line.
func Warnf(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, warning.Render("Warning: "+fmt.Sprintf(format, a...)))
}

// Failf prints an error line.
func Failf(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, failure.Render("Error: "+fmt.Sprintf(format, a...)))
}

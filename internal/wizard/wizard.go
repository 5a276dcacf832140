// Package wizard implements the interactive configuration prompt sequence.
// It is a pure transform from (current configuration, input stream) to a new
// configuration; persisting the result is left to the caller.
package wizard

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ffts/buildctl/internal/config"
	"github.com/ffts/buildctl/internal/ui"
)

// Wizard asks a fixed ordered list of questions. Empty input keeps the
// current value; invalid input re-asks the question.
type Wizard struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Wizard reading answers from in and prompting on out.
func New(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{in: bufio.NewReader(in), out: out}
}

// Run walks the question list over cur and returns the updated
// configuration plus whether the user asked to persist it.
func (w *Wizard) Run(cur config.Config) (config.Config, bool, error) {
	ui.Headerf(w.out, "Interactive Configuration Wizard")
	fmt.Fprintln(w.out, "This will guide you through the build configuration.")
	fmt.Fprintln(w.out)

	buildType, err := w.askBuildType(cur.BuildType)
	if err != nil {
		return cur, false, err
	}
	cur.BuildType = buildType

	fmt.Fprintln(w.out, "\nLibrary configuration:")
	questions := []struct {
		prompt string
		value  *bool
	}{
		{"Build static library?", &cur.Static},
		{"Build shared library?", &cur.Shared},
		{"Build tests?", &cur.Tests},
	}
	for _, q := range questions {
		if *q.value, err = w.askYesNo(q.prompt, *q.value); err != nil {
			return cur, false, err
		}
	}

	fmt.Fprintln(w.out, "\nArchitecture optimizations:")
	if cur.NEON, err = w.askYesNo("Enable NEON (ARM)?", cur.NEON); err != nil {
		return cur, false, err
	}
	if cur.SSE, err = w.askYesNo("Enable SSE (x86)?", cur.SSE); err != nil {
		return cur, false, err
	}

	save, err := w.askSave()
	if err != nil {
		return cur, false, err
	}
	return cur, save, nil
}

var buildTypes = map[string]config.BuildType{
	"1": config.Debug,
	"2": config.Release,
	"3": config.RelWithDebInfo,
	"4": config.MinSizeRel,
}

func (w *Wizard) askBuildType(cur config.BuildType) (config.BuildType, error) {
	fmt.Fprintln(w.out, "Build type options:")
	fmt.Fprintln(w.out, "  1. Debug (with symbols, no optimization)")
	fmt.Fprintln(w.out, "  2. Release (optimized)")
	fmt.Fprintln(w.out, "  3. RelWithDebInfo (optimized with debug info)")
	fmt.Fprintln(w.out, "  4. MinSizeRel (size optimized)")

	for {
		fmt.Fprintf(w.out, "Select build type (1-4) [default: %s]: ", cur)
		answer, err := w.readLine()
		if err != nil {
			return cur, err
		}
		if answer == "" {
			return cur, nil
		}
		if t, ok := buildTypes[answer]; ok {
			return t, nil
		}
		fmt.Fprintln(w.out, "Invalid choice. Please select 1-4.")
	}
}

func (w *Wizard) askYesNo(prompt string, cur bool) (bool, error) {
	def := "n"
	if cur {
		def = "y"
	}
	for {
		fmt.Fprintf(w.out, "%s (y/n) [default: %s]: ", prompt, def)
		answer, err := w.readLine()
		if err != nil {
			return cur, err
		}
		switch strings.ToLower(answer) {
		case "":
			return cur, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(w.out, "Please answer y or n.")
	}
}

// askSave defaults to yes: only an explicit negative answer skips
// persisting.
func (w *Wizard) askSave() (bool, error) {
	for {
		fmt.Fprint(w.out, "\nSave this configuration? (y/n) [default: y]: ")
		answer, err := w.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(w.out, "Please answer y or n.")
	}
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil {
		// A final unterminated line still counts as an answer.
		if err == io.EOF && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

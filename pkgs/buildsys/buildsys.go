// Package buildsys captures the shared lifecycle of native build system
// wrappers (CMake, Autotools). Implementations translate a resolved option
// set into tool-specific command lines; callers sequence the phases.
package buildsys

import (
	"context"
	"fmt"
	"strings"
)

// BuildSystem is the common lifecycle of a native build driver.
type BuildSystem interface {
	// Use injects a dependency installed at root into the build environment.
	Use(root string)

	// Lifecycle. Each call blocks until the spawned tool exits.
	Configure(ctx context.Context) error
	Build(ctx context.Context) error
	Test(ctx context.Context) error
	Install(ctx context.Context) error

	// OutputDir is where installed artifacts land.
	OutputDir() string
}

// CommandError reports a spawned tool that exited nonzero. Stderr holds the
// captured error output for the phases that capture it (configure, test).
type CommandError struct {
	Name   string
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Name, strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += "\n" + strings.TrimRight(e.Stderr, "\n")
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

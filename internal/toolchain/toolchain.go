// Package toolchain probes the host for the external tools a build needs.
// The probe is read-only: it spawns version queries but mutates nothing.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/ffts/buildctl/internal/ui"
)

// MinCMakeVersion is the oldest CMake release the project's build scripts
// support.
const MinCMakeVersion = "3.25"

// Compilers is the ordered candidate list; the first one present on the
// search path that answers a version query satisfies the requirement.
var Compilers = []string{"gcc", "clang", "cc"}

var (
	// ErrCMakeNotFound reports that no cmake executable is on the search path.
	ErrCMakeNotFound = errors.New("cmake not found, install CMake " + MinCMakeVersion + " or later")

	// ErrCMakeVersionUnknown reports cmake version output that could not be
	// parsed.
	ErrCMakeVersionUnknown = errors.New("could not determine cmake version")

	// ErrNoCompiler reports that none of the candidate compilers is present.
	ErrNoCompiler = errors.New("no suitable C compiler found")
)

// VersionTooOldError reports a cmake older than MinCMakeVersion.
type VersionTooOldError struct {
	Found string
}

func (e *VersionTooOldError) Error() string {
	return fmt.Sprintf("cmake version %s is too old, install CMake %s or later", e.Found, MinCMakeVersion)
}

// Checker verifies the build requirements. The lookup and version probes
// are swappable so tests run without a real toolchain.
type Checker struct {
	// Out receives human-readable diagnostics.
	Out io.Writer

	// LookPath locates an executable. Defaults to exec.LookPath.
	LookPath func(name string) (string, error)

	// Version runs "<name> --version" and returns its standard output.
	Version func(ctx context.Context, name string) (string, error)
}

// New returns a Checker probing the real host toolchain.
func New(out io.Writer) *Checker {
	return &Checker{
		Out:      out,
		LookPath: exec.LookPath,
		Version: func(ctx context.Context, name string) (string, error) {
			out, err := exec.CommandContext(ctx, name, "--version").Output()
			return string(out), err
		},
	}
}

// Check verifies that cmake and a C compiler are available and that cmake
// meets the minimum version. Each failure is reported through a distinct
// error.
func (c *Checker) Check(ctx context.Context) error {
	ui.Infof(c.Out, "Checking build requirements...")

	if _, err := c.LookPath("cmake"); err != nil {
		return ErrCMakeNotFound
	}

	out, err := c.Version(ctx, "cmake")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCMakeVersionUnknown, err)
	}
	version, err := parseCMakeVersion(out)
	if err != nil {
		return err
	}
	if semver.Compare("v"+version, "v"+MinCMakeVersion) < 0 {
		return &VersionTooOldError{Found: version}
	}
	ui.Successf(c.Out, "CMake %s found", version)

	for _, compiler := range Compilers {
		if _, err := c.LookPath(compiler); err != nil {
			continue
		}
		out, err := c.Version(ctx, compiler)
		if err != nil {
			continue
		}
		ui.Successf(c.Out, "%s: %s", compiler, firstLine(out))
		return nil
	}
	return ErrNoCompiler
}

// parseCMakeVersion extracts MAJOR.MINOR[.PATCH] from "cmake --version"
// output, whose first line reads "cmake version X.Y.Z".
func parseCMakeVersion(out string) (string, error) {
	fields := strings.Fields(firstLine(out))
	if len(fields) < 3 {
		return "", ErrCMakeVersionUnknown
	}
	version := fields[2]
	if !semver.IsValid("v" + version) {
		return "", fmt.Errorf("%w: %q", ErrCMakeVersionUnknown, version)
	}
	return version, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

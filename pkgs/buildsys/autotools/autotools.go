// Package autotools wraps the classic configure/make/make-install workflow.
package autotools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ffts/buildctl/pkgs/buildsys"
)

// AutoTools drives Autotools-style builds out of tree: the configure script
// of sourceDir runs inside buildDir.
type AutoTools struct {
	sourceDir  string
	buildDir   string
	installDir string
	buildType  string
	jobs       int
	features   map[string]bool
	withPIC    *bool
	env        map[string]string
	verbose    bool
	stdout     io.Writer
	stderr     io.Writer
}

var _ buildsys.BuildSystem = (*AutoTools)(nil)

// New returns a ready-to-use AutoTools.
func New(sourceDir, buildDir, installDir string) *AutoTools {
	return &AutoTools{
		sourceDir:  sourceDir,
		buildDir:   buildDir,
		installDir: installDir,
		features:   make(map[string]bool),
		env:        make(map[string]string),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
}

// BuildType maps the configuration's build type onto CFLAGS. Release keeps
// the configure script's own defaults.
func (a *AutoTools) BuildType(name string) { a.buildType = name }

// Jobs sets the -j level passed to make.
func (a *AutoTools) Jobs(n int) { a.jobs = n }

// Verbose echoes every spawned command line before running it.
func (a *AutoTools) Verbose(v bool) { a.verbose = v }

// SetOutput redirects subprocess output. Defaults are os.Stdout/os.Stderr.
func (a *AutoTools) SetOutput(stdout, stderr io.Writer) {
	a.stdout = stdout
	a.stderr = stderr
}

// Enable records a feature switch, emitted as --enable-<name> or
// --disable-<name> on the configure line.
func (a *AutoTools) Enable(name string, on bool) {
	a.features[name] = on
}

// WithPIC emits the libtool --with-pic / --without-pic switch.
func (a *AutoTools) WithPIC(on bool) { a.withPIC = &on }

// Env sets key=value for every command spawned by this AutoTools.
func (a *AutoTools) Env(key, value string) {
	a.env[key] = value
}

// Use adds include/lib/pkgconfig paths of a dependency installed at root to
// the process environment.
func (a *AutoTools) Use(root string) {
	includeDir := filepath.Join(root, "include")
	libDir := filepath.Join(root, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")

	if _, err := os.Stat(pkgconfigDir); err == nil {
		buildsys.PrependPath("PKG_CONFIG_PATH", pkgconfigDir)
	}
	if _, err := os.Stat(includeDir); err == nil {
		buildsys.AppendFlag("CPPFLAGS", "-I"+includeDir)
	}
	if _, err := os.Stat(libDir); err == nil {
		buildsys.AppendFlag("LDFLAGS", "-L"+libDir)
	}
}

// ConfigureArgs returns the full argument list of the configure invocation.
func (a *AutoTools) ConfigureArgs() []string {
	var args []string
	if a.installDir != "" {
		args = append(args, "--prefix="+absPath(a.installDir))
	}

	names := make([]string, 0, len(a.features))
	for name := range a.features {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if a.features[name] {
			args = append(args, "--enable-"+name)
		} else {
			args = append(args, "--disable-"+name)
		}
	}

	if a.withPIC != nil {
		if *a.withPIC {
			args = append(args, "--with-pic")
		} else {
			args = append(args, "--without-pic")
		}
	}

	if cflags := buildTypeCFLAGS(a.buildType); cflags != "" {
		args = append(args, "CFLAGS="+cflags)
	}
	return args
}

// buildTypeCFLAGS translates the CMake-style build type names into the
// equivalent compiler flags for a configure-driven build.
func buildTypeCFLAGS(buildType string) string {
	switch buildType {
	case "Debug":
		return "-g -O0"
	case "RelWithDebInfo":
		return "-g -O2"
	case "MinSizeRel":
		return "-Os"
	}
	return ""
}

// Configure runs <sourceDir>/configure inside buildDir. The build directory
// is created if absent. Stderr is captured and surfaced in the returned
// error.
func (a *AutoTools) Configure(ctx context.Context) error {
	if err := os.MkdirAll(a.buildDir, 0o755); err != nil {
		return err
	}
	exe := filepath.Join(absPath(a.sourceDir), "configure")
	return a.run(ctx, true, exe, a.ConfigureArgs())
}

// Build runs "make" at the configured parallelism.
func (a *AutoTools) Build(ctx context.Context) error {
	var args []string
	if a.jobs > 0 {
		args = append(args, "-j", strconv.Itoa(a.jobs))
	}
	return a.run(ctx, false, "make", args)
}

// Test runs "make check". Stderr is captured and surfaced in the returned
// error.
func (a *AutoTools) Test(ctx context.Context) error {
	return a.run(ctx, true, "make", []string{"check"})
}

// Install runs "make install".
func (a *AutoTools) Install(ctx context.Context) error {
	return a.run(ctx, false, "make", []string{"install"})
}

// OutputDir returns installDir if set, otherwise buildDir.
func (a *AutoTools) OutputDir() string {
	if a.installDir != "" {
		return absPath(a.installDir)
	}
	return a.buildDir
}

func (a *AutoTools) run(ctx context.Context, capture bool, name string, args []string) error {
	if a.verbose {
		fmt.Fprintln(a.stdout, "+", name, strings.Join(args, " "))
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = a.buildDir
	cmd.Stdout = a.stdout
	if len(a.env) > 0 {
		cmd.Env = buildsys.MergeEnv(os.Environ(), a.env)
	}

	if !capture {
		cmd.Stderr = a.stderr
		if err := cmd.Run(); err != nil {
			return &buildsys.CommandError{Name: name, Args: args, Err: err}
		}
		return nil
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &buildsys.CommandError{Name: name, Args: args, Stderr: stderr.String(), Err: err}
	}
	return nil
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// Package driver turns a resolved configuration plus a requested phase into
// the corresponding native build system invocation.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ffts/buildctl/internal/config"
	"github.com/ffts/buildctl/internal/ui"
	"github.com/ffts/buildctl/pkgs/buildsys"
	"github.com/ffts/buildctl/pkgs/buildsys/autotools"
	"github.com/ffts/buildctl/pkgs/buildsys/cmake"
)

// ErrNotConfigured reports a phase that needs an existing build directory.
var ErrNotConfigured = errors.New("build directory not found, run configure first")

// Options adjust how a Driver runs.
type Options struct {
	// SourceDir is the project root holding the build scripts. Default ".".
	SourceDir string

	// Verbose echoes every spawned command line.
	Verbose bool

	// Out receives progress diagnostics. Default os.Stdout.
	Out io.Writer
}

// Driver sequences build phases over one configuration. All phases are
// blocking; a phase fully completes before control returns.
type Driver struct {
	cfg config.Config
	sys buildsys.BuildSystem
	out io.Writer

	removeAll func(path string) error
}

// New builds a Driver for cfg, selecting the backend from cfg.BuildSystem.
func New(cfg config.Config, opts Options) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.SourceDir == "" {
		opts.SourceDir = "."
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Driver{
		cfg:       cfg,
		sys:       newBuildSystem(cfg, opts),
		out:       opts.Out,
		removeAll: os.RemoveAll,
	}, nil
}

func newBuildSystem(cfg config.Config, opts Options) buildsys.BuildSystem {
	if cfg.BuildSystem == config.Autotools {
		a := autotools.New(opts.SourceDir, cfg.BuildDir, cfg.InstallDir)
		a.BuildType(string(cfg.BuildType))
		a.Jobs(cfg.ParallelJobs)
		a.Verbose(opts.Verbose)
		a.WithPIC(cfg.PIC)
		for name, on := range map[string]bool{
			"static":        cfg.Static,
			"shared":        cfg.Shared,
			"tests":         cfg.Tests,
			"examples":      cfg.Examples,
			"benchmarks":    cfg.Benchmarks,
			"documentation": cfg.Documentation,
			"coverage":      cfg.Coverage,
			"sanitizers":    cfg.Sanitizers,
			"neon":          cfg.NEON,
			"vfp":           cfg.VFP,
			"sse":           cfg.SSE,
			"sse2":          cfg.SSE2,
			"sse3":          cfg.SSE3,
			"avx":           cfg.AVX,
			"avx2":          cfg.AVX2,
			"dynamic-code":  !cfg.DisableDynamicCode,
		} {
			a.Enable(name, on)
		}
		return a
	}

	c := cmake.New(opts.SourceDir, cfg.BuildDir, cfg.InstallDir)
	c.BuildType(string(cfg.BuildType))
	c.Jobs(cfg.ParallelJobs)
	c.Verbose(opts.Verbose)
	if cfg.Generator != "" {
		c.Generator(cfg.Generator)
	}
	if cfg.ToolchainFile != "" {
		c.Toolchain(cfg.ToolchainFile)
	}
	for key, on := range map[string]bool{
		"ENABLE_TESTS":                       cfg.Tests,
		"ENABLE_EXAMPLES":                    cfg.Examples,
		"ENABLE_BENCHMARKS":                  cfg.Benchmarks,
		"ENABLE_DOCUMENTATION":               cfg.Documentation,
		"ENABLE_COVERAGE":                    cfg.Coverage,
		"ENABLE_SANITIZERS":                  cfg.Sanitizers,
		"ENABLE_STATIC":                      cfg.Static,
		"ENABLE_SHARED":                      cfg.Shared,
		"ENABLE_NEON":                        cfg.NEON,
		"ENABLE_VFP":                         cfg.VFP,
		"ENABLE_SSE":                         cfg.SSE,
		"ENABLE_SSE2":                        cfg.SSE2,
		"ENABLE_SSE3":                        cfg.SSE3,
		"ENABLE_AVX":                         cfg.AVX,
		"ENABLE_AVX2":                        cfg.AVX2,
		"DISABLE_DYNAMIC_CODE":               cfg.DisableDynamicCode,
		"GENERATE_POSITION_INDEPENDENT_CODE": cfg.PIC,
	} {
		c.DefineBool(key, on)
	}
	return c
}

// Use injects dependencies installed at the given roots into the build
// environment.
func (d *Driver) Use(roots ...string) {
	for _, root := range roots {
		d.sys.Use(root)
	}
}

// Configure runs the configure phase, creating the build directory if
// absent.
func (d *Driver) Configure(ctx context.Context) error {
	ui.Infof(d.out, "Configuring build...")
	if err := d.sys.Configure(ctx); err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	ui.Successf(d.out, "Configuration successful")
	return nil
}

// Build runs the build phase. The project must already be configured.
func (d *Driver) Build(ctx context.Context) error {
	ui.Infof(d.out, "Building project...")
	if err := d.requireConfigured(); err != nil {
		return err
	}
	if err := d.sys.Build(ctx); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	ui.Successf(d.out, "Build successful")
	return nil
}

// Test runs the test phase. The project must already be configured.
func (d *Driver) Test(ctx context.Context) error {
	ui.Infof(d.out, "Running tests...")
	if err := d.requireConfigured(); err != nil {
		return err
	}
	if err := d.sys.Test(ctx); err != nil {
		return fmt.Errorf("test: %w", err)
	}
	ui.Successf(d.out, "Tests passed")
	return nil
}

// Install runs the install phase and reports where artifacts landed.
func (d *Driver) Install(ctx context.Context) error {
	ui.Infof(d.out, "Installing project...")
	if err := d.requireConfigured(); err != nil {
		return err
	}
	if err := d.sys.Install(ctx); err != nil {
		return fmt.Errorf("install: %w", err)
	}
	ui.Successf(d.out, "Installation successful")
	fmt.Fprintf(d.out, "Installed to: %s\n", d.sys.OutputDir())
	return nil
}

// Clean removes the build and install directories. Both removals are
// attempted even if one fails; any failure makes the overall result an
// error.
func (d *Driver) Clean() error {
	ui.Infof(d.out, "Cleaning build artifacts...")

	var errs []error
	for _, target := range []struct{ name, dir string }{
		{"build", d.cfg.BuildDir},
		{"install", d.cfg.InstallDir},
	} {
		if _, err := os.Stat(target.dir); err != nil {
			continue
		}
		if err := d.removeAll(target.dir); err != nil {
			errs = append(errs, fmt.Errorf("clean %s directory: %w", target.name, err))
			continue
		}
		ui.Successf(d.out, "%s directory cleaned", target.name)
	}
	return errors.Join(errs...)
}

// All runs clean (when requested), configure, build, test and install in
// order, stopping at the first failure.
func (d *Driver) All(ctx context.Context, clean bool) error {
	if clean {
		if err := d.Clean(); err != nil {
			return err
		}
	}
	if err := d.Configure(ctx); err != nil {
		return err
	}
	if err := d.Build(ctx); err != nil {
		return err
	}
	if err := d.Test(ctx); err != nil {
		return err
	}
	return d.Install(ctx)
}

func (d *Driver) requireConfigured() error {
	if _, err := os.Stat(d.cfg.BuildDir); err != nil {
		return fmt.Errorf("%s: %w", d.cfg.BuildDir, ErrNotConfigured)
	}
	return nil
}

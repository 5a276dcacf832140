// Package cmake wraps the cmake configure/build/test/install workflow.
package cmake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/ffts/buildctl/pkgs/buildsys"
)

// CMake drives CMake-based builds.
type CMake struct {
	sourceDir  string
	buildDir   string
	installDir string
	generator  string
	buildType  string
	toolchain  string
	jobs       int
	defines    map[string]string
	env        map[string]string
	verbose    bool
	stdout     io.Writer
	stderr     io.Writer
}

var _ buildsys.BuildSystem = (*CMake)(nil)

// New returns a ready-to-use CMake.
func New(sourceDir, buildDir, installDir string) *CMake {
	return &CMake{
		sourceDir:  sourceDir,
		buildDir:   buildDir,
		installDir: installDir,
		defines:    make(map[string]string),
		env:        make(map[string]string),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
}

// Generator sets the CMake generator (e.g. "Ninja", "Unix Makefiles").
func (c *CMake) Generator(name string) { c.generator = name }

// BuildType sets CMAKE_BUILD_TYPE (e.g. "Release", "Debug").
func (c *CMake) BuildType(name string) { c.buildType = name }

// Toolchain sets CMAKE_TOOLCHAIN_FILE.
func (c *CMake) Toolchain(path string) { c.toolchain = path }

// Jobs sets the --parallel level passed to cmake --build.
func (c *CMake) Jobs(n int) { c.jobs = n }

// Verbose echoes every spawned command line before running it.
func (c *CMake) Verbose(v bool) { c.verbose = v }

// SetOutput redirects subprocess output. Defaults are os.Stdout/os.Stderr.
func (c *CMake) SetOutput(stdout, stderr io.Writer) {
	c.stdout = stdout
	c.stderr = stderr
}

// Define adds a -D<key>=<value> cache definition.
func (c *CMake) Define(key, value string) {
	c.defines[key] = value
}

// DefineBool adds a -D<key>=ON/OFF cache definition.
func (c *CMake) DefineBool(key string, value bool) {
	v := "OFF"
	if value {
		v = "ON"
	}
	c.defines[key] = v
}

// Env sets key=value for every command spawned by this CMake.
func (c *CMake) Env(key, value string) {
	c.env[key] = value
}

// Use configures the process environment so that CMake and compilers find
// headers, libraries and pkg-config files from a non-system dependency
// installed at root.
func (c *CMake) Use(root string) {
	includeDir := filepath.Join(root, "include")
	libDir := filepath.Join(root, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")

	if _, err := os.Stat(pkgconfigDir); err == nil {
		buildsys.PrependPath("PKG_CONFIG_PATH", pkgconfigDir)
	}
	buildsys.PrependPath("CMAKE_PREFIX_PATH", root)
	if _, err := os.Stat(includeDir); err == nil {
		buildsys.PrependPath("CMAKE_INCLUDE_PATH", includeDir)
	}
	if _, err := os.Stat(libDir); err == nil {
		buildsys.PrependPath("CMAKE_LIBRARY_PATH", libDir)
	}

	if runtime.GOOS == "windows" {
		if _, err := os.Stat(includeDir); err == nil {
			buildsys.PrependPath("INCLUDE", includeDir)
		}
		if _, err := os.Stat(libDir); err == nil {
			buildsys.PrependPath("LIB", libDir)
		}
	} else {
		if _, err := os.Stat(includeDir); err == nil {
			buildsys.AppendFlag("CPPFLAGS", "-I"+includeDir)
		}
		if _, err := os.Stat(libDir); err == nil {
			buildsys.AppendFlag("LDFLAGS", "-L"+libDir)
		}
	}
}

// ConfigureArgs returns the full argument list of the configure invocation.
func (c *CMake) ConfigureArgs() []string {
	args := []string{"-S", c.sourceDir, "-B", c.buildDir}
	if c.generator != "" {
		args = append(args, "-G", c.generator)
	}

	defines := make(map[string]string, len(c.defines)+3)
	for k, v := range c.defines {
		defines[k] = v
	}
	if c.buildType != "" {
		defines["CMAKE_BUILD_TYPE"] = c.buildType
	}
	if c.installDir != "" {
		defines["CMAKE_INSTALL_PREFIX"] = absPath(c.installDir)
	}
	if c.toolchain != "" {
		defines["CMAKE_TOOLCHAIN_FILE"] = c.toolchain
	}

	keys := make([]string, 0, len(defines))
	for k := range defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-D"+k+"="+defines[k])
	}
	return args
}

// BuildArgs returns the argument list of the build invocation. For Debug
// builds the configuration selector is appended so that multi-config
// generators build the right thing.
func (c *CMake) BuildArgs() []string {
	args := []string{"--build", c.buildDir}
	if c.jobs > 0 {
		args = append(args, "--parallel", strconv.Itoa(c.jobs))
	}
	if c.buildType == "Debug" {
		args = append(args, "--config", "Debug")
	}
	return args
}

// TestArgs returns the argument list of the ctest invocation.
func (c *CMake) TestArgs() []string {
	return []string{"--test-dir", c.buildDir}
}

// InstallArgs returns the argument list of the install invocation.
func (c *CMake) InstallArgs() []string {
	args := []string{"--install", c.buildDir}
	if c.installDir != "" {
		args = append(args, "--prefix", absPath(c.installDir))
	}
	return args
}

// Configure runs "cmake -S <source> -B <build>" with all configured options.
// The build directory is created if absent. Stderr is captured and surfaced
// in the returned error.
func (c *CMake) Configure(ctx context.Context) error {
	if err := os.MkdirAll(c.buildDir, 0o755); err != nil {
		return err
	}
	return c.run(ctx, true, "cmake", c.ConfigureArgs())
}

// Build runs "cmake --build <build>" at the configured parallelism.
func (c *CMake) Build(ctx context.Context) error {
	return c.run(ctx, false, "cmake", c.BuildArgs())
}

// Test runs "ctest --test-dir <build>". Stderr is captured and surfaced in
// the returned error.
func (c *CMake) Test(ctx context.Context) error {
	return c.run(ctx, true, "ctest", c.TestArgs())
}

// Install runs "cmake --install <build>".
func (c *CMake) Install(ctx context.Context) error {
	return c.run(ctx, false, "cmake", c.InstallArgs())
}

// OutputDir returns installDir if set, otherwise buildDir.
func (c *CMake) OutputDir() string {
	if c.installDir != "" {
		return absPath(c.installDir)
	}
	return c.buildDir
}

func (c *CMake) run(ctx context.Context, capture bool, name string, args []string) error {
	if c.verbose {
		fmt.Fprintln(c.stdout, "+", name, strings.Join(args, " "))
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = c.stdout
	if len(c.env) > 0 {
		cmd.Env = buildsys.MergeEnv(os.Environ(), c.env)
	}

	if !capture {
		cmd.Stderr = c.stderr
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

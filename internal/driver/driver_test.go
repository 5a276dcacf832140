package driver

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ffts/buildctl/internal/config"
	"github.com/ffts/buildctl/pkgs/buildsys/autotools"
	"github.com/ffts/buildctl/pkgs/buildsys/cmake"
)

// fakeSystem records lifecycle calls and fails on demand. Configure creates
// the build directory the way a real generator would.
type fakeSystem struct {
	buildDir string
	calls    []string
	errs     map[string]error
}

func (f *fakeSystem) record(phase string) error {
	f.calls = append(f.calls, phase)
	return f.errs[phase]
}

func (f *fakeSystem) Use(root string) { f.calls = append(f.calls, "use:"+root) }

func (f *fakeSystem) Configure(context.Context) error {
	if err := os.MkdirAll(f.buildDir, 0o755); err != nil {
		return err
	}
	return f.record("configure")
}

func (f *fakeSystem) Build(context.Context) error   { return f.record("build") }
func (f *fakeSystem) Test(context.Context) error    { return f.record("test") }
func (f *fakeSystem) Install(context.Context) error { return f.record("install") }
func (f *fakeSystem) OutputDir() string             { return "install" }

func testDriver(t *testing.T, errs map[string]error) (*Driver, *fakeSystem) {
	t.Helper()

	cfg := config.Default(config.Platform{OS: "linux", Arch: "amd64"})
	dir := t.TempDir()
	cfg.BuildDir = filepath.Join(dir, "build")
	cfg.InstallDir = filepath.Join(dir, "install")

	d, err := New(cfg, Options{Out: io.Discard})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fake := &fakeSystem{buildDir: cfg.BuildDir, errs: errs}
	d.sys = fake
	return d, fake
}

func TestPhasesRequireConfigure(t *testing.T) {
	ctx := context.Background()

	phases := map[string]func(d *Driver) error{
		"build":   func(d *Driver) error { return d.Build(ctx) },
		"test":    func(d *Driver) error { return d.Test(ctx) },
		"install": func(d *Driver) error { return d.Install(ctx) },
	}

	for name, phase := range phases {
		t.Run(name, func(t *testing.T) {
			d, fake := testDriver(t, nil)

			err := phase(d)
			if !errors.Is(err, ErrNotConfigured) {
				t.Fatalf("%s = %v, want ErrNotConfigured", name, err)
			}
			if len(fake.calls) != 0 {
				t.Errorf("%s spawned subprocess despite missing build dir: %v", name, fake.calls)
			}
		})
	}
}

func TestConfigureThenBuild(t *testing.T) {
	ctx := context.Background()
	d, fake := testDriver(t, nil)

	if err := d.Configure(ctx); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := d.Build(ctx); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := []string{"configure", "build"}; !slices.Equal(fake.calls, want) {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
}

func TestAllSequence(t *testing.T) {
	d, fake := testDriver(t, nil)

	if err := d.All(context.Background(), false); err != nil {
		t.Fatalf("All: %v", err)
	}
	want := []string{"configure", "build", "test", "install"}
	if !slices.Equal(fake.calls, want) {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
}

func TestAllStopsWhenTestsFail(t *testing.T) {
	d, fake := testDriver(t, map[string]error{"test": errors.New("2 tests failed")})

	err := d.All(context.Background(), false)
	if err == nil {
		t.Fatal("All succeeded despite failing tests")
	}
	want := []string{"configure", "build", "test"}
	if !slices.Equal(fake.calls, want) {
		t.Errorf("calls = %v, want %v (install must not run)", fake.calls, want)
	}
}

func TestAllStopsWhenConfigureFails(t *testing.T) {
	d, fake := testDriver(t, map[string]error{"configure": errors.New("generator not found")})

	if err := d.All(context.Background(), false); err == nil {
		t.Fatal("All succeeded despite failed configure")
	}
	if want := []string{"configure"}; !slices.Equal(fake.calls, want) {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
}

func TestCleanRemovesBothDirs(t *testing.T) {
	d, _ := testDriver(t, nil)
	for _, dir := range []string{d.cfg.BuildDir, d.cfg.InstallDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	if err := d.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	for _, dir := range []string{d.cfg.BuildDir, d.cfg.InstallDir} {
		if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s still exists after Clean", dir)
		}
	}
}

func TestCleanAttemptsBothOnFailure(t *testing.T) {
	d, _ := testDriver(t, nil)
	for _, dir := range []string{d.cfg.BuildDir, d.cfg.InstallDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	var attempted []string
	d.removeAll = func(path string) error {
		attempted = append(attempted, path)
		if path == d.cfg.InstallDir {
			return errors.New("permission denied")
		}
		return os.RemoveAll(path)
	}

	err := d.Clean()
	if err == nil {
		t.Fatal("Clean succeeded despite removal failure")
	}
	if !strings.Contains(err.Error(), "install") {
		t.Errorf("error does not name the failing directory: %v", err)
	}
	want := []string{d.cfg.BuildDir, d.cfg.InstallDir}
	if !slices.Equal(attempted, want) {
		t.Errorf("attempted = %v, want %v", attempted, want)
	}
	if _, statErr := os.Stat(d.cfg.BuildDir); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("build dir not removed despite independent removals")
	}
}

func TestCleanMissingDirsIsNoop(t *testing.T) {
	d, _ := testDriver(t, nil)
	if err := d.Clean(); err != nil {
		t.Fatalf("Clean on missing dirs = %v, want nil", err)
	}
}

func TestNewBuildSystemCMakeFlags(t *testing.T) {
	cfg := config.Default(config.Platform{OS: "linux", Arch: "amd64"})

	sys := newBuildSystem(cfg, Options{SourceDir: "."})
	c, ok := sys.(*cmake.CMake)
	if !ok {
		t.Fatalf("backend = %T, want *cmake.CMake", sys)
	}

	args := c.ConfigureArgs()
	for _, want := range []string{
		"-DENABLE_SSE=ON",
		"-DENABLE_SSE2=ON",
		"-DENABLE_NEON=OFF",
		"-DENABLE_TESTS=ON",
		"-DENABLE_SHARED=OFF",
		"-DCMAKE_BUILD_TYPE=Release",
	} {
		if !slices.Contains(args, want) {
			t.Errorf("ConfigureArgs missing %q\nargs: %v", want, args)
		}
	}
}

func TestNewBuildSystemAutotoolsFlags(t *testing.T) {
	cfg := config.Default(config.Platform{OS: "linux", Arch: "arm64"})
	cfg.BuildSystem = config.Autotools

	sys := newBuildSystem(cfg, Options{SourceDir: "."})
	a, ok := sys.(*autotools.AutoTools)
	if !ok {
		t.Fatalf("backend = %T, want *autotools.AutoTools", sys)
	}

	args := a.ConfigureArgs()
	for _, want := range []string{
		"--enable-neon",
		"--enable-static",
		"--disable-shared",
		"--enable-dynamic-code",
		"--without-pic",
	} {
		if !slices.Contains(args, want) {
			t.Errorf("ConfigureArgs missing %q\nargs: %v", want, args)
		}
	}
}

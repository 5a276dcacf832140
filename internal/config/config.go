// Package config owns the build configuration: platform defaults, named
// presets, and the persisted snapshot on disk.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
)

// SnapshotFile is the fixed relative path of the persisted configuration.
const SnapshotFile = "build_config.json"

// ErrCorruptSnapshot reports a snapshot file that exists but cannot be
// parsed or holds invalid values. Callers fall back to defaults and warn.
var ErrCorruptSnapshot = errors.New("corrupt configuration snapshot")

// BuildType selects the CMAKE_BUILD_TYPE of the native build.
type BuildType string

const (
	Debug          BuildType = "Debug"
	Release        BuildType = "Release"
	RelWithDebInfo BuildType = "RelWithDebInfo"
	MinSizeRel     BuildType = "MinSizeRel"
)

func (t BuildType) valid() bool {
	switch t {
	case Debug, Release, RelWithDebInfo, MinSizeRel:
		return true
	}
	return false
}

// Backend selects which native build system drives the project.
type Backend string

const (
	CMake     Backend = "cmake"
	Autotools Backend = "autotools"
)

func (b Backend) valid() bool {
	return b == CMake || b == Autotools
}

// Config is the full, fixed option set of a build. Every field is known at
// compile time; presets and the wizard overlay values but never drop fields.
type Config struct {
	BuildType   BuildType `json:"build_type"`
	BuildSystem Backend   `json:"build_system"`
	BuildDir    string    `json:"build_dir"`
	InstallDir  string    `json:"install_dir"`

	Generator     string `json:"generator,omitempty"`
	ToolchainFile string `json:"toolchain_file,omitempty"`

	Tests         bool `json:"enable_tests"`
	Examples      bool `json:"enable_examples"`
	Benchmarks    bool `json:"enable_benchmarks"`
	Documentation bool `json:"enable_documentation"`
	Coverage      bool `json:"enable_coverage"`
	Sanitizers    bool `json:"enable_sanitizers"`
	Static        bool `json:"enable_static"`
	Shared        bool `json:"enable_shared"`

	NEON bool `json:"enable_neon"`
	VFP  bool `json:"enable_vfp"`
	SSE  bool `json:"enable_sse"`
	SSE2 bool `json:"enable_sse2"`
	SSE3 bool `json:"enable_sse3"`
	AVX  bool `json:"enable_avx"`
	AVX2 bool `json:"enable_avx2"`

	DisableDynamicCode bool `json:"disable_dynamic_code"`
	PIC                bool `json:"generate_position_independent_code"`

	ParallelJobs int `json:"parallel_jobs"`
}

// Default returns the baseline configuration for a platform.
func Default(p Platform) Config {
	cfg := Config{
		BuildType:    Release,
		BuildSystem:  CMake,
		BuildDir:     "build",
		InstallDir:   "install",
		Tests:        true,
		Static:       true,
		SSE:          true,
		SSE2:         true,
		SSE3:         true,
		ParallelJobs: max(runtime.NumCPU(), 1),
	}

	switch p.OS {
	case "linux":
		if p.isARM() {
			cfg.NEON = true
		}
	case "darwin":
		if p.isARM() {
			cfg.NEON = true
		}
		cfg.PIC = true
	case "windows":
		cfg.Static = true
		cfg.Shared = true
	}

	return cfg
}

// Validate reports the first invariant violation, if any.
func (c Config) Validate() error {
	if !c.BuildType.valid() {
		return fmt.Errorf("invalid build type %q", c.BuildType)
	}
	if !c.BuildSystem.valid() {
		return fmt.Errorf("invalid build system %q", c.BuildSystem)
	}
	if c.BuildDir == "" {
		return errors.New("build directory is empty")
	}
	if c.InstallDir == "" {
		return errors.New("install directory is empty")
	}
	if c.ParallelJobs < 1 {
		return fmt.Errorf("parallel jobs must be >= 1, got %d", c.ParallelJobs)
	}
	return nil
}

// Load reads the persisted snapshot at path, decoded on top of the host
// defaults so keys absent from an older snapshot keep their default value.
// A missing file is not an error. A corrupt or invalid file returns the
// defaults together with an error wrapping ErrCorruptSnapshot; the caller
// should warn and continue.
func Load(path string) (Config, error) {
	defaults := Default(Host())

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaults, nil
	}
	if err != nil {
		return defaults, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	cfg := defaults
	if err := json.Unmarshal(data, &cfg); err != nil {
		return defaults, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if err := cfg.Validate(); err != nil {
		return defaults, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return cfg, nil
}

// Save writes cfg to path as indented JSON. The formatting is stable so
// snapshots diff cleanly under version control.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetData []byte

var (
	presetOnce sync.Once
	presetTab  map[string]Preset
	presetErr  error
)

// Preset is a named partial configuration. Nil fields leave the current
// value untouched when the preset is applied.
type Preset struct {
	BuildType          *BuildType `yaml:"build_type"`
	Tests              *bool      `yaml:"enable_tests"`
	Coverage           *bool      `yaml:"enable_coverage"`
	Sanitizers         *bool      `yaml:"enable_sanitizers"`
	Static             *bool      `yaml:"enable_static"`
	Shared             *bool      `yaml:"enable_shared"`
	NEON               *bool      `yaml:"enable_neon"`
	DisableDynamicCode *bool      `yaml:"disable_dynamic_code"`
	PIC                *bool      `yaml:"generate_position_independent_code"`
}

// UnknownPresetError reports a preset name outside the fixed set.
type UnknownPresetError struct {
	Name string
}

func (e *UnknownPresetError) Error() string {
	return fmt.Sprintf("unknown preset: %s (valid presets: %s)",
		e.Name, strings.Join(PresetNames(), ", "))
}

// presets parses the embedded preset table once and reuses it for the
// lifetime of the process. The data is embedded at build time, so a parse
// failure here is a programming error.
func presets() map[string]Preset {
	presetOnce.Do(func() {
		presetErr = yaml.Unmarshal(presetData, &presetTab)
	})
	if presetErr != nil {
		panic("config: invalid embedded preset table: " + presetErr.Error())
	}
	return presetTab
}

// PresetNames returns the fixed set of preset names, sorted.
func PresetNames() []string {
	tab := presets()
	names := make([]string, 0, len(tab))
	for name := range tab {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset overlays the named preset onto cfg and returns the result.
// cfg itself is never modified. Applying the same preset twice yields the
// same configuration.
func ApplyPreset(cfg Config, name string) (Config, error) {
	p, ok := presets()[name]
	if !ok {
		return cfg, &UnknownPresetError{Name: name}
	}

	out := cfg
	if p.BuildType != nil {
		out.BuildType = *p.BuildType
	}
	if p.Tests != nil {
		out.Tests = *p.Tests
	}
	if p.Coverage != nil {
		out.Coverage = *p.Coverage
	}
	if p.Sanitizers != nil {
		out.Sanitizers = *p.Sanitizers
	}
	if p.Static != nil {
		out.Static = *p.Static
	}
	if p.Shared != nil {
		out.Shared = *p.Shared
	}
	if p.NEON != nil {
		out.NEON = *p.NEON
	}
	if p.DisableDynamicCode != nil {
		out.DisableDynamicCode = *p.DisableDynamicCode
	}
	if p.PIC != nil {
		out.PIC = *p.PIC
	}
	return out, nil
}

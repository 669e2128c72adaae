package cmd

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rationsim/rationsim/sim"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Preset is a named partial configuration in defaults.yaml.
type Preset struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Config      yaml.Node `yaml:"config"`
}

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version string   `yaml:"version"`
	Presets []Preset `yaml:"presets"`
}

// loadDefaultsConfig parses defaults.yaml bytes with strict field checking.
func loadDefaultsConfig(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing defaults YAML: %w", err)
	}
	seen := make(map[string]bool, len(cfg.Presets))
	for _, p := range cfg.Presets {
		if p.Name == "" {
			return Config{}, fmt.Errorf("defaults YAML: preset without a name")
		}
		if seen[p.Name] {
			return Config{}, fmt.Errorf("defaults YAML: duplicate preset %q", p.Name)
		}
		seen[p.Name] = true
	}
	return cfg, nil
}

// Lookup returns the preset with the given name.
func (c Config) Lookup(name string) (Preset, error) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, nil
		}
	}
	names := make([]string, len(c.Presets))
	for i, p := range c.Presets {
		names[i] = p.Name
	}
	return Preset{}, fmt.Errorf("unknown preset %q; valid: %s", name, strings.Join(names, ", "))
}

// Apply overlays the preset's config section onto base. Unknown keys in the
// preset are rejected, same as a --config file.
func (p Preset) Apply(base sim.SimulationConfig) (sim.SimulationConfig, error) {
	if p.Config.Kind == 0 {
		return base, nil
	}
	data, err := yaml.Marshal(&p.Config)
	if err != nil {
		return sim.SimulationConfig{}, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	cfg, err := base.Overlay(data)
	if err != nil {
		return sim.SimulationConfig{}, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	return cfg, nil
}

// GetPreset resolves a preset from the embedded defaults.
func GetPreset(name string) (Preset, error) {
	cfg, err := loadDefaultsConfig(defaultsYAML)
	if err != nil {
		return Preset{}, err
	}
	return cfg.Lookup(name)
}

package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Measure scopes.
const (
	ScopeTrial  = "trial"
	ScopeRegion = "region"
)

// MeasureConfig represents an external measure command.
type MeasureConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
	// Scope is "trial" (default) or "region".
	Scope string `yaml:"scope" json:"scope"`
}

// ConfigFile represents the structure of measures.yaml
type ConfigFile struct {
	Measures []MeasureConfig `yaml:"measures" json:"measures"`
}

// LoadMeasures reads a configuration file (YAML or JSON) and returns the measure configs by name.
// A missing file means no external measures are configured.
func LoadMeasures(path string) (map[string]MeasureConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]MeasureConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read measures config: %w", err)
	}

	var cfg ConfigFile
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	measures := make(map[string]MeasureConfig)
	for _, m := range cfg.Measures {
		if m.Name == "" {
			continue
		}
		switch m.Scope {
		case "":
			m.Scope = ScopeTrial
		case ScopeTrial, ScopeRegion:
		default:
			return nil, fmt.Errorf("measure %s: unknown scope %q", m.Name, m.Scope)
		}
		if m.Command == "" {
			return nil, fmt.Errorf("measure %s: command is required", m.Name)
		}
		measures[m.Name] = m
	}

	return measures, nil
}

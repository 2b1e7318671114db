package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Discover when no config file exists.
var ErrNotFound = errors.New("no configuration file found")

var configFileNames = []string{"bengal.toml", "bengal.yaml", "bengal.yml", "bengal.json"}

// Discover searches root for a recognized config file name, in priority
// order (TOML, then YAML, then JSON).
func Discover(root string) (string, error) {
	for _, name := range configFileNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}

func formatFromPath(path string) Format {
	switch filepath.Ext(path) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// Load discovers (if configPath is empty) and loads the site configuration,
// merges it over the built-in defaults, and applies environment overrides.
func Load(root, configPath string) (*Config, error) {
	defaults := Default()

	if configPath == "" {
		found, err := Discover(root)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				ApplyEnvOverrides(defaults)
				return defaults, nil
			}
			return nil, err
		}
		configPath = found
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	fileConfig, err := Parse(formatFromPath(configPath), data)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
	}

	merged := Merge(defaults, fileConfig)
	ApplyEnvOverrides(merged)

	if errs := Validate(merged); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %v", errs[0])
	}

	return merged, nil
}

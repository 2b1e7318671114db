package config

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a recognized configuration file format.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseTOML parses bengal.toml content into a Config.
func ParseTOML(data []byte) (*Config, error) {
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing toml config: %w", err)
	}
	return &c, nil
}

// ParseYAML parses bengal.yaml/bengal.yml content into a Config.
func ParseYAML(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing yaml config: %w", err)
	}
	return &c, nil
}

// ParseJSON parses bengal.json content into a Config.
func ParseJSON(data []byte) (*Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing json config: %w", err)
	}
	return &c, nil
}

// Parse dispatches to the parser for format.
func Parse(format Format, data []byte) (*Config, error) {
	switch format {
	case FormatTOML:
		return ParseTOML(data)
	case FormatYAML:
		return ParseYAML(data)
	case FormatJSON:
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}
}

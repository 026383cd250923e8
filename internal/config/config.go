package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/P-ict0/HourTrack/internal/format"
)

// Config models the optional config.yml in the data directory.
type Config struct {
	// Format is the default report format when no --format flag or
	// HOURTRACK_FORMAT variable is given.
	Format string `yaml:"format"`
	// DataFile overrides the registry file path (default data.json in
	// the data directory).
	DataFile string `yaml:"data_file"`
}

// Path returns the config file path for a data directory.
func Path(dataDir string) string {
	return filepath.Join(dataDir, "config.yml")
}

// LoadOptional returns nil,nil when the config file does not exist.
func LoadOptional(dataDir string) (*Config, error) {
	data, err := os.ReadFile(Path(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures the configured format, if any, is a known one.
func (c *Config) Validate() error {
	if c.Format != "" {
		if _, err := format.Parse(c.Format); err != nil {
			return fmt.Errorf("config format: %w", err)
		}
	}
	return nil
}

// Package config handles configuration for flowcheck.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/flowcheck/pkg/flow"
	"github.com/devicelab-dev/flowcheck/pkg/props"
)

// Config represents the workspace configuration (flowcheck.yaml).
type Config struct {
	// Base properties every job inherits
	Properties     map[string]string `yaml:"properties"`
	PropertiesFile string            `yaml:"propertiesFile"` // Relative to the config file

	// Loading
	Parallel bool `yaml:"parallel"` // Run both loaders concurrently

	// Job memory limits
	MaxXms string `yaml:"maxXms"`
	MaxXmx string `yaml:"maxXmx"`

	dir string // Directory the config was loaded from
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Parallel: true,
		MaxXms:   flow.MaxXmsDefault,
		MaxXmx:   flow.MaxXmxDefault,
	}
}

// Load loads configuration from a file. Keys absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)

	return cfg, nil
}

// LoadFromDir looks for flowcheck.yaml or flowcheck.yml in the directory,
// then in the flowcheck home. With neither, the defaults apply.
func LoadFromDir(dir string) (*Config, error) {
	if path := findConfig(dir); path != "" {
		return Load(path)
	}
	if path := HomeConfigFile(); path != "" {
		return Load(path)
	}

	cfg := Default()
	cfg.dir = dir
	return cfg, nil
}

// BaseProps builds the property bag every job inherits: the properties
// file first, then the inline properties on top of it.
func (c *Config) BaseProps() (*props.Props, error) {
	var base *props.Props
	if c.PropertiesFile != "" {
		path := c.PropertiesFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.dir, path)
		}
		p, err := props.LoadFile(nil, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load properties file: %w", err)
		}
		base = p
	}

	if len(c.Properties) == 0 {
		return base, nil
	}
	inline := props.New(base)
	inline.SetSource("flowcheck.yaml")
	keys := make([]string, 0, len(c.Properties))
	for k := range c.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		inline.Put(k, c.Properties[k])
	}
	return inline, nil
}

// SetProperty adds or replaces one inline base property.
func (c *Config) SetProperty(key, value string) {
	if c.Properties == nil {
		c.Properties = make(map[string]string)
	}
	c.Properties[key] = value
}

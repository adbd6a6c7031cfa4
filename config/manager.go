package config

import (
	"fmt"
)

// ConfigManager handles configuration operations
type ConfigManager struct {
	path string
}

// NewConfigManager creates a manager for path, or ConfigFilePath when empty
func NewConfigManager(path string) *ConfigManager {
	return &ConfigManager{path: path}
}

// Path returns the config file the manager reads and writes
func (c *ConfigManager) Path() string {
	if c.path == "" {
		return ConfigFilePath
	}
	return c.path
}

// Exists reports whether the config file is present
func (c *ConfigManager) Exists() bool {
	_, err := readConfig(c.Path())
	return err == nil
}

// Load reads the config file, fills unset fields with defaults and applies
// environment overrides. A missing file yields the defaults.
func (c *ConfigManager) Load() (Config, error) {
	cfg, err := readConfig(c.Path())
	if err != nil {
		if !isNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config %s: %w", c.Path(), err)
		}
		cfg = Config{}
	}
	withDefaults(&cfg)
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to the config file
func (c *ConfigManager) Save(cfg Config) error {
	if err := writeConfig(c.Path(), cfg); err != nil {
		return fmt.Errorf("failed to write config %s: %w", c.Path(), err)
	}
	return nil
}

// Update reads the stored config, applies fn and writes it back while
// preserving other settings. Environment overrides are not persisted.
func (c *ConfigManager) Update(fn func(*Config)) error {
	cfg, err := readConfig(c.Path())
	if err != nil {
		if !isNotExist(err) {
			return fmt.Errorf("failed to read config %s: %w", c.Path(), err)
		}
		cfg = Defaults()
	}
	fn(&cfg)
	return c.Save(cfg)
}

func withDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Storage.Backend == "" {
		cfg.Storage = def.Storage
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = def.Storage.Path
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = def.LogFormat
	}
	if cfg.Export.Title == "" {
		cfg.Export.Title = def.Export.Title
	}
	if !cfg.Export.Sections.Any() {
		cfg.Export.Sections = def.Export.Sections
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = def.Server.Listen
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"junitdash/export"
	"junitdash/query"
	"junitdash/storage"
)

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		ConfigFilePath = filepath.Join(".junitdash", "config.yml")
		return
	}
	ConfigFilePath = filepath.Join(homeDir, ".junitdash", "config.yml")
}

// ConfigFilePath is the file read and written by a ConfigManager created
// without an explicit path
var ConfigFilePath string

// Config represents the application configuration
type Config struct {
	Storage   StorageConfig `yaml:"storage"`
	PageSize  int           `yaml:"page_size"`
	LogLevel  string        `yaml:"log_level"`
	LogFormat string        `yaml:"log_format"`
	Export    ExportConfig  `yaml:"export"`
	Server    ServerConfig  `yaml:"server"`
}

// StorageConfig selects where failure progress is kept
type StorageConfig struct {
	Backend       storage.Backend `yaml:"backend"`
	Path          string          `yaml:"path,omitempty"`
	RedisURL      string          `yaml:"redis_url,omitempty"`
	SupabaseURL   string          `yaml:"supabase_url,omitempty"`
	SupabaseKey   string          `yaml:"supabase_key,omitempty"`
	SupabaseTable string          `yaml:"supabase_table,omitempty"`
}

// ExportConfig holds the defaults for PDF exports
type ExportConfig struct {
	export.Options `yaml:",inline"`
	ChromePath     string `yaml:"chrome_path,omitempty"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// DefaultListen is the address serve binds to
const DefaultListen = ":8080"

// Defaults returns the configuration used when no file exists. The file
// backend stores progress next to the config file.
func Defaults() Config {
	return Config{
		Storage: StorageConfig{
			Backend: storage.BackendFile,
			Path:    filepath.Join(filepath.Dir(ConfigFilePath), "progress.yml"),
		},
		PageSize:  query.DefaultPageSize,
		LogLevel:  "info",
		LogFormat: "text",
		Export: ExportConfig{
			Options: export.Options{Title: export.DefaultTitle, Sections: export.AllSections()},
		},
		Server: ServerConfig{Listen: DefaultListen},
	}
}

// StorageOptions converts the storage section for storage.Open
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:       c.Storage.Backend,
		Path:          c.Storage.Path,
		RedisURL:      c.Storage.RedisURL,
		SupabaseURL:   c.Storage.SupabaseURL,
		SupabaseKey:   c.Storage.SupabaseKey,
		SupabaseTable: c.Storage.SupabaseTable,
	}
}

// readConfig reads the configuration from path
// This is private - use ConfigManager methods instead
func readConfig(path string) (Config, error) {
	var config Config
	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(data, &config)
	return config, err
}

// writeConfig writes the configuration to path, creating its directory
// This is private - use ConfigManager methods instead
func writeConfig(path string, config Config) error {
	data, err := yaml.Marshal(&config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

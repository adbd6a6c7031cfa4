package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"junitdash/storage"
)

// Environment variables that override the config file
const (
	EnvStorage     = "JUNITDASH_STORAGE"
	EnvStoragePath = "JUNITDASH_STORAGE_PATH"
	EnvRedisURL    = "JUNITDASH_REDIS_URL"
	EnvSupabaseURL = "SUPABASE_URL"
	EnvSupabaseKey = "SUPABASE_KEY"
	EnvLogLevel    = "JUNITDASH_LOG_LEVEL"
	EnvPageSize    = "JUNITDASH_PAGE_SIZE"
	EnvChromePath  = "JUNITDASH_CHROME_PATH"
)

// LoadEnv reads .env style files into the process environment. Missing
// files are ignored; variables already set are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); isNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load environment from %s: %w", f, err)
		}
	}
	return nil
}

// applyEnv overrides cfg with the values of set environment variables
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvStorage); v != "" {
		cfg.Storage.Backend = storage.Backend(v)
	}
	if v := os.Getenv(EnvStoragePath); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		cfg.Storage.RedisURL = v
	}
	if v := os.Getenv(EnvSupabaseURL); v != "" {
		cfg.Storage.SupabaseURL = v
	}
	if v := os.Getenv(EnvSupabaseKey); v != "" {
		cfg.Storage.SupabaseKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvChromePath); v != "" {
		cfg.Export.ChromePath = v
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return fmt.Errorf("invalid %s %q", EnvPageSize, v)
		}
		cfg.PageSize = size
	}
	return nil
}

// Package storage provides the key-value contract used for durable
// dashboard state, with in-memory, file, redis and supabase backends.
package storage

import (
	"fmt"
	"strings"
)

// Store is a string key-value store that can drop every key sharing a prefix
type Store interface {
	// Get returns the value for key and whether it was present
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// ClearPrefix removes every key that begins with prefix
	ClearPrefix(prefix string) error
}

// Backend names a Store implementation
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendRedis    Backend = "redis"
	BackendSupabase Backend = "supabase"
)

// Options selects and configures a backend
type Options struct {
	Backend       Backend
	Path          string
	RedisURL      string
	SupabaseURL   string
	SupabaseKey   string
	SupabaseTable string
}

// Open creates the Store described by opts
func Open(opts Options) (Store, error) {
	switch Backend(strings.ToLower(string(opts.Backend))) {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(opts.Path)
	case BackendRedis:
		return NewRedisStore(opts.RedisURL)
	case BackendSupabase:
		return NewSupabaseStore(opts.SupabaseURL, opts.SupabaseKey, opts.SupabaseTable)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

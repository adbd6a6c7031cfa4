package storage

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// DefaultSupabaseTable is used when no table name is configured
const DefaultSupabaseTable = "dashboard_kv"

// kvRow is one row of the key-value table (key text primary key, value text)
type kvRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SupabaseStore keeps dashboard state in a Supabase table so several
// machines can share failure progress
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

// NewSupabaseStore creates a store on the given project and table
func NewSupabaseStore(url, key, table string) (*SupabaseStore, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_KEY must be set for supabase storage")
	}
	if table == "" {
		table = DefaultSupabaseTable
	}

	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &SupabaseStore{client: client, table: table}, nil
}

func (s *SupabaseStore) Get(key string) (string, bool, error) {
	var rows []kvRow
	_, err := s.client.From(s.table).
		Select("key,value", "", false).
		Eq("key", key).
		ExecuteTo(&rows)
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].Value, true, nil
}

func (s *SupabaseStore) Set(key, value string) error {
	_, _, err := s.client.From(s.table).
		Upsert(kvRow{Key: key, Value: value}, "key", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SupabaseStore) ClearPrefix(prefix string) error {
	// PostgREST accepts * as the LIKE wildcard
	_, _, err := s.client.From(s.table).
		Delete("minimal", "").
		Like("key", prefix+"*").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to clear %s*: %w", prefix, err)
	}
	return nil
}

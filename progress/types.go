package progress

import (
	"errors"
	"fmt"

	"junitdash/testreport"
)

// KeyPrefix is shared by every key the tracker writes; ClearAll removes
// everything under it
const KeyPrefix = "junitdash:"

// StorageKey holds the serialized progress map
const StorageKey = KeyPrefix + "failure-progress"

// Status is the resolution state of a failing test
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists the resolution states in workflow order
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is a known resolution state
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus converts user input to a Status
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

var (
	// ErrUnknownItem is returned when an id has no progress item
	ErrUnknownItem = errors.New("unknown failure progress item")
	// ErrInvalidStatus is returned for statuses outside the workflow
	ErrInvalidStatus = errors.New("invalid progress status")
)

// StorageWriteError reports that the progress map could not be persisted.
// The in-memory state has already been updated when it is returned.
type StorageWriteError struct {
	Key   string
	Cause error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Key, e.Cause)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Cause
}

// Item tracks the manual resolution of one failing test.
//
// ID is "<suite>-<name>". Two different suite/name pairs can produce the
// same id (suite "a-b" with test "c" and suite "a" with test "b-c"); such
// tests share one item.
type Item struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Suite        string `json:"suite"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Status       Status `json:"status"`
	Notes        string `json:"notes,omitempty"`
	Assignee     string `json:"assignee,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// ItemID builds the composite key of a failing test
func ItemID(suite, name string) string {
	return suite + "-" + name
}

// Row is a live failing test joined with its progress item
type Row struct {
	testreport.Record
	Progress Item `json:"progress"`
	// Tracked is false when the persisted map has no entry for the test
	Tracked bool `json:"tracked"`
}

// Summary counts items per resolution state
type Summary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// PercentComplete returns the completed share in percent, 0 when empty
func (s Summary) PercentComplete() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}

// Package progress tracks manual resolution of failing tests in a key-value
// store, independently of any single parsed report.
package progress

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"junitdash/logging"
	"junitdash/storage"
	"junitdash/testreport"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Tracker maintains the progress map keyed by composite id. It is not safe
// for concurrent use; callers that share it must serialize access.
type Tracker struct {
	store storage.Store
	log   *logrus.Entry
	now   func() time.Time

	items map[string]*Item
	dirty bool
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock overrides the time source used for UpdatedAt
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger overrides the tracker's logger
func WithLogger(log *logrus.Entry) Option {
	return func(t *Tracker) { t.log = log }
}

// NewTracker creates a tracker on top of store
func NewTracker(store storage.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store: store,
		log:   logging.New("progress"),
		now:   time.Now,
		items: make(map[string]*Item),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// InitializeIfAbsent loads the persisted map, or creates one pending item
// per failing test of report when nothing is persisted yet. An existing map
// is used as-is: entries are neither added for newly failing tests nor
// removed for tests that pass again.
func (t *Tracker) InitializeIfAbsent(report *testreport.Report) error {
	raw, ok, err := t.store.Get(StorageKey)
	if err != nil {
		return fmt.Errorf("failed to load failure progress: %w", err)
	}

	if ok {
		items, err := decodeItems(raw)
		if err == nil {
			t.items = items
			t.dirty = false
			t.log.WithField("items", len(items)).Debug("Loaded failure progress")
			return nil
		}
		t.log.WithError(err).Warn("Discarding unreadable failure progress")
	}

	failing := report.FailingTests()
	if len(failing) == 0 {
		t.items = make(map[string]*Item)
		return nil
	}

	items := make(map[string]*Item, len(failing))
	for _, rec := range failing {
		id := ItemID(rec.Suite, rec.Name)
		items[id] = &Item{
			ID:           id,
			Name:         rec.Name,
			Suite:        rec.Suite,
			ErrorMessage: rec.Message(),
			Status:       StatusPending,
		}
	}
	t.items = items
	t.log.WithField("items", len(items)).Info("Initialized failure progress")
	t.persist()
	return nil
}

// UpdateOption supplies optional fields for UpdateStatus
type UpdateOption func(*Item)

// WithNotes replaces the item's notes
func WithNotes(notes string) UpdateOption {
	return func(i *Item) { i.Notes = notes }
}

// WithAssignee replaces the item's assignee
func WithAssignee(assignee string) UpdateOption {
	return func(i *Item) { i.Assignee = assignee }
}

// UpdateStatus moves one item to status. Notes and assignee keep their
// previous values unless supplied through opts.
func (t *Tracker) UpdateStatus(id string, status Status, opts ...UpdateOption) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	item, ok := t.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}

	item.Status = status
	item.UpdatedAt = t.timestamp()
	for _, opt := range opts {
		opt(item)
	}

	t.persist()
	return nil
}

// BulkUpdateStatus moves every known id to status and returns how many
// items changed. Notes and assignees are left alone; unknown ids are skipped.
func (t *Tracker) BulkUpdateStatus(ids []string, status Status) (int, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	updated := 0
	stamp := t.timestamp()
	for _, id := range ids {
		item, ok := t.items[id]
		if !ok {
			t.log.WithField("id", id).Debug("Skipping unknown id in bulk update")
			continue
		}
		item.Status = status
		item.UpdatedAt = stamp
		updated++
	}

	if updated > 0 {
		t.persist()
	}
	return updated, nil
}

// BulkUpdateSelection applies status to every selected id and clears the
// selection afterwards
func (t *Tracker) BulkUpdateSelection(sel *Selection, status Status) (int, error) {
	updated, err := t.BulkUpdateStatus(sel.IDs(), status)
	if err != nil {
		return 0, err
	}
	sel.Clear()
	return updated, nil
}

// ClearAll removes every stored key under KeyPrefix and forgets all items.
// When the store cannot be cleared the tracker is left dirty.
func (t *Tracker) ClearAll() error {
	t.items = make(map[string]*Item)
	t.dirty = false
	if err := t.store.ClearPrefix(KeyPrefix); err != nil {
		t.dirty = true
		t.log.WithError(err).Error("Failed to clear failure progress")
		return fmt.Errorf("failed to clear failure progress: %w", err)
	}
	t.log.Info("Cleared failure progress")
	return nil
}

// Item returns a copy of the item with the given id
func (t *Tracker) Item(id string) (Item, bool) {
	item, ok := t.items[id]
	if !ok {
		return Item{}, false
	}
	return *item, true
}

// Items returns copies of every item sorted by id
func (t *Tracker) Items() []Item {
	out := make([]Item, 0, len(t.items))
	for _, item := range t.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Rows joins the failing tests of report with their progress items.
// Failing tests without an item get a pending placeholder that is not
// persisted.
func (t *Tracker) Rows(report *testreport.Report) []Row {
	failing := report.FailingTests()
	rows := make([]Row, 0, len(failing))
	for _, rec := range failing {
		id := ItemID(rec.Suite, rec.Name)
		row := Row{Record: rec}
		if item, ok := t.items[id]; ok {
			row.Progress = *item
			row.Tracked = true
		} else {
			row.Progress = Item{
				ID:           id,
				Name:         rec.Name,
				Suite:        rec.Suite,
				ErrorMessage: rec.Message(),
				Status:       StatusPending,
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Summary counts the tracked items per state
func (t *Tracker) Summary() Summary {
	var s Summary
	for _, item := range t.items {
		s.Total++
		switch item.Status {
		case StatusInProgress:
			s.InProgress++
		case StatusCompleted:
			s.Completed++
		default:
			s.Pending++
		}
	}
	return s
}

// Dirty reports whether the last write failed and the store is behind the
// in-memory state
func (t *Tracker) Dirty() bool {
	return t.dirty
}

// Sync retries persisting the in-memory state
func (t *Tracker) Sync() error {
	return t.persist()
}

// persist writes the whole map. Failures are logged and remembered through
// Dirty; the in-memory state is kept.
func (t *Tracker) persist() error {
	data, err := json.Marshal(t.items)
	if err != nil {
		t.dirty = true
		return &StorageWriteError{Key: StorageKey, Cause: err}
	}
	if err := t.store.Set(StorageKey, string(data)); err != nil {
		t.dirty = true
		werr := &StorageWriteError{Key: StorageKey, Cause: err}
		t.log.WithError(werr).Warn("Failure progress is only kept in memory")
		return werr
	}
	t.dirty = false
	return nil
}

func decodeItems(raw string) (map[string]*Item, error) {
	var decoded map[string]*Item
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}
	items := make(map[string]*Item, len(decoded))
	for id, item := range decoded {
		if item == nil {
			continue
		}
		if item.ID == "" {
			item.ID = id
		}
		items[id] = item
	}
	return items, nil
}

func (t *Tracker) timestamp() string {
	return t.now().UTC().Format(timestampFormat)
}

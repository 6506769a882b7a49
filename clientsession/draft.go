package clientsession

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blogem/toolshelf/models"
)

const draftKey = "toolshelf.draft"

// Draft is a catalog snapshot kept locally when a save could not be persisted
type Draft struct {
	SavedAt time.Time       `json:"savedAt"`
	Catalog *models.Catalog `json:"catalog"`
}

// DraftStore keeps at most one local draft
type DraftStore struct {
	kv  KV
	now func() time.Time
}

// NewDraftStore creates a draft store over kv
func NewDraftStore(kv KV) *DraftStore {
	return &DraftStore{kv: kv, now: time.Now}
}

// SetClock replaces the time source, used by tests
func (d *DraftStore) SetClock(now func() time.Time) {
	d.now = now
}

// Save replaces the draft with catalog
func (d *DraftStore) Save(catalog *models.Catalog) error {
	data, err := json.Marshal(Draft{SavedAt: d.now().UTC(), Catalog: catalog})
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	return d.kv.Set(draftKey, string(data))
}

// Load returns the draft, if any; unreadable drafts are discarded
func (d *DraftStore) Load() (*Draft, bool) {
	raw, ok, err := d.kv.Get(draftKey)
	if err != nil || !ok {
		return nil, false
	}
	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil || draft.Catalog == nil {
		_ = d.kv.Remove(draftKey)
		return nil, false
	}
	return &draft, true
}

// Clear removes the draft
func (d *DraftStore) Clear() error {
	return d.kv.Remove(draftKey)
}

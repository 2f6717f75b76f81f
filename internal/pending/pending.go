// Package pending tracks the "pending order" marker shown to returning
// customers until they confirm their order over Instagram DM.
package pending

import (
	"encoding/json"
	"time"

	"ateliernour.dz/shop/internal/persist"
)

// StorageKey is the key under which the marker is persisted.
const StorageKey = "pending_order"

// TTL is how long a marker survives before it is discarded on read.
const TTL = 7 * 24 * time.Hour

// Order is the persisted marker for the return-visit banner.
type Order struct {
	ProductName string    `json:"productName"`
	Total       int64     `json:"total"`
	Instagram   string    `json:"instagram"`
	DMSent      bool      `json:"dmSent"`
	SavedAt     time.Time `json:"timestamp"`
}

// Store reads and writes the marker through the key-value storage.
type Store struct {
	kv  persist.KV
	now func() time.Time
}

// NewStore binds a Store to kv. The now function defaults to time.Now.
func NewStore(kv persist.KV, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{kv: kv, now: now}
}

// Save records a fresh marker with the DM flag cleared.
func (s *Store) Save(productName string, total int64, instagram string) {
	o := Order{
		ProductName: productName,
		Total:       total,
		Instagram:   instagram,
		SavedAt:     s.now().UTC(),
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return
	}
	_ = s.kv.Set(StorageKey, raw)
}

// Get returns the current marker, discarding it when absent, unreadable,
// or older than TTL.
func (s *Store) Get() (Order, bool) {
	raw, err := s.kv.Get(StorageKey)
	if err != nil {
		return Order{}, false
	}
	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		_ = s.kv.Delete(StorageKey)
		return Order{}, false
	}
	if s.now().Sub(o.SavedAt) > TTL {
		_ = s.kv.Delete(StorageKey)
		return Order{}, false
	}
	return o, true
}

// MarkSent flips the DM-sent flag on the stored marker, if any.
func (s *Store) MarkSent() {
	o, ok := s.Get()
	if !ok {
		return
	}
	o.DMSent = true
	raw, err := json.Marshal(o)
	if err != nil {
		return
	}
	_ = s.kv.Set(StorageKey, raw)
}

// Clear removes the marker.
func (s *Store) Clear() {
	_ = s.kv.Delete(StorageKey)
}

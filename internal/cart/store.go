package cart

import (
	"encoding/json"

	"ateliernour.dz/shop/internal/persist"
)

// DefaultStorageKey is the key under which the cart is persisted.
const DefaultStorageKey = "cart"

// Store keeps the authoritative in-memory cart for a session and mirrors it
// to the backing key-value storage after every mutation. Missing or
// malformed stored data loads as an empty cart; persistence failures are
// swallowed so a storage hiccup never breaks a browsing session.
type Store struct {
	kv   persist.KV
	key  string
	cart *Cart
}

// NewStore loads the persisted cart (if any) and returns a Store bound to kv.
func NewStore(kv persist.KV, key string) *Store {
	if key == "" {
		key = DefaultStorageKey
	}
	s := &Store{kv: kv, key: key, cart: New()}
	s.load()
	return s
}

func (s *Store) load() {
	raw, err := s.kv.Get(s.key)
	if err != nil {
		// missing or unreadable storage loads as an empty cart
		return
	}
	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return
	}
	s.cart.lines = lines
}

func (s *Store) save() {
	raw, err := json.Marshal(s.cart.lines)
	if err != nil {
		return
	}
	_ = s.kv.Set(s.key, raw)
}

// Add appends or merges a line item and persists the result.
func (s *Store) Add(item AddItem) {
	s.cart.Add(item)
	s.save()
}

// UpdateQuantity adjusts a line quantity and persists the result.
func (s *Store) UpdateQuantity(key string, quantity int) {
	s.cart.UpdateQuantity(key, quantity)
	s.save()
}

// Remove deletes a line item and persists the result.
func (s *Store) Remove(key string) {
	s.cart.Remove(key)
	s.save()
}

// Clear empties the cart and persists the result.
func (s *Store) Clear() {
	s.cart.Clear()
	s.save()
}

// Lines exposes the current line items.
func (s *Store) Lines() []Line { return s.cart.Lines() }

// Total exposes the derived cart total.
func (s *Store) Total() int64 { return s.cart.Total() }

// ItemCount exposes the derived item count.
func (s *Store) ItemCount() int { return s.cart.ItemCount() }

// Empty reports whether the cart holds no items.
func (s *Store) Empty() bool { return s.cart.Empty() }

package pending

import (
	"testing"
	"time"

	"ateliernour.dz/shop/internal/persist"
)

func TestSaveThenGetReturnsMarker(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewStore(persist.NewMemory(), func() time.Time { return now })

	s.Save("Bouquet Rose", 2500, "jane_doe.21")

	o, ok := s.Get()
	if !ok {
		t.Fatalf("expected marker to be present")
	}
	if o.ProductName != "Bouquet Rose" || o.Total != 2500 || o.Instagram != "jane_doe.21" {
		t.Fatalf("unexpected marker %+v", o)
	}
	if o.DMSent {
		t.Fatalf("expected DM flag to start cleared")
	}
}

func TestGetDiscardsExpiredMarker(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	kv := persist.NewMemory()
	s := NewStore(kv, func() time.Time { return now })
	s.Save("Bouquet Rose", 2500, "jane_doe.21")

	later := NewStore(kv, func() time.Time { return now.Add(TTL + time.Hour) })
	if _, ok := later.Get(); ok {
		t.Fatalf("expected expired marker to be discarded")
	}
	// the expired record is removed from storage, not just hidden
	if _, err := kv.Get(StorageKey); err == nil {
		t.Fatalf("expected storage entry to be deleted")
	}
}

func TestGetJustBeforeExpiryStillReturnsMarker(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	kv := persist.NewMemory()
	NewStore(kv, func() time.Time { return now }).Save("Bouquet", 900, "nour")

	later := NewStore(kv, func() time.Time { return now.Add(TTL - time.Minute) })
	if _, ok := later.Get(); !ok {
		t.Fatalf("expected marker to survive until TTL")
	}
}

func TestMarkSentFlipsFlag(t *testing.T) {
	s := NewStore(persist.NewMemory(), nil)
	s.Save("Bouquet", 900, "nour")
	s.MarkSent()

	o, ok := s.Get()
	if !ok {
		t.Fatalf("expected marker")
	}
	if !o.DMSent {
		t.Fatalf("expected DM flag set")
	}
}

func TestGetDropsMalformedMarker(t *testing.T) {
	kv := persist.NewMemory()
	if err := kv.Set(StorageKey, []byte("not-json")); err != nil {
		t.Fatalf("seed storage: %v", err)
	}
	s := NewStore(kv, nil)
	if _, ok := s.Get(); ok {
		t.Fatalf("expected malformed marker to be dropped")
	}
}

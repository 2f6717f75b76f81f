// Package persist defines the small key-value storage contract used for
// device-scoped state (cart contents, pending order marker, locale choice).
// The storefront backs it with the signed session cookie; tests use Memory.
package persist

import "errors"

// ErrNotFound indicates the key has no stored value.
var ErrNotFound = errors.New("persist: not found")

// KV stores raw JSON payloads by key.
type KV interface {
	// Get returns the stored payload or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set stores the payload, replacing any previous value.
	Set(key string, value []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error
}

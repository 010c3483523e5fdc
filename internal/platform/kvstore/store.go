// Package kvstore is the persistence contract shared by both actors.
//
// The workflow engine assumes nothing beyond per-key atomicity: get, put,
// delete, prefix scan and a single-key compare-and-swap. Every backend must
// give identical semantics; the memory store is the reference.
package kvstore

import (
	"context"
	"strings"
)

// Entry is one stored record. Version starts at 1 on creation and increases
// by one on every write. Deleting a key resets its version history.
type Entry struct {
	Key     string
	Value   []byte
	Version int64
}

// Store is the key-value contract.
//
// Get returns sentinel.ErrNotFound for absent keys. Delete of an absent key is
// a no-op. ScanPrefix returns entries sorted by key. CompareAndSwap writes
// value only when the key's current version equals expectedVersion (0 means
// "must not exist") and returns sentinel.ErrConflict otherwise.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	ScanPrefix(ctx context.Context, prefix string) ([]Entry, error)
	CompareAndSwap(ctx context.Context, key string, expectedVersion int64, value []byte) (int64, error)
}

// Key joins key segments with ':'.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Package kv persists the activity log in the shared key-value store.
//
// Keys are activity_log:<reverse-timestamp>:<id> so a prefix scan returns the
// newest entries first. After every append the log is trimmed to the
// retention limit.
package kv

import (
	"context"
	"fmt"
	"math"

	"assistflow/internal/platform/kvstore"
	audit "assistflow/pkg/platform/audit"
)

const (
	prefix = "activity_log:"

	// DefaultRetention is the number of entries kept.
	DefaultRetention = 100
)

// Store is an audit.Store over kvstore.Store.
type Store struct {
	kv        kvstore.Store
	retention int
}

// Option configures Store.
type Option func(*Store)

// WithRetention overrides the number of retained entries. Values < 1 are ignored.
func WithRetention(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.retention = n
		}
	}
}

// New creates a KV-backed activity store.
func New(kv kvstore.Store, opts ...Option) *Store {
	s := &Store{kv: kv, retention: DefaultRetention}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append writes entry and trims the log. Trimming races between writers are
// benign: deletes are idempotent and every writer converges on the same
// newest-N set.
func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	if entry.ID == "" {
		return fmt.Errorf("activity entry id is required")
	}
	if err := kvstore.PutJSON(ctx, s.kv, entryKey(entry), entry); err != nil {
		return fmt.Errorf("append activity entry: %w", err)
	}
	return s.trim(ctx)
}

// ListRecent returns at most limit entries, newest first. limit <= 0 means all retained.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	records, err := kvstore.ScanJSON[audit.Entry](ctx, s.kv, prefix)
	if err != nil {
		return nil, fmt.Errorf("scan activity log: %w", err)
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]audit.Entry, 0, len(records))
	for _, r := range records {
		out = append(out, r.Value)
	}
	return out, nil
}

func (s *Store) trim(ctx context.Context) error {
	entries, err := s.kv.ScanPrefix(ctx, prefix)
	if err != nil {
		return fmt.Errorf("scan activity log: %w", err)
	}
	for i := s.retention; i < len(entries); i++ {
		if err := s.kv.Delete(ctx, entries[i].Key); err != nil {
			return fmt.Errorf("trim activity log: %w", err)
		}
	}
	return nil
}

func entryKey(e audit.Entry) string {
	// fixed width keeps lexical order equal to numeric order
	reverse := math.MaxInt64 - e.Timestamp.UnixNano()
	return fmt.Sprintf("%s%019d:%s", prefix, reverse, e.ID)
}

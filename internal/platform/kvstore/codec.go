package kvstore

import (
	"context"
	"encoding/json"
	"fmt"

	"assistflow/pkg/platform/sentinel"
)

// GetJSON reads key and decodes it into T. Decoding failures surface as
// sentinel.ErrCorrupt so loosely-typed blobs never leak past the store.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, int64, error) {
	var out T
	e, err := s.Get(ctx, key)
	if err != nil {
		return out, 0, err
	}
	if err := json.Unmarshal(e.Value, &out); err != nil {
		return out, 0, fmt.Errorf("decode %s: %w: %v", key, sentinel.ErrCorrupt, err)
	}
	return out, e.Version, nil
}

// PutJSON encodes v and writes it unconditionally.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}

// CASJSON encodes v and writes it with CompareAndSwap.
func CASJSON(ctx context.Context, s Store, key string, expectedVersion int64, v any) (int64, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", key, err)
	}
	return s.CompareAndSwap(ctx, key, expectedVersion, raw)
}

// Versioned pairs a decoded record with the version it was read at.
type Versioned[T any] struct {
	Key     string
	Value   T
	Version int64
}

// ScanJSON decodes every entry under prefix.
func ScanJSON[T any](ctx context.Context, s Store, prefix string) ([]Versioned[T], error) {
	entries, err := s.ScanPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]Versioned[T], 0, len(entries))
	for _, e := range entries {
		var v T
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w: %v", e.Key, sentinel.ErrCorrupt, err)
		}
		out = append(out, Versioned[T]{Key: e.Key, Value: v, Version: e.Version})
	}
	return out, nil
}

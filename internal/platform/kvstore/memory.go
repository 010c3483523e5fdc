package kvstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"assistflow/pkg/platform/sentinel"
)

type memEntry struct {
	value   []byte
	version int64
}

// Memory is an in-process Store guarded by a single RWMutex. It favours
// clarity over throughput and backs unit tests and the dev profile.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memEntry)}
}

func (s *Memory) Get(_ context.Context, key string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, sentinel.ErrNotFound
	}
	return Entry{Key: key, Value: clone(e.value), Version: e.version}, nil
}

func (s *Memory) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.entries[key]
	s.entries[key] = memEntry{value: clone(value), version: prev.version + 1}
	return nil
}

func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *Memory) ScanPrefix(_ context.Context, prefix string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0)
	for k, e := range s.entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, Entry{Key: k, Value: clone(e.value), Version: e.version})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Memory) CompareAndSwap(_ context.Context, key string, expectedVersion int64, value []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.entries[key]
	if cur.version != expectedVersion {
		return 0, sentinel.ErrConflict
	}
	next := cur.version + 1
	s.entries[key] = memEntry{value: clone(value), version: next}
	return next, nil
}

// Len reports the number of stored keys.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"assistflow/pkg/platform/sentinel"
)

const (
	fieldValue   = "v"
	fieldVersion = "ver"

	scanBatch = 256
)

// Redis stores each entry as a hash {v, ver} under namespace+key. CAS uses
// WATCH/MULTI so a concurrent writer aborts the transaction (redis.TxFailedErr).
type Redis struct {
	client    *redis.Client
	namespace string
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithNamespace prefixes every key, letting several deployments share a DB.
func WithNamespace(ns string) RedisOption {
	return func(r *Redis) {
		r.namespace = ns
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, namespace: "assist:"}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (s *Redis) k(key string) string {
	return s.namespace + key
}

func (s *Redis) Get(ctx context.Context, key string) (Entry, error) {
	res, err := s.client.HMGet(ctx, s.k(key), fieldValue, fieldVersion).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("redis get %s: %w", key, err)
	}
	return decodeHash(key, res)
}

func (s *Redis) Put(ctx context.Context, key string, value []byte) error {
	k := s.k(key)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, fieldValue, value)
		pipe.HIncrBy(ctx, k, fieldVersion, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put %s: %w", key, err)
	}
	return nil
}

func (s *Redis) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.k(key)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

type keyIterator interface {
	Next(ctx context.Context) bool
	Val() string
	Err() error
}

// scanKeys drains a SCAN cursor. SCAN may return a key more than once while
// the keyspace rehashes, so repeats are dropped.
func scanKeys(ctx context.Context, it keyIterator) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string
	for it.Next(ctx) {
		k := it.Val()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys, it.Err()
}

func (s *Redis) ScanPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	pattern := escapeGlob(s.k(prefix)) + "*"
	keys, err := scanKeys(ctx, s.client.Scan(ctx, 0, pattern, scanBatch).Iterator())
	if err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return []Entry{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.HMGet(ctx, k, fieldValue, fieldVersion)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis scan fetch %s: %w", prefix, err)
	}

	out := make([]Entry, 0, len(keys))
	for i, k := range keys {
		entry, err := decodeHash(strings.TrimPrefix(k, s.namespace), cmds[i].Val())
		if errors.Is(err, sentinel.ErrNotFound) {
			// deleted between SCAN and HMGET
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Redis) CompareAndSwap(ctx context.Context, key string, expectedVersion int64, value []byte) (int64, error) {
	k := s.k(key)
	var next int64
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.HGet(ctx, k, fieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			cur = 0
		} else if err != nil {
			return err
		}
		if cur != expectedVersion {
			return sentinel.ErrConflict
		}
		next = cur + 1
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, fieldValue, value, fieldVersion, next)
			return nil
		})
		return err
	}, k)
	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, sentinel.ErrConflict), errors.Is(err, redis.TxFailedErr):
		return 0, sentinel.ErrConflict
	default:
		return 0, fmt.Errorf("redis cas %s: %w", key, err)
	}
}

func decodeHash(key string, res []any) (Entry, error) {
	if len(res) != 2 || res[0] == nil {
		return Entry{}, sentinel.ErrNotFound
	}
	raw, ok := res[0].(string)
	if !ok {
		return Entry{}, fmt.Errorf("redis value %s: %w", key, sentinel.ErrCorrupt)
	}
	var version int64
	if vs, ok := res[1].(string); ok {
		v, err := strconv.ParseInt(vs, 10, 64)
		if err != nil {
			return Entry{}, fmt.Errorf("redis version %s: %w", key, sentinel.ErrCorrupt)
		}
		version = v
	}
	return Entry{Key: key, Value: []byte(raw), Version: version}, nil
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}

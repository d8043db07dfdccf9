// Package redistree is a shared tree.Store and tree.Bus on Redis.
//
// Records are grouped by parent path: every parent is one hash whose fields
// are the child keys. Listing children is a single HGETALL and the
// conditional write maps onto HSETNX.
package redistree

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
)

const scanBatch = 256

// Options configures the Redis connection.
type Options struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// NewClient connects and pings Redis.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// Store is a Redis-backed tree.Store.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ tree.Store = (*Store)(nil)

// NewStore wraps rdb. prefix namespaces every hash key.
func NewStore(rdb redis.UniversalClient, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) hashKey(parent string) string {
	return s.prefix + parent
}

// Get returns the record at path, or nil when absent.
func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	parent, key := tree.Split(path)

	v, err := s.rdb.HGet(ctx, s.hashKey(parent), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("hget %s: %w", path, err)
	}

	return v, nil
}

// Children returns direct child records of path sorted by key.
func (s *Store) Children(ctx context.Context, path string) ([]tree.Entry, error) {
	fields, err := s.rdb.HGetAll(ctx, s.hashKey(path)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", path, err)
	}

	out := make([]tree.Entry, 0, len(fields))
	for k, v := range fields {
		out = append(out, tree.Entry{Key: k, Value: []byte(v)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out, nil
}

// Put writes the record at path.
func (s *Store) Put(ctx context.Context, path string, value []byte) error {
	parent, key := tree.Split(path)

	if err := s.rdb.HSet(ctx, s.hashKey(parent), key, value).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", path, err)
	}

	return nil
}

// PutIfAbsent writes the record only when the field is unset.
func (s *Store) PutIfAbsent(ctx context.Context, path string, value []byte) (bool, error) {
	parent, key := tree.Split(path)

	ok, err := s.rdb.HSetNX(ctx, s.hashKey(parent), key, value).Result()
	if err != nil {
		return false, fmt.Errorf("hsetnx %s: %w", path, err)
	}

	return ok, nil
}

// Delete removes the record at path and every hash below it.
func (s *Store) Delete(ctx context.Context, path string) error {
	parent, key := tree.Split(path)

	if err := s.rdb.HDel(ctx, s.hashKey(parent), key).Err(); err != nil {
		return fmt.Errorf("hdel %s: %w", path, err)
	}

	keys := []string{s.hashKey(path)}

	iter := s.rdb.Scan(ctx, 0, escapeGlob(s.hashKey(path))+"/*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning %s: %w", path, err)
	}

	for chunk := range slices.Chunk(keys, scanBatch) {
		if err := s.rdb.Del(ctx, chunk...).Err(); err != nil {
			return fmt.Errorf("deleting %s: %w", path, err)
		}
	}

	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

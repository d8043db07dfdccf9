// Package memtree is an in-memory tree.Store. It backs the local profile and
// the test suites, and supports fault injection so tests can fail individual
// reads and writes.
package memtree

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
)

// Op names a store operation for fault injection and call counting.
type Op string

// Store operations.
const (
	OpGet         Op = "get"
	OpChildren    Op = "children"
	OpPut         Op = "put"
	OpPutIfAbsent Op = "put_if_absent"
	OpDelete      Op = "delete"
)

// FaultFunc decides whether an operation fails. Returning nil lets it
// proceed. A FaultFunc may block to hold an operation in flight.
type FaultFunc func(op Op, path string) error

// Store keeps records in a map keyed by path.
type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
	closed  bool

	faultMu sync.RWMutex
	fault   FaultFunc

	callsMu sync.Mutex
	calls   map[Op]int
}

var _ tree.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		records: make(map[string][]byte),
		calls:   make(map[Op]int),
	}
}

// InjectFault installs fn; pass nil to clear it.
func (s *Store) InjectFault(fn FaultFunc) {
	s.faultMu.Lock()
	s.fault = fn
	s.faultMu.Unlock()
}

// Calls returns how many times op was attempted, including failed attempts.
func (s *Store) Calls(op Op) int {
	s.callsMu.Lock()
	defer s.callsMu.Unlock()

	return s.calls[op]
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

func (s *Store) before(ctx context.Context, op Op, path string) error {
	s.callsMu.Lock()
	s.calls[op]++
	s.callsMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.faultMu.RLock()
	fault := s.fault
	s.faultMu.RUnlock()

	if fault != nil {
		if err := fault(op, path); err != nil {
			return err
		}
	}

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()

	if closed {
		return tree.ErrClosed
	}

	return nil
}

// Get returns a copy of the record at path.
func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	if err := s.before(ctx, OpGet, path); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.records[path]
	if !ok {
		return nil, nil
	}

	return clone(v), nil
}

// Children returns direct child records of path sorted by key.
func (s *Store) Children(ctx context.Context, path string) ([]tree.Entry, error) {
	if err := s.before(ctx, OpChildren, path); err != nil {
		return nil, err
	}

	prefix := path + "/"

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []tree.Entry

	for p, v := range s.records {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}

		out = append(out, tree.Entry{Key: rest, Value: clone(v)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out, nil
}

// Put stores value at path.
func (s *Store) Put(ctx context.Context, path string, value []byte) error {
	if err := s.before(ctx, OpPut, path); err != nil {
		return err
	}

	s.mu.Lock()
	s.records[path] = clone(value)
	s.mu.Unlock()

	return nil
}

// PutIfAbsent stores value only when path is empty.
func (s *Store) PutIfAbsent(ctx context.Context, path string, value []byte) (bool, error) {
	if err := s.before(ctx, OpPutIfAbsent, path); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[path]; ok {
		return false, nil
	}

	s.records[path] = clone(value)

	return true, nil
}

// Delete removes path and its subtree.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := s.before(ctx, OpDelete, path); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for p := range s.records {
		if tree.IsWithin(p, path) {
			delete(s.records, p)
		}
	}

	return nil
}

// Ping fails once the store is closed.
func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return tree.ErrClosed
	}

	return nil
}

// Close marks the store closed. Records are kept for inspection.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}

	out := make([]byte, len(b))
	copy(out, b)

	return out
}

// Package tree holds the backend-neutral pieces of the remote tree: the raw
// Store and Bus contracts that concrete backends implement, path handling,
// query evaluation, and an in-process change bus.
//
// Backends only store bytes. Everything above that (push keys, queries,
// subscriptions, error translation) lives in the acl package so that every
// backend behaves identically.
package tree

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Store errors.
var (
	// ErrInvalidPath is returned for empty paths or paths with empty segments.
	ErrInvalidPath = errors.New("invalid tree path")

	// ErrClosed is returned by a store or bus used after Close.
	ErrClosed = errors.New("tree backend closed")
)

// Entry is a direct child record.
type Entry struct {
	Key   string
	Value []byte
}

// Store is a raw record store addressed by slash-separated paths.
//
// A path may hold a record and, independently, have descendants. Children
// lists only direct children that hold a record.
type Store interface {
	// Get returns the record at path, or nil when absent.
	Get(ctx context.Context, path string) ([]byte, error)

	// Children returns the direct child records of path sorted by key.
	Children(ctx context.Context, path string) ([]Entry, error)

	// Put writes the record at path.
	Put(ctx context.Context, path string, value []byte) error

	// PutIfAbsent writes the record only if path holds none, atomically
	// with respect to other writers of the same backend.
	PutIfAbsent(ctx context.Context, path string, value []byte) (bool, error)

	// Delete removes the record at path and every descendant record.
	Delete(ctx context.Context, path string) error

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Bus carries change notices. A notice is the path that was written or
// removed; listeners decide whether it touches what they watch.
type Bus interface {
	// Publish announces a change at path.
	Publish(ctx context.Context, path string) error

	// Listen calls fn for every notice, in publish order for a single
	// publisher, until stop is called or ctx ends.
	Listen(ctx context.Context, fn func(path string)) (stop func(), err error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close releases bus resources.
	Close() error
}

// CleanPath validates and normalizes a path by trimming surrounding slashes.
func CleanPath(path string) (string, error) {
	p := strings.Trim(path, "/")
	if p == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPath)
	}

	if slices.Contains(strings.Split(p, "/"), "") {
		return "", fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
	}

	return p, nil
}

// Split returns the parent path and the last segment. The parent of a
// single-segment path is "".
func Split(path string) (parent, key string) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", path
	}

	return path[:i], path[i+1:]
}

// Overlaps reports whether a change at changed can alter a subscription
// rooted at watched: the change is inside the watched subtree or removes
// one of its ancestors.
func Overlaps(watched, changed string) bool {
	return IsWithin(changed, watched) || IsWithin(watched, changed)
}

// IsWithin reports whether path equals root or lies below it.
func IsWithin(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+"/")
}

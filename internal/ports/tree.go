// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types or tree snapshots, never backend types
//   - Error returns use domain error types (ErrUnavailable, ErrPermissionDenied, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/jsamuelsen/quotehub-sync/internal/domain"
)

// RemoteTree is the hierarchical key-value store every engine component
// talks to. Paths are "/"-joined segments; values are JSON records.
//
// Reading a missing path is not an error: it yields an empty snapshot.
// Writes return once the backend acknowledged them. Callers that want
// fire-and-forget semantics wrap them in app.Async.
type RemoteTree interface {
	// Get returns the record at path together with its direct children.
	Get(ctx context.Context, path string) (Snapshot, error)

	// GetOnce evaluates a query against the children of q.Path once.
	GetOnce(ctx context.Context, q Query) (Snapshot, error)

	// Set writes value at path, replacing any existing record.
	Set(ctx context.Context, path string, value any) error

	// SetIfAbsent writes value only if no record exists at path.
	// It reports whether this call created the record.
	SetIfAbsent(ctx context.Context, path string, value any) (bool, error)

	// Remove deletes the record at path and its entire subtree.
	// Removing a missing path succeeds.
	Remove(ctx context.Context, path string) error

	// PushKey returns a fresh child key under parentPath. Keys sort in
	// creation order.
	PushKey(ctx context.Context, parentPath string) (string, error)

	// Subscribe delivers the query result now and again after every change
	// touching q.Path. The subscription must be cancelled by its owner.
	Subscribe(ctx context.Context, q Query) (Subscription, error)
}

// Child is one direct child record of a snapshot.
type Child struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Snapshot is an immutable point-in-time copy of a subtree. It is never a
// diff: consumers rebuild local state from each snapshot they receive.
type Snapshot struct {
	Path     string
	Value    json.RawMessage
	Children []Child
}

// Exists reports whether the path holds a record or any child.
func (s Snapshot) Exists() bool {
	return len(s.Value) > 0 || len(s.Children) > 0
}

// Decode unmarshals the record at the snapshot path.
// Returns domain.ErrNotFound when no record exists.
func (s Snapshot) Decode(v any) error {
	if len(s.Value) == 0 {
		return domain.NewNotFoundError("record", s.Path)
	}

	if err := json.Unmarshal(s.Value, v); err != nil {
		return fmt.Errorf("decoding %s: %w", s.Path, err)
	}

	return nil
}

// Keys returns child keys in snapshot order.
func (s Snapshot) Keys() []string {
	keys := make([]string, len(s.Children))
	for i, c := range s.Children {
		keys[i] = c.Key
	}

	return keys
}

// DecodeChildren unmarshals every child record in snapshot order.
func DecodeChildren[T any](s Snapshot) ([]T, error) {
	out := make([]T, 0, len(s.Children))

	for _, c := range s.Children {
		var v T
		if err := json.Unmarshal(c.Value, &v); err != nil {
			return nil, fmt.Errorf("decoding %s/%s: %w", s.Path, c.Key, err)
		}

		out = append(out, v)
	}

	return out, nil
}

// Query selects and orders the direct children of Path.
//
// With OrderByChild empty, children are ordered by key. EqualTo filters on
// the ordered child field. LimitToLast keeps only the last N after ordering.
type Query struct {
	Path         string
	OrderByChild string
	EqualTo      any
	LimitToLast  int
}

// At returns a query over every child of path.
func At(path string) Query {
	return Query{Path: path}
}

// OrderBy returns a copy ordered by the named child field.
func (q Query) OrderBy(field string) Query {
	q.OrderByChild = field
	return q
}

// Equal returns a copy filtered to children whose ordered field equals v.
func (q Query) Equal(v any) Query {
	q.EqualTo = v
	return q
}

// Last returns a copy limited to the last n children.
func (q Query) Last(n int) Query {
	q.LimitToLast = n
	return q
}

// String renders the query for logs and span attributes.
func (q Query) String() string {
	s := q.Path
	if q.OrderByChild != "" {
		s += " orderBy=" + q.OrderByChild
	}

	if q.EqualTo != nil {
		s += fmt.Sprintf(" equalTo=%v", q.EqualTo)
	}

	if q.LimitToLast > 0 {
		s += fmt.Sprintf(" last=%d", q.LimitToLast)
	}

	return s
}

// Delivery is one event on a subscription: a fresh snapshot, or a read
// error that leaves the previous snapshot in force.
type Delivery struct {
	Snapshot Snapshot
	Err      error
}

// Subscription is a live query. Deliveries are full snapshots in change
// order. The channel is closed after Cancel or when the subscribing
// context ends.
type Subscription interface {
	Deliveries() <-chan Delivery
	Cancel()
}

// Snapshots adapts a subscription into a lazy sequence. Breaking out of the
// range cancels the subscription; resubscribe to start over.
func Snapshots(sub Subscription) iter.Seq2[Snapshot, error] {
	return func(yield func(Snapshot, error) bool) {
		defer sub.Cancel()

		for d := range sub.Deliveries() {
			if !yield(d.Snapshot, d.Err) {
				return
			}
		}
	}
}

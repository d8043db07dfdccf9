package context

import (
	"context"
	"errors"
	"fmt"
)

// Action is one staged tree write. Its String form names it in errors and
// logs.
type Action interface {
	fmt.Stringer
	Apply(ctx context.Context) error
	Undo(ctx context.Context) error
}

// CommitError says which action failed and which ones had already been
// applied, newest first. A non-nil UndoErr means at least one applied
// action could not be undone and the tree is left partially written.
type CommitError struct {
	Failed  string
	Applied []string
	Err     error
	UndoErr error
}

func (e *CommitError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Failed, e.Err)
	if e.UndoErr != nil {
		msg += fmt.Sprintf("; undo failed: %v", e.UndoErr)
	}

	return msg
}

func (e *CommitError) Unwrap() []error {
	if e.UndoErr == nil {
		return []error{e.Err}
	}

	return []error{e.Err, e.UndoErr}
}

// RolledBack reports whether every applied action was undone.
func (e *CommitError) RolledBack() bool {
	return e.UndoErr == nil
}

// Stage queues a for Commit.
func (rc *RequestContext) Stage(a Action) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.committed {
		return ErrAlreadyCommitted
	}

	rc.actions = append(rc.actions, a)

	return nil
}

// Commit applies the staged actions in order. On the first failure it
// undoes the applied ones in reverse and returns a *CommitError. A failed
// commit may be retried; a successful one may not.
func (rc *RequestContext) Commit(ctx context.Context) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.committed {
		return ErrAlreadyCommitted
	}

	for i, a := range rc.actions {
		if err := a.Apply(ctx); err != nil {
			applied, undoErr := undo(ctx, rc.actions[:i])

			return &CommitError{Failed: a.String(), Applied: applied, Err: err, UndoErr: undoErr}
		}
	}

	rc.committed = true

	return nil
}

func undo(ctx context.Context, applied []Action) ([]string, error) {
	names := make([]string, 0, len(applied))

	var errs []error

	for i := len(applied) - 1; i >= 0; i-- {
		a := applied[i]
		names = append(names, a.String())

		if err := a.Undo(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a, err))
		}
	}

	return names, errors.Join(errs...)
}

// Staged returns a copy of the queued actions.
func (rc *RequestContext) Staged() []Action {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return append([]Action(nil), rc.actions...)
}

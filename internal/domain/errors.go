// Package domain contains the quote, like, and activity entities plus the
// error taxonomy shared by every layer. Domain errors describe what went
// wrong against the remote tree; adapters decide how a transport reports it.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched with errors.Is. Every typed error below unwraps to one.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnavailable      = errors.New("remote unavailable")
	ErrPartialWrite     = errors.New("partial write failure")
)

// ReasonSignInRequired is the PermissionDeniedError reason given to
// anonymous sessions.
const ReasonSignInRequired = "sign in required"

// withReason formats "<head>: <reason>", or just head when reason is empty.
func withReason(head, reason string) string {
	if reason == "" {
		return head
	}

	return head + ": " + reason
}

// NotFoundError is an explicit lookup that found nothing. Reads of missing
// tree paths return empty snapshots instead.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError is a conditional write on Path that lost to a concurrent
// writer.
type ConflictError struct {
	Path   string
	Reason string
}

func (e *ConflictError) Error() string { return withReason("conflict at "+e.Path, e.Reason) }

func (e *ConflictError) Unwrap() error { return ErrConflict }

func NewConflictError(path, reason string) error {
	return &ConflictError{Path: path, Reason: reason}
}

// ValidationError is caller input that broke a rule. Value, when set, is
// the rejected input and is only for logs.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}

	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// PermissionDeniedError is an operation the session may not perform: a
// write by an anonymous session, or a change to another user's quote.
type PermissionDeniedError struct {
	Operation string
	Reason    string
}

func (e *PermissionDeniedError) Error() string {
	return withReason(e.Operation+": permission denied", e.Reason)
}

func (e *PermissionDeniedError) Unwrap() error { return ErrPermissionDenied }

func NewPermissionDeniedError(operation, reason string) error {
	return &PermissionDeniedError{Operation: operation, Reason: reason}
}

// NewAnonymousError refuses operation for a session with no user.
func NewAnonymousError(operation string) error {
	return &PermissionDeniedError{Operation: operation, Reason: ReasonSignInRequired}
}

// UnavailableError is a remote call that could not complete.
type UnavailableError struct {
	Backend string
	Reason  string
}

func (e *UnavailableError) Error() string { return withReason(e.Backend+" unavailable", e.Reason) }

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

func NewUnavailableError(backend, reason string) error {
	return &UnavailableError{Backend: backend, Reason: reason}
}

// PartialWriteError is a multi-path write where some paths landed and some
// did not. Cause is the failure of the first failed path.
type PartialWriteError struct {
	Operation string
	Written   []string
	Failed    []string
	Cause     error
}

func (e *PartialWriteError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s partially applied: wrote [%s], failed [%s]",
		e.Operation, strings.Join(e.Written, ", "), strings.Join(e.Failed, ", "))

	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}

	return b.String()
}

// Unwrap matches both ErrPartialWrite and the cause.
func (e *PartialWriteError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrPartialWrite}
	}

	return []error{ErrPartialWrite, e.Cause}
}

func NewPartialWriteError(operation string, written, failed []string, cause error) error {
	return &PartialWriteError{Operation: operation, Written: written, Failed: failed, Cause: cause}
}

func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool         { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool       { return errors.Is(err, ErrValidation) }
func IsPermissionDenied(err error) bool { return errors.Is(err, ErrPermissionDenied) }
func IsUnavailable(err error) bool      { return errors.Is(err, ErrUnavailable) }
func IsPartialWrite(err error) bool     { return errors.Is(err, ErrPartialWrite) }

// IsAnonymous reports whether err refused a session with no user.
func IsAnonymous(err error) bool {
	var pd *PermissionDeniedError
	return errors.As(err, &pd) && pd.Reason == ReasonSignInRequired
}

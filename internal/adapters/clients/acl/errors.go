package acl

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/go-sqlite"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
	"github.com/jsamuelsen/quotehub-sync/internal/domain"
)

// SQLite result codes the mapping cares about.
const (
	sqliteBusy       = 5
	sqliteLocked     = 6
	sqliteConstraint = 19
)

// MapTreeError maps a client or backend failure to a domain error.
//
// Parameters:
//   - err: the error from the tree client (nil maps to nil)
//   - backend: the backend name for error context
//   - operation: what was being done (e.g., "set", "subscribe")
//   - path: the tree path involved
func MapTreeError(err error, backend, operation, path string) error {
	if err == nil {
		return nil
	}

	if isDomainError(err) {
		return err
	}

	// the caller went away; nothing is wrong with the backend
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", operation, path, err)
	}

	switch {
	case errors.Is(err, tree.ErrInvalidPath):
		return domain.NewValidationErrorWithValue("path", err.Error(), path)

	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(backend,
			fmt.Sprintf("circuit breaker open during %s", operation))

	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(backend,
			fmt.Sprintf("max retries exceeded during %s of %s", operation, path))

	case errors.Is(err, tree.ErrClosed),
		errors.Is(err, redis.ErrClosed),
		errors.Is(err, nats.ErrConnectionClosed):
		return domain.NewUnavailableError(backend, "backend closed")

	case errors.Is(err, nats.ErrNoServers), errors.Is(err, nats.ErrTimeout):
		return domain.NewUnavailableError(backend,
			fmt.Sprintf("change bus unreachable during %s", operation))

	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewUnavailableError(backend,
			fmt.Sprintf("%s of %s timed out", operation, path))
	}

	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		return mapSQLiteError(sqlErr, backend, operation, path)
	}

	var redisErr redis.Error
	if errors.As(err, &redisErr) {
		return domain.NewUnavailableError(backend,
			fmt.Sprintf("%s of %s rejected: %s", operation, path, redisErr.Error()))
	}

	return domain.NewUnavailableError(backend, fmt.Sprintf("%s of %s failed: %v", operation, path, err))
}

func mapSQLiteError(err *sqlite.Error, backend, operation, path string) error {
	switch err.Code() & 0xff {
	case sqliteBusy, sqliteLocked:
		return domain.NewUnavailableError(backend, fmt.Sprintf("database busy during %s", operation))
	case sqliteConstraint:
		return domain.NewConflictError(path, err.Error())
	default:
		return domain.NewUnavailableError(backend, fmt.Sprintf("%s of %s failed: %v", operation, path, err))
	}
}

func isDomainError(err error) bool {
	return domain.IsNotFound(err) ||
		domain.IsConflict(err) ||
		domain.IsValidation(err) ||
		domain.IsPermissionDenied(err) ||
		domain.IsUnavailable(err) ||
		domain.IsPartialWrite(err)
}

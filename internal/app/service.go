// Package app contains the quote synchronization engine: the components that
// read and mutate quotes, likes, and activity against the remote tree.
// This is the application layer in Clean Architecture; it coordinates domain
// rules and the tree through ports.
//
// Application Layer Responsibilities:
//   - Orchestrate multi-path tree writes and their rollback
//   - Own live per-user state fed by subscriptions
//   - Enforce the anonymous read-only rule
//
// What does NOT belong here:
//   - HTTP specifics (that's adapters/http)
//   - Backend errors and wire formats (that's adapters/clients/acl)
//   - Entity rules (that's the domain layer)
package app

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/quotehub-sync/internal/domain"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/logging"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// anonymousSession is used when no SessionContext is configured.
type anonymousSession struct{}

func (anonymousSession) CurrentUserID(context.Context) (string, bool) { return "", false }
func (anonymousSession) OnAuthChange(func(ports.AuthEvent)) func()    { return func() {} }

func sessionOrAnonymous(s ports.SessionContext) ports.SessionContext {
	if s == nil {
		return anonymousSession{}
	}

	return s
}

// requireUser returns the session user or PermissionDenied for anonymous
// callers. Every write goes through it.
func requireUser(ctx context.Context, s ports.SessionContext, operation string) (string, error) {
	uid, ok := s.CurrentUserID(ctx)
	if !ok {
		return "", domain.NewAnonymousError(operation)
	}

	return uid, nil
}

// loggerFor prefers the request logger so request and user ids are attached.
func loggerFor(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	return logging.FromContextOr(ctx, fallback)
}

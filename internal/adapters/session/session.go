// Package session implements ports.SessionContext.
//
// The acting user travels on the request context; the HTTP middleware puts it
// there after checking gateway headers or a bearer token. Sign-in and
// sign-out are broadcast to OnAuthChange listeners so long-lived per-user
// state (like views) can be torn down when its owner leaves.
package session

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/jsamuelsen/quotehub-sync/internal/platform/logging"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

type ctxKey struct{}

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Email  string
}

// WithIdentity returns a context carrying id. It also tags the context
// logger with the user id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, ctxKey{}, id)
	return logging.WithUserID(ctx, id.UserID)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}

	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}

	return id, true
}

// Manager is the process-wide session context.
type Manager struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(ports.AuthEvent)
	logger    *slog.Logger
}

var _ ports.SessionContext = (*Manager)(nil)

// NewManager creates a session manager. A nil logger uses slog.Default().
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		listeners: make(map[int]func(ports.AuthEvent)),
		logger:    logger.With(slog.String("component", "session")),
	}
}

// CurrentUserID returns the user on ctx.
func (m *Manager) CurrentUserID(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.UserID, ok
}

// OnAuthChange registers fn. Listeners run synchronously in registration
// order; they must not call back into OnAuthChange.
func (m *Manager) OnAuthChange(fn func(ports.AuthEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	var once sync.Once

	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// SignIn announces that uid signed in.
func (m *Manager) SignIn(ctx context.Context, uid string) {
	m.emit(ctx, ports.AuthEvent{UserID: uid, SignedIn: true})
}

// SignOut announces that uid signed out.
func (m *Manager) SignOut(ctx context.Context, uid string) {
	m.emit(ctx, ports.AuthEvent{UserID: uid})
}

func (m *Manager) emit(ctx context.Context, ev ports.AuthEvent) {
	m.mu.Lock()
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	fns := make([]func(ports.AuthEvent), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, m.listeners[id])
	}
	m.mu.Unlock()

	m.logger.DebugContext(ctx, "auth change",
		slog.String("user_id", ev.UserID),
		slog.Bool("signed_in", ev.SignedIn),
		slog.Int("listeners", len(fns)),
	)

	for _, fn := range fns {
		fn(ev)
	}
}

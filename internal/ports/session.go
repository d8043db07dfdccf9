package ports

import "context"

// AuthEvent reports a sign-in or sign-out.
type AuthEvent struct {
	UserID   string
	SignedIn bool
}

// SessionContext supplies the acting user. Authentication itself happens
// elsewhere; the engine only sees a user id or its absence, and treats
// absence as an anonymous read-only session.
type SessionContext interface {
	// CurrentUserID returns the signed-in user for ctx, or false.
	CurrentUserID(ctx context.Context) (string, bool)

	// OnAuthChange registers fn for auth transitions and returns a function
	// that removes the registration.
	OnAuthChange(fn func(AuthEvent)) (unsubscribe func())
}

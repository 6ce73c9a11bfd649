package ports

import (
	"context"

	"github.com/sportsfed/console-gateway/internal/core/domain"
)

// SessionReader is the read-only session view the route guard depends on.
type SessionReader interface {
	State() domain.SessionState
	CurrentUser() *domain.User
	IsAuthenticated() bool
	Loading() bool
}

// SessionManager owns the authentication lifecycle: restore at boot, login,
// logout, and forced invalidation on unauthorized responses.
type SessionManager interface {
	SessionReader

	// Restore runs once at process start and resolves the persisted session,
	// leaving the manager Authenticated or Anonymous. It never fails hard:
	// unusable persisted state resolves to Anonymous with an empty store.
	Restore(ctx context.Context)

	// Login authenticates against the upstream API. A transport success whose
	// role metadata lacks an authorised role is returned as a 403-shaped
	// error and establishes nothing.
	Login(ctx context.Context, email, password string) (*domain.User, error)

	// Register creates an upstream account. It never establishes a session.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Logout tears the session down unconditionally; the upstream logout call
	// is best effort and its failure is never surfaced.
	Logout(ctx context.Context)

	// Invalidate forcibly ends the session: store cleared, state Anonymous,
	// one invalidation event emitted.
	Invalidate(reason domain.InvalidationReason)

	// Invalidations delivers one event per forced or voluntary session
	// teardown, for subscribers that turn state changes into navigation.
	Invalidations() <-chan domain.InvalidationReason
}

package domain

import (
	"errors"
	"time"
)

// SessionState is the lifecycle state of the operator session.
//
//	Uninitialized → Restoring → {Authenticated, Anonymous}
//	Authenticated → Anonymous   (logout or forced invalidation)
type SessionState string

const (
	StateUninitialized SessionState = "uninitialized"
	StateRestoring     SessionState = "restoring"
	StateAuthenticated SessionState = "authenticated"
	StateAnonymous     SessionState = "anonymous"
)

// Session is the authenticated-operator state held between login and
// logout/invalidation. ExpiresAt is zero when the token carries no usable
// expiry claim.
type Session struct {
	Token     string
	User      *User
	ExpiresAt time.Time
}

// Expired reports whether the session carries an expiry that has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// InvalidationReason labels why an established session was torn down.
type InvalidationReason string

const (
	InvalidationLogout       InvalidationReason = "logout"
	InvalidationUnauthorized InvalidationReason = "unauthorized"
	InvalidationExpired      InvalidationReason = "expired"
)

var ErrNotAuthenticated = errors.New("no authenticated session")
var ErrRoleNotAuthorized = errors.New("not authorized to access this application")

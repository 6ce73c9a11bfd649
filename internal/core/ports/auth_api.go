package ports

import (
	"context"

	"github.com/sportsfed/console-gateway/internal/core/domain"
)

// LoginResult is the outcome of a successful upstream login call. Roles
// carries the raw role names from the response metadata; the session manager
// decides whether any of them authorises console access.
type LoginResult struct {
	Token string
	User  *domain.User
	Roles []string
}

// RegisterInput is the payload for upstream account registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthAPI is the upstream authentication surface consumed by the session
// manager.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Logout(ctx context.Context) error
}

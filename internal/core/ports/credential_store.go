package ports

import (
	"context"

	"github.com/sportsfed/console-gateway/internal/core/domain"
)

// Credentials is the persisted token/user pair mirrored by the store.
type Credentials struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// CredentialStore persists the session across process restarts.
//
// Save must be atomic with respect to a concurrent Load: a reader never
// observes a token without its paired user, or vice versa. Load fails soft:
// absent or malformed data yields (nil, nil), and malformed data is cleared
// as a side effect rather than surfaced as an error.
type CredentialStore interface {
	Save(ctx context.Context, token string, user *domain.User) error
	Load(ctx context.Context) (*Credentials, error)
	Clear(ctx context.Context) error
}

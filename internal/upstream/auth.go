package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sportsfed/console-gateway/internal/core/domain"
	"github.com/sportsfed/console-gateway/internal/core/ports"
)

// loginResponse is the one endpoint that does not use the {data,meta}
// envelope: the token sits at the top level and the user fields live in meta.
type loginResponse struct {
	AccessToken string   `json:"access_token"`
	Meta        userMeta `json:"meta"`
}

type userMeta struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Avatar      string    `json:"avatar"`
	Permissions []string  `json:"permissions"`
	Roles       []roleRef `json:"roles"`
}

type roleRef struct {
	RoleName string `json:"role_name"`
}

// Login authenticates against POST /auth/login. The returned user is built
// at the boundary: the access type is the first role name that matches a
// known tier, defaulting to the least privileged tier: a payload with
// missing or unknown roles is never upgraded.
func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	payload := map[string]string{"email": email, "password": password}

	raw, err := c.roundTrip(ctx, http.MethodPost, "/auth/login", payload)
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &RequestError{
			StatusCode: http.StatusOK,
			StatusText: http.StatusText(http.StatusOK),
			Message:    fmt.Sprintf("malformed login response: %v", err),
			RawPayload: raw,
		}
	}

	roles := make([]string, 0, len(resp.Meta.Roles))
	for _, r := range resp.Meta.Roles {
		roles = append(roles, r.RoleName)
	}

	return &ports.LoginResult{
		Token: resp.AccessToken,
		User:  resp.Meta.toUser(),
		Roles: roles,
	}, nil
}

// Register creates an upstream account via POST /auth/register and returns
// the created user. It never touches the credential store.
func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	payload := map[string]string{
		"name":     in.Name,
		"email":    in.Email,
		"password": in.Password,
	}

	var meta userMeta
	if err := c.Post(ctx, "/auth/register", payload, &meta); err != nil {
		return nil, err
	}
	return meta.toUser(), nil
}

// Logout notifies the upstream API via POST /auth/logout. The session manager
// treats this as best effort and tears the session down regardless.
func (c *Client) Logout(ctx context.Context) error {
	return c.Post(ctx, "/auth/logout", nil, nil)
}

func (m userMeta) toUser() *domain.User {
	return &domain.User{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		AccessType:  accessTypeFromRoles(m.Roles),
		Permissions: m.Permissions,
		Avatar:      m.Avatar,
	}
}

func accessTypeFromRoles(roles []roleRef) domain.AccessType {
	for _, r := range roles {
		if at := domain.ParseAccessType(r.RoleName); string(at) == r.RoleName {
			return at
		}
	}
	return domain.AccessUser
}

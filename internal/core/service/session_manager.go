package service

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/sportsfed/console-gateway/internal/core/domain"
	"github.com/sportsfed/console-gateway/internal/core/ports"
)

const invalidationBuffer = 16

// SessionManager owns the operator session lifecycle:
//
//	Uninitialized → Restoring → {Authenticated, Anonymous}
//
// with transitions back to Anonymous on logout or forced invalidation. It is
// the only writer of the credential store besides the pipeline's 401 clear.
type SessionManager struct {
	store ports.CredentialStore
	api   ports.AuthAPI
	audit ports.AuditRecorder
	log   zerolog.Logger

	mu      sync.Mutex
	state   domain.SessionState
	session *domain.Session

	invalidations chan domain.InvalidationReason
}

// NewSessionManager wires the manager over its collaborators. A nil audit
// recorder disables the audit trail.
func NewSessionManager(store ports.CredentialStore, api ports.AuthAPI, audit ports.AuditRecorder, log zerolog.Logger) *SessionManager {
	if audit == nil {
		audit = nopAudit{}
	}
	return &SessionManager{
		store:         store,
		api:           api,
		audit:         audit,
		log:           log,
		state:         domain.StateUninitialized,
		invalidations: make(chan domain.InvalidationReason, invalidationBuffer),
	}
}

// Restore resolves the persisted session once at process start. A well-formed
// unexpired pair yields Authenticated; an absent, malformed, or expired one
// yields Anonymous with an empty store. It never fails hard.
func (m *SessionManager) Restore(ctx context.Context) {
	m.setState(domain.StateRestoring)

	creds, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("credential restore failed, starting anonymous")
	}
	if err != nil || creds == nil {
		m.setAnonymous()
		return
	}

	session := &domain.Session{
		Token:     creds.Token,
		User:      creds.User,
		ExpiresAt: tokenExpiry(creds.Token),
	}
	if session.Expired(time.Now()) {
		m.log.Info().Str("email", creds.User.Email).Msg("persisted session expired, discarding")
		m.teardown(ctx, domain.InvalidationExpired)
		return
	}

	m.mu.Lock()
	m.session = session
	m.state = domain.StateAuthenticated
	m.mu.Unlock()
	m.log.Info().Str("email", creds.User.Email).Msg("session restored")
}

// Login authenticates against the upstream API. Only the super_admin tier may
// use this console: a transport success whose role metadata lacks it is
// rejected with ErrRoleNotAuthorized and establishes nothing. The HTTP layer
// maps that sentinel to a 403, so to the caller an unauthorised login looks
// like any other rejected request.
func (m *SessionManager) Login(ctx context.Context, email, password string) (*domain.User, error) {
	res, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.audit.Record(domain.AuditEvent{
			Actor:     email,
			Action:    domain.AuditLoginFailed,
			Timestamp: time.Now().UTC(),
		})
		return nil, err
	}

	if !hasRole(res.Roles, domain.AccessSuperAdmin) {
		m.audit.Record(domain.AuditEvent{
			Actor:     email,
			Action:    domain.AuditLoginDenied,
			Detail:    "missing super_admin role",
			Timestamp: time.Now().UTC(),
		})
		return nil, domain.ErrRoleNotAuthorized
	}

	if err := m.store.Save(ctx, res.Token, res.User); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.session = &domain.Session{
		Token:     res.Token,
		User:      res.User,
		ExpiresAt: tokenExpiry(res.Token),
	}
	m.state = domain.StateAuthenticated
	m.mu.Unlock()

	m.audit.Record(domain.AuditEvent{
		Actor:     res.User.Email,
		Action:    domain.AuditLogin,
		Timestamp: time.Now().UTC(),
	})
	m.log.Info().Str("email", res.User.Email).Msg("operator logged in")
	return res.User, nil
}

// Register creates an upstream account. It never establishes a session.
func (m *SessionManager) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return m.api.Register(ctx, in)
}

// Logout tears the session down unconditionally. The upstream logout call is
// best effort: its failure is logged and swallowed, and the store is cleared
// and the state moved to Anonymous regardless of the outcome.
func (m *SessionManager) Logout(ctx context.Context) {
	actor := m.currentEmail()

	if err := m.api.Logout(ctx); err != nil {
		m.log.Warn().Err(err).Msg("upstream logout failed, clearing session anyway")
	}

	m.teardown(ctx, domain.InvalidationLogout)
	m.audit.Record(domain.AuditEvent{
		Actor:     actor,
		Action:    domain.AuditLogout,
		Timestamp: time.Now().UTC(),
	})
}

// Invalidate forcibly ends the session. The order is fixed: store cleared,
// state Anonymous, then exactly one event emitted; subscribers turn the
// state change into navigation. Wired as the pipeline's 401 hook.
func (m *SessionManager) Invalidate(reason domain.InvalidationReason) {
	actor := m.currentEmail()
	m.teardown(context.Background(), reason)
	m.audit.Record(domain.AuditEvent{
		Actor:     actor,
		Action:    domain.AuditInvalidation,
		Detail:    string(reason),
		Timestamp: time.Now().UTC(),
	})
}

// Invalidations delivers one event per session teardown. The channel is
// buffered and sends never block; with no subscriber, events are dropped.
func (m *SessionManager) Invalidations() <-chan domain.InvalidationReason {
	return m.invalidations
}

// CurrentUser returns the authenticated operator, or nil.
func (m *SessionManager) CurrentUser() *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	return m.session.User
}

func (m *SessionManager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == domain.StateAuthenticated
}

func (m *SessionManager) State() domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Loading is true until Restore has resolved.
func (m *SessionManager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == domain.StateUninitialized || m.state == domain.StateRestoring
}

func (m *SessionManager) teardown(ctx context.Context, reason domain.InvalidationReason) {
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn().Err(err).Msg("clearing credential store failed")
	}

	m.mu.Lock()
	m.session = nil
	m.state = domain.StateAnonymous
	m.mu.Unlock()

	select {
	case m.invalidations <- reason:
	default:
	}
}

func (m *SessionManager) currentEmail() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil || m.session.User == nil {
		return ""
	}
	return m.session.User.Email
}

func (m *SessionManager) setState(s domain.SessionState) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *SessionManager) setAnonymous() {
	m.mu.Lock()
	m.session = nil
	m.state = domain.StateAnonymous
	m.mu.Unlock()
}

func hasRole(roles []string, want domain.AccessType) bool {
	for _, r := range roles {
		if r == string(want) {
			return true
		}
	}
	return false
}

// tokenExpiry decodes the exp claim from a JWT access token without verifying
// the signature: the console only needs the expiry to avoid restoring a dead
// session. Opaque tokens yield a zero time (no known expiry).
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// nopAudit discards events when no audit backend is configured.
type nopAudit struct{}

func (nopAudit) Record(domain.AuditEvent) {}

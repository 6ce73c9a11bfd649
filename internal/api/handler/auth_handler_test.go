package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sportsfed/console-gateway/internal/core/domain"
	"github.com/sportsfed/console-gateway/internal/core/ports"
	"github.com/sportsfed/console-gateway/internal/upstream"
)

type stubSessionManager struct {
	state       domain.SessionState
	user        *domain.User
	loginErr    error
	logoutCalls int
}

func (s *stubSessionManager) State() domain.SessionState { return s.state }
func (s *stubSessionManager) CurrentUser() *domain.User  { return s.user }
func (s *stubSessionManager) IsAuthenticated() bool      { return s.state == domain.StateAuthenticated }
func (s *stubSessionManager) Loading() bool              { return s.state == domain.StateRestoring }
func (s *stubSessionManager) Restore(context.Context)    {}

func (s *stubSessionManager) Login(_ context.Context, email, _ string) (*domain.User, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	s.state = domain.StateAuthenticated
	s.user = &domain.User{Email: email, AccessType: domain.AccessSuperAdmin}
	return s.user, nil
}

func (s *stubSessionManager) Register(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
	return &domain.User{Name: in.Name, Email: in.Email, AccessType: domain.AccessUser}, nil
}

func (s *stubSessionManager) Logout(context.Context) {
	s.logoutCalls++
	s.state = domain.StateAnonymous
	s.user = nil
}

func (s *stubSessionManager) Invalidate(domain.InvalidationReason) {}

func (s *stubSessionManager) Invalidations() <-chan domain.InvalidationReason {
	return make(chan domain.InvalidationReason)
}

func newAuthContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_LoginSuccess(t *testing.T) {
	sessions := &stubSessionManager{state: domain.StateAnonymous}
	h := NewAuthHandler(sessions)

	c, rec := newAuthContext(t, http.MethodPost, "/login?next=%2Fapi%2Fusers",
		`{"email":"root@fed.example","password":"pw"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"root@fed.example"`) {
		t.Fatalf("response missing user: %s", body)
	}
	if !strings.Contains(body, `"redirect_to":"/api/users"`) {
		t.Fatalf("response missing return path: %s", body)
	}
}

func TestAuthHandler_LoginValidation(t *testing.T) {
	h := NewAuthHandler(&stubSessionManager{state: domain.StateAnonymous})

	c, _ := newAuthContext(t, http.MethodPost, "/login", `{"email":"not-an-email"}`)
	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", he.Code)
	}
}

func TestAuthHandler_LoginErrorPassedThrough(t *testing.T) {
	sessions := &stubSessionManager{
		state: domain.StateAnonymous,
		loginErr: &upstream.RequestError{
			StatusCode: http.StatusForbidden,
			Message:    "not authorized to access this application",
		},
	}
	h := NewAuthHandler(sessions)

	c, _ := newAuthContext(t, http.MethodPost, "/login", `{"email":"mgr@fed.example","password":"pw"}`)
	err := h.Login(c)
	re, ok := err.(*upstream.RequestError)
	if !ok {
		t.Fatalf("expected *upstream.RequestError, got %T", err)
	}
	if re.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", re.StatusCode)
	}
}

func TestAuthHandler_LogoutAlwaysSucceeds(t *testing.T) {
	sessions := &stubSessionManager{state: domain.StateAuthenticated,
		user: &domain.User{Email: "root@fed.example"}}
	h := NewAuthHandler(sessions)

	c, rec := newAuthContext(t, http.MethodPost, "/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout handler: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if sessions.logoutCalls != 1 {
		t.Fatalf("logout called %d times, want 1", sessions.logoutCalls)
	}
}

func TestAuthHandler_SessionReflectsState(t *testing.T) {
	sessions := &stubSessionManager{state: domain.StateRestoring}
	h := NewAuthHandler(sessions)

	c, rec := newAuthContext(t, http.MethodGet, "/session", "")
	if err := h.Session(c); err != nil {
		t.Fatalf("Session handler: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"loading":true`) {
		t.Fatalf("expected loading=true, got %s", body)
	}
	if !strings.Contains(body, `"authenticated":false`) {
		t.Fatalf("expected authenticated=false, got %s", body)
	}
}

func TestReturnPath_RejectsAbsoluteTargets(t *testing.T) {
	cases := map[string]string{
		"/api/users":              "/api/users",
		"":                        "",
		"https://evil.example":    "",
		"//evil.example":          "",
		"/login":                  "",
		"relative-without-slash":  "",
	}
	for in, want := range cases {
		if got := returnPath(in); got != want {
			t.Fatalf("returnPath(%q) = %q, want %q", in, got, want)
		}
	}
}

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sportsfed/console-gateway/internal/core/domain"
	"github.com/sportsfed/console-gateway/internal/upstream"
)

func render(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)
	return rec
}

func TestErrorHandler_RequestErrorKeepsStatusAndKind(t *testing.T) {
	rec := render(t, &upstream.RequestError{
		StatusCode: http.StatusUnprocessableEntity,
		Message:    "name is required",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"name is required"`) || !strings.Contains(body, `"validation"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestErrorHandler_ConnectionErrorIsBadGateway(t *testing.T) {
	rec := render(t, &upstream.RequestError{Message: "dial tcp: connection refused"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"connection"`) {
		t.Fatalf("expected connection kind: %s", rec.Body.String())
	}
}

func TestErrorHandler_RoleNotAuthorizedIsForbidden(t *testing.T) {
	rec := render(t, domain.ErrRoleNotAuthorized)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "not authorized to access this application") || !strings.Contains(body, `"authorization"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestErrorHandler_UnexpectedErrorIsOpaque(t *testing.T) {
	rec := render(t, errors.New("pq: credentials table missing"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "credentials table") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestErrorHandler_EchoErrorsPassThrough(t *testing.T) {
	rec := render(t, echo.NewHTTPError(http.StatusBadRequest, "invalid payload"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

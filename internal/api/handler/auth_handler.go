package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sportsfed/console-gateway/internal/api/metrics"
	"github.com/sportsfed/console-gateway/internal/api/middleware"
	"github.com/sportsfed/console-gateway/internal/core/domain"
	"github.com/sportsfed/console-gateway/internal/core/ports"
)

// AuthHandler exposes the session lifecycle to the console UI.
type AuthHandler struct {
	sessions ports.SessionManager
}

func NewAuthHandler(sessions ports.SessionManager) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	User       *domain.User `json:"user"`
	RedirectTo string       `json:"redirect_to,omitempty"`
}

type sessionResponse struct {
	User          *domain.User `json:"user"`
	Loading       bool         `json:"loading"`
	Authenticated bool         `json:"authenticated"`
}

// Login authenticates the operator and establishes the session.
//
// @Summary      Log in to the console
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Operator credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		result := "failed"
		if errors.Is(err, domain.ErrRoleNotAuthorized) {
			result = "denied_role"
		}
		metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, loginResponse{
		User:       user,
		RedirectTo: returnPath(c.QueryParam("next")),
	})
}

// Register creates a new upstream account without establishing a session.
//
// @Summary      Register a federation account
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.sessions.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{"user": user})
}

// Logout ends the session. It never fails from the caller's perspective.
//
// @Summary      Log out
// @Tags         session
// @Success      204
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Session reports the current session for the UI shell: the operator (or
// null), and whether restoration is still in flight.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, sessionResponse{
		User:          h.sessions.CurrentUser(),
		Loading:       h.sessions.Loading(),
		Authenticated: h.sessions.IsAuthenticated(),
	})
}

// returnPath validates a post-login return target: relative paths only, and
// never the login page itself.
func returnPath(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	if next == middleware.LoginPath {
		return ""
	}
	return next
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sportsfed/console-gateway/internal/core/domain"
	"github.com/sportsfed/console-gateway/internal/upstream"
)

// errorResponse is the canonical error envelope for the console surface. The
// kind label is the presentation hint the UI's adapter keys on (inline field
// detail, toast, empty state); classification itself lives in the pipeline.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Passes normalised upstream RequestErrors through with their status and
//     classification, so a caller-facing error keeps its single shape.
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Pipeline errors keep their status; a connection failure has no status
	// of its own and surfaces as a bad gateway.
	var re *upstream.RequestError
	if errors.As(err, &re) {
		code := re.StatusCode
		if re.Kind() == upstream.KindConnection {
			code = http.StatusBadGateway
		}
		return code, errorResponse{Error: re.Message, Kind: re.Kind().String()}
	}

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, errorResponse{Error: err.Error(), Kind: upstream.KindAuthorization.String()}
	case errors.Is(err, domain.ErrRoleNotAuthorized):
		return http.StatusForbidden, errorResponse{Error: err.Error(), Kind: upstream.KindAuthorization.String()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a RequestError for presentation policy. The pipeline
// only guarantees the shape; each screen-level caller decides how a kind is
// surfaced (inline detail, toast, empty state).
type ErrorKind int

const (
	// KindConnection: no response was received (network unreachable, timeout).
	KindConnection ErrorKind = iota
	// KindValidation: 4xx with field-level detail, surfaced inline.
	KindValidation
	// KindAuthorization: 401/403; a 401 also ends the session.
	KindAuthorization
	// KindNotFound: 404; no session impact.
	KindNotFound
	// KindServer: 5xx, generic retryable failure.
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// RequestError is the single normalised error shape surfaced to every caller
// of the pipeline, regardless of the underlying failure mode.
type RequestError struct {
	// StatusCode is zero when no response was received.
	StatusCode int
	StatusText string
	Message    string
	RawPayload json.RawMessage
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream: %s", e.Message)
	}
	return fmt.Sprintf("upstream: %d %s: %s", e.StatusCode, e.StatusText, e.Message)
}

// Kind classifies the error per the console's presentation taxonomy.
func (e *RequestError) Kind() ErrorKind {
	switch {
	case e.StatusCode == 0:
		return KindConnection
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return KindAuthorization
	case e.StatusCode == http.StatusNotFound:
		return KindNotFound
	case e.StatusCode >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

// errorBody is the upstream API's structured error envelope:
// {"errors":[{"rawErrors":[{"message":"..."}]}]}.
type errorBody struct {
	Errors []struct {
		RawErrors []struct {
			Message string `json:"message"`
		} `json:"rawErrors"`
	} `json:"errors"`
	Message string `json:"message"`
}

// newResponseError builds a RequestError from a non-2xx response. The message
// concatenates every field-level message found in the body; when the body
// carries none (or is not JSON at all) it falls back to the HTTP status text.
func newResponseError(statusCode int, body []byte) *RequestError {
	e := &RequestError{
		StatusCode: statusCode,
		StatusText: http.StatusText(statusCode),
		RawPayload: json.RawMessage(body),
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		var msgs []string
		for _, outer := range eb.Errors {
			for _, raw := range outer.RawErrors {
				if raw.Message != "" {
					msgs = append(msgs, raw.Message)
				}
			}
		}
		if len(msgs) == 0 && eb.Message != "" {
			msgs = append(msgs, eb.Message)
		}
		if len(msgs) > 0 {
			e.Message = strings.Join(msgs, "; ")
			return e
		}
	}

	e.Message = e.StatusText
	return e
}

// newConnectionError wraps a transport-level failure (dial error, timeout,
// cancelled context) where no response was received.
func newConnectionError(err error) *RequestError {
	return &RequestError{Message: err.Error()}
}

// Package upstream implements the request pipeline: the single choke point
// for every call the console makes to the federation API. It injects the
// bearer token, unwraps the transport envelope, normalises every failure mode
// into a RequestError, and tears the session down on a 401.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sportsfed/console-gateway/internal/api/metrics"
	"github.com/sportsfed/console-gateway/internal/core/ports"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
)

// Config captures the settings for the federation API client.
type Config struct {
	// BaseURL is the root of the federation API, e.g. "https://api.fed.example/v1".
	BaseURL string
	// Timeout is the fixed upper bound on call duration. Exceeding it yields
	// a connection-shaped RequestError. Defaults to 15s.
	Timeout time.Duration
}

// Client is the request pipeline. It reads the token from the credential
// store on every call and never retries: the upstream API has no idempotency
// keys, so blind retries of mutating calls are unsafe.
type Client struct {
	base           string
	http           *http.Client
	store          ports.CredentialStore
	log            zerolog.Logger
	onUnauthorized func()
}

// NewClient builds a pipeline over the given credential store. The store is
// only ever read here; writes stay with the session manager (and the 401
// clear below).
func NewClient(cfg Config, store ports.CredentialStore, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		http:  &http.Client{Timeout: timeout},
		store: store,
		log:   log,
	}
}

// OnUnauthorized registers the hook invoked once per distinct 401 response,
// after the credential store has been cleared. The session manager wires its
// Invalidate here so that navigation follows from state, not from a side
// effect buried in the pipeline.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// Envelope is the transport wrapper every generic resource endpoint returns.
type Envelope struct {
	Data json.RawMessage `json:"data"`
	Meta json.RawMessage `json:"meta,omitempty"`
}

// Do performs a call and returns the raw envelope, for callers that need the
// meta block (pagination). Most callers want Get/Post/Put/Delete instead.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Envelope, error) {
	raw, err := c.roundTrip(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &Envelope{}, nil
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &RequestError{
			StatusCode: http.StatusOK,
			StatusText: http.StatusText(http.StatusOK),
			Message:    fmt.Sprintf("malformed response body: %v", err),
			RawPayload: raw,
		}
	}
	return &env, nil
}

// Get fetches a resource and decodes the envelope's data block into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.call(ctx, http.MethodGet, path, nil, out)
}

// Post sends body and decodes the envelope's data block into out (out may be
// nil when the caller only cares about success).
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, http.MethodPost, path, body, out)
}

// Put sends body and decodes the envelope's data block into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, http.MethodPut, path, body, out)
}

// Delete removes a resource.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	env, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &RequestError{
			StatusCode: http.StatusOK,
			StatusText: http.StatusText(http.StatusOK),
			Message:    fmt.Sprintf("malformed response body: %v", err),
			RawPayload: env.Data,
		}
	}
	return nil
}

// roundTrip is the choke point: bearer injection, metrics, error
// normalisation, and the 401 side effect all happen here. On success it
// returns the raw response body.
func (c *Client) roundTrip(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, newConnectionError(fmt.Errorf("encode request body: %w", err))
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, newConnectionError(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Absence of a token simply omits the header; the pipeline never waits
	// for one to appear. A store failure degrades to an anonymous call, but
	// leaves a trace.
	creds, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).
			Msg("credential load failed, calling upstream unauthenticated")
	}
	if creds != nil && creds.Token != "" {
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	metrics.UpstreamRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(method, "error").Inc()
		c.log.Debug().Err(err).Str("method", method).Str("path", path).
			Dur("elapsed", elapsed).Msg("upstream call failed")
		return nil, newConnectionError(err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	c.log.Debug().Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("upstream call")

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, newConnectionError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx)
		return nil, newResponseError(resp.StatusCode, raw)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newResponseError(resp.StatusCode, raw)
	}
	return raw, nil
}

// handleUnauthorized runs the hard 401 invariant: store cleared first, then
// the session manager notified, exactly once per distinct 401. The caller
// still receives the RequestError afterwards.
func (c *Client) handleUnauthorized(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.log.Error().Err(err).Msg("clearing credentials after 401 failed")
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

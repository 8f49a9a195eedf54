// Package api is the HTTP client for the myToDo and Recipe backends.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/mytodo/internal/apperr"
)

// ErrUnauthorized is wrapped into errors for authenticated calls answered
// with 401. Callers treat it as an expired session.
var ErrUnauthorized = errors.New("api: unauthorized request")

const maxBody = 4 << 20

// TokenSource yields the bearer token for authenticated calls. It is asked
// on every request so a logout elsewhere takes effect immediately.
type TokenSource interface {
	Token() (string, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		tokens:  tokens,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// envelope is the shape of every backend response.
type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
}

type call struct {
	op          string
	method      string
	path        string
	auth        bool
	body        io.Reader
	contentType string
	fallback    string
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return bytes.NewReader(b), nil
}

// do performs r and decodes a successful body into out.
func (c *Client) do(ctx context.Context, r call, out any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("%s: %w", r.op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.method == http.MethodGet {
		req.Header.Set("Cache-Control", "no-cache")
	}
	if r.auth {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("%s: %w", r.op, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", r.op, ctx.Err())
		}
		c.logger.Warn("request failed", "op", r.op, "method", r.method, "path", r.path, "request_id", reqID, "err", err)
		return apperr.NewTransport(r.op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return apperr.NewTransport(r.op, err)
	}
	c.logger.Debug("request",
		"op", r.op, "method", r.method, "path", r.path,
		"status", resp.StatusCode, "request_id", reqID, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &payload)
		e := apperr.NewServer(r.op, resp.StatusCode, payload.Message, r.fallback)
		if r.auth && resp.StatusCode == http.StatusUnauthorized {
			e.Err = ErrUnauthorized
		}
		c.logger.Warn("request rejected", "op", r.op, "status", resp.StatusCode, "request_id", reqID)
		return e
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		e := apperr.NewServer(r.op, resp.StatusCode, "", r.fallback)
		e.Err = fmt.Errorf("decode response: %w", err)
		return e
	}
	return nil
}

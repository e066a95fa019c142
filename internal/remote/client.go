// Package remote talks to the optional spreadsheet-backed endpoint that
// mirrors harmony's project data.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/harmony/internal/model"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	contentType    = "text/plain;charset=utf-8"
)

var (
	// ErrUnauthorized indicates the endpoint rejected the request.
	ErrUnauthorized = errors.New("remote: unauthorized")
	// ErrRateLimited indicates the endpoint's quota was hit.
	ErrRateLimited = errors.New("remote: rate limited")
)

// Client posts actions to a single endpoint URL.
type Client struct {
	url     string
	http    *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds each call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for failed calls.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for url.
// Returns nil if the url is empty, which callers treat as local-only mode.
func NewClient(url string, opts ...Option) *Client {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	c := &Client{
		url:     url,
		http:    &http.Client{},
		timeout: defaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured URL.
func (c *Client) Endpoint() string {
	if c == nil {
		return ""
	}
	return c.url
}

// Call posts {"action": action, ...payload} and decodes the reply.
// It never returns an error; failures come back as Success=false.
func (c *Client) Call(ctx context.Context, action string, payload map[string]any) Response {
	if c == nil {
		return Response{Error: MsgNotConfigured}
	}

	body, err := c.post(ctx, action, payload)
	if err != nil {
		c.log.Warn().Err(err).Str("action", action).Msg("remote call failed")
		return Response{Error: MsgConnection, Err: err}
	}

	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		c.log.Warn().Err(err).Str("action", action).Msg("remote reply not json")
		return Response{Error: MsgBadResponse, Err: fmt.Errorf("remote: parsing reply: %w", err)}
	}

	resp := Response{Success: wire.Success, Error: wire.Error}
	if wire.Clients != nil {
		resp.Clients = make([]model.Client, 0, len(wire.Clients))
		for _, wc := range wire.Clients {
			resp.Clients = append(resp.Clients, wc.toModel())
		}
	}
	c.log.Debug().Str("action", action).Bool("success", resp.Success).Msg("remote call")
	return resp
}

// GetAllData fetches the remote list of active projects.
func (c *Client) GetAllData(ctx context.Context) Response {
	return c.Call(ctx, ActionGetAllData, nil)
}

// SaveClient upserts one project remotely.
func (c *Client) SaveClient(ctx context.Context, client model.Client) Response {
	return c.Call(ctx, ActionSaveClient, map[string]any{"client": client})
}

// ArchiveClient marks one project as archived remotely.
func (c *Client) ArchiveClient(ctx context.Context, id int64) Response {
	return c.Call(ctx, ActionArchiveClient, map[string]any{"clientId": id})
}

func (c *Client) post(ctx context.Context, action string, payload map[string]any) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msg := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		msg[k] = v
	}
	msg["action"] = action

	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("remote: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("remote: creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "harmony/1.0")
	req.Header.Set("X-Request-ID", uuid.NewString())

	//nolint:gosec // URL comes from user configuration
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("remote: reading response: %w", err)
	}
	return body, nil
}

// Package remote talks to the reminders endpoint: one authenticated POST per
// operation, bodies in the numeric-keyed shape handled by package wire.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/notexe/reminders-cli/internal/auth"
	"github.com/notexe/reminders-cli/internal/reminder"
	"github.com/notexe/reminders-cli/internal/wire"
)

// DefaultBaseURL is the endpoint prefix of the reminders service.
const DefaultBaseURL = "https://reminders-pa.clients6.google.com/v1internalOP/reminders"

// ContentType is required by the service on every request.
const ContentType = "application/json+protobuf"

// Op names a remote operation. Its value is also the endpoint path segment.
type Op string

const (
	OpCreate Op = "create"
	OpGet    Op = "get"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpList   Op = "list"
)

// Client performs reminder operations against the remote service. It keeps
// no state between calls; each method issues exactly one request and never
// retries.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	codec        *wire.Codec
	cursorOffset time.Duration
	logger       *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

func WithCodec(codec *wire.Codec) Option {
	return func(c *Client) {
		c.codec = codec
	}
}

// WithCursorOffset overrides DefaultCursorOffset.
func WithCursorOffset(d time.Duration) Option {
	return func(c *Client) {
		c.cursorOffset = d
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client. httpClient must attach credentials, normally the one
// returned by auth.Manager.Acquire.
func New(httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		httpClient:   httpClient,
		baseURL:      DefaultBaseURL,
		codec:        wire.NewCodec(),
		cursorOffset: DefaultCursorOffset,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create stores a new reminder under its locally generated id. Whether the
// service deduplicates a repeated create with the same id is unknown.
func (c *Client) Create(ctx context.Context, r reminder.Reminder) error {
	body, err := c.codec.EncodeCreate(r)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, OpCreate, body)
	return err
}

// Get fetches a reminder by id. A missing reminder yields nil, nil.
func (c *Client) Get(ctx context.Context, id string) (*reminder.Reminder, error) {
	body, err := c.codec.EncodeGet(id)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, OpGet, body)
	if err != nil {
		return nil, err
	}

	r, err := c.codec.DecodeGetResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", OpGet, id, err)
	}
	if r == nil {
		c.logger.Debug("reminder not found", zap.String("id", id))
	}
	return r, nil
}

// Update overwrites a reminder. r must have been read from the server, since
// the update carries its creation timestamp.
func (c *Client) Update(ctx context.Context, r reminder.Reminder) error {
	body, err := c.codec.EncodeUpdate(r)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, OpUpdate, body)
	return err
}

// Delete removes a reminder. Deleting an id twice is reported however the
// service reports it.
func (c *Client) Delete(ctx context.Context, id string) error {
	body, err := c.codec.EncodeDelete(id)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, OpDelete, body)
	return err
}

// Complete marks a reminder as done and returns the updated copy.
func (c *Client) Complete(ctx context.Context, id string) (*reminder.Reminder, error) {
	r, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%s %s: %w", OpUpdate, id, ErrNotFound)
	}

	done := r.WithDone(true)
	if err := c.Update(ctx, done); err != nil {
		return nil, err
	}
	return &done, nil
}

func (c *Client) endpoint(op Op) string {
	return c.baseURL + "/" + string(op)
}

func (c *Client) do(ctx context.Context, op Op, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(op), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", ContentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("op", string(op)), zap.Error(err))
		if errors.Is(err, auth.ErrAuthFailure) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("request complete",
		zap.String("op", string(op)),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("reminders API error",
			zap.String("op", string(op)),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return nil, &RemoteError{Op: op, StatusCode: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}

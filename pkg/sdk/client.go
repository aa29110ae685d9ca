// Package sdk provides the client-side library for the grid record service.
// It supports both a remote connection over HTTP and a local embedded store.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/celerix-dev/celerix-grid/internal/apierrors"
	"github.com/celerix-dev/celerix-grid/internal/observability"
	"github.com/celerix-dev/celerix-grid/pkg/filter"
	"github.com/celerix-dev/celerix-grid/pkg/schema"
	"go.uber.org/zap"
)

// maxBodySize caps how much of a record service response is read.
const maxBodySize = 4 << 20

// Config holds the remote client settings.
type Config struct {
	// BaseURL is the API root of the record service, e.g. http://localhost:7002/api.
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Client is a remote client for the record service.
// It implements the RecordStore interface.
type Client struct {
	cfg    Config
	base   *url.URL
	http   *http.Client
	logger *zap.Logger
}

// NewClient validates cfg and returns a client. No connection is made until the first call.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:    cfg,
		base:   base,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

func (c *Client) List(ctx context.Context, f filter.Spec) ([]schema.Record, error) {
	var records []schema.Record
	if err := c.do(ctx, "list", http.MethodGet, "/records", f.Query(""), nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []schema.Record{}
	}
	return records, nil
}

func (c *Client) Get(ctx context.Context, id int64) (schema.Record, error) {
	var record schema.Record
	err := c.do(ctx, "get", http.MethodGet, recordPath(id), nil, nil, &record)
	return record, err
}

func (c *Client) Create(ctx context.Context, in schema.NewRecord) (schema.Record, error) {
	var record schema.Record
	err := c.do(ctx, "create", http.MethodPost, "/records", nil, in, &record)
	return record, err
}

func (c *Client) UpdateField(ctx context.Context, id int64, field, value string) (schema.Record, error) {
	var record schema.Record
	body := schema.FieldUpdate{Field: field, Value: &value}
	err := c.do(ctx, "update", http.MethodPut, recordPath(id), nil, body, &record)
	return record, err
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, recordPath(id), nil, nil, nil)
}

// Ping checks the service health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/health", nil, nil, nil)
}

func recordPath(id int64) string {
	return "/records/" + strconv.FormatInt(id, 10)
}

// do performs one logical call. GET and PUT are retried with exponential backoff on
// transport failures and 5xx answers; other methods are attempted once.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
	}

	attempts := 1
	if method == http.MethodGet || method == http.MethodPut {
		attempts += c.cfg.MaxRetries
	}

	start := time.Now()
	var lastErr error
loop:
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.RetryBackoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				lastErr = &UpstreamError{Op: op, Err: ctx.Err()}
				break loop
			case <-time.After(backoff):
			}
		}

		var retry bool
		retry, lastErr = c.attempt(ctx, op, method, path, query, payload, out)
		if lastErr == nil || !retry {
			break
		}
		c.logger.Warn("record service call failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}

	outcome := "ok"
	if lastErr != nil {
		_, code := apierrors.Classify(lastErr)
		outcome = strings.ToLower(string(code))
		if errors.Is(lastErr, schema.ErrUpstreamUnavailable) {
			c.logger.Error("record service call failed", zap.String("op", op), zap.Error(lastErr))
		}
	}
	observability.RecordUpstream(op, outcome, time.Since(start))
	return lastErr
}

// attempt sends a single request and reports whether a failure is worth retrying.
func (c *Client) attempt(ctx context.Context, op, method, path string, query url.Values, payload []byte, out any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	u := *c.base
	u.Path += path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return false, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := observability.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(observability.RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return true, &UpstreamError{Op: op, Err: transportError(ctx, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return true, &UpstreamError{Op: op, Status: resp.StatusCode, Err: transportError(ctx, err)}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return false, nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return false, &UpstreamError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
		return false, nil
	case resp.StatusCode >= 500:
		return true, &UpstreamError{Op: op, Status: resp.StatusCode, Err: errors.New(errorMessage(raw, resp.Status))}
	}

	msg := errorMessage(raw, resp.Status)
	if sentinel := apierrors.FromStatus(resp.StatusCode); sentinel != nil {
		return false, fmt.Errorf("%w: %s", sentinel, strings.TrimPrefix(msg, sentinel.Error()+": "))
	}
	return false, &UpstreamError{Op: op, Status: resp.StatusCode, Err: errors.New(msg)}
}

// transportError makes a deadline visible to errors.Is(err, context.DeadlineExceeded)
// whichever timer fired first.
func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var ne net.Error
	if ctx.Err() == context.DeadlineExceeded || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

func errorMessage(raw []byte, fallback string) string {
	var resp apierrors.ErrorResponse
	if err := json.Unmarshal(raw, &resp); err == nil && resp.Error != "" {
		return resp.Error
	}
	return fallback
}

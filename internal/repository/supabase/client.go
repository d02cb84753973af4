// Package supabase implements repository.Store over the Supabase PostgREST API.
// Every call runs inside a circuit breaker with retry and backoff. The
// backend has no multi-request transactions, so the store is not atomic.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/segyhp/lendtrack/internal/repository"
	"github.com/segyhp/lendtrack/internal/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// StatusError is a non-2xx answer from PostgREST
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("supabase %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Client wraps HTTP calls to Supabase PostgREST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	cfg            resilience.Config
	logger         *zap.Logger
}

// NewClient creates a Supabase client. apiKey falls back to serviceRoleKey when empty.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	if apiKey == "" {
		apiKey = serviceRoleKey
	}
	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		cfg:            cfg,
		logger:         logger,
	}
}

// call runs fn inside the circuit breaker and the retry loop, recording
// failures on the span of ctx
func (c *Client) call(ctx context.Context, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, fn)
	})
	if err != nil {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return unwrapErr(err)
}

// doRequest executes an authenticated request to Supabase PostgREST.
// 4xx answers are permanent; 409 maps to repository.ErrDuplicate.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any, prefer string) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, resilience.Permanent(fmt.Errorf("encode %s body: %w", path, err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, resilience.Permanent(err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		statusErr := &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(respBody)}
		switch {
		case resp.StatusCode == http.StatusConflict:
			return nil, resilience.Permanent(fmt.Errorf("%w: %s", repository.ErrDuplicate, statusErr.Error()))
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, statusErr
		case resp.StatusCode < 500:
			return nil, resilience.Permanent(statusErr)
		default:
			return nil, statusErr
		}
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return respBody, nil
}

func (c *Client) doGet(ctx context.Context, path string, dest any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return resilience.Permanent(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

func (c *Client) doPost(ctx context.Context, table string, row any, prefer string) error {
	_, err := c.doRequest(ctx, http.MethodPost, table, row, prefer)
	return err
}

// doPatch returns the number of rows PostgREST reports as changed
func (c *Client) doPatch(ctx context.Context, path string, data map[string]any) (int, error) {
	body, err := c.doRequest(ctx, http.MethodPatch, path, data, "return=representation")
	if err != nil {
		return 0, err
	}
	return countRows(body)
}

// doDelete returns the number of rows removed
func (c *Client) doDelete(ctx context.Context, path string) (int, error) {
	body, err := c.doRequest(ctx, http.MethodDelete, path, nil, "return=representation")
	if err != nil {
		return 0, err
	}
	return countRows(body)
}

func countRows(body []byte) (int, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return 0, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, resilience.Permanent(fmt.Errorf("decode representation: %w", err))
	}
	return len(rows), nil
}

// Ping checks PostgREST answers with the configured keys
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Supabase.Ping")
	defer span.End()

	return c.call(ctx, func() error {
		var rows []json.RawMessage
		return c.doGet(ctx, "members?select=id&limit=1", &rows)
	})
}

// unwrapErr strips the retry marker so callers see repository sentinels directly
func unwrapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return repository.ErrDuplicate
	case errors.Is(err, repository.ErrNotFound):
		return repository.ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return repository.ErrConflict
	}
	return err
}

// AngelaMos | 2026
// client.go

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/templates/edition-console/internal/config"
	"github.com/carterperez-dev/templates/edition-console/internal/core"
)

const maxResponseBytes = 4 << 20

// Observer receives one observation per completed backend call.
type Observer interface {
	ObserveBackendRequest(endpoint, outcome string, d time.Duration)
}

type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	userAgent  string
	observer   Observer
	tracer     trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

func NewClient(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		userAgent:  cfg.UserAgent,
		tracer:     core.Tracer(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// call describes one REST call. Route is the templated path used for span
// names and metric labels; Path is the concrete path.
type call struct {
	Method string
	Route  string
	Path   string
	Token  string
	Body   any
}

func (c *Client) do(ctx context.Context, in call, out any) (err error) {
	endpoint := in.Method + " " + in.Route

	ctx, span := c.tracer.Start(ctx, "backend "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", in.Method),
			attribute.String("http.route", in.Route),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveBackendRequest(endpoint, core.Outcome(err), time.Since(start))
		}
		if err != nil {
			core.SetSpanError(ctx, err)
		}
	}()

	req, err := c.newRequest(ctx, in)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", endpoint, ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s: read body: %w: %w", endpoint, ErrRequestFailed, err)
	}

	return decodeEnvelope(in.Method, in.Path, resp.StatusCode, raw, out)
}

func (c *Client) newRequest(ctx context.Context, in call) (*http.Request, error) {
	var body io.Reader
	if in.Body != nil {
		payload, err := json.Marshal(in.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL.String() + in.Path

	req, err := http.NewRequestWithContext(ctx, in.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if in.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if in.Token != "" {
		req.Header.Set("Authorization", "Bearer "+in.Token)
	}

	core.InjectTraceHeaders(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

// Ping reports whether the backend answers HTTP at all; any status counts.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(pingCtx, http.MethodHead, c.baseURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend ping failed: %w", err)
	}
	_ = resp.Body.Close() //nolint:errcheck // HEAD has no body

	return nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func escapeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("missing id: %w", core.ErrInvalidInput)
	}
	return url.PathEscape(id), nil
}

// IsRequestFailure reports whether err came from a backend call rather than
// local validation.
func IsRequestFailure(err error) bool {
	return errors.Is(err, ErrRequestFailed)
}

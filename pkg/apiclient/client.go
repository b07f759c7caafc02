// Package apiclient is the HTTP transport for the identity provider API. It
// owns request encoding, authentication headers, request IDs, tracing, and
// metrics. It never retries: a failed call is returned to the caller as is.
package apiclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"idpclient/internal/platform/metrics"
	"idpclient/pkg/requestcontext"
)

const (
	// HeaderAPIKey authenticates admin calls with a static API key.
	HeaderAPIKey = "X-API-KEY"
	// HeaderRequestID correlates client and server logs.
	HeaderRequestID = "X-Request-ID"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "idpclient"
	tracerName       = "idpclient/pkg/apiclient"
)

// Client sends requests to one identity provider instance.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	apiKey      string
	bearerToken string
	userAgent   string
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

type Option func(c *Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request, including reading the response body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.bearerToken = token
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// New constructs a Client for baseURL, which must be absolute and should
// include any API prefix (e.g. "https://id.example.com/api").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

// Do sends req and returns the fully read response. Non-2xx replies come back
// as *RequestError; transport failures are wrapped with %w so context errors
// remain detectable.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	ctx, requestID := requestcontext.EnsureRequestID(ctx)
	ctx, span := c.tracer.Start(ctx, "idp."+req.Operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
			attribute.String("idp.request_id", requestID),
		),
	)
	defer span.End()

	start := time.Now()
	httpReq, err := c.newHTTPRequest(ctx, req, requestID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(req, 0, start)
		recordSpanError(span, err)
		c.logger.WarnContext(ctx, "identity provider request failed",
			"operation", req.Operation,
			"method", req.Method,
			"path", req.Path,
			"request_id", requestID,
			"error", err,
		)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.observe(req, resp.StatusCode, start)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("%s %s: read response body: %w", req.Method, req.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := newRequestError(req.Method, req.Path, resp.StatusCode, body, requestID)
		recordSpanError(span, reqErr)
		c.logger.WarnContext(ctx, "identity provider returned an error",
			"operation", req.Operation,
			"method", req.Method,
			"path", req.Path,
			"status", resp.StatusCode,
			"request_id", requestID,
			"duration", time.Since(start),
		)
		return nil, reqErr
	}

	c.logger.DebugContext(ctx, "identity provider request",
		"operation", req.Operation,
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request, requestID string) (*http.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	body, contentType, err := req.body()
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.Method, req.Path, err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(HeaderRequestID, requestID)
	if c.apiKey != "" {
		httpReq.Header.Set(HeaderAPIKey, c.apiKey)
	}
	if c.bearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}
	return httpReq, nil
}

func (c *Client) observe(req *Request, status int, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveRequest(req.Operation, req.Method, status, start)
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

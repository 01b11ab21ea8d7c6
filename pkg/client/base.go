package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/stoewer/go-strcase"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/makima-ai/makima-go/internal/version"
	"github.com/makima-ai/makima-go/pkg/client/api"
)

const (
	tracerName = "github.com/makima-ai/makima-go/pkg/client"

	// maxErrorBody bounds how much of an error response is kept
	maxErrorBody = 1 << 20
)

// Transport sends a single HTTP request. *http.Client satisfies it.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption represents a configuration option for the client
type ClientOption func(*BaseClient)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *BaseClient) {
		c.Transport = httpClient
	}
}

// WithTransport sets the transport used to send requests
func WithTransport(transport Transport) ClientOption {
	return func(c *BaseClient) {
		c.Transport = transport
	}
}

// WithLogger sets the logger. Requests are logged at V(1).
func WithLogger(logger logr.Logger) ClientOption {
	return func(c *BaseClient) {
		c.Logger = logger
	}
}

// WithMetrics records every call in the given collectors
func WithMetrics(metrics *Metrics) ClientOption {
	return func(c *BaseClient) {
		c.metrics = metrics
	}
}

// WithTracerProvider sets the provider of the tracer that spans each call.
// The global provider is used by default.
func WithTracerProvider(provider trace.TracerProvider) ClientOption {
	return func(c *BaseClient) {
		c.tracer = provider.Tracer(tracerName)
	}
}

// WithHeader adds a static header to every request, e.g. an Authorization
// header required by a gateway in front of the service
func WithHeader(key, value string) ClientOption {
	return func(c *BaseClient) {
		c.Header.Add(key, value)
	}
}

// BaseClient contains the shared HTTP functionality used by all sub-clients
type BaseClient struct {
	BaseURL   string
	Transport Transport
	Logger    logr.Logger
	Header    http.Header

	metrics *Metrics
	tracer  trace.Tracer
}

// NewBaseClient creates a new base client with the given configuration
func NewBaseClient(baseURL string, options ...ClientOption) *BaseClient {
	client := &BaseClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Logger:  logr.Discard(),
		Header:  http.Header{},
	}

	for _, option := range options {
		option(client)
	}

	if client.Transport == nil {
		client.Transport = &http.Client{Timeout: 30 * time.Second}
	}
	if client.tracer == nil {
		client.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}

	return client
}

// request describes one call: a single HTTP exchange
type request struct {
	resource string
	action   string
	op       string
	method   string
	path     string
	query    url.Values
	body     any
}

// HTTP helper methods

// escapePath joins percent-encoded path segments into an absolute path.
// Dot segments are encoded too so they are not collapsed.
func escapePath(segments ...string) string {
	var b strings.Builder
	for _, segment := range segments {
		b.WriteByte('/')
		switch segment {
		case ".", "..":
			b.WriteString(strings.Repeat("%2E", len(segment)))
		default:
			b.WriteString(url.PathEscape(segment))
		}
	}
	return b.String()
}

func (c *BaseClient) buildURL(path string, query url.Values) string {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// invoke performs one traced, measured request and decodes its JSON result
func invoke[T any](ctx context.Context, c *BaseClient, req request) (*T, error) {
	ctx, span := c.tracer.Start(ctx, "makima."+strcase.SnakeCase(req.resource)+"."+req.action,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.method),
			attribute.String("url.path", req.path),
		),
	)
	defer span.End()

	log := c.Logger.WithValues("method", req.method, "path", req.path)
	log.V(1).Info("Sending request", "operation", req.op)

	start := time.Now()
	status, result, err := roundTrip[T](ctx, c, req)
	elapsed := time.Since(start)

	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if c.metrics != nil {
		c.metrics.observe(req.resource, req.action, status, elapsed)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.V(1).Info("Request failed", "status", status, "duration", elapsed, "error", err.Error())
		return nil, err
	}

	log.V(1).Info("Request completed", "status", status, "duration", elapsed)
	return result, nil
}

func roundTrip[T any](ctx context.Context, c *BaseClient, req request) (int, *T, error) {
	var reqBody io.Reader
	if req.body != nil {
		jsonBody, err := json.Marshal(req.body)
		if err != nil {
			return 0, nil, &TransportError{Op: req.op, Err: fmt.Errorf("failed to marshal request body: %w", err)}
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.buildURL(req.path, req.query), reqBody)
	if err != nil {
		return 0, nil, &TransportError{Op: req.op, Err: err}
	}
	for key, values := range c.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", version.UserAgent())
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Transport.Do(httpReq)
	if err != nil {
		return 0, nil, &TransportError{Op: req.op, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, nil, newServiceError(req.op, resp.StatusCode, bodyBytes)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Op: req.op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var result T
	if err := decodeBody(bodyBytes, resp.StatusCode, &result); err != nil {
		return resp.StatusCode, nil, &TransportError{Op: req.op, Err: err}
	}
	return resp.StatusCode, &result, nil
}

// decodeBody decodes a success body. Status messages may arrive as plain text.
func decodeBody[T any](body []byte, status int, target *T) error {
	trimmed := bytes.TrimSpace(body)
	if msg, ok := any(target).(*api.StatusMessage); ok {
		if len(trimmed) == 0 {
			msg.Message = http.StatusText(status)
			return nil
		}
		if trimmed[0] != '{' {
			if trimmed[0] == '"' {
				return json.Unmarshal(trimmed, &msg.Message)
			}
			msg.Message = string(trimmed)
			return nil
		}
	}
	if len(trimmed) == 0 {
		return errors.New("empty response body")
	}
	if err := json.Unmarshal(trimmed, target); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

func newServiceError(op string, status int, body []byte) *ServiceError {
	message := http.StatusText(status)
	var apiErr api.APIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Text() != "" {
		message = apiErr.Text()
	} else if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "<") {
		message = text
	}
	if message == "" {
		message = "HTTP status " + strconv.Itoa(status)
	}
	return &ServiceError{
		Op:         op,
		StatusCode: status,
		Message:    message,
		Body:       string(body),
	}
}

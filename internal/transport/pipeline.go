// Package transport builds and executes HTTP requests against the Moim
// API, injecting bearer auth and classifying failures into a closed
// transport error taxonomy.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 10 * time.Second

// TokenSource supplies the current access token for bearer injection.
// An empty string means no token is available.
type TokenSource interface {
	AccessToken() string
}

// Pipeline executes API requests. It never retries; callers consult
// IsRetryable and implement their own policy.
type Pipeline struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	timeout    time.Duration
	metrics    *Metrics
	logger     *slog.Logger
}

// Option is a functional option for configuring a Pipeline.
type Option func(*Pipeline)

// WithHTTPClient sets a custom http.Client for making requests.
// Useful for testing and custom transport configurations.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Pipeline) { p.httpClient = hc }
}

// WithTimeout sets the per-request timeout. Defaults to 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithMetrics sets the Prometheus metrics recorded per request.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a Pipeline for the given API base URL. The token
// source may be nil, in which case no bearer header is ever injected.
func NewPipeline(baseURL string, tokens TokenSource, opts ...Option) *Pipeline {
	p := &Pipeline{
		baseURL: baseURL,
		tokens:  tokens,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: p.timeout}
	}
	return p
}

// Do executes the endpoint and returns the raw response body.
// Non-2xx responses are returned as *StatusCodeError with the server's
// error envelope attached when it decodes.
func (p *Pipeline) Do(ctx context.Context, ep Endpoint) ([]byte, error) {
	start := time.Now()
	body, err := p.do(ctx, ep)
	p.record(ep, start, err)
	return body, err
}

// envelope is the full success wrapper: metadata plus payload.
type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// DoJSON executes the endpoint and decodes the response envelope's data
// field into T. A 2xx response whose envelope reports success=false is
// returned as *StatusCodeError, same as a non-2xx status.
func DoJSON[T any](ctx context.Context, p *Pipeline, ep Endpoint) (T, error) {
	var zero T
	body, err := p.Do(ctx, ep)
	if err != nil {
		return zero, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, &DecodingError{Cause: err}
	}
	if !env.Success {
		return zero, &StatusCodeError{
			StatusCode: http.StatusOK,
			Envelope:   &Envelope{Success: env.Success, Code: env.Code, Message: env.Message},
		}
	}
	var out T
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &out); err != nil {
			return zero, &DecodingError{Cause: err}
		}
	}
	return out, nil
}

// DoVoid executes the endpoint and discards the payload, still checking
// the envelope's success flag.
func (p *Pipeline) DoVoid(ctx context.Context, ep Endpoint) error {
	_, err := DoJSON[struct{}](ctx, p, ep)
	return err
}

func (p *Pipeline) do(ctx context.Context, ep Endpoint) ([]byte, error) {
	reqURL, err := ep.url(p.baseURL)
	if err != nil {
		return nil, &InvalidURLError{Endpoint: ep.BaseURL + ep.Path, Cause: err}
	}

	var bodyReader io.Reader
	if ep.Body != nil {
		jsonBody, err := json.Marshal(ep.Body)
		if err != nil {
			return nil, &UnknownError{Cause: fmt.Errorf("marshal request body: %w", err)}
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, ep.method(), reqURL, bodyReader)
	if err != nil {
		return nil, &InvalidURLError{Endpoint: reqURL, Cause: err}
	}

	for key, values := range ep.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if ep.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	// Bearer injection: only when the endpoint did not set its own
	// Authorization header and a token is available.
	if req.Header.Get("Authorization") == "" && p.tokens != nil {
		if token := p.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &InvalidResponseError{Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Decoding failure just means no envelope is attached. A decoded
		// envelope rides along even without a code, so the server's
		// message survives.
		var env Envelope
		statusErr := &StatusCodeError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, &env); err == nil {
			statusErr.Envelope = &env
		}
		p.logger.Debug("request failed",
			"method", ep.method(),
			"path", ep.Path,
			"status", resp.StatusCode,
		)
		return nil, statusErr
	}

	return respBody, nil
}

// classifyTransport maps a transport-layer failure into the closed error
// taxonomy: deadline overruns to TimeoutError, unreachable servers to
// NoConnectionError, everything else to UnknownError.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Cause: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &NoConnectionError{Cause: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &NoConnectionError{Cause: err}
	}
	return &UnknownError{Cause: err}
}

// record updates the pipeline metrics for a completed request.
func (p *Pipeline) record(ep Endpoint, start time.Time, err error) {
	if p.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
		p.metrics.ErrorsTotal.WithLabelValues(errorKind(err)).Inc()
	}
	p.metrics.RequestsTotal.WithLabelValues(ep.method(), ep.Path, status).Inc()
	p.metrics.RequestDuration.WithLabelValues(ep.method(), ep.Path).Observe(time.Since(start).Seconds())
}

// errorKind returns the metrics label for a transport error.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNoConnection):
		return "no_connection"
	case errors.Is(err, ErrDecoding):
		return "decoding"
	case errors.Is(err, ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid_response"
	default:
		var statusErr *StatusCodeError
		if errors.As(err, &statusErr) {
			return "status_code"
		}
		return "unknown"
	}
}

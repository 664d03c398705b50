package helpdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	apperrors "github.com/deskgate/server/internal/shared/errors"
	"github.com/deskgate/server/internal/shared/metrics"
)

// Response is a completed HTTP exchange with the helpdesk API. Any
// status code counts as a response; only failing to obtain one is a
// transport error.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// TransportConfig holds helpdesk transport settings.
type TransportConfig struct {
	BaseURL string
	Token   string

	// Timeout bounds each individual attempt, not the whole retry loop.
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration

	BreakerEnabled             bool
	BreakerConsecutiveFailures uint32
	BreakerOpenTimeout         time.Duration
}

// Transport issues requests against the helpdesk API with a fixed
// retry budget for transport-level failures. HTTP error statuses are
// returned as normal responses and never retried; interpreting them is
// the caller's job. An optional circuit breaker wraps the whole retry
// loop so a dead upstream fails fast instead of burning the budget on
// every call.
type Transport struct {
	config  TransportConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Response]
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewTransport creates a helpdesk transport.
func NewTransport(cfg TransportConfig, logger *zap.Logger, m *metrics.Metrics) *Transport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &Transport{
		config: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		logger:  logger,
		metrics: m,
	}

	if cfg.BreakerEnabled {
		failures := cfg.BreakerConsecutiveFailures
		if failures == 0 {
			failures = 5
		}
		t.breaker = gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
			Name:    "helpdesk",
			Timeout: cfg.BreakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("upstream circuit breaker state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
				if m != nil {
					m.SetBreakerOpen(to == gobreaker.StateOpen)
				}
			},
		})
	}

	return t
}

// Request performs an HTTP exchange with the helpdesk API. body is
// JSON-encoded when non-nil. The returned error wraps
// ErrTransportFailure; status interpretation is left to the caller.
func (t *Transport) Request(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: encode request body: %v", apperrors.ErrInvalidArgument, err)
		}
	}

	if t.breaker == nil {
		return t.doWithRetry(ctx, method, path, query, payload)
	}

	resp, err := t.breaker.Execute(func() (*Response, error) {
		return t.doWithRetry(ctx, method, path, query, payload)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, fmt.Errorf("%w: circuit breaker open", apperrors.ErrTransportFailure)
	}
	return resp, err
}

func (t *Transport) doWithRetry(ctx context.Context, method, path string, query url.Values, payload []byte) (*Response, error) {
	var lastErr error
	attempted := 0

	for attempt := 1; attempt <= t.config.RetryAttempts; attempt++ {
		if attempt > 1 {
			if t.metrics != nil {
				t.metrics.RecordUpstreamRetry()
			}
			select {
			case <-time.After(t.config.RetryDelay):
			case <-ctx.Done():
				return nil, apperrors.NewTransportError(attempt-1, ctx.Err())
			}
		}

		resp, err := t.do(ctx, method, path, query, payload)
		attempted = attempt
		if err == nil {
			return resp, nil
		}
		lastErr = err

		t.logger.Warn("helpdesk request attempt failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", t.config.RetryAttempts),
			zap.Error(err),
		)

		// A canceled parent context will fail every further attempt
		// the same way.
		if ctx.Err() != nil {
			break
		}
	}

	return nil, apperrors.NewTransportError(attempted, lastErr)
}

// do performs a single attempt under its own timeout.
func (t *Transport) do(ctx context.Context, method, path string, query url.Values, payload []byte) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	endpoint := t.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.config.Token)
	}

	start := time.Now()
	httpResp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if t.metrics != nil {
		t.metrics.RecordUpstreamRequest(method, httpResp.StatusCode, time.Since(start))
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	domainPorts "github.com/ropable/spacetraders-api/internal/domain/ports"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

const (
	baseURL            = "https://api.spacetraders.io/v2"
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 5
	defaultBackoffBase = time.Second

	// The upstream allows 30 requests per rolling minute per token
	defaultRateRequests = 30
	defaultRatePeriod   = 60 * time.Second
	defaultRateBurst    = 2

	// pageLimit is the page size of every paginated listing
	pageLimit = 20
)

// RequestRecorder receives transport metrics. Satisfied by
// metrics.APIMetricsCollector.
type RequestRecorder interface {
	RecordAPIRequest(method, endpoint string, statusCode int, duration float64)
	RecordAPIRetry(method, endpoint, reason string)
	RecordRateLimitWait(duration float64)
	RecordRejection(endpoint string, code int)
}

// Config tunes a SpaceTradersClient. Zero fields take defaults; a negative
// MaxRetries disables retries.
type Config struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration

	RateRequests int
	RatePeriod   time.Duration
	RateBurst    int

	// Limiter overrides the limiter built from the Rate* fields so several
	// clients can share one budget
	Limiter  *rate.Limiter
	Clock    shared.Clock
	Recorder RequestRecorder
}

// SpaceTradersClient implements ports.APIClient over HTTP
type SpaceTradersClient struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	token       string
	maxRetries  int
	backoffBase time.Duration
	clock       shared.Clock
	recorder    RequestRecorder
}

// NewSpaceTradersClient creates a client for token with default settings.
// Rate limit: 30 requests per 60s, burst 2.
// Retry: max 5 attempts with 1s exponential backoff + jitter.
func NewSpaceTradersClient(token string) *SpaceTradersClient {
	return NewSpaceTradersClientWithConfig(Config{Token: token})
}

// NewSpaceTradersClientWithConfig creates a new SpaceTraders API client with custom configuration
func NewSpaceTradersClientWithConfig(cfg Config) *SpaceTradersClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = baseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = defaultMaxRetries
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.Clock == nil {
		cfg.Clock = shared.NewRealClock()
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(cfg.RateRequests, cfg.RatePeriod, cfg.RateBurst)
	}

	return &SpaceTradersClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: limiter,
		baseURL:     cfg.BaseURL,
		token:       cfg.Token,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		clock:       cfg.Clock,
		recorder:    cfg.Recorder,
	}
}

// NewRateLimiter builds a token bucket refilling requests tokens per period
func NewRateLimiter(requests int, period time.Duration, burst int) *rate.Limiter {
	if requests <= 0 {
		requests = defaultRateRequests
	}
	if period <= 0 {
		period = defaultRatePeriod
	}
	if burst <= 0 {
		burst = defaultRateBurst
	}
	return rate.NewLimiter(rate.Every(period/time.Duration(requests)), burst)
}

// response is one completed HTTP exchange
type response struct {
	status int
	body   []byte
}

func addJitter(d time.Duration) time.Duration {
	jitter := time.Duration(rand.Int63n(int64(d)/2 + 1))
	return d + jitter
}

func (c *SpaceTradersClient) backoff(attempt int) time.Duration {
	return addJitter(c.backoffBase * time.Duration(1<<attempt))
}

// send performs one logical request, waiting on the shared limiter before
// every attempt and retrying network errors, 429 and 502/503/504. Any other
// status is returned to the caller untouched.
func (c *SpaceTradersClient) send(ctx context.Context, method, path string, body interface{}) (*response, error) {
	url := c.baseURL + path
	endpoint := endpointLabel(path)

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = data
	}

	var lastErr error
attempts:
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		waitStart := time.Now()
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}
		if c.recorder != nil {
			c.recorder.RecordRateLimitWait(time.Since(waitStart).Seconds())
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		started := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
			}
			lastErr = &retryableError{message: fmt.Errorf("network error: %w", err).Error()}
			if !c.retry(ctx, method, endpoint, "network", attempt, 0) {
				break
			}
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if c.recorder != nil {
			c.recorder.RecordAPIRequest(method, endpoint, resp.StatusCode, time.Since(started).Seconds())
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			lastErr = &retryableError{message: "rate limited (429)", retryAfter: retryAfter}
			if !c.retry(ctx, method, endpoint, "429", attempt, retryAfter) {
				break attempts
			}
			continue
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = &retryableError{message: fmt.Sprintf("server error (%d)", resp.StatusCode)}
			if !c.retry(ctx, method, endpoint, strconv.Itoa(resp.StatusCode), attempt, 0) {
				break attempts
			}
			continue
		}

		return &response{status: resp.StatusCode, body: respBody}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return nil, fmt.Errorf("max retries exceeded")
}

// retry sleeps before the next attempt. It returns false when the attempts
// are exhausted or the context is done.
func (c *SpaceTradersClient) retry(ctx context.Context, method, endpoint, reason string, attempt int, retryAfter time.Duration) bool {
	if attempt >= c.maxRetries || ctx.Err() != nil {
		return false
	}
	delay := c.backoff(attempt)
	if retryAfter > 0 {
		// Server-provided Retry-After is used without jitter
		delay = retryAfter
	}
	if c.recorder != nil {
		c.recorder.RecordAPIRetry(method, endpoint, reason)
	}
	log.Printf("Warning: %s %s failed (%s), retrying in %v (attempt %d/%d)", method, endpoint, reason, delay, attempt+1, c.maxRetries)
	c.clock.Sleep(delay)
	return true
}

// get performs a read. Non-2xx answers become an *APIError.
func (c *SpaceTradersClient) get(ctx context.Context, path string, result interface{}) error {
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if resp.status < 200 || resp.status >= 300 {
		return parseAPIError(resp.status, resp.body)
	}
	if result == nil || resp.status == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(resp.body, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// mutate performs a state-changing call. A 4xx answer carrying an upstream
// error body is returned as a RemoteFailure instead of an error.
func (c *SpaceTradersClient) mutate(ctx context.Context, method, path string, body, result interface{}) (*domainPorts.RemoteFailure, error) {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.status >= 400 && resp.status < 500 {
		apiErr := parseAPIError(resp.status, resp.body)
		var typed *APIError
		if errors.As(apiErr, &typed) && typed.Code != 0 {
			if c.recorder != nil {
				c.recorder.RecordRejection(endpointLabel(path), typed.Code)
			}
			return &domainPorts.RemoteFailure{Code: typed.Code, Message: typed.Message, Data: typed.Data}, nil
		}
		return nil, apiErr
	}
	if resp.status < 200 || resp.status >= 300 {
		return nil, parseAPIError(resp.status, resp.body)
	}
	if result != nil && len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil, nil
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil && seconds > 0 {
		return time.Duration(seconds * float64(time.Second))
	}
	return 0
}

// retryableError represents an error that should trigger a retry
type retryableError struct {
	message    string
	retryAfter time.Duration
}

func (e *retryableError) Error() string {
	return e.message
}

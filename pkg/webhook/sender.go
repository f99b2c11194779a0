package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DeliveryResult describes one delivery attempt, for logging and metrics.
type DeliveryResult struct {
	Success    bool
	StatusCode int
	Duration   time.Duration
	Error      error
}

// DeliveryHook is called after each delivery attempt.
type DeliveryHook func(result DeliveryResult)

// Sender posts JSON payloads to callback endpoints. Each Send is a single
// attempt; the caller decides whether and when to retry, guided by the
// permanent/temporary classification of the returned error.
type Sender struct {
	client     *http.Client
	timeout    time.Duration
	headers    map[string]string
	secret     string
	breaker    *CircuitBreaker
	onDelivery DeliveryHook
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithTimeout bounds each request. Default is 10s.
func WithTimeout(d time.Duration) SenderOption {
	return func(s *Sender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) SenderOption {
	return func(s *Sender) {
		if key != "" && value != "" {
			s.headers[key] = value
		}
	}
}

// WithSignature enables HMAC-SHA256 request signing with the given secret.
func WithSignature(secret string) SenderOption {
	return func(s *Sender) {
		s.secret = secret
	}
}

// WithHTTPClient replaces the default pooled client.
func WithHTTPClient(client *http.Client) SenderOption {
	return func(s *Sender) {
		if client != nil {
			s.client = client
		}
	}
}

// WithCircuitBreaker protects the endpoint with the given breaker. Reuse one
// breaker per endpoint so failure state accumulates across requests.
func WithCircuitBreaker(cb *CircuitBreaker) SenderOption {
	return func(s *Sender) {
		s.breaker = cb
	}
}

// WithOnDelivery registers a callback invoked after every attempt.
func WithOnDelivery(hook DeliveryHook) SenderOption {
	return func(s *Sender) {
		s.onDelivery = hook
	}
}

// NewSender creates a sender with a pooled HTTP client.
func NewSender(opts ...SenderOption) *Sender {
	s := &Sender{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: 10 * time.Second,
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send marshals data to JSON and posts it to endpoint. The returned error
// wraps ErrPermanentFailure for failures a retry cannot fix (rejected
// payloads, most 4xx responses) and ErrTemporaryFailure otherwise.
func (s *Sender) Send(ctx context.Context, endpoint string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if err := validateEndpoint(endpoint); err != nil {
		return err
	}

	if s.breaker != nil && !s.breaker.Allow() {
		return ErrCircuitOpen
	}

	result, err := s.attempt(ctx, endpoint, payload)

	if s.onDelivery != nil {
		s.onDelivery(result)
	}
	if s.breaker != nil {
		if err == nil {
			s.breaker.RecordSuccess()
		} else {
			s.breaker.RecordFailure()
		}
	}

	if err == nil {
		return nil
	}
	if isPermanentStatus(result.StatusCode) {
		return fmt.Errorf("%w: %w", ErrPermanentFailure, err)
	}
	return fmt.Errorf("%w: %w", ErrTemporaryFailure, err)
}

func (s *Sender) attempt(ctx context.Context, endpoint string, payload []byte) (DeliveryResult, error) {
	start := time.Now()
	result := DeliveryResult{}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		result.Duration = time.Since(start)
		result.Error = err
		return result, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "notifykit-webhook/1.0")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	if s.secret != "" {
		sig, err := SignPayload(s.secret, payload)
		if err != nil {
			result.Duration = time.Since(start)
			result.Error = err
			return result, fmt.Errorf("failed to sign payload: %w", err)
		}
		sig.Apply(req.Header)
	}

	resp, err := s.client.Do(req)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err
		if reqCtx.Err() == context.DeadlineExceeded {
			return result, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return result, err
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	if result.Success {
		return result, nil
	}

	// Keep a bounded, single-line slice of the response body for the error.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	errMsg := fmt.Sprintf("endpoint returned status %d", resp.StatusCode)
	if len(body) > 0 {
		bodyStr := strings.ReplaceAll(string(body), "\n", " ")
		if len(bodyStr) > 200 {
			bodyStr = bodyStr[:200] + "..."
		}
		errMsg += ": " + bodyStr
	}
	result.Error = fmt.Errorf("%s", errMsg)
	return result, result.Error
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return nil
}

// isPermanentStatus reports whether an HTTP status will not change on retry.
// 408, 425, and 429 are transient despite being 4xx.
func isPermanentStatus(statusCode int) bool {
	if statusCode < 400 || statusCode >= 500 {
		return false
	}
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	}
	return true
}

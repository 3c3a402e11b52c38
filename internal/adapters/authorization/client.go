// Package authorization talks to the external transfer authorization service.
package authorization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/middleware"
	"github.com/sony/gobreaker"
)

const maxBodyBytes = 64 << 10

var errDenied = errors.New("authorizer denied")

// Options configures the client.
type Options struct {
	URL                 string
	Timeout             time.Duration
	AvailabilityTimeout time.Duration
	BreakerFailures     uint32
	BreakerOpenTimeout  time.Duration
	// OnDecision is called with "allow", "deny", "error" or "breaker_open" after each Authorize.
	OnDecision func(outcome string)
}

// Client is the HTTP authorization gate. Every failure mode denies.
type Client struct {
	url                 string
	timeout             time.Duration
	availabilityTimeout time.Duration
	httpClient          *http.Client
	breaker             *gobreaker.CircuitBreaker
	onDecision          func(string)
}

var _ portssvc.AuthorizationGate = (*Client)(nil)

// NewClient builds a Client. httpClient may be nil.
func NewClient(opts Options, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.AvailabilityTimeout <= 0 {
		opts.AvailabilityTimeout = 3 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerOpenTimeout <= 0 {
		opts.BreakerOpenTimeout = 30 * time.Second
	}
	if opts.OnDecision == nil {
		opts.OnDecision = func(string) {}
	}

	failures := opts.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "authorizer",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures >= failures ||
				(counts.Requests >= 2*failures && failureRatio >= 0.6)
		},
		// A well-formed deny is a healthy upstream answer, not a breaker failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errDenied)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Authorizer circuit breaker state changed",
				slog.String("breaker", name), slog.String("from", from.String()), slog.String("to", to.String()))
		},
	})

	return &Client{
		url:                 opts.URL,
		timeout:             opts.Timeout,
		availabilityTimeout: opts.AvailabilityTimeout,
		httpClient:          httpClient,
		breaker:             breaker,
		onDecision:          opts.OnDecision,
	}
}

// authorizeResponse covers both shapes the service returns:
// {"status":"success","data":{"authorization":true}} and {"status":"fail","data":{"authorization":false}}.
type authorizeResponse struct {
	Status string `json:"status"`
	Data   struct {
		Authorization *bool `json:"authorization"`
	} `json:"data"`
}

func (r authorizeResponse) allowed() bool {
	if r.Data.Authorization != nil {
		return *r.Data.Authorization
	}
	return r.Status == "success"
}

// Authorize asks the external service whether the transfer may proceed.
func (c *Client) Authorize(ctx context.Context, req portssvc.AuthorizationRequest) bool {
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("transaction_id", req.TransactionID),
		slog.String("payer_id", req.Payer.AccountID),
		slog.String("payee_id", req.Payee.AccountID),
	)

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.call(ctx)
	})
	switch {
	case err == nil:
		c.onDecision("allow")
		logger.Info("Transfer authorized")
		return true
	case errors.Is(err, errDenied):
		c.onDecision("deny")
		logger.Info("Transfer denied by authorizer")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.onDecision("breaker_open")
		logger.Warn("Authorizer circuit open, denying transfer")
	default:
		c.onDecision("error")
		logger.Warn("Authorizer call failed, denying transfer", slog.String("error", err.Error()))
	}
	return false
}

func (c *Client) call(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("build authorizer request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("authorizer request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read authorizer response: %w", err)
	}

	var parsed authorizeResponse
	if jsonErr := json.Unmarshal(body, &parsed); jsonErr != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return fmt.Errorf("malformed authorizer response: %w", jsonErr)
		}
		return fmt.Errorf("authorizer returned status %d", resp.StatusCode)
	}

	// A non-2xx with a well-formed body (e.g. 403 {"status":"fail"}) is a deny.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return fmt.Errorf("authorizer returned status %d", resp.StatusCode)
		}
		return errDenied
	}
	if !parsed.allowed() {
		return errDenied
	}
	return nil
}

// IsAvailable reports whether the authorizer answers with a 2xx. It never gates transfers.
func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.availabilityTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

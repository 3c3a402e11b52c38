// Package notification delivers account holder messages through the external notify service.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/middleware"
)

// Client posts {"email","message"} to the notify endpoint.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
}

var _ portssvc.Notifier = (*Client)(nil)

// NewClient builds a Client. A non-positive timeout defaults to 5s; httpClient may be nil.
func NewClient(url string, timeout time.Duration, httpClient *http.Client) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{url: url, timeout: timeout, httpClient: httpClient}
}

type notifyRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

type notifyResponse struct {
	Status string `json:"status"`
}

// Notify reports whether the service accepted the message. It never returns an error.
func (c *Client) Notify(ctx context.Context, n portssvc.Notification) bool {
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("account_id", n.AccountID),
		slog.String("transaction_id", n.TransactionID),
	)

	payload, err := json.Marshal(notifyRequest{Email: n.Email, Message: n.Message})
	if err != nil {
		logger.Error("Failed to encode notification", slog.String("error", err.Error()))
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		logger.Error("Failed to build notification request", slog.String("error", err.Error()))
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Notification request failed", slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("Notification rejected", slog.Int("status", resp.StatusCode))
		return false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return true
	}
	var parsed notifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Status != "success" {
		logger.Warn("Unexpected notification response", slog.Int("status", resp.StatusCode))
		return false
	}
	return true
}

package authorization

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/stretchr/testify/assert"
)

func newTestClient(url string, opts Options) *Client {
	opts.URL = url
	return NewClient(opts, nil)
}

func serve(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestAuthorize_Decisions(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"explicit allow", http.StatusOK, `{"status":"success","data":{"authorization":true}}`, true},
		{"success without flag", http.StatusOK, `{"status":"success"}`, true},
		{"success with explicit false", http.StatusOK, `{"status":"success","data":{"authorization":false}}`, false},
		{"fail status", http.StatusOK, `{"status":"fail"}`, false},
		{"forbidden body", http.StatusForbidden, `{"status":"fail","data":{"authorization":false}}`, false},
		{"server error", http.StatusInternalServerError, `{"status":"error"}`, false},
		{"malformed body", http.StatusOK, `not json`, false},
		{"empty body", http.StatusOK, ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(tt.status, tt.body)
			defer srv.Close()
			c := newTestClient(srv.URL, Options{})
			assert.Equal(t, tt.want, c.Authorize(context.Background(), portssvc.AuthorizationRequest{TransactionID: "t1"}))
		})
	}
}

func TestAuthorize_TimeoutDenies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte(`{"status":"success","data":{"authorization":true}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, Options{Timeout: 50 * time.Millisecond})
	start := time.Now()
	assert.False(t, c.Authorize(context.Background(), portssvc.AuthorizationRequest{}))
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestAuthorize_TransportErrorDenies(t *testing.T) {
	srv := serve(http.StatusOK, `{"status":"success"}`)
	url := srv.URL
	srv.Close()

	var outcomes []string
	c := newTestClient(url, Options{OnDecision: func(o string) { outcomes = append(outcomes, o) }})
	assert.False(t, c.Authorize(context.Background(), portssvc.AuthorizationRequest{}))
	assert.Equal(t, []string{"error"}, outcomes)
}

func TestAuthorize_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	var last string
	c := newTestClient(srv.URL, Options{
		BreakerFailures:    2,
		BreakerOpenTimeout: time.Minute,
		OnDecision:         func(o string) { last = o },
	})
	for i := 0; i < 2; i++ {
		assert.False(t, c.Authorize(context.Background(), portssvc.AuthorizationRequest{}))
	}
	assert.False(t, c.Authorize(context.Background(), portssvc.AuthorizationRequest{}))
	assert.Equal(t, "breaker_open", last)
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the upstream")
}

func TestAuthorize_DeniesDoNotTripBreaker(t *testing.T) {
	srv := serve(http.StatusForbidden, `{"status":"fail","data":{"authorization":false}}`)
	defer srv.Close()

	var last string
	c := newTestClient(srv.URL, Options{BreakerFailures: 1, OnDecision: func(o string) { last = o }})
	for i := 0; i < 3; i++ {
		c.Authorize(context.Background(), portssvc.AuthorizationRequest{})
		assert.Equal(t, "deny", last)
	}
}

func TestIsAvailable(t *testing.T) {
	up := serve(http.StatusOK, `{}`)
	defer up.Close()
	down := serve(http.StatusServiceUnavailable, `{}`)
	defer down.Close()

	assert.True(t, newTestClient(up.URL, Options{}).IsAvailable(context.Background()))
	assert.False(t, newTestClient(down.URL, Options{}).IsAvailable(context.Background()))
	assert.False(t, newTestClient("http://127.0.0.1:1", Options{}).IsAvailable(context.Background()))
}

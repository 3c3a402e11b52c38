package repositories

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrIdempotencyInFlight is returned when a request with the same key is still being processed.
	ErrIdempotencyInFlight = errors.New("request with this idempotency key is in progress")
	// ErrIdempotencyKeyReused is returned when a key comes back with a different request fingerprint.
	ErrIdempotencyKeyReused = errors.New("idempotency key reused with a different request")
)

// StoredResponse is a replayable HTTP response recorded for an idempotency key.
type StoredResponse struct {
	StatusCode  int    `json:"statusCode"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

// IdempotencyStore remembers responses of money-moving requests by client-supplied key.
type IdempotencyStore interface {
	// Reserve claims key for a request with the given fingerprint. It returns the stored response
	// when the key already completed, ErrIdempotencyInFlight while another request holds it,
	// ErrIdempotencyKeyReused when the key was claimed with another fingerprint, or (nil, nil)
	// when the claim succeeded.
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*StoredResponse, error)

	// Complete stores the final response for key. resp.Fingerprint must match the reservation.
	Complete(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error

	// Release drops a reservation so the client may retry (used when processing failed operationally).
	Release(ctx context.Context, key string) error
}

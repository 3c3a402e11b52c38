package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	"github.com/gin-gonic/gin"
)

const (
	// IdempotencyKeyHeader is the optional client-supplied key on money-moving requests.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader marks a response served from the idempotency store.
	IdempotentReplayHeader = "Idempotent-Replayed"

	maxIdempotencyKeyLength = 255
)

// bodyCapture tees the response body so it can be stored after the handler runs.
type bodyCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCapture) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// requestFingerprint hashes the request body so a key reused for a different payload is detected.
// The body is restored for the handler.
func requestFingerprint(c *gin.Context) (string, error) {
	if c.Request.Body == nil {
		return hex.EncodeToString(sha256.New().Sum(nil)), nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// Idempotency replays the stored response when a client repeats a request with the same
// Idempotency-Key. Requests without the header pass through untouched. Keys are scoped to the
// authenticated account and route, so the middleware must run after AuthMiddleware.
// A key replayed with a different body is rejected with 422.
// Responses with a 5xx status are not stored, and neither are requests whose handler panicked;
// in both cases the key is released for a retry.
func Idempotency(store portsrepo.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || store == nil {
			c.Next()
			return
		}
		logger := GetLoggerFromCtx(c.Request.Context())
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key is too long"})
			return
		}

		userID, _ := GetUserIDFromContext(c)
		scopedKey := userID + ":" + c.Request.Method + ":" + c.FullPath() + ":" + c.Param("id") + ":" + key

		fingerprint, err := requestFingerprint(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
			return
		}

		stored, err := store.Reserve(c.Request.Context(), scopedKey, fingerprint, ttl)
		switch {
		case errors.Is(err, portsrepo.ErrIdempotencyKeyReused):
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Idempotency-Key was already used with a different request body"})
			return
		case errors.Is(err, portsrepo.ErrIdempotencyInFlight):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "A request with this Idempotency-Key is already in progress"})
			return
		case err != nil:
			logger.Error("Idempotency store unavailable", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Idempotency store unavailable"})
			return
		case stored != nil:
			logger.Info("Replaying idempotent response", slog.Int("status", stored.StatusCode))
			c.Header(IdempotentReplayHeader, "true")
			c.Data(stored.StatusCode, "application/json; charset=utf-8", stored.Body)
			c.Abort()
			return
		}

		// Runs while a handler panic unwinds too, before Recovery writes its 500.
		completed := false
		defer func() {
			if completed {
				return
			}
			if err := store.Release(context.WithoutCancel(c.Request.Context()), scopedKey); err != nil {
				logger.Error("Failed to release idempotency key", slog.String("error", err.Error()))
			}
		}()

		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Next()

		status := capture.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		resp := portsrepo.StoredResponse{StatusCode: status, Body: capture.body.Bytes(), Fingerprint: fingerprint}
		if err := store.Complete(c.Request.Context(), scopedKey, resp, ttl); err != nil {
			logger.Error("Failed to store idempotent response", slog.String("error", err.Error()))
			return
		}
		completed = true
	}
}

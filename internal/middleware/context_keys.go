package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// contextKey namespaces values stored in request contexts.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	// userIDKey is the key used to store the authenticated account's ID.
	userIDKey = contextKey("userID")
)

// GetUserIDFromContext retrieves the authenticated account ID from the Gin context.
// It returns the ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userIDVal, exists := c.Get(string(userIDKey)); exists {
		userID, ok := userIDVal.(string)
		return userID, ok && userID != ""
	}
	// check in the request context as well
	return GetUserIDFromCtx(c.Request.Context())
}

// GetUserIDFromCtx retrieves the authenticated account ID from a standard context.
func GetUserIDFromCtx(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// WithUserID stores the authenticated account ID in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/payflow_backend/internal/apperrors"
	"github.com/SscSPs/payflow_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error         string `json:"error"`
	TransactionID string `json:"transactionID,omitempty"`
}

// errorStatus maps service errors to HTTP status codes. Unknown errors are internal.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrAuthorizationDenied), errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrAlreadyCompensated), errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 600 {
			return appErr.Code
		}
		return http.StatusInternalServerError
	}
}

// baseHandler carries what every handler needs to render errors.
type baseHandler struct {
	debugErrors bool
}

// fail writes err as an ErrorResponse. Internal failures are logged and their detail is
// hidden unless debug errors are enabled.
func (h baseHandler) fail(c *gin.Context, err error, msg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := errorStatus(err)
	resp := ErrorResponse{Error: err.Error()}

	var failed *apperrors.TransactionFailedError
	if errors.As(err, &failed) {
		resp.TransactionID = failed.TransactionID
	}

	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
		resp.Error = "Internal server error"
		if h.debugErrors {
			resp.Error = err.Error()
		}
	} else {
		logger.Warn(msg, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request: " + err.Error()})
}

// requireUser returns the authenticated account ID or writes 401.
func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
	}
	return userID, ok
}

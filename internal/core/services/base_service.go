package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/payflow_backend/internal/apperrors"
	"github.com/SscSPs/payflow_backend/internal/middleware"
)

// SystemActor is recorded as the actor of changes made by background jobs.
const SystemActor = "system"

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// classify passes domain and already-wrapped operational errors through and wraps
// anything else (store, context, transport) as operational.
func classify(msg string, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsDomainError(err) || errors.Is(err, apperrors.ErrOperational) {
		return err
	}
	return apperrors.Operational(msg, err)
}

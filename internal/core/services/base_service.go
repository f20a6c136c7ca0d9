package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	clock func() time.Time
}

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

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Now returns the service clock in UTC.
func (s *BaseService) Now() time.Time {
	if s.clock != nil {
		return s.clock().UTC()
	}
	return time.Now().UTC()
}

// RequireActor rejects mutations that carry no authenticated user.
func (s *BaseService) RequireActor(ctx context.Context, userID string) error {
	if userID == "" {
		s.LogDebug(ctx, "Mutation attempted without an actor")
		return apperrors.ErrUnauthorized
	}
	return nil
}

// setClock replaces the clock. Used by options that pin time in tests.
func (s *BaseService) setClock(clock func() time.Time) {
	s.clock = clock
}

// clockSetter is implemented by every service through the embedded BaseService.
type clockSetter interface {
	setClock(func() time.Time)
}

// Option configures a service built by this package.
type Option func(clockSetter)

// WithClock pins the time source of a service.
func WithClock(clock func() time.Time) Option {
	return func(s clockSetter) {
		s.setClock(clock)
	}
}

func applyOptions(s clockSetter, opts []Option) {
	for _, opt := range opts {
		opt(s)
	}
}

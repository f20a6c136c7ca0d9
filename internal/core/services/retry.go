package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/ledger_core/internal/apperrors"
)

// DefaultConflictRetries is used when the configured retry count is not positive.
const DefaultConflictRetries = 3

// withConflictRetry runs fn again while it fails with ErrConflict, at most attempts times.
// Each run of fn is expected to open its own transaction and re-read what it changes.
func (s *BaseService) withConflictRetry(ctx context.Context, op string, attempts int, fn func() error) error {
	if attempts <= 0 {
		attempts = DefaultConflictRetries
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn()
		if err == nil || !errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		conflictRetriesTotal.WithLabelValues(op).Inc()
		s.LogDebug(ctx, "Retrying after concurrent modification",
			slog.String("operation", op),
			slog.Int("attempt", attempt))
	}
	s.LogError(ctx, err, "Giving up after repeated conflicts", slog.String("operation", op))
	return err
}

package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	// GenerateAccessToken issues a bearer token whose subject is the user id.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}

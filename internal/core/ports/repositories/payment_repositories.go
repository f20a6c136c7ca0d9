package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// PaymentRepositoryFacade defines persistence for executed payments.
type PaymentRepositoryFacade interface {
	SavePayments(ctx context.Context, payments []domain.Payment) error
	ListPayments(ctx context.Context, limit int) ([]domain.Payment, error)
}

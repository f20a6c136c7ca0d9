package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// PaymentSvcFacade aggregates payable records and settles them from a bank account.
type PaymentSvcFacade interface {
	// ListAwaitingPayment unions bills, tax declarations and purchase orders that can be paid.
	ListAwaitingPayment(ctx context.Context) ([]domain.PayableRecord, error)

	// ExecutePayment settles the selected records in one transaction.
	ExecutePayment(ctx context.Context, req dto.ExecutePaymentRequest, userID string) (*domain.PaymentBatch, error)

	ListPayments(ctx context.Context, limit int) ([]domain.Payment, error)
}

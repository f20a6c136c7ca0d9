package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperrors.NewNotFoundError("account", "a"), http.StatusNotFound},
		{"validation", apperrors.NewValidationError("name", "is required"), http.StatusBadRequest},
		{"unbalanced", &apperrors.UnbalancedEntryError{}, http.StatusBadRequest},
		{"empty selection", &apperrors.EmptySelectionError{}, http.StatusBadRequest},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{"entry not posted", &apperrors.EntryNotPostedError{}, http.StatusUnprocessableEntity},
		{"insufficient funds", &apperrors.InsufficientFundsError{}, http.StatusUnprocessableEntity},
		{"duplicate code", &apperrors.DuplicateCodeError{Code: "1001"}, http.StatusConflict},
		{"cycle", &apperrors.CycleError{}, http.StatusConflict},
		{"has children", &apperrors.HasChildrenError{}, http.StatusConflict},
		{"referenced", &apperrors.ReferencedByLedgerError{}, http.StatusConflict},
		{"immutable", &apperrors.PostedVoucherImmutableError{}, http.StatusConflict},
		{"already reconciled", &apperrors.AlreadyReconciledError{}, http.StatusConflict},
		{"conflict", apperrors.NewConflictError("voucher", "v"), http.StatusConflict},
		{"in use", fmt.Errorf("%w: vendor v", apperrors.ErrInUse), http.StatusConflict},
		{"invalid state", fmt.Errorf("%w: order is completed", apperrors.ErrInvalidState), http.StatusConflict},
		{"wrapped not found", fmt.Errorf("lookup: %w", apperrors.NewNotFoundError("bill", "b")), http.StatusNotFound},
		{"app error", apperrors.NewAppError(http.StatusTooManyRequests, "slow down", nil), http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

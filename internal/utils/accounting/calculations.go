package accounting

import (
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the double-entry sign convention to an entry amount.
//
//	DEBIT  to ASSET/EXPENSE            -> +
//	CREDIT to ASSET/EXPENSE            -> -
//	DEBIT  to LIABILITY/EQUITY/INCOME  -> -
//	CREDIT to LIABILITY/EQUITY/INCOME  -> +
func SignedAmount(accountType domain.AccountType, direction domain.Direction, amount decimal.Decimal) (decimal.Decimal, error) {
	if !direction.IsValid() {
		return decimal.Zero, fmt.Errorf("unknown direction %q", direction)
	}
	isDebit := direction == domain.Debit
	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			return amount.Neg(), nil
		}
	case domain.Liability, domain.Equity, domain.Income:
		if isDebit {
			return amount.Neg(), nil
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type %q", accountType)
	}
	return amount, nil
}

// IsMoney reports whether d carries no more than two decimal places.
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(domain.MoneyPlaces))
}

// ValidateEntries checks the structural rules of a voucher's entries: at least two
// lines, positive amounts with money precision, known directions, and equal debit and
// credit totals compared exactly.
func ValidateEntries(entries []domain.Entry) error {
	if len(entries) < 2 {
		return apperrors.NewValidationError("entries", "a voucher needs at least two entries")
	}
	for i, e := range entries {
		field := fmt.Sprintf("entries[%d]", i)
		if e.AccountID == "" {
			return apperrors.NewValidationError(field+".accountID", "is required")
		}
		if !e.Direction.IsValid() {
			return apperrors.NewValidationError(field+".direction", "must be DEBIT or CREDIT")
		}
		if !e.Amount.IsPositive() {
			return apperrors.NewValidationError(field+".amount", "must be greater than zero")
		}
		if !IsMoney(e.Amount) {
			return apperrors.NewValidationError(field+".amount", "must have at most 2 decimal places")
		}
	}
	v := domain.Voucher{Entries: entries}
	debits, credits := v.Totals()
	if !debits.Equal(credits) {
		return &apperrors.UnbalancedEntryError{DebitTotal: debits, CreditTotal: credits}
	}
	return nil
}

// BalanceDeltas computes the signed change per account for posting entries, and the
// per-entry deltas in entry order.
func BalanceDeltas(entries []domain.Entry, accounts map[string]domain.Account) (map[string]decimal.Decimal, []decimal.Decimal, error) {
	perAccount := make(map[string]decimal.Decimal, len(entries))
	perEntry := make([]decimal.Decimal, len(entries))
	for i, e := range entries {
		acc, ok := accounts[e.AccountID]
		if !ok {
			return nil, nil, apperrors.NewNotFoundError("account", e.AccountID)
		}
		delta, err := SignedAmount(acc.AccountType, e.Direction, e.Amount)
		if err != nil {
			return nil, nil, fmt.Errorf("entry %d: %w", i, err)
		}
		perEntry[i] = delta
		perAccount[e.AccountID] = perAccount[e.AccountID].Add(delta)
	}
	return perAccount, perEntry, nil
}

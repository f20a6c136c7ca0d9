package accounting

import (
	"errors"
	"testing"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedAmount(t *testing.T) {
	hundred := decimal.NewFromInt(100)
	cases := []struct {
		accountType domain.AccountType
		direction   domain.Direction
		want        decimal.Decimal
	}{
		{domain.Asset, domain.Debit, hundred},
		{domain.Asset, domain.Credit, hundred.Neg()},
		{domain.Expense, domain.Debit, hundred},
		{domain.Expense, domain.Credit, hundred.Neg()},
		{domain.Liability, domain.Debit, hundred.Neg()},
		{domain.Liability, domain.Credit, hundred},
		{domain.Equity, domain.Credit, hundred},
		{domain.Income, domain.Credit, hundred},
		{domain.Income, domain.Debit, hundred.Neg()},
	}
	for _, tc := range cases {
		got, err := SignedAmount(tc.accountType, tc.direction, hundred)
		require.NoError(t, err)
		assert.Truef(t, tc.want.Equal(got), "%s %s: want %s got %s", tc.direction, tc.accountType, tc.want, got)
	}

	_, err := SignedAmount("BOGUS", domain.Debit, hundred)
	assert.Error(t, err)
}

func TestValidateEntries(t *testing.T) {
	entry := func(dir domain.Direction, amount string) domain.Entry {
		return domain.Entry{AccountID: "acc", Direction: dir, Amount: decimal.RequireFromString(amount)}
	}

	t.Run("balanced", func(t *testing.T) {
		err := ValidateEntries([]domain.Entry{entry(domain.Debit, "60.10"), entry(domain.Debit, "39.90"), entry(domain.Credit, "100")})
		assert.NoError(t, err)
	})

	t.Run("single entry", func(t *testing.T) {
		err := ValidateEntries([]domain.Entry{entry(domain.Debit, "100")})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("unbalanced carries totals", func(t *testing.T) {
		err := ValidateEntries([]domain.Entry{entry(domain.Debit, "100"), entry(domain.Credit, "99.99")})
		var unbalanced *apperrors.UnbalancedEntryError
		require.True(t, errors.As(err, &unbalanced))
		assert.Equal(t, "100.00", unbalanced.DebitTotal.StringFixed(2))
		assert.Equal(t, "99.99", unbalanced.CreditTotal.StringFixed(2))
		assert.ErrorIs(t, err, apperrors.ErrUnbalancedEntry)
	})

	t.Run("zero amount", func(t *testing.T) {
		err := ValidateEntries([]domain.Entry{entry(domain.Debit, "0"), entry(domain.Credit, "0")})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("sub-cent amount", func(t *testing.T) {
		err := ValidateEntries([]domain.Entry{entry(domain.Debit, "1.005"), entry(domain.Credit, "1.005")})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestBalanceDeltas(t *testing.T) {
	accounts := map[string]domain.Account{
		"cash":    {AccountID: "cash", AccountType: domain.Asset},
		"revenue": {AccountID: "revenue", AccountType: domain.Income},
	}
	entries := []domain.Entry{
		{AccountID: "cash", Direction: domain.Debit, Amount: decimal.NewFromInt(100)},
		{AccountID: "revenue", Direction: domain.Credit, Amount: decimal.NewFromInt(100)},
	}

	perAccount, perEntry, err := BalanceDeltas(entries, accounts)
	require.NoError(t, err)
	assert.True(t, perAccount["cash"].Equal(decimal.NewFromInt(100)))
	assert.True(t, perAccount["revenue"].Equal(decimal.NewFromInt(100)))
	assert.Len(t, perEntry, 2)

	_, _, err = BalanceDeltas([]domain.Entry{{AccountID: "missing", Direction: domain.Debit, Amount: decimal.NewFromInt(1)}}, accounts)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

package accounting

import (
	"testing"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acct(id, code string, parent string, balance int64) domain.Account {
	a := domain.Account{AccountID: id, Code: code, Name: id, AccountType: domain.Asset, Balance: decimal.NewFromInt(balance)}
	if parent != "" {
		a.ParentAccountID = &parent
	}
	return a
}

func TestBuildForest_EffectiveBalance(t *testing.T) {
	accounts := []domain.Account{
		acct("C", "1003", "A", -20),
		acct("A", "1001", "", 100),
		acct("B", "1002", "A", 50),
		acct("D", "1004", "B", 5),
		acct("X", "2001", "", 7),
	}

	forest, err := BuildForest(accounts)
	require.NoError(t, err)
	require.Len(t, forest, 2)
	assert.Equal(t, "A", forest[0].AccountID)
	assert.Equal(t, "X", forest[1].AccountID)

	a := FindNode(forest, "A")
	require.NotNil(t, a)
	assert.True(t, decimal.NewFromInt(135).Equal(a.EffectiveBalance), a.EffectiveBalance.String())
	require.Len(t, a.Children, 2)
	assert.Equal(t, "B", a.Children[0].AccountID)
	assert.Equal(t, "C", a.Children[1].AccountID)

	balances := EffectiveBalances(forest)
	assert.True(t, decimal.NewFromInt(55).Equal(balances["B"]))
	assert.True(t, decimal.NewFromInt(-20).Equal(balances["C"]))
	assert.True(t, decimal.NewFromInt(7).Equal(balances["X"]))
}

func TestBuildForest_ParentSumLaw(t *testing.T) {
	accounts := []domain.Account{
		acct("A", "1", "", 100),
		acct("B", "2", "A", 50),
		acct("C", "3", "A", -20),
	}
	forest, err := BuildForest(accounts)
	require.NoError(t, err)
	a := FindNode(forest, "A")
	sum := a.Balance
	for _, child := range a.Children {
		sum = sum.Add(child.EffectiveBalance)
	}
	assert.True(t, decimal.NewFromInt(130).Equal(a.EffectiveBalance))
	assert.True(t, sum.Equal(a.EffectiveBalance))
}

func TestBuildForest_MissingParentIsRoot(t *testing.T) {
	forest, err := BuildForest([]domain.Account{acct("B", "2", "gone", 3)})
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, "B", forest[0].AccountID)
}

func TestBuildForest_CycleReported(t *testing.T) {
	accounts := []domain.Account{
		acct("R", "0", "", 1),
		acct("A", "1", "B", 1),
		acct("B", "2", "A", 1),
	}
	_, err := BuildForest(accounts)
	var cycle *apperrors.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.NotEqual(t, "R", cycle.AccountID)
	assert.ErrorIs(t, err, apperrors.ErrCycle)
}

func TestWouldCycle(t *testing.T) {
	parents := map[string]string{"B": "A", "C": "B", "A": ""}

	assert.True(t, WouldCycle(parents, "A", "A"))
	assert.True(t, WouldCycle(parents, "A", "C"))
	assert.True(t, WouldCycle(parents, "B", "C"))
	assert.False(t, WouldCycle(parents, "C", "A"))
	assert.False(t, WouldCycle(parents, "A", ""))
}

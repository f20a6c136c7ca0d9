package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount(id, code string, t domain.AccountType) domain.Account {
	return domain.Account{
		AccountID:   id,
		Code:        code,
		Name:        "acc " + code,
		AccountType: t,
		Balance:     decimal.Zero,
		AuditFields: domain.NewAuditFields("tester", time.Now()),
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SaveAccount(ctx, testAccount("a1", "1001", domain.Asset)))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.SaveAccount(ctx, testAccount("a2", "1002", domain.Asset)))
		require.NoError(t, s.UpdateAccountBalances(ctx, map[string]decimal.Decimal{"a1": decimal.NewFromInt(50)}, "tester", time.Now()))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.FindAccountByID(ctx, "a2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	acc, err := s.FindAccountByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, acc.Balance.IsZero())
	assert.Equal(t, int64(1), acc.Version)
}

func TestWithinTx_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		return s.WithinTx(ctx, func(ctx context.Context) error {
			return s.SaveAccount(ctx, testAccount("a1", "1001", domain.Asset))
		})
	})
	require.NoError(t, err)
	n, err := s.CountAccountsByType(ctx, domain.Asset)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpdateAccount_VersionConflict(t *testing.T) {
	ctx := context.Background()
	s := New()
	acc := testAccount("a1", "1001", domain.Asset)
	require.NoError(t, s.SaveAccount(ctx, acc))

	acc.Name = "renamed"
	require.NoError(t, s.UpdateAccount(ctx, acc))

	stale := acc
	stale.Name = "stale write"
	err := s.UpdateAccount(ctx, stale)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	got, err := s.FindAccountByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, int64(2), got.Version)
}

func TestSaveAccount_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SaveAccount(ctx, testAccount("a1", "1001", domain.Asset)))
	err := s.SaveAccount(ctx, testAccount("a2", "1001", domain.Asset))
	var dup *apperrors.DuplicateCodeError
	assert.ErrorAs(t, err, &dup)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestUpdateItem_EntryLinkedOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	require.NoError(t, s.SaveStatement(ctx, domain.BankStatement{StatementID: "s1", AccountID: "bank", AuditFields: domain.NewAuditFields("tester", now)}))
	items := []domain.StatementItem{
		{ItemID: "i1", StatementID: "s1", Amount: decimal.NewFromInt(10), AuditFields: domain.NewAuditFields("tester", now)},
		{ItemID: "i2", StatementID: "s1", Amount: decimal.NewFromInt(10), AuditFields: domain.NewAuditFields("tester", now.Add(time.Second))},
	}
	require.NoError(t, s.SaveItems(ctx, items))

	first := items[0]
	first.LinkTo("e1", "tester", now)
	require.NoError(t, s.UpdateItem(ctx, first))

	second := items[1]
	second.LinkTo("e1", "tester", now)
	err := s.UpdateItem(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyReconciled)

	linked, err := s.FindItemByEntryID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "i1", linked.ItemID)

	stmt, err := s.FindStatementByID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, stmt.Items, 2)
	assert.Equal(t, domain.StatementReconciled, stmt.DeriveStatus())
}

func TestListVouchers_CursorOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		seq, err := s.NextVoucherSequence(ctx)
		require.NoError(t, err)
		require.NoError(t, s.SaveVoucher(ctx, domain.Voucher{
			VoucherID:   domain.FormatVoucherNo(seq),
			SequenceNo:  seq,
			VoucherNo:   domain.FormatVoucherNo(seq),
			Date:        day,
			AuditFields: domain.NewAuditFields("tester", day),
		}))
	}

	page, err := s.ListVouchers(ctx, domain.VoucherFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].SequenceNo)
	assert.Equal(t, int64(2), page[1].SequenceNo)

	rest, err := s.ListVouchers(ctx, domain.VoucherFilter{Limit: 2, AfterDate: &page[1].Date, AfterSeq: page[1].SequenceNo})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, int64(1), rest[0].SequenceNo)
}

func TestNextVoucherSequence_NotReusedAfterRollback(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.WithinTx(ctx, func(ctx context.Context) error {
		_, err := s.NextVoucherSequence(ctx)
		require.NoError(t, err)
		return errors.New("abort")
	})
	seq, err := s.NextVoucherSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
}

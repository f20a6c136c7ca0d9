package services_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type VoucherServiceTestSuite struct {
	ledgerSuite
	cash    *domain.Account
	revenue *domain.Account
}

func (s *VoucherServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.cash = s.account("Cash", domain.Asset, true, "", nil)
	s.revenue = s.account("Sales", domain.Income, false, "", nil)
}

func TestVoucherServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VoucherServiceTestSuite))
}

func (s *VoucherServiceTestSuite) TestCreateVoucher_AssignsSequentialNumbers() {
	first := s.voucher(s.cash.AccountID, s.revenue.AccountID, "10.00")
	second := s.voucher(s.cash.AccountID, s.revenue.AccountID, "20.00")

	s.Equal("V-000001", first.VoucherNo)
	s.Equal("V-000002", second.VoucherNo)
	s.False(first.Posted)
	s.Equal(domain.Unreviewed, first.ReviewStatus)
	s.True(s.balance(s.cash.AccountID).IsZero(), "creating a voucher must not touch balances")
}

func (s *VoucherServiceTestSuite) TestCreateVoucher_Unbalanced() {
	_, err := s.svc.Voucher.CreateVoucher(s.ctx, dto.CreateVoucherRequest{
		Date: day(2024, time.March, 1),
		Entries: []dto.EntryRequest{
			{AccountID: s.cash.AccountID, Direction: domain.Debit, Amount: money("100.00")},
			{AccountID: s.revenue.AccountID, Direction: domain.Credit, Amount: money("90.00")},
		},
	}, s.userID)

	s.Require().Error(err)
	var unbalanced *apperrors.UnbalancedEntryError
	s.Require().ErrorAs(err, &unbalanced)
	s.True(unbalanced.DebitTotal.Equal(money("100")))
	s.True(unbalanced.CreditTotal.Equal(money("90")))
}

func (s *VoucherServiceTestSuite) TestCreateVoucher_UnknownAccount() {
	_, err := s.svc.Voucher.CreateVoucher(s.ctx, dto.CreateVoucherRequest{
		Date: day(2024, time.March, 1),
		Entries: []dto.EntryRequest{
			{AccountID: s.cash.AccountID, Direction: domain.Debit, Amount: money("5.00")},
			{AccountID: "missing", Direction: domain.Credit, Amount: money("5.00")},
		},
	}, s.userID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *VoucherServiceTestSuite) TestCreateVoucher_RequiresActor() {
	_, err := s.svc.Voucher.CreateVoucher(s.ctx, dto.CreateVoucherRequest{Date: day(2024, time.March, 1)}, "")
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *VoucherServiceTestSuite) TestPostAndUnpost_RoundTrip() {
	v := s.voucher(s.cash.AccountID, s.revenue.AccountID, "100.00")

	posted, err := s.svc.Voucher.PostVoucher(s.ctx, v.VoucherID, s.userID)
	s.Require().NoError(err)
	s.True(posted.Posted)
	s.Require().NotNil(posted.PostedAt)
	s.Equal(fixedNow, *posted.PostedAt)
	s.True(s.balance(s.cash.AccountID).Equal(money("100")))
	s.True(s.balance(s.revenue.AccountID).Equal(money("100")))

	unposted, err := s.svc.Voucher.UnpostVoucher(s.ctx, v.VoucherID, s.userID)
	s.Require().NoError(err)
	s.False(unposted.Posted)
	s.Nil(unposted.PostedAt)
	s.True(s.balance(s.cash.AccountID).IsZero())
	s.True(s.balance(s.revenue.AccountID).IsZero())
}

func (s *VoucherServiceTestSuite) TestPostVoucher_Twice() {
	v := s.postedVoucher(s.cash.AccountID, s.revenue.AccountID, "40.00")

	_, err := s.svc.Voucher.PostVoucher(s.ctx, v.VoucherID, s.userID)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.True(s.balance(s.cash.AccountID).Equal(money("40")), "second post must not apply twice")
}

func (s *VoucherServiceTestSuite) TestPostVoucher_ParallelKeepsExactBalance() {
	const count = 50
	ids := make([]string, count)
	want := decimal.Zero
	for i := range ids {
		amount := fmt.Sprintf("%d.%02d", i+1, i)
		ids[i] = s.voucher(s.cash.AccountID, s.revenue.AccountID, amount).VoucherID
		want = want.Add(money(amount))
	}

	errs := make([]error, count)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.svc.Voucher.PostVoucher(s.ctx, id, s.userID)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		s.NoError(err, "voucher %d", i)
	}
	s.True(s.balance(s.cash.AccountID).Equal(want), "cash balance %s, want %s", s.balance(s.cash.AccountID), want)
	s.True(s.balance(s.revenue.AccountID).Equal(want))
}

func (s *VoucherServiceTestSuite) TestUnpostVoucher_NotPosted() {
	v := s.voucher(s.cash.AccountID, s.revenue.AccountID, "40.00")
	_, err := s.svc.Voucher.UnpostVoucher(s.ctx, v.VoucherID, s.userID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *VoucherServiceTestSuite) TestPostedVoucher_IsImmutable() {
	v := s.postedVoucher(s.cash.AccountID, s.revenue.AccountID, "25.00")

	_, err := s.svc.Voucher.UpdateVoucher(s.ctx, v.VoucherID, dto.UpdateVoucherRequest{
		Date: day(2024, time.March, 2),
		Entries: []dto.EntryRequest{
			{AccountID: s.cash.AccountID, Direction: domain.Debit, Amount: money("30.00")},
			{AccountID: s.revenue.AccountID, Direction: domain.Credit, Amount: money("30.00")},
		},
	}, s.userID)
	s.ErrorIs(err, apperrors.ErrPostedVoucherImmutable)

	err = s.svc.Voucher.DeleteVoucher(s.ctx, v.VoucherID, s.userID)
	s.ErrorIs(err, apperrors.ErrPostedVoucherImmutable)

	stored, err := s.svc.Voucher.GetVoucherByID(s.ctx, v.VoucherID)
	s.Require().NoError(err)
	s.True(stored.Entries[0].Amount.Equal(money("25")))
}

func (s *VoucherServiceTestSuite) TestReviewVoucher_DoesNotGatePosting() {
	v := s.voucher(s.cash.AccountID, s.revenue.AccountID, "12.50")

	reviewed, err := s.svc.Voucher.ReviewVoucher(s.ctx, v.VoucherID, dto.ReviewVoucherRequest{ReviewStatus: domain.Rejected}, s.userID)
	s.Require().NoError(err)
	s.Equal(domain.Rejected, reviewed.ReviewStatus)

	_, err = s.svc.Voucher.PostVoucher(s.ctx, v.VoucherID, s.userID)
	s.NoError(err)
}

func (s *VoucherServiceTestSuite) TestListVouchers_Paginates() {
	for i := 0; i < 5; i++ {
		s.voucher(s.cash.AccountID, s.revenue.AccountID, "1.00")
	}

	page, err := s.svc.Voucher.ListVouchers(s.ctx, dto.ListVouchersParams{Limit: 2})
	s.Require().NoError(err)
	s.Len(page.Vouchers, 2)
	s.Require().NotNil(page.NextToken)
	s.Equal("V-000005", page.Vouchers[0].VoucherNo)

	seen := map[string]bool{}
	for _, v := range page.Vouchers {
		seen[v.VoucherNo] = true
	}
	token := *page.NextToken
	for token != "" {
		next, err := s.svc.Voucher.ListVouchers(s.ctx, dto.ListVouchersParams{Limit: 2, NextToken: token})
		s.Require().NoError(err)
		for _, v := range next.Vouchers {
			s.False(seen[v.VoucherNo], "voucher %s returned twice", v.VoucherNo)
			seen[v.VoucherNo] = true
		}
		token = ""
		if next.NextToken != nil {
			token = *next.NextToken
		}
	}
	s.Len(seen, 5)
}

func (s *VoucherServiceTestSuite) TestListVouchers_InvalidToken() {
	_, err := s.svc.Voucher.ListVouchers(s.ctx, dto.ListVouchersParams{Limit: 2, NextToken: "not-a-token"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

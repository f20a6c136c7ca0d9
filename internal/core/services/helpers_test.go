package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/repositories/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		StorageDriver:        config.StorageMemory,
		JWTSecret:            "test-secret",
		JWTExpiryDuration:    time.Hour,
		JWTIssuer:            "ledger-core-test",
		AccountsPayableCode:  "2202",
		TaxPayableCode:       "2221",
		ConflictRetries:      3,
		DefaultPaymentMethod: "bank_transfer",
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) dto.Date {
	return dto.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// ledgerSuite runs services against a fresh in-memory store.
type ledgerSuite struct {
	suite.Suite
	ctx    context.Context
	store  *memory.Store
	svc    *portssvc.ServiceContainer
	userID string
}

func (s *ledgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.svc = services.NewServiceContainer(testConfig(), memory.NewRepositoryProvider(s.store),
		services.WithClock(func() time.Time { return fixedNow }))
	s.userID = uuid.NewString()
}

func (s *ledgerSuite) account(name string, t domain.AccountType, isBank bool, opening string, parentID *string) *domain.Account {
	req := dto.CreateAccountRequest{Name: name, AccountType: t, IsBank: isBank, ParentAccountID: parentID}
	if opening != "" {
		b := money(opening)
		req.OpeningBalance = &b
	}
	acc, err := s.svc.Account.CreateAccount(s.ctx, req, s.userID)
	s.Require().NoError(err)
	return acc
}

func (s *ledgerSuite) balance(accountID string) decimal.Decimal {
	acc, err := s.svc.Account.GetAccountByID(s.ctx, accountID)
	s.Require().NoError(err)
	return acc.Balance
}

// voucher records a two-line voucher debiting debitID and crediting creditID.
func (s *ledgerSuite) voucher(debitID, creditID, amount string) *domain.Voucher {
	v, err := s.svc.Voucher.CreateVoucher(s.ctx, dto.CreateVoucherRequest{
		Date:        day(2024, time.March, 10),
		Description: "test voucher",
		Entries: []dto.EntryRequest{
			{AccountID: debitID, Direction: domain.Debit, Amount: money(amount)},
			{AccountID: creditID, Direction: domain.Credit, Amount: money(amount)},
		},
	}, s.userID)
	s.Require().NoError(err)
	return v
}

func (s *ledgerSuite) postedVoucher(debitID, creditID, amount string) *domain.Voucher {
	v := s.voucher(debitID, creditID, amount)
	posted, err := s.svc.Voucher.PostVoucher(s.ctx, v.VoucherID, s.userID)
	s.Require().NoError(err)
	return posted
}

func (s *ledgerSuite) newVendor(name string) *domain.Vendor {
	v, err := s.svc.Vendor.CreateVendor(s.ctx, dto.CreateVendorRequest{Name: name}, s.userID)
	s.Require().NoError(err)
	return v
}

package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/stretchr/testify/suite"
)

type ReportingServiceTestSuite struct {
	ledgerSuite
	bank    *domain.Account
	capital *domain.Account
	sales   *domain.Account
	rent    *domain.Account
}

func (s *ReportingServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.bank = s.account("Bank", domain.Asset, true, "1000.00", nil)
	s.capital = s.account("Capital", domain.Equity, false, "1000.00", nil)
	s.sales = s.account("Sales", domain.Income, false, "", nil)
	s.rent = s.account("Rent", domain.Expense, false, "", nil)
	s.postedVoucher(s.bank.AccountID, s.sales.AccountID, "200.00")
	s.postedVoucher(s.rent.AccountID, s.bank.AccountID, "50.00")
	// drafts never reach the ledger
	s.voucher(s.rent.AccountID, s.bank.AccountID, "999.00")
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

func (s *ReportingServiceTestSuite) TestBalanceSheet_Balances() {
	report, err := s.svc.Reporting.BalanceSheet(s.ctx)
	s.Require().NoError(err)
	s.True(report.TotalAssets.Equal(money("1150.00")))
	s.True(report.TotalEquity.Equal(money("1000.00")))
	s.True(report.NetIncome.Equal(money("150.00")))
	s.True(report.Balanced)
	s.Len(report.Assets, 1)
	s.Empty(report.Liabilities)
}

func (s *ReportingServiceTestSuite) TestIncomeStatement_Range() {
	report, err := s.svc.Reporting.IncomeStatement(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.True(report.NetIncome.Equal(money("150.00")))

	// the end date is inclusive
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	report, err = s.svc.Reporting.IncomeStatement(s.ctx, &from, &to)
	s.Require().NoError(err)
	s.True(report.TotalIncome.Equal(money("200.00")))
	s.True(report.TotalExpense.Equal(money("50.00")))

	from = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	to = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	report, err = s.svc.Reporting.IncomeStatement(s.ctx, &from, &to)
	s.Require().NoError(err)
	s.True(report.TotalIncome.IsZero())
	s.True(report.NetIncome.IsZero())
}

func (s *ReportingServiceTestSuite) TestCashFlow() {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	report, err := s.svc.Reporting.CashFlow(s.ctx, &from, &to)
	s.Require().NoError(err)
	s.Require().Len(report.Accounts, 1)
	s.True(report.TotalInflow.Equal(money("200.00")))
	s.True(report.TotalOutflow.Equal(money("50.00")))
	s.True(report.Accounts[0].Net.Equal(money("150.00")))
	s.True(report.TotalCash.Equal(money("1150.00")))
}

func (s *ReportingServiceTestSuite) TestDashboard() {
	supplier := s.newVendor("Northwind")
	_, err := s.svc.Bill.CreateBill(s.ctx, dto.CreateBillRequest{
		VendorID: supplier.VendorID,
		Amount:   money("75.00"),
		DueDate:  day(2024, time.April, 1),
		Status:   domain.BillAwaitingPayment,
	}, s.userID)
	s.Require().NoError(err)

	d, err := s.svc.Reporting.Dashboard(s.ctx)
	s.Require().NoError(err)
	s.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d.MonthStart)
	s.True(d.MonthlyIncome.Equal(money("200.00")))
	s.True(d.MonthlyExpense.Equal(money("50.00")))
	s.True(d.MonthlyBalance.Equal(money("150.00")))
	s.Equal(3, d.MonthlyVouchers)
	s.Equal(4, d.TotalAccounts)
	s.Equal(1, d.TotalVendors)
	s.Equal(2, d.UnreconciledEntries)
	s.Equal(1, d.AwaitingPaymentCount)
	s.True(d.AwaitingPaymentTotal.Equal(money("75.00")))
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportLine is one account row of a financial report.
type ReportLine struct {
	AccountID        string          `json:"accountID"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	ParentAccountID  *string         `json:"parentAccountID,omitempty"`
	Balance          decimal.Decimal `json:"balance"`
	EffectiveBalance decimal.Decimal `json:"effectiveBalance"`
}

// BalanceSheetReport lists balance sheet accounts. Totals are sums of own balances,
// which equals the sum of root effective balances.
type BalanceSheetReport struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []ReportLine    `json:"assets"`
	Liabilities      []ReportLine    `json:"liabilities"`
	Equity           []ReportLine    `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	NetIncome        decimal.Decimal `json:"netIncome"`
	Balanced         bool            `json:"balanced"`
}

// IncomeStatementReport lists income and expense accounts. When From/To are set the
// amounts are posted activity within the range, otherwise current balances.
type IncomeStatementReport struct {
	From         *time.Time      `json:"from,omitempty"`
	To           *time.Time      `json:"to,omitempty"`
	Income       []ReportLine    `json:"income"`
	Expenses     []ReportLine    `json:"expenses"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	NetIncome    decimal.Decimal `json:"netIncome"`
}

// CashFlowLine is the movement of one cash or bank account.
type CashFlowLine struct {
	ReportLine
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
}

// CashFlowReport summarises cash and bank accounts.
type CashFlowReport struct {
	From         *time.Time      `json:"from,omitempty"`
	To           *time.Time      `json:"to,omitempty"`
	Accounts     []CashFlowLine  `json:"accounts"`
	TotalCash    decimal.Decimal `json:"totalCash"`
	TotalInflow  decimal.Decimal `json:"totalInflow"`
	TotalOutflow decimal.Decimal `json:"totalOutflow"`
}

// Dashboard aggregates headline figures for the console landing page.
type Dashboard struct {
	MonthStart           time.Time       `json:"monthStart"`
	MonthlyIncome        decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpense       decimal.Decimal `json:"monthlyExpense"`
	MonthlyBalance       decimal.Decimal `json:"monthlyBalance"`
	TotalAssets          decimal.Decimal `json:"totalAssets"`
	TotalLiabilities     decimal.Decimal `json:"totalLiabilities"`
	TotalEquity          decimal.Decimal `json:"totalEquity"`
	TotalAccounts        int             `json:"totalAccounts"`
	MonthlyVouchers      int             `json:"monthlyVouchers"`
	TotalVendors         int             `json:"totalVendors"`
	TotalUsers           int             `json:"totalUsers"`
	UnreconciledEntries  int             `json:"unreconciledEntries"`
	AwaitingPaymentCount int             `json:"awaitingPaymentCount"`
	AwaitingPaymentTotal decimal.Decimal `json:"awaitingPaymentTotal"`
}

package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// BalanceSheet reports current balances of asset, liability and equity accounts.
	BalanceSheet(ctx context.Context) (*domain.BalanceSheetReport, error)

	// IncomeStatement reports income and expense. With a range it uses posted
	// activity for vouchers dated from..to inclusive, otherwise current balances.
	IncomeStatement(ctx context.Context, from, to *time.Time) (*domain.IncomeStatementReport, error)

	// CashFlow reports cash and bank accounts, with inflow and outflow when a range is given.
	CashFlow(ctx context.Context, from, to *time.Time) (*domain.CashFlowReport, error)

	// Dashboard aggregates headline figures for the current month.
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
}

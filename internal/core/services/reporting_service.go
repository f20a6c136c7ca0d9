package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	voucherRepo portsrepo.VoucherReader
	vendorRepo  portsrepo.VendorReader
	userRepo    portsrepo.UserReader
	payments    portssvc.PaymentSvcFacade
}

// NewReportingService creates the read-only reporting service. payments supplies the
// awaiting-payment figures of the dashboard.
func NewReportingService(repos portsrepo.RepositoryProvider, payments portssvc.PaymentSvcFacade, opts ...Option) portssvc.ReportingService {
	svc := &reportingService{
		accountRepo: repos.AccountRepo,
		voucherRepo: repos.VoucherRepo,
		vendorRepo:  repos.VendorRepo,
		userRepo:    repos.UserRepo,
		payments:    payments,
	}
	applyOptions(svc, opts)
	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// reportLines flattens the forest depth first, keeping accounts of the given type.
func reportLines(forest []domain.AccountNode, accountType domain.AccountType) []domain.ReportLine {
	lines := []domain.ReportLine{}
	var walk func(nodes []domain.AccountNode)
	walk = func(nodes []domain.AccountNode) {
		for _, n := range nodes {
			if n.AccountType == accountType {
				lines = append(lines, domain.ReportLine{
					AccountID:        n.AccountID,
					Code:             n.Code,
					Name:             n.Name,
					ParentAccountID:  n.ParentAccountID,
					Balance:          n.Balance,
					EffectiveBalance: n.EffectiveBalance,
				})
			}
			walk(n.Children)
		}
	}
	walk(forest)
	return lines
}

func sumBalances(lines []domain.ReportLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Balance)
	}
	return total
}

func totalsByType(accounts []domain.Account) map[domain.AccountType]decimal.Decimal {
	totals := make(map[domain.AccountType]decimal.Decimal, len(domain.AllAccountTypes))
	for _, t := range domain.AllAccountTypes {
		totals[t] = decimal.Zero
	}
	for _, a := range accounts {
		totals[a.AccountType] = totals[a.AccountType].Add(a.Balance)
	}
	return totals
}

// activityRange converts an inclusive from..to date range to the half-open bounds
// used by activity queries.
func activityRange(from, to *time.Time) (*time.Time, *time.Time) {
	var lo, hi *time.Time
	if from != nil {
		f := calendarDate(*from)
		lo = &f
	}
	if to != nil {
		t := calendarDate(*to).AddDate(0, 0, 1)
		hi = &t
	}
	return lo, hi
}

func (s *reportingService) forest(ctx context.Context, accounts []domain.Account) ([]domain.AccountNode, error) {
	forest, err := accounting.BuildForest(accounts)
	if err != nil {
		s.LogError(ctx, err, "Account hierarchy is inconsistent")
		return nil, err
	}
	return forest, nil
}

func (s *reportingService) BalanceSheet(ctx context.Context) (*domain.BalanceSheetReport, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	forest, err := s.forest(ctx, accounts)
	if err != nil {
		return nil, err
	}
	totals := totalsByType(accounts)
	report := &domain.BalanceSheetReport{
		AsOf:             s.Now(),
		Assets:           reportLines(forest, domain.Asset),
		Liabilities:      reportLines(forest, domain.Liability),
		Equity:           reportLines(forest, domain.Equity),
		TotalAssets:      totals[domain.Asset],
		TotalLiabilities: totals[domain.Liability],
		TotalEquity:      totals[domain.Equity],
		NetIncome:        totals[domain.Income].Sub(totals[domain.Expense]),
	}
	report.Balanced = report.TotalAssets.Equal(report.TotalLiabilities.Add(report.TotalEquity).Add(report.NetIncome))
	s.LogDebug(ctx, "Balance sheet generated", slog.Bool("balanced", report.Balanced))
	return report, nil
}

// withActivity returns a copy of accounts whose balances are replaced by the normal-side
// net of posted activity in the range.
func withActivity(accounts []domain.Account, activity []domain.AccountActivity) []domain.Account {
	byID := make(map[string]domain.AccountActivity, len(activity))
	for _, a := range activity {
		byID[a.AccountID] = a
	}
	out := make([]domain.Account, len(accounts))
	for i, a := range accounts {
		act := byID[a.AccountID]
		net := act.Credits.Sub(act.Debits)
		if a.AccountType.IsDebitNormal() {
			net = act.Debits.Sub(act.Credits)
		}
		a.Balance = net
		out[i] = a
	}
	return out
}

func (s *reportingService) IncomeStatement(ctx context.Context, from, to *time.Time) (*domain.IncomeStatementReport, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if from != nil || to != nil {
		lo, hi := activityRange(from, to)
		activity, err := s.voucherRepo.SumPostedActivity(ctx, lo, hi)
		if err != nil {
			return nil, fmt.Errorf("failed to sum posted activity: %w", err)
		}
		accounts = withActivity(accounts, activity)
	}
	forest, err := s.forest(ctx, accounts)
	if err != nil {
		return nil, err
	}
	report := &domain.IncomeStatementReport{
		From:     from,
		To:       to,
		Income:   reportLines(forest, domain.Income),
		Expenses: reportLines(forest, domain.Expense),
	}
	report.TotalIncome = sumBalances(report.Income)
	report.TotalExpense = sumBalances(report.Expenses)
	report.NetIncome = report.TotalIncome.Sub(report.TotalExpense)
	return report, nil
}

func (s *reportingService) CashFlow(ctx context.Context, from, to *time.Time) (*domain.CashFlowReport, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	forest, err := s.forest(ctx, accounts)
	if err != nil {
		return nil, err
	}
	effective := accounting.EffectiveBalances(forest)

	byID := map[string]domain.AccountActivity{}
	if from != nil || to != nil {
		lo, hi := activityRange(from, to)
		activity, err := s.voucherRepo.SumPostedActivity(ctx, lo, hi)
		if err != nil {
			return nil, fmt.Errorf("failed to sum posted activity: %w", err)
		}
		for _, a := range activity {
			byID[a.AccountID] = a
		}
	}

	report := &domain.CashFlowReport{
		From:         from,
		To:           to,
		Accounts:     []domain.CashFlowLine{},
		TotalCash:    decimal.Zero,
		TotalInflow:  decimal.Zero,
		TotalOutflow: decimal.Zero,
	}
	for _, a := range accounts {
		if !a.IsBank {
			continue
		}
		act := byID[a.AccountID]
		line := domain.CashFlowLine{
			ReportLine: domain.ReportLine{
				AccountID:        a.AccountID,
				Code:             a.Code,
				Name:             a.Name,
				ParentAccountID:  a.ParentAccountID,
				Balance:          a.Balance,
				EffectiveBalance: effective[a.AccountID],
			},
			Inflow:  act.Debits,
			Outflow: act.Credits,
			Net:     act.Debits.Sub(act.Credits),
		}
		report.Accounts = append(report.Accounts, line)
		report.TotalCash = report.TotalCash.Add(a.Balance)
		report.TotalInflow = report.TotalInflow.Add(line.Inflow)
		report.TotalOutflow = report.TotalOutflow.Add(line.Outflow)
	}
	return report, nil
}

func monthBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func (s *reportingService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	start, end := monthBounds(s.Now())
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	totals := totalsByType(accounts)

	activity, err := s.voucherRepo.SumPostedActivity(ctx, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("failed to sum posted activity: %w", err)
	}
	monthly := totalsByType(withActivity(accounts, activity))

	vouchers, err := s.voucherRepo.CountVouchers(ctx, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("failed to count vouchers: %w", err)
	}
	vendors, err := s.vendorRepo.CountVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count vendors: %w", err)
	}
	users, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	unreconciled, err := s.voucherRepo.ListUnreconciledBankEntries(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list unreconciled entries: %w", err)
	}
	awaiting, err := s.payments.ListAwaitingPayment(ctx)
	if err != nil {
		return nil, err
	}
	awaitingTotal := decimal.Zero
	for _, r := range awaiting {
		awaitingTotal = awaitingTotal.Add(r.AmountDue())
	}

	return &domain.Dashboard{
		MonthStart:           start,
		MonthlyIncome:        monthly[domain.Income],
		MonthlyExpense:       monthly[domain.Expense],
		MonthlyBalance:       monthly[domain.Income].Sub(monthly[domain.Expense]),
		TotalAssets:          totals[domain.Asset],
		TotalLiabilities:     totals[domain.Liability],
		TotalEquity:          totals[domain.Equity],
		TotalAccounts:        len(accounts),
		MonthlyVouchers:      vouchers,
		TotalVendors:         vendors,
		TotalUsers:           users,
		UnreconciledEntries:  len(unreconciled),
		AwaitingPaymentCount: len(awaiting),
		AwaitingPaymentTotal: awaitingTotal,
	}, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type taxService struct {
	BaseService
	tx          portsrepo.TransactionManager
	taxRepo     portsrepo.TaxDeclarationRepositoryFacade
	accountRepo portsrepo.AccountReader
	voucherRepo portsrepo.VoucherReader
}

// NewTaxService creates the tax declaration service.
func NewTaxService(repos portsrepo.RepositoryProvider, opts ...Option) portssvc.TaxSvcFacade {
	svc := &taxService{
		tx:          repos.Tx,
		taxRepo:     repos.TaxRepo,
		accountRepo: repos.AccountRepo,
		voucherRepo: repos.VoucherRepo,
	}
	applyOptions(svc, opts)
	return svc
}

var _ portssvc.TaxSvcFacade = (*taxService)(nil)

// periodActivity returns income (net credits on income accounts) and purchases (net
// debits on expense accounts) posted in the period.
func (s *taxService) periodActivity(ctx context.Context, period string) (income, purchases decimal.Decimal, err error) {
	from, to, err := domain.PeriodRange(period)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperrors.NewValidationError("period", "must be in YYYY-MM form")
	}
	activity, err := s.voucherRepo.SumPostedActivity(ctx, &from, &to)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum posted activity: %w", err)
	}
	ids := make([]string, len(activity))
	for i, a := range activity {
		ids[i] = a.AccountID
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to load accounts: %w", err)
	}
	income, purchases = decimal.Zero, decimal.Zero
	for _, a := range activity {
		switch accounts[a.AccountID].AccountType {
		case domain.Income:
			income = income.Add(a.Credits.Sub(a.Debits))
		case domain.Expense:
			purchases = purchases.Add(a.Debits.Sub(a.Credits))
		}
	}
	return income, purchases, nil
}

// ComputeTax applies the per-type formulas. rate is a percentage. Results are rounded
// to money precision and the payable never drops below zero.
func ComputeTax(taxType domain.TaxType, income, purchases, rate, deduction decimal.Decimal) domain.TaxCalculation {
	r := rate.Div(hundred)
	calc := domain.TaxCalculation{
		TaxType:         taxType,
		TaxRate:         rate,
		TaxableIncome:   income.Round(domain.MoneyPlaces),
		DeductionAmount: deduction,
		InputTax:        decimal.Zero,
		OutputTax:       decimal.Zero,
	}
	var payable decimal.Decimal
	switch taxType {
	case domain.TaxVAT:
		calc.OutputTax = income.Mul(r).Round(domain.MoneyPlaces)
		calc.InputTax = purchases.Mul(r).Round(domain.MoneyPlaces)
		calc.TaxableAmount = income.Round(domain.MoneyPlaces)
		payable = calc.OutputTax.Sub(calc.InputTax).Sub(deduction)
	case domain.TaxCorporateIncome:
		calc.TaxableAmount = income.Sub(purchases).Round(domain.MoneyPlaces)
		payable = calc.TaxableAmount.Mul(r).Sub(deduction)
	case domain.TaxSurcharge:
		calc.TaxableAmount = income.Round(domain.MoneyPlaces)
		payable = income.Mul(r).Sub(deduction)
	}
	if payable.IsNegative() {
		payable = decimal.Zero
	}
	calc.TaxPayable = payable.Round(domain.MoneyPlaces)
	return calc
}

func (s *taxService) CalculateTax(ctx context.Context, req dto.CalculateTaxRequest) (*domain.TaxCalculation, error) {
	if !req.TaxType.IsValid() {
		return nil, apperrors.NewValidationError("taxType", "unknown tax type")
	}
	if req.TaxRate.IsNegative() || req.TaxRate.GreaterThan(hundred) {
		return nil, apperrors.NewValidationError("taxRate", "must be between 0 and 100")
	}
	if req.DeductionAmount.IsNegative() {
		return nil, apperrors.NewValidationError("deductionAmount", "must not be negative")
	}
	income, purchases, err := s.periodActivity(ctx, req.Period)
	if err != nil {
		return nil, err
	}
	calc := ComputeTax(req.TaxType, income, purchases, req.TaxRate, req.DeductionAmount)
	calc.Period = req.Period
	s.LogDebug(ctx, "Tax calculated",
		slog.String("period", req.Period),
		slog.String("tax_type", string(req.TaxType)),
		slog.String("payable", calc.TaxPayable.StringFixed(2)))
	return &calc, nil
}

func (s *taxService) CreateDeclaration(ctx context.Context, req dto.CreateTaxDeclarationRequest, userID string) (*domain.TaxDeclaration, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	if !req.TaxType.IsValid() {
		return nil, apperrors.NewValidationError("taxType", "unknown tax type")
	}
	period := strings.TrimSpace(req.Period)
	if period == "" {
		return nil, apperrors.NewValidationError("period", "is required")
	}
	decl := domain.TaxDeclaration{
		DeclarationID:   uuid.NewString(),
		Period:          period,
		TaxType:         req.TaxType,
		TaxableIncome:   req.TaxableIncome,
		TaxRate:         req.TaxRate,
		InputTax:        req.InputTax,
		OutputTax:       req.OutputTax,
		TaxableAmount:   req.TaxableAmount,
		DeductionAmount: req.DeductionAmount,
		TaxPayable:      req.TaxPayable,
		Status:          domain.TaxPending,
		AuditFields:     domain.NewAuditFields(userID, s.Now()),
	}
	if err := s.taxRepo.SaveDeclaration(ctx, decl); err != nil {
		s.LogError(ctx, err, "Failed to create tax declaration")
		return nil, err
	}
	s.LogInfo(ctx, "Tax declaration created",
		slog.String("declaration_id", decl.DeclarationID),
		slog.String("period", decl.Period))
	return &decl, nil
}

func (s *taxService) GetDeclarationByID(ctx context.Context, declarationID string) (*domain.TaxDeclaration, error) {
	return s.taxRepo.FindDeclarationByID(ctx, declarationID)
}

func (s *taxService) ListDeclarations(ctx context.Context, status *domain.TaxStatus) ([]domain.TaxDeclaration, error) {
	decls, err := s.taxRepo.ListDeclarations(ctx, status)
	if err != nil {
		s.LogError(ctx, err, "Failed to list tax declarations")
		return nil, fmt.Errorf("failed to list tax declarations: %w", err)
	}
	if decls == nil {
		return []domain.TaxDeclaration{}, nil
	}
	return decls, nil
}

func notEditable(d *domain.TaxDeclaration) error {
	return fmt.Errorf("%w: tax declaration %s is %s", apperrors.ErrInvalidState, d.DeclarationID, d.Status)
}

func (s *taxService) UpdateDeclaration(ctx context.Context, declarationID string, req dto.UpdateTaxDeclarationRequest, userID string) (*domain.TaxDeclaration, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	var updated domain.TaxDeclaration
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		decl, err := s.taxRepo.FindDeclarationByID(ctx, declarationID)
		if err != nil {
			return err
		}
		if !decl.IsEditable() {
			return notEditable(decl)
		}
		if req.Version != nil && *req.Version != decl.Version {
			return apperrors.NewConflictError("tax declaration", declarationID)
		}
		if req.Period != nil {
			decl.Period = strings.TrimSpace(*req.Period)
		}
		if req.TaxType != nil {
			if !req.TaxType.IsValid() {
				return apperrors.NewValidationError("taxType", "unknown tax type")
			}
			decl.TaxType = *req.TaxType
		}
		setDecimal := func(dst *decimal.Decimal, src *decimal.Decimal) {
			if src != nil {
				*dst = *src
			}
		}
		setDecimal(&decl.TaxableIncome, req.TaxableIncome)
		setDecimal(&decl.TaxRate, req.TaxRate)
		setDecimal(&decl.InputTax, req.InputTax)
		setDecimal(&decl.OutputTax, req.OutputTax)
		setDecimal(&decl.TaxableAmount, req.TaxableAmount)
		setDecimal(&decl.DeductionAmount, req.DeductionAmount)
		setDecimal(&decl.TaxPayable, req.TaxPayable)
		decl.Touch(userID, s.Now())
		if err := s.taxRepo.UpdateDeclaration(ctx, *decl); err != nil {
			return err
		}
		decl.Version++
		updated = *decl
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update tax declaration", slog.String("declaration_id", declarationID))
		return nil, err
	}
	return &updated, nil
}

func (s *taxService) DeleteDeclaration(ctx context.Context, declarationID string, userID string) error {
	if err := s.RequireActor(ctx, userID); err != nil {
		return err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		decl, err := s.taxRepo.FindDeclarationByID(ctx, declarationID)
		if err != nil {
			return err
		}
		if !decl.IsEditable() {
			return notEditable(decl)
		}
		return s.taxRepo.DeleteDeclaration(ctx, declarationID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete tax declaration", slog.String("declaration_id", declarationID))
		return err
	}
	return nil
}

// SubmitDeclaration files the declaration. A malformed period or a negative payable
// marks it FAILED with a reason instead of returning an error.
func (s *taxService) SubmitDeclaration(ctx context.Context, declarationID string, userID string) (*domain.TaxDeclaration, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	var submitted domain.TaxDeclaration
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		decl, err := s.taxRepo.FindDeclarationByID(ctx, declarationID)
		if err != nil {
			return err
		}
		if !decl.IsEditable() {
			return notEditable(decl)
		}
		now := s.Now()
		var reason string
		switch {
		case !domain.IsValidTaxPeriod(decl.Period):
			reason = fmt.Sprintf("period %q is not in YYYY-MM form", decl.Period)
		case decl.TaxPayable.IsNegative():
			reason = "tax payable must not be negative"
		}
		if reason != "" {
			decl.Status = domain.TaxFailed
			decl.FailureReason = &reason
			decl.ReceiptNumber = nil
		} else {
			receipt, err := utils.NewReference("TAX", now)
			if err != nil {
				return err
			}
			decl.Status = domain.TaxSuccess
			decl.DeclarationTime = &now
			decl.ReceiptNumber = &receipt
			decl.FailureReason = nil
		}
		decl.Touch(userID, now)
		if err := s.taxRepo.UpdateDeclaration(ctx, *decl); err != nil {
			return err
		}
		decl.Version++
		submitted = *decl
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to submit tax declaration", slog.String("declaration_id", declarationID))
		return nil, err
	}
	s.LogInfo(ctx, "Tax declaration submitted",
		slog.String("declaration_id", declarationID),
		slog.String("status", string(submitted.Status)))
	return &submitted, nil
}

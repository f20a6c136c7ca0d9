package services_test

import (
	"testing"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestComputeTax(t *testing.T) {
	tests := []struct {
		name      string
		taxType   domain.TaxType
		income    string
		purchases string
		rate      string
		deduction string
		taxable   string
		payable   string
	}{
		{"vat", domain.TaxVAT, "1000", "400", "13", "0", "1000", "78"},
		{"vat with deduction", domain.TaxVAT, "1000", "400", "13", "10", "1000", "68"},
		{"vat floors at zero", domain.TaxVAT, "100", "400", "13", "0", "100", "0"},
		{"corporate income", domain.TaxCorporateIncome, "1000", "400", "25", "0", "600", "150"},
		{"surcharge", domain.TaxSurcharge, "1000", "0", "7", "20", "1000", "50"},
		{"rounds to cents", domain.TaxSurcharge, "33.33", "0", "3", "0", "33.33", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := services.ComputeTax(tt.taxType, money(tt.income), money(tt.purchases), money(tt.rate), money(tt.deduction))
			assert.True(t, calc.TaxableAmount.Equal(money(tt.taxable)), "taxable %s", calc.TaxableAmount)
			assert.True(t, calc.TaxPayable.Equal(money(tt.payable)), "payable %s", calc.TaxPayable)
		})
	}
}

type TaxServiceTestSuite struct {
	ledgerSuite
}

func TestTaxServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaxServiceTestSuite))
}

func (s *TaxServiceTestSuite) TestCalculateTax_FromPostedActivity() {
	bank := s.account("Bank", domain.Asset, true, "", nil)
	sales := s.account("Sales", domain.Income, false, "", nil)
	costs := s.account("Materials", domain.Expense, false, "", nil)
	s.postedVoucher(bank.AccountID, sales.AccountID, "1000.00")
	s.postedVoucher(costs.AccountID, bank.AccountID, "400.00")
	s.voucher(bank.AccountID, sales.AccountID, "999.00") // unposted, ignored

	calc, err := s.svc.Tax.CalculateTax(s.ctx, dto.CalculateTaxRequest{
		Period:  "2024-03",
		TaxType: domain.TaxVAT,
		TaxRate: money("13"),
	})
	s.Require().NoError(err)
	s.True(calc.OutputTax.Equal(money("130")))
	s.True(calc.InputTax.Equal(money("52")))
	s.True(calc.TaxPayable.Equal(money("78")))

	other, err := s.svc.Tax.CalculateTax(s.ctx, dto.CalculateTaxRequest{
		Period:  "2024-02",
		TaxType: domain.TaxVAT,
		TaxRate: money("13"),
	})
	s.Require().NoError(err)
	s.True(other.TaxPayable.IsZero())
}

func (s *TaxServiceTestSuite) TestCalculateTax_BadPeriod() {
	_, err := s.svc.Tax.CalculateTax(s.ctx, dto.CalculateTaxRequest{Period: "March", TaxType: domain.TaxVAT, TaxRate: money("13")})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *TaxServiceTestSuite) TestSubmitDeclaration() {
	good, err := s.svc.Tax.CreateDeclaration(s.ctx, dto.CreateTaxDeclarationRequest{
		Period: "2024-02", TaxType: domain.TaxVAT, TaxPayable: money("12.00"),
	}, s.userID)
	s.Require().NoError(err)
	bad, err := s.svc.Tax.CreateDeclaration(s.ctx, dto.CreateTaxDeclarationRequest{
		Period: "2024-2", TaxType: domain.TaxVAT, TaxPayable: money("12.00"),
	}, s.userID)
	s.Require().NoError(err)

	submitted, err := s.svc.Tax.SubmitDeclaration(s.ctx, good.DeclarationID, s.userID)
	s.Require().NoError(err)
	s.Equal(domain.TaxSuccess, submitted.Status)
	s.Require().NotNil(submitted.ReceiptNumber)
	s.Contains(*submitted.ReceiptNumber, "TAX-20240315-")
	s.Require().NotNil(submitted.DeclarationTime)
	s.Equal(fixedNow, *submitted.DeclarationTime)

	failed, err := s.svc.Tax.SubmitDeclaration(s.ctx, bad.DeclarationID, s.userID)
	s.Require().NoError(err)
	s.Equal(domain.TaxFailed, failed.Status)
	s.NotNil(failed.FailureReason)

	// accepted declarations are frozen
	_, err = s.svc.Tax.SubmitDeclaration(s.ctx, good.DeclarationID, s.userID)
	s.ErrorIs(err, apperrors.ErrInvalidState)
	err = s.svc.Tax.DeleteDeclaration(s.ctx, good.DeclarationID, s.userID)
	s.ErrorIs(err, apperrors.ErrInvalidState)

	// failed ones can be fixed and resubmitted
	period := "2024-02"
	_, err = s.svc.Tax.UpdateDeclaration(s.ctx, bad.DeclarationID, dto.UpdateTaxDeclarationRequest{Period: &period}, s.userID)
	s.Require().NoError(err)
	fixed, err := s.svc.Tax.SubmitDeclaration(s.ctx, bad.DeclarationID, s.userID)
	s.Require().NoError(err)
	s.Equal(domain.TaxSuccess, fixed.Status)
	s.Nil(fixed.FailureReason)
}

func (s *TaxServiceTestSuite) TestListDeclarations_FiltersByStatus() {
	_, err := s.svc.Tax.CreateDeclaration(s.ctx, dto.CreateTaxDeclarationRequest{Period: "2024-01", TaxType: domain.TaxSurcharge}, s.userID)
	s.Require().NoError(err)

	pending := domain.TaxPending
	list, err := s.svc.Tax.ListDeclarations(s.ctx, &pending)
	s.Require().NoError(err)
	s.Len(list, 1)

	success := domain.TaxSuccess
	list, err = s.svc.Tax.ListDeclarations(s.ctx, &success)
	s.Require().NoError(err)
	s.Empty(list)
}

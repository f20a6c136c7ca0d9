package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceTestSuite struct {
	ledgerSuite
	vendor *domain.Vendor
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.vendor = s.newVendor("Acme Supplies")
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

func (s *PaymentServiceTestSuite) bill(amount string, status domain.BillStatus) *domain.Bill {
	b, err := s.svc.Bill.CreateBill(s.ctx, dto.CreateBillRequest{
		VendorID: s.vendor.VendorID,
		Amount:   money(amount),
		DueDate:  day(2024, time.April, 1),
		Status:   status,
	}, s.userID)
	s.Require().NoError(err)
	return b
}

func (s *PaymentServiceTestSuite) TestExecutePayment_Success() {
	bank := s.account("Operating Bank", domain.Asset, true, "1000.00", nil)
	b1 := s.bill("500.00", domain.BillAwaitingPayment)
	b2 := s.bill("300.00", domain.BillAwaitingPayment)

	batch, err := s.svc.Payment.ExecutePayment(s.ctx, dto.ExecutePaymentRequest{
		BillIDs:       []string{b1.BillID, b2.BillID},
		BankAccountID: bank.AccountID,
	}, s.userID)
	s.Require().NoError(err)

	s.True(batch.Total.Equal(money("800")))
	s.Equal("bank_transfer", batch.Method)
	s.Len(batch.Payments, 2)
	s.Len(batch.Vouchers, 2)
	for _, p := range batch.Payments {
		s.Equal(batch.ReceiptNumber, p.ReceiptNumber)
		s.Equal(domain.PayableBill, p.Kind)
		s.NotEmpty(p.VoucherID)
	}
	for _, v := range batch.Vouchers {
		s.True(v.Posted)
	}
	s.True(s.balance(bank.AccountID).Equal(money("200")))

	for _, id := range []string{b1.BillID, b2.BillID} {
		paid, err := s.svc.Bill.GetBillByID(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(domain.BillPaid, paid.Status)
	}

	payables, err := s.store.FindAccountByCode(s.ctx, "2202")
	s.Require().NoError(err)
	s.Equal(domain.Liability, payables.AccountType)
	s.True(payables.Balance.Equal(money("-800")))

	history, err := s.svc.Payment.ListPayments(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(history, 2)
}

func (s *PaymentServiceTestSuite) TestExecutePayment_InsufficientFunds() {
	bank := s.account("Operating Bank", domain.Asset, true, "700.00", nil)
	b1 := s.bill("500.00", domain.BillAwaitingPayment)
	b2 := s.bill("300.00", domain.BillAwaitingPayment)

	_, err := s.svc.Payment.ExecutePayment(s.ctx, dto.ExecutePaymentRequest{
		BillIDs:       []string{b1.BillID, b2.BillID},
		BankAccountID: bank.AccountID,
	}, s.userID)

	var insufficient *apperrors.InsufficientFundsError
	s.Require().ErrorAs(err, &insufficient)
	s.True(insufficient.Available.Equal(money("700")))
	s.True(insufficient.Required.Equal(money("800")))

	s.True(s.balance(bank.AccountID).Equal(money("700")))
	for _, id := range []string{b1.BillID, b2.BillID} {
		b, err := s.svc.Bill.GetBillByID(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(domain.BillAwaitingPayment, b.Status)
	}
	history, err := s.svc.Payment.ListPayments(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *PaymentServiceTestSuite) TestExecutePayment_ParallelBatchesCannotOverdraw() {
	bank := s.account("Operating Bank", domain.Asset, true, "100.00", nil)
	bills := []*domain.Bill{
		s.bill("70.00", domain.BillAwaitingPayment),
		s.bill("70.00", domain.BillAwaitingPayment),
	}

	errs := make([]error, len(bills))
	var wg sync.WaitGroup
	for i, b := range bills {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.svc.Payment.ExecutePayment(s.ctx, dto.ExecutePaymentRequest{
				BillIDs:       []string{b.BillID},
				BankAccountID: bank.AccountID,
			}, s.userID)
		}()
	}
	wg.Wait()

	paid := 0
	for _, err := range errs {
		if err == nil {
			paid++
			continue
		}
		s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	}
	s.Equal(1, paid, "only one batch fits the balance")
	s.True(s.balance(bank.AccountID).Equal(money("30")))

	history, err := s.svc.Payment.ListPayments(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(history, 1)
}

func (s *PaymentServiceTestSuite) TestExecutePayment_UsesChildBalances() {
	parent := s.account("Banks", domain.Asset, true, "100.00", nil)
	s.account("Sub Account", domain.Asset, true, "400.00", &parent.AccountID)
	b := s.bill("450.00", domain.BillAwaitingPayment)

	_, err := s.svc.Payment.ExecutePayment(s.ctx, dto.ExecutePaymentRequest{
		BillIDs:       []string{b.BillID},
		BankAccountID: parent.AccountID,
	}, s.userID)
	s.Require().NoError(err)
	s.True(s.balance(parent.AccountID).Equal(money("-350")))
}

func (s *PaymentServiceTestSuite) TestExecutePayment_EmptySelection() {
	bank := s.account("Operating Bank", domain.Asset, true, "10.00", nil)
	_, err := s.svc.Payment.ExecutePayment(s.ctx, dto.ExecutePaymentRequest{BankAccountID: bank.AccountID}, s.userID)
	s.ErrorIs(err, apperrors.ErrEmptySelection)
}

func (s *PaymentServiceTestSuite) TestExecutePayment_RejectsDuplicatesAndWrongState() {
	bank := s.account("Operating Bank", domain.Asset, true, "1000.00", nil)
	pending := s.bill("50.00", domain.BillPendingReview)
	awaiting := s.bill("50.00", domain.BillAwaitingPayment)

	_, err := s.svc.Payment.ExecutePayment(s.ctx, dto.ExecutePaymentRequest{
		BillIDs:       []string{awaiting.BillID, awaiting.BillID},
		BankAccountID: bank.AccountID,
	}, s.userID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Payment.ExecutePayment(s.ctx, dto.ExecutePaymentRequest{
		BillIDs:       []string{awaiting.BillID, pending.BillID},
		BankAccountID: bank.AccountID,
	}, s.userID)
	s.ErrorIs(err, apperrors.ErrInvalidState)
	s.True(s.balance(bank.AccountID).Equal(money("1000")))
}

func (s *PaymentServiceTestSuite) TestExecutePayment_RequiresBankAccount() {
	expense := s.account("Rent", domain.Expense, false, "", nil)
	b := s.bill("10.00", domain.BillAwaitingPayment)
	_, err := s.svc.Payment.ExecutePayment(s.ctx, dto.ExecutePaymentRequest{
		BillIDs:       []string{b.BillID},
		BankAccountID: expense.AccountID,
	}, s.userID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *PaymentServiceTestSuite) TestAwaitingPayment_UnionsAllKinds() {
	bank := s.account("Operating Bank", domain.Asset, true, "1000.00", nil)
	s.bill("75.00", domain.BillAwaitingPayment)
	s.bill("20.00", domain.BillPendingReview)

	decl, err := s.svc.Tax.CreateDeclaration(s.ctx, dto.CreateTaxDeclarationRequest{
		Period:     "2024-02",
		TaxType:    domain.TaxVAT,
		TaxPayable: money("30.00"),
	}, s.userID)
	s.Require().NoError(err)
	_, err = s.svc.Tax.SubmitDeclaration(s.ctx, decl.DeclarationID, s.userID)
	s.Require().NoError(err)

	order, err := s.svc.PurchaseOrder.CreateOrder(s.ctx, dto.CreatePurchaseOrderRequest{
		VendorID:  s.vendor.VendorID,
		OrderDate: day(2024, time.March, 1),
		Items: []dto.PurchaseOrderItemRequest{
			{ProductName: "Paper", Quantity: money("4"), UnitPrice: money("2.50")},
		},
	}, s.userID)
	s.Require().NoError(err)
	approved := domain.POApproved
	_, err = s.svc.PurchaseOrder.UpdateOrder(s.ctx, order.OrderID, dto.UpdatePurchaseOrderRequest{Status: &approved}, s.userID)
	s.Require().NoError(err)

	records, err := s.svc.Payment.ListAwaitingPayment(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal(domain.PayablePurchaseOrder, records[0].Kind(), "ordered by due date")
	s.Equal(domain.PayableTax, records[1].Kind())
	s.Equal(domain.PayableBill, records[2].Kind())
	s.Equal("Acme Supplies", records[2].PayeeName())
	s.True(records[0].AmountDue().Equal(money("10")))

	batch, err := s.svc.Payment.ExecutePayment(s.ctx, dto.ExecutePaymentRequest{
		TaxIDs:           []string{decl.DeclarationID},
		PurchaseOrderIDs: []string{order.OrderID},
		BankAccountID:    bank.AccountID,
		Method:           "cheque",
	}, s.userID)
	s.Require().NoError(err)
	s.Equal("cheque", batch.Method)
	s.True(s.balance(bank.AccountID).Equal(money("960")))

	paidOrder, err := s.svc.PurchaseOrder.GetOrderByID(s.ctx, order.OrderID)
	s.Require().NoError(err)
	s.Equal(domain.POCompleted, paidOrder.Status)
	paidDecl, err := s.svc.Tax.GetDeclarationByID(s.ctx, decl.DeclarationID)
	s.Require().NoError(err)
	s.Equal(domain.TaxPaid, paidDecl.Status)

	taxes, err := s.store.FindAccountByCode(s.ctx, "2221")
	s.Require().NoError(err)
	s.True(taxes.Balance.Equal(money("-30")))
}

func TestTaxDueDate(t *testing.T) {
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), services.TaxDueDate("2024-02"))
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), services.TaxDueDate("2024-12"))
	assert.True(t, services.TaxDueDate("bad").IsZero())
}

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ListAwaitingPayment(ctx context.Context) ([]domain.PayableRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PayableRecord), args.Error(1)
}

func (m *MockPaymentService) ExecutePayment(ctx context.Context, req dto.ExecutePaymentRequest, userID string) (*domain.PaymentBatch, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentBatch), args.Error(1)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, limit int) ([]domain.Payment, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

// MockBillService only backs the /bills/:id route that must not shadow awaiting-payment.
type MockBillService struct {
	portssvc.BillSvcFacade
	mock.Mock
}

func (m *MockBillService) GetBillByID(ctx context.Context, billID string) (*domain.Bill, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

type PaymentHandlerTestSuite struct {
	handlerSuite
	mockPaymentService *MockPaymentService
	mockBillService    *MockBillService
}

func (suite *PaymentHandlerTestSuite) SetupTest() {
	suite.setupRouter()
	suite.mockPaymentService = new(MockPaymentService)
	suite.mockBillService = new(MockBillService)
	registerPayableRoutes(suite.v1, suite.mockBillService, nil, nil)
	registerPaymentRoutes(suite.v1, suite.mockPaymentService, nil)
}

func (suite *PaymentHandlerTestSuite) TestAwaitingPayment_RoutesToAggregator() {
	suite.mockPaymentService.On("ListAwaitingPayment", mock.Anything).Return([]domain.PayableRecord{
		domain.BillPayable{
			Bill:       domain.Bill{BillID: "b-1", BillNo: "BILL-1", Amount: decimal.RequireFromString("75.00"), Status: domain.BillAwaitingPayment},
			VendorName: "Supplier",
		},
		domain.TaxPayable{
			Declaration: domain.TaxDeclaration{DeclarationID: "t-1", TaxPayable: decimal.RequireFromString("25.50"), Status: domain.TaxSuccess},
		},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/bills/awaiting-payment", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.AwaitingPaymentResponse
	suite.decode(w, &resp)
	suite.Len(resp.Records, 2)
	suite.True(resp.Total.Equal(decimal.RequireFromString("100.50")))
	suite.mockBillService.AssertNotCalled(suite.T(), "GetBillByID", mock.Anything, mock.Anything)
}

func (suite *PaymentHandlerTestSuite) TestExecutePayment_InsufficientFunds() {
	suite.mockPaymentService.On("ExecutePayment", mock.Anything,
		mock.MatchedBy(func(req dto.ExecutePaymentRequest) bool {
			return req.BankAccountID == "bank" && len(req.BillIDs) == 1
		}), suite.userID,
	).Return(nil, &apperrors.InsufficientFundsError{
		BankAccountID: "bank",
		Available:     decimal.NewFromInt(10),
		Required:      decimal.NewFromInt(75),
	}).Once()

	w := suite.do(http.MethodPost, "/api/v1/payments/execute", map[string]any{
		"billIds":       []string{"b-1"},
		"bankAccountId": "bank",
	})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	body := suite.errorBody(w)
	suite.Equal("10.00", body.Details["available"])
	suite.Equal("75.00", body.Details["required"])
}

func (suite *PaymentHandlerTestSuite) TestExecutePayment_EmptySelection() {
	suite.mockPaymentService.On("ExecutePayment", mock.Anything, mock.Anything, suite.userID).
		Return(nil, &apperrors.EmptySelectionError{}).Once()

	w := suite.do(http.MethodPost, "/api/v1/payments/execute", map[string]any{"bankAccountId": "bank"})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *PaymentHandlerTestSuite) TestExecutePayment_RequiresBankAccount() {
	w := suite.do(http.MethodPost, "/api/v1/payments/execute", map[string]any{"billIds": []string{"b-1"}})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPaymentService.AssertNotCalled(suite.T(), "ExecutePayment", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentHandlerTestSuite) TestListPayments_DefaultLimit() {
	suite.mockPaymentService.On("ListPayments", mock.Anything, 100).Return([]domain.Payment{}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/payments", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockPaymentService.AssertExpectations(suite.T())
}

func TestPaymentHandler(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}

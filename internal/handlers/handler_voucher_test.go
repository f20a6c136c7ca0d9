package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockVoucherService struct {
	mock.Mock
}

func (m *MockVoucherService) voucherResult(args mock.Arguments) (*domain.Voucher, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherService) GetVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	return m.voucherResult(m.Called(ctx, voucherID))
}

func (m *MockVoucherService) ListVouchers(ctx context.Context, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListVouchersResponse), args.Error(1)
}

func (m *MockVoucherService) CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, userID string) (*domain.Voucher, error) {
	return m.voucherResult(m.Called(ctx, req, userID))
}

func (m *MockVoucherService) UpdateVoucher(ctx context.Context, voucherID string, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, error) {
	return m.voucherResult(m.Called(ctx, voucherID, req, userID))
}

func (m *MockVoucherService) DeleteVoucher(ctx context.Context, voucherID string, userID string) error {
	return m.Called(ctx, voucherID, userID).Error(0)
}

func (m *MockVoucherService) ReviewVoucher(ctx context.Context, voucherID string, req dto.ReviewVoucherRequest, userID string) (*domain.Voucher, error) {
	return m.voucherResult(m.Called(ctx, voucherID, req, userID))
}

func (m *MockVoucherService) PostVoucher(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error) {
	return m.voucherResult(m.Called(ctx, voucherID, userID))
}

func (m *MockVoucherService) UnpostVoucher(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error) {
	return m.voucherResult(m.Called(ctx, voucherID, userID))
}

var _ portssvc.VoucherSvcFacade = (*MockVoucherService)(nil)

type VoucherHandlerTestSuite struct {
	handlerSuite
	mockVoucherService *MockVoucherService
}

func (suite *VoucherHandlerTestSuite) SetupTest() {
	suite.setupRouter()
	suite.mockVoucherService = new(MockVoucherService)
	registerVoucherRoutes(suite.v1, suite.mockVoucherService, nil)
}

func sampleVoucher(posted bool) *domain.Voucher {
	return &domain.Voucher{
		VoucherID:    "v-1",
		SequenceNo:   1,
		VoucherNo:    domain.FormatVoucherNo(1),
		Date:         time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		ReviewStatus: domain.Unreviewed,
		Posted:       posted,
		Entries: []domain.Entry{
			{EntryID: "e-1", LineNo: 1, AccountID: "bank", Direction: domain.Debit, Amount: decimal.NewFromInt(100)},
			{EntryID: "e-2", LineNo: 2, AccountID: "sales", Direction: domain.Credit, Amount: decimal.NewFromInt(100)},
		},
	}
}

func (suite *VoucherHandlerTestSuite) TestCreateVoucher_Success() {
	suite.mockVoucherService.On("CreateVoucher", mock.Anything,
		mock.MatchedBy(func(req dto.CreateVoucherRequest) bool {
			return len(req.Entries) == 2 && req.Date.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
		}), suite.userID,
	).Return(sampleVoucher(false), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/vouchers", map[string]any{
		"date": "2024-03-15",
		"entries": []map[string]any{
			{"accountID": "bank", "direction": "DEBIT", "amount": "100.00"},
			{"accountID": "sales", "direction": "CREDIT", "amount": "100.00"},
		},
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.VoucherResponse
	suite.decode(w, &resp)
	suite.Equal("V-000001", resp.VoucherNo)
	suite.True(resp.DebitTotal.Equal(resp.CreditTotal))
}

func (suite *VoucherHandlerTestSuite) TestCreateVoucher_RejectsSingleEntry() {
	w := suite.do(http.MethodPost, "/api/v1/vouchers", map[string]any{
		"date":    "2024-03-15",
		"entries": []map[string]any{{"accountID": "bank", "direction": "DEBIT", "amount": "1.00"}},
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockVoucherService.AssertNotCalled(suite.T(), "CreateVoucher", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoucherHandlerTestSuite) TestPostVoucher_UnbalancedCarriesTotals() {
	suite.mockVoucherService.On("PostVoucher", mock.Anything, "v-1", suite.userID).Return(nil, &apperrors.UnbalancedEntryError{
		DebitTotal:  decimal.NewFromInt(100),
		CreditTotal: decimal.NewFromInt(90),
	}).Once()

	w := suite.do(http.MethodPost, "/api/v1/vouchers/v-1/post", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	body := suite.errorBody(w)
	suite.Equal("100.00", body.Details["debitTotal"])
	suite.Equal("90.00", body.Details["creditTotal"])
}

func (suite *VoucherHandlerTestSuite) TestPostVoucher_Success() {
	suite.mockVoucherService.On("PostVoucher", mock.Anything, "v-1", suite.userID).Return(sampleVoucher(true), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/vouchers/v-1/post", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.VoucherResponse
	suite.decode(w, &resp)
	suite.True(resp.Posted)
}

func (suite *VoucherHandlerTestSuite) TestUnpostVoucher_ReconciledEntry() {
	suite.mockVoucherService.On("UnpostVoucher", mock.Anything, "v-1", suite.userID).
		Return(nil, &apperrors.AlreadyReconciledError{EntryID: "e-1", Reason: "entry e-1 is reconciled"}).Once()

	w := suite.do(http.MethodPost, "/api/v1/vouchers/v-1/unpost", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *VoucherHandlerTestSuite) TestDeleteVoucher_Posted() {
	suite.mockVoucherService.On("DeleteVoucher", mock.Anything, "v-1", suite.userID).
		Return(&apperrors.PostedVoucherImmutableError{VoucherID: "v-1"}).Once()

	w := suite.do(http.MethodDelete, "/api/v1/vouchers/v-1", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *VoucherHandlerTestSuite) TestPostVoucher_ConflictAfterRetries() {
	suite.mockVoucherService.On("PostVoucher", mock.Anything, "v-1", suite.userID).
		Return(nil, apperrors.NewConflictError("voucher", "v-1")).Once()

	w := suite.do(http.MethodPost, "/api/v1/vouchers/v-1/post", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *VoucherHandlerTestSuite) TestListVouchers_BindsFilters() {
	next := "cursor-2"
	suite.mockVoucherService.On("ListVouchers", mock.Anything,
		mock.MatchedBy(func(p dto.ListVouchersParams) bool {
			return p.Posted != nil && *p.Posted && p.Limit == 5 && p.AccountID == "bank" &&
				p.From != nil && p.From.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		}),
	).Return(&dto.ListVouchersResponse{
		Vouchers:  dto.ToVoucherListResponse([]domain.Voucher{*sampleVoucher(true)}),
		NextToken: &next,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/vouchers?posted=true&limit=5&accountId=bank&from=2024-03-01", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.ListVouchersResponse
	suite.decode(w, &resp)
	suite.Len(resp.Vouchers, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(next, *resp.NextToken)
}

func (suite *VoucherHandlerTestSuite) TestListVouchers_RejectsOversizedPage() {
	w := suite.do(http.MethodGet, "/api/v1/vouchers?limit=1000", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func TestVoucherHandler(t *testing.T) {
	suite.Run(t, new(VoucherHandlerTestSuite))
}

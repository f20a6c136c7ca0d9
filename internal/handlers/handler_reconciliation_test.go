package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockReconciliationService implements the matching and import calls these tests exercise.
type MockReconciliationService struct {
	portssvc.ReconciliationSvcFacade
	mock.Mock
}

func (m *MockReconciliationService) itemResult(args mock.Arguments) (*domain.StatementItem, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatementItem), args.Error(1)
}

func (m *MockReconciliationService) Reconcile(ctx context.Context, itemID string, entryID string, userID string) (*domain.StatementItem, error) {
	return m.itemResult(m.Called(ctx, itemID, entryID, userID))
}

func (m *MockReconciliationService) Unreconcile(ctx context.Context, itemID string, userID string) (*domain.StatementItem, error) {
	return m.itemResult(m.Called(ctx, itemID, userID))
}

func (m *MockReconciliationService) ListUnreconciledEntries(ctx context.Context, accountID *string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockReconciliationService) ImportOFX(ctx context.Context, statementID string, r io.Reader, userID string) (*domain.StatementImport, error) {
	raw, _ := io.ReadAll(r)
	args := m.Called(ctx, statementID, string(raw), userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatementImport), args.Error(1)
}

type ReconciliationHandlerTestSuite struct {
	handlerSuite
	mockService *MockReconciliationService
}

func (suite *ReconciliationHandlerTestSuite) SetupTest() {
	suite.setupRouter()
	suite.mockService = new(MockReconciliationService)
	registerReconciliationRoutes(suite.v1, suite.mockService, nil)
}

func (suite *ReconciliationHandlerTestSuite) TestReconcile_Links() {
	entryID := "e-1"
	suite.mockService.On("Reconcile", mock.Anything, "item-1", "e-1", suite.userID).
		Return(&domain.StatementItem{ItemID: "item-1", Reconciled: true, EntryID: &entryID}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/bank-statement-items/item-1/reconcile", map[string]any{"voucherEntryId": "e-1"})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.StatementItemResponse
	suite.decode(w, &resp)
	suite.True(resp.Reconciled)
}

func (suite *ReconciliationHandlerTestSuite) TestReconcile_EmptyEntryUnreconciles() {
	suite.mockService.On("Unreconcile", mock.Anything, "item-1", suite.userID).
		Return(&domain.StatementItem{ItemID: "item-1"}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/bank-statement-items/item-1/reconcile", map[string]any{"voucherEntryId": ""})

	suite.Equal(http.StatusOK, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationHandlerTestSuite) TestReconcile_UnpostedEntry() {
	suite.mockService.On("Reconcile", mock.Anything, "item-1", "e-9", suite.userID).
		Return(nil, &apperrors.EntryNotPostedError{EntryID: "e-9", VoucherID: "v-9"}).Once()

	w := suite.do(http.MethodPost, "/api/v1/bank-statement-items/item-1/reconcile", map[string]any{"voucherEntryId": "e-9"})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *ReconciliationHandlerTestSuite) TestReconcile_AlreadyLinkedElsewhere() {
	suite.mockService.On("Reconcile", mock.Anything, "item-2", "e-1", suite.userID).
		Return(nil, &apperrors.AlreadyReconciledError{ItemID: "item-2", EntryID: "e-1"}).Once()

	w := suite.do(http.MethodPost, "/api/v1/bank-statement-items/item-2/reconcile", map[string]any{"voucherEntryId": "e-1"})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *ReconciliationHandlerTestSuite) TestListUnreconciled_FiltersByAccount() {
	suite.mockService.On("ListUnreconciledEntries", mock.Anything,
		mock.MatchedBy(func(id *string) bool { return id != nil && *id == "bank" }),
	).Return([]domain.LedgerEntry{}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/unreconciled-voucher-entries?accountId=bank", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *ReconciliationHandlerTestSuite) TestImportOFX_RawBody() {
	doc := "OFXHEADER:100\nDATA:OFXSGML\n<OFX></OFX>"
	suite.mockService.On("ImportOFX", mock.Anything, "st-1", doc, suite.userID).
		Return(&domain.StatementImport{Imported: []domain.StatementItem{{ItemID: "i-1"}}, Skipped: 2}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/bank-statements/st-1/items/import", strings.NewReader(doc))

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.ImportStatementResponse
	suite.decode(w, &resp)
	suite.Equal(1, resp.Imported)
	suite.Equal(2, resp.Skipped)
}

func (suite *ReconciliationHandlerTestSuite) TestImportOFX_InvalidDocument() {
	suite.mockService.On("ImportOFX", mock.Anything, "st-1", "garbage", suite.userID).
		Return(nil, apperrors.NewValidationError("file", "invalid OFX document")).Once()

	w := suite.do(http.MethodPost, "/api/v1/bank-statements/st-1/items/import", strings.NewReader("garbage"))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("file", suite.errorBody(w).Details["field"])
}

func TestReconciliationHandler(t *testing.T) {
	suite.Run(t, new(ReconciliationHandlerTestSuite))
}

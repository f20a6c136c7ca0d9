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

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListBankAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ReparentAccount(ctx context.Context, accountID string, newParentID *string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, newParentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	return m.Called(ctx, accountID, userID).Error(0)
}

func (m *MockAccountService) SeedDefaultChart(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockAccountService) EffectiveBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountService) GetAccountNode(ctx context.Context, accountID string) (*domain.AccountNode, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountNode), args.Error(1)
}

func (m *MockAccountService) GetAccountTree(ctx context.Context) ([]domain.AccountNode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountNode), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	handlerSuite
	mockAccountService *MockAccountService
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	suite.setupRouter()
	suite.mockAccountService = new(MockAccountService)
	registerAccountRoutes(suite.v1, suite.mockAccountService)
}

func bankAccount() *domain.Account {
	return &domain.Account{
		AccountID:   "acc-bank",
		Code:        "1002",
		Name:        "Bank",
		AccountType: domain.Asset,
		IsBank:      true,
		Balance:     decimal.RequireFromString("250.00"),
	}
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	suite.mockAccountService.On("CreateAccount", mock.Anything,
		mock.MatchedBy(func(req dto.CreateAccountRequest) bool {
			return req.Name == "Bank" && req.AccountType == domain.Asset && req.IsBank
		}), suite.userID,
	).Return(bankAccount(), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]any{
		"name":        "Bank",
		"accountType": "ASSET",
		"isBank":      true,
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.AccountResponse
	suite.decode(w, &resp)
	suite.Equal("1002", resp.Code)
	suite.True(resp.Balance.Equal(decimal.RequireFromString("250")))
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_RejectsThreeDecimalOpeningBalance() {
	w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]any{
		"name":           "Bank",
		"accountType":    "ASSET",
		"openingBalance": "10.005",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_DuplicateCode() {
	suite.mockAccountService.On("CreateAccount", mock.Anything, mock.Anything, suite.userID).
		Return(nil, &apperrors.DuplicateCodeError{Code: "1002"}).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]any{
		"code": "1002", "name": "Bank", "accountType": "ASSET",
	})

	suite.Equal(http.StatusConflict, w.Code)
	body := suite.errorBody(w)
	suite.Equal("1002", body.Details["code"])
}

func (suite *AccountHandlerTestSuite) TestGetAccount_IncludesEffectiveBalance() {
	suite.mockAccountService.On("GetAccountByID", mock.Anything, "acc-bank").Return(bankAccount(), nil).Once()
	suite.mockAccountService.On("EffectiveBalance", mock.Anything, "acc-bank").
		Return(decimal.RequireFromString("400.00"), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/acc-bank", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountResponse
	suite.decode(w, &resp)
	suite.Require().NotNil(resp.EffectiveBalance)
	suite.True(resp.EffectiveBalance.Equal(decimal.NewFromInt(400)))
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	suite.mockAccountService.On("GetAccountByID", mock.Anything, "missing").
		Return(nil, apperrors.NewNotFoundError("account", "missing")).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/missing", nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "EffectiveBalance", mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestListAccounts_Tree() {
	root := domain.AccountNode{Account: *bankAccount(), EffectiveBalance: decimal.NewFromInt(250)}
	suite.mockAccountService.On("GetAccountTree", mock.Anything).Return([]domain.AccountNode{root}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts?tree=true", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.AccountTreeResponse
	suite.decode(w, &resp)
	suite.Len(resp, 1)
	suite.NotNil(resp[0].Children)
	suite.mockAccountService.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestListBankAccounts_NotShadowedByID() {
	suite.mockAccountService.On("ListBankAccounts", mock.Anything).Return([]domain.Account{*bankAccount()}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/bank", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "GetAccountByID", mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestReparent_Cycle() {
	suite.mockAccountService.On("ReparentAccount", mock.Anything, "a",
		mock.MatchedBy(func(p *string) bool { return p != nil && *p == "b" }), suite.userID,
	).Return(nil, &apperrors.CycleError{AccountID: "a", ParentID: "b"}).Once()

	w := suite.do(http.MethodPut, "/api/v1/accounts/a/parent", map[string]any{"parentAccountID": "b"})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_HasChildren() {
	suite.mockAccountService.On("DeleteAccount", mock.Anything, "acc-bank", suite.userID).
		Return(&apperrors.HasChildrenError{AccountID: "acc-bank", ChildCount: 2}).Once()

	w := suite.do(http.MethodDelete, "/api/v1/accounts/acc-bank", nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.EqualValues(2, suite.errorBody(w).Details["childCount"])
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_NoContent() {
	suite.mockAccountService.On("DeleteAccount", mock.Anything, "acc-bank", suite.userID).Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/accounts/acc-bank", nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *AccountHandlerTestSuite) TestRequiresBearerToken() {
	w := suite.doAnonymous(http.MethodGet, "/api/v1/accounts")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything)
}

// --- Run Test Suite ---
func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}

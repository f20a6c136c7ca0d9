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
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) userResult(args mock.Arguments) (*domain.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return m.userResult(m.Called(ctx, userID))
}

func (m *MockUserService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	return m.userResult(m.Called(ctx, req))
}

func (m *MockUserService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	return m.userResult(m.Called(ctx, username, password))
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type AuthHandlerTestSuite struct {
	handlerSuite
	mockUserService  *MockUserService
	mockTokenService *MockTokenService
}

func (suite *AuthHandlerTestSuite) SetupTest() {
	suite.setupRouter()
	suite.mockUserService = new(MockUserService)
	suite.mockTokenService = new(MockTokenService)
	services := &portssvc.ServiceContainer{User: suite.mockUserService, TokenService: suite.mockTokenService}
	noLimit := func(c *gin.Context) { c.Next() }
	auth := registerAuthRoutes(suite.router, services, noLimit)
	registerUserRoutes(suite.v1, suite.mockUserService, auth)
}

func (suite *AuthHandlerTestSuite) TestLogin_ReturnsBearerToken() {
	user := &domain.User{UserID: "user-1", Username: "alice"}
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.mockUserService.On("AuthenticateUser", mock.Anything, "alice", "correct horse").Return(user, nil).Once()
	suite.mockTokenService.On("GenerateAccessToken", mock.Anything, user).Return("signed-token", expires, nil).Once()

	w := suite.doAnonymousJSON(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"username": "alice", "password": "correct horse",
	})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.AuthResponse
	suite.decode(w, &resp)
	suite.Equal("signed-token", resp.AccessToken)
	suite.Equal("Bearer", resp.TokenType)
	suite.Equal("alice", resp.User.Username)
}

func (suite *AuthHandlerTestSuite) TestLogin_WrongPassword() {
	suite.mockUserService.On("AuthenticateUser", mock.Anything, "alice", "nope").
		Return(nil, apperrors.ErrUnauthorized).Once()

	w := suite.doAnonymousJSON(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"username": "alice", "password": "nope",
	})

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockTokenService.AssertNotCalled(suite.T(), "GenerateAccessToken", mock.Anything, mock.Anything)
}

func (suite *AuthHandlerTestSuite) TestRegister_Created() {
	user := &domain.User{UserID: "user-2", Username: "bob"}
	suite.mockUserService.On("RegisterUser", mock.Anything, mock.MatchedBy(func(req dto.RegisterUserRequest) bool {
		return req.Username == "bob"
	})).Return(user, nil).Once()
	suite.mockTokenService.On("GenerateAccessToken", mock.Anything, user).Return("t", time.Now().Add(time.Hour), nil).Once()

	w := suite.doAnonymousJSON(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"username": "bob", "password": "long enough password",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (suite *AuthHandlerTestSuite) TestRegister_DuplicateUsername() {
	suite.mockUserService.On("RegisterUser", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrDuplicate).Once()

	w := suite.doAnonymousJSON(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"username": "bob", "password": "long enough password",
	})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AuthHandlerTestSuite) TestLogout_AlwaysSucceeds() {
	w := suite.doAnonymousJSON(http.MethodPost, "/api/v1/auth/logout", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp LogoutResponse
	suite.decode(w, &resp)
	suite.Equal("Logged out", resp.Message)
	suite.mockUserService.AssertNotCalled(suite.T(), "GetUserByID", mock.Anything, mock.Anything)
}

func (suite *AuthHandlerTestSuite) TestCurrentUser_FromToken() {
	suite.mockUserService.On("GetUserByID", mock.Anything, suite.userID).
		Return(&domain.User{UserID: suite.userID, Username: "alice"}, nil).Twice()

	for _, path := range []string{"/api/v1/auth/user", "/api/v1/users/me"} {
		w := suite.do(http.MethodGet, path, nil)
		suite.Equal(http.StatusOK, w.Code, path)
		var resp dto.UserResponse
		suite.decode(w, &resp)
		suite.Equal(suite.userID, resp.UserID)
	}
}

func TestAuthHandler(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

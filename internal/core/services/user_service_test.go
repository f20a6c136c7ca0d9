package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock UserRepository (based on UserService usage) ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockAccountService only implements the chart seeding used at registration.
type MockAccountService struct {
	portssvc.AccountSvcFacade
	mock.Mock
}

func (m *MockAccountService) SeedDefaultChart(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// passthroughTx runs fn directly.
type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type UserServiceTestSuite struct {
	suite.Suite
	mockRepo     *MockUserRepository
	mockAccounts *MockAccountService
	service      portssvc.UserSvcFacade
	ctx          context.Context
}

func (s *UserServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockUserRepository)
	s.mockAccounts = new(MockAccountService)
	s.service = services.NewUserService(passthroughTx{}, s.mockRepo, s.mockAccounts)
	s.ctx = context.Background()
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) TestRegisterUser_FirstUserSeedsChart() {
	req := dto.RegisterUserRequest{Username: " alice ", Password: "correct-horse", Email: "alice@example.com"}

	s.mockRepo.On("CountUsers", mock.Anything).Return(0, nil).Once()
	s.mockRepo.On("SaveUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Username == "alice" && u.PasswordHash != "correct-horse" && u.UserID != ""
	})).Return(nil).Once()
	s.mockAccounts.On("SeedDefaultChart", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()

	user, err := s.service.RegisterUser(s.ctx, req)

	s.Require().NoError(err)
	s.Equal("alice", user.Username)
	s.True(utils.CheckPasswordHash("correct-horse", user.PasswordHash))
	s.mockRepo.AssertExpectations(s.T())
	s.mockAccounts.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestRegisterUser_LaterUserDoesNotSeed() {
	s.mockRepo.On("CountUsers", mock.Anything).Return(2, nil).Once()
	s.mockRepo.On("SaveUser", mock.Anything, mock.AnythingOfType("domain.User")).Return(nil).Once()

	_, err := s.service.RegisterUser(s.ctx, dto.RegisterUserRequest{Username: "bob", Password: "longenough"})

	s.Require().NoError(err)
	s.mockAccounts.AssertNotCalled(s.T(), "SeedDefaultChart", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestRegisterUser_Duplicate() {
	s.mockRepo.On("CountUsers", mock.Anything).Return(1, nil).Once()
	s.mockRepo.On("SaveUser", mock.Anything, mock.AnythingOfType("domain.User")).Return(apperrors.ErrDuplicate).Once()

	user, err := s.service.RegisterUser(s.ctx, dto.RegisterUserRequest{Username: "bob", Password: "longenough"})

	s.Nil(user)
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *UserServiceTestSuite) TestRegisterUser_ShortPassword() {
	_, err := s.service.RegisterUser(s.ctx, dto.RegisterUserRequest{Username: "bob", Password: "short"})

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockRepo.AssertNotCalled(s.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestAuthenticateUser() {
	hash, err := utils.HashPassword("correct-horse")
	s.Require().NoError(err)
	stored := &domain.User{UserID: "u-1", Username: "alice", PasswordHash: hash}

	s.mockRepo.On("FindUserByUsername", mock.Anything, "alice").Return(stored, nil)
	s.mockRepo.On("FindUserByUsername", mock.Anything, "mallory").Return(nil, apperrors.NewNotFoundError("user", "mallory"))

	user, err := s.service.AuthenticateUser(s.ctx, "alice", "correct-horse")
	s.Require().NoError(err)
	s.Equal("u-1", user.UserID)

	_, err = s.service.AuthenticateUser(s.ctx, "alice", "wrong-horse")
	s.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = s.service.AuthenticateUser(s.ctx, "mallory", "whatever")
	assert.ErrorIs(s.T(), err, apperrors.ErrUnauthorized)
}

func (s *UserServiceTestSuite) TestGetUserByID_NotFound() {
	s.mockRepo.On("FindUserByID", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("user", "missing")).Once()

	user, err := s.service.GetUserByID(s.ctx, "missing")

	s.Nil(user)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

package services

import (
	"context"
	"errors"
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
)

type userService struct {
	BaseService
	tx       portsrepo.TransactionManager
	userRepo portsrepo.UserRepositoryFacade
	accounts portssvc.AccountSvcFacade
}

// NewUserService creates the user service. accounts seeds the default chart when the
// first user registers.
func NewUserService(tx portsrepo.TransactionManager, repo portsrepo.UserRepositoryFacade, accounts portssvc.AccountSvcFacade, opts ...Option) portssvc.UserSvcFacade {
	svc := &userService{tx: tx, userRepo: repo, accounts: accounts}
	applyOptions(svc, opts)
	return svc
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperrors.NewValidationError("username", "is required")
	}
	hash, err := utils.HashPassword(req.Password)
	if errors.Is(err, utils.ErrPasswordTooShort) {
		return nil, apperrors.NewValidationError("password", fmt.Sprintf("must be at least %d characters", utils.MinPasswordLength))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	userID := uuid.NewString()
	user := domain.User{
		UserID:       userID,
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hash,
		AuditFields:  domain.NewAuditFields(userID, s.Now()),
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		count, err := s.userRepo.CountUsers(ctx)
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if err := s.userRepo.SaveUser(ctx, user); err != nil {
			return err
		}
		if count == 0 {
			return s.accounts.SeedDefaultChart(ctx, user.UserID)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to register user", slog.String("username", username))
		}
		return nil, err
	}
	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID))
	return &user, nil
}

// AuthenticateUser returns ErrUnauthorized for an unknown user or a wrong password.
func (s *userService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogDebug(ctx, "Password mismatch", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// defaultChart is created for the first user of an empty ledger.
var defaultChart = []struct {
	Code   string
	Name   string
	Type   domain.AccountType
	IsBank bool
}{
	{"1001", "Cash", domain.Asset, true},
	{"1002", "Bank Deposits", domain.Asset, true},
	{"1122", "Accounts Receivable", domain.Asset, false},
	{"2202", "Accounts Payable", domain.Liability, false},
	{"2221", "Taxes Payable", domain.Liability, false},
	{"4001", "Paid-in Capital", domain.Equity, false},
	{"6001", "Main Business Revenue", domain.Income, false},
	{"6401", "Cost of Sales", domain.Expense, false},
	{"6602", "Administrative Expenses", domain.Expense, false},
}

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	tx          portsrepo.TransactionManager
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(tx portsrepo.TransactionManager, repo portsrepo.AccountRepositoryFacade, opts ...Option) portssvc.AccountSvcFacade {
	svc := &accountService{tx: tx, accountRepo: repo}
	applyOptions(svc, opts)
	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *accountService) ListBankAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	banks := make([]domain.Account, 0)
	for _, acc := range accounts {
		if acc.IsBank && acc.AccountType == domain.Asset {
			banks = append(banks, acc)
		}
	}
	return banks, nil
}

// nextAccountCode returns prefix + 3 digits, starting at the count of accounts of the
// type plus one and skipping codes that are taken.
func (s *accountService) nextAccountCode(ctx context.Context, accountType domain.AccountType) (string, error) {
	count, err := s.accountRepo.CountAccountsByType(ctx, accountType)
	if err != nil {
		return "", fmt.Errorf("failed to count accounts: %w", err)
	}
	for n := count + 1; ; n++ {
		code := fmt.Sprintf("%s%03d", accountType.CodePrefix(), n)
		_, err := s.accountRepo.FindAccountByCode(ctx, code)
		if errors.Is(err, apperrors.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check account code %s: %w", code, err)
		}
	}
}

func validateBankFlag(isBank bool, accountType domain.AccountType) error {
	if isBank && accountType != domain.Asset {
		return apperrors.NewValidationError("isBank", "only asset accounts can be cash or bank accounts")
	}
	return nil
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	if !req.AccountType.IsValid() {
		return nil, apperrors.NewValidationError("accountType", fmt.Sprintf("unknown account type %q", req.AccountType))
	}
	if err := validateBankFlag(req.IsBank, req.AccountType); err != nil {
		return nil, err
	}
	balance := decimal.Zero
	if req.OpeningBalance != nil {
		if !accounting.IsMoney(*req.OpeningBalance) {
			return nil, apperrors.NewValidationError("openingBalance", "must have at most 2 decimal places")
		}
		balance = *req.OpeningBalance
	}

	now := s.Now()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		AccountType: req.AccountType,
		Description: req.Description,
		IsBank:      req.IsBank,
		Balance:     balance,
		AuditFields: domain.NewAuditFields(userID, now),
	}
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parentID := *req.ParentAccountID
		account.ParentAccountID = &parentID
	}

	save := func(ctx context.Context) error {
		if account.HasParent() {
			if _, err := s.accountRepo.FindAccountByID(ctx, *account.ParentAccountID); err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return apperrors.NewValidationError("parentAccountID", "parent account does not exist")
				}
				return err
			}
		}
		if req.Code == "" {
			code, err := s.nextAccountCode(ctx, account.AccountType)
			if err != nil {
				return err
			}
			account.Code = code
		} else if _, err := s.accountRepo.FindAccountByCode(ctx, account.Code); err == nil {
			return &apperrors.DuplicateCodeError{Code: account.Code}
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return s.accountRepo.SaveAccount(ctx, account)
	}
	err := s.tx.WithinTx(ctx, save)
	if err != nil && req.Code == "" && errors.Is(err, apperrors.ErrDuplicate) {
		// A concurrent create took the generated code; generate the next one.
		s.LogInfo(ctx, "Generated account code taken, retrying", slog.String("code", account.Code))
		err = s.tx.WithinTx(ctx, save)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to create account", slog.String("code", account.Code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code))
	return &account, nil
}

// checkParent validates a new parent for accountID and reports CycleError when the
// parent is the account itself or one of its descendants.
func (s *accountService) checkParent(ctx context.Context, accountID, parentID string) error {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load account hierarchy: %w", err)
	}
	parents := make(map[string]string, len(accounts))
	for _, acc := range accounts {
		p := ""
		if acc.HasParent() {
			p = *acc.ParentAccountID
		}
		parents[acc.AccountID] = p
	}
	if _, ok := parents[parentID]; !ok {
		return apperrors.NewValidationError("parentAccountID", "parent account does not exist")
	}
	if accounting.WouldCycle(parents, accountID, parentID) {
		return &apperrors.CycleError{AccountID: accountID, ParentID: parentID}
	}
	return nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	var updated domain.Account
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if req.ParentAccountID != nil && *req.ParentAccountID != "" {
			if err := s.accountRepo.LockHierarchy(ctx); err != nil {
				return err
			}
		}
		account, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if req.Version != nil && *req.Version != account.Version {
			return apperrors.NewConflictError("account", accountID)
		}
		if req.Code != nil && *req.Code != account.Code {
			if _, err := s.accountRepo.FindAccountByCode(ctx, *req.Code); err == nil {
				return &apperrors.DuplicateCodeError{Code: *req.Code}
			} else if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			account.Code = *req.Code
		}
		if req.Name != nil {
			account.Name = *req.Name
		}
		if req.AccountType != nil {
			if !req.AccountType.IsValid() {
				return apperrors.NewValidationError("accountType", fmt.Sprintf("unknown account type %q", *req.AccountType))
			}
			account.AccountType = *req.AccountType
		}
		if req.Description != nil {
			account.Description = *req.Description
		}
		if req.IsBank != nil {
			account.IsBank = *req.IsBank
		}
		if err := validateBankFlag(account.IsBank, account.AccountType); err != nil {
			return err
		}
		if req.ParentAccountID != nil {
			if *req.ParentAccountID == "" {
				account.ParentAccountID = nil
			} else {
				if err := s.checkParent(ctx, accountID, *req.ParentAccountID); err != nil {
					return err
				}
				parentID := *req.ParentAccountID
				account.ParentAccountID = &parentID
			}
		}
		account.Touch(userID, s.Now())
		if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
			return err
		}
		account.Version++
		updated = *account
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}
	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	return &updated, nil
}

func (s *accountService) ReparentAccount(ctx context.Context, accountID string, newParentID *string, userID string) (*domain.Account, error) {
	parent := ""
	if newParentID != nil {
		parent = *newParentID
	}
	return s.UpdateAccount(ctx, accountID, dto.UpdateAccountRequest{ParentAccountID: &parent}, userID)
}

func (s *accountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	if err := s.RequireActor(ctx, userID); err != nil {
		return err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
			return err
		}
		children, err := s.accountRepo.CountChildAccounts(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to count child accounts: %w", err)
		}
		if children > 0 {
			return &apperrors.HasChildrenError{AccountID: accountID, ChildCount: children}
		}
		referenced, err := s.accountRepo.IsAccountReferenced(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to check account references: %w", err)
		}
		if referenced {
			return &apperrors.ReferencedByLedgerError{AccountID: accountID}
		}
		return s.accountRepo.DeleteAccount(ctx, accountID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID), slog.String("user_id", userID))
	return nil
}

func (s *accountService) SeedDefaultChart(ctx context.Context, userID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.accountRepo.ListAccounts(ctx)
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}
		now := s.Now()
		for _, def := range defaultChart {
			account := domain.Account{
				AccountID:   uuid.NewString(),
				Code:        def.Code,
				Name:        def.Name,
				AccountType: def.Type,
				IsBank:      def.IsBank,
				Balance:     decimal.Zero,
				AuditFields: domain.NewAuditFields(userID, now),
			}
			if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
				return fmt.Errorf("failed to seed account %s: %w", def.Code, err)
			}
		}
		s.LogInfo(ctx, "Seeded default chart of accounts", slog.Int("accounts", len(defaultChart)))
		return nil
	})
}

func (s *accountService) GetAccountTree(ctx context.Context) ([]domain.AccountNode, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for tree")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounting.BuildForest(accounts)
}

func (s *accountService) GetAccountNode(ctx context.Context, accountID string) (*domain.AccountNode, error) {
	forest, err := s.GetAccountTree(ctx)
	if err != nil {
		return nil, err
	}
	node := accounting.FindNode(forest, accountID)
	if node == nil {
		return nil, apperrors.NewNotFoundError("account", accountID)
	}
	return node, nil
}

func (s *accountService) EffectiveBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	node, err := s.GetAccountNode(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return node.EffectiveBalance, nil
}

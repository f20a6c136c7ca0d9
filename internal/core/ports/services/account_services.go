package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for the chart of accounts
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts returns every account ordered by code.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// ListBankAccounts returns asset accounts flagged as cash or bank.
	ListBankAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account, generating a code when none is given.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount edits descriptive fields; a parent change goes through ReparentAccount.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// ReparentAccount moves an account under newParentID, or to the root when nil.
	ReparentAccount(ctx context.Context, accountID string, newParentID *string, userID string) (*domain.Account, error)

	// DeleteAccount removes a leaf account that no ledger entry references.
	DeleteAccount(ctx context.Context, accountID string, userID string) error

	// SeedDefaultChart creates the standard chart of accounts when the ledger is empty.
	SeedDefaultChart(ctx context.Context, userID string) error
}

// AccountCalculatorSvc defines roll-up computations over the account forest
type AccountCalculatorSvc interface {
	// EffectiveBalance is the account's own balance plus the effective balances of its children.
	EffectiveBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	// GetAccountNode returns the account's subtree with effective balances filled in.
	GetAccountNode(ctx context.Context, accountID string) (*domain.AccountNode, error)

	// GetAccountTree returns the whole forest, roots ordered by code.
	GetAccountTree(ctx context.Context) ([]domain.AccountNode, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountCalculatorSvc
}

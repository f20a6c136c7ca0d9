package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its chart-of-accounts code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts returns every account ordered by code.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	CountAccountsByType(ctx context.Context, accountType domain.AccountType) (int, error)
	CountChildAccounts(ctx context.Context, accountID string) (int, error)

	// IsAccountReferenced reports whether any voucher entry or bank statement points at the account.
	IsAccountReferenced(ctx context.Context, accountID string) (bool, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount stores the account's descriptive fields. account.Version must
	// equal the stored version, otherwise a ConflictError is returned.
	UpdateAccount(ctx context.Context, account domain.Account) error

	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountTransactionSupport defines operations used inside a transaction to mutate balances.
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks them until the transaction ends.
	FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalances adds each delta to the account's own balance.
	UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, actorID string, now time.Time) error

	// LockHierarchy serializes parent edits until the transaction ends, so a cycle
	// check is never based on a hierarchy another transaction is changing.
	LockHierarchy(ctx context.Context) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

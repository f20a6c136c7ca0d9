package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// BankStatementReader defines read operations for bank statements.
type BankStatementReader interface {
	// FindStatementByID returns the statement with its items ordered by date.
	FindStatementByID(ctx context.Context, statementID string) (*domain.BankStatement, error)

	// ListStatements returns statements (with items) ordered by statement date desc.
	ListStatements(ctx context.Context, accountID *string) ([]domain.BankStatement, error)

	FindItemByID(ctx context.Context, itemID string) (*domain.StatementItem, error)

	// FindItemByEntryID returns the item linked to a voucher entry, or ErrNotFound.
	FindItemByEntryID(ctx context.Context, entryID string) (*domain.StatementItem, error)
}

// BankStatementWriter defines write operations for bank statements.
type BankStatementWriter interface {
	SaveStatement(ctx context.Context, statement domain.BankStatement) error

	// UpdateStatement stores header fields and status. statement.Version must match.
	UpdateStatement(ctx context.Context, statement domain.BankStatement) error

	// DeleteStatement removes the statement and its items.
	DeleteStatement(ctx context.Context, statementID string) error

	SaveItems(ctx context.Context, items []domain.StatementItem) error
}

// BankStatementTransactionSupport defines locking reads and item updates used while matching.
type BankStatementTransactionSupport interface {
	FindStatementByIDForUpdate(ctx context.Context, statementID string) (*domain.BankStatement, error)
	FindItemByIDForUpdate(ctx context.Context, itemID string) (*domain.StatementItem, error)

	// UpdateItem stores the reconciliation fields. item.Version must match.
	UpdateItem(ctx context.Context, item domain.StatementItem) error
}

// BankStatementRepositoryFacade combines all bank statement repository interfaces
type BankStatementRepositoryFacade interface {
	BankStatementReader
	BankStatementWriter
	BankStatementTransactionSupport
}

package services

import (
	"context"
	"io"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// BankStatementSvc defines data entry for bank statements and their items
type BankStatementSvc interface {
	CreateStatement(ctx context.Context, req dto.CreateBankStatementRequest, userID string) (*domain.BankStatement, error)
	GetStatement(ctx context.Context, statementID string) (*domain.BankStatement, error)
	ListStatements(ctx context.Context, accountID *string) ([]domain.BankStatement, error)
	UpdateStatement(ctx context.Context, statementID string, req dto.UpdateBankStatementRequest, userID string) (*domain.BankStatement, error)
	DeleteStatement(ctx context.Context, statementID string, userID string) error

	// AddItem appends one unreconciled line.
	AddItem(ctx context.Context, statementID string, req dto.StatementItemRequest, userID string) (*domain.StatementItem, error)

	// AddItems appends several lines; either all are stored or none.
	AddItems(ctx context.Context, statementID string, reqs []dto.StatementItemRequest, userID string) ([]domain.StatementItem, error)

	// ImportOFX parses an OFX document and appends its transactions. Transactions
	// whose FITID is already on the statement are skipped.
	ImportOFX(ctx context.Context, statementID string, r io.Reader, userID string) (*domain.StatementImport, error)
}

// ReconciliationSvc defines manual matching of statement items with ledger entries
type ReconciliationSvc interface {
	// ListUnreconciledEntries returns posted bank entries that no item links to yet.
	ListUnreconciledEntries(ctx context.Context, accountID *string) ([]domain.LedgerEntry, error)

	// Reconcile links an item to an entry. Repeating the same pair is a no-op.
	Reconcile(ctx context.Context, itemID string, entryID string, userID string) (*domain.StatementItem, error)

	// Unreconcile clears the item's link.
	Unreconcile(ctx context.Context, itemID string, userID string) (*domain.StatementItem, error)
}

// ReconciliationSvcFacade combines statement entry and matching
type ReconciliationSvcFacade interface {
	BankStatementSvc
	ReconciliationSvc
}

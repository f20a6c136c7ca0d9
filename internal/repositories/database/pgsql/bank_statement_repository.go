package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const statementColumns = `statement_id, account_id, statement_date, opening_balance, closing_balance, status,
	created_at, created_by, last_updated_at, last_updated_by, version`

const itemColumns = `item_id, statement_id, transaction_date, description, amount, balance, external_ref,
	reconciled, entry_id, reconciled_at, reconciled_by,
	created_at, created_by, last_updated_at, last_updated_by, version`

type PgxBankStatementRepository struct {
	BaseRepository
}

func newPgxBankStatementRepository(pool *pgxpool.Pool) *PgxBankStatementRepository {
	return &PgxBankStatementRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BankStatementRepositoryFacade = (*PgxBankStatementRepository)(nil)

func scanStatement(row scanner) (domain.BankStatement, error) {
	var s domain.BankStatement
	err := row.Scan(
		&s.StatementID, &s.AccountID, &s.StatementDate, &s.OpeningBalance, &s.ClosingBalance, &s.Status,
		&s.CreatedAt, &s.CreatedBy, &s.LastUpdatedAt, &s.LastUpdatedBy, &s.Version,
	)
	return s, err
}

func scanItem(row scanner) (domain.StatementItem, error) {
	var it domain.StatementItem
	err := row.Scan(
		&it.ItemID, &it.StatementID, &it.TransactionDate, &it.Description, &it.Amount, &it.Balance, &it.ExternalRef,
		&it.Reconciled, &it.EntryID, &it.ReconciledAt, &it.ReconciledBy,
		&it.CreatedAt, &it.CreatedBy, &it.LastUpdatedAt, &it.LastUpdatedBy, &it.Version,
	)
	return it, err
}

func (r *PgxBankStatementRepository) queryItems(ctx context.Context, query string, args ...any) ([]domain.StatementItem, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query statement items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StatementItem, error) {
		return scanItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan statement items: %w", err)
	}
	return items, nil
}

// attachItems loads the items of each statement ordered by transaction date.
func (r *PgxBankStatementRepository) attachItems(ctx context.Context, statements []domain.BankStatement) error {
	if len(statements) == 0 {
		return nil
	}
	ids := make([]string, len(statements))
	index := make(map[string]int, len(statements))
	for i, s := range statements {
		ids[i] = s.StatementID
		index[s.StatementID] = i
	}
	items, err := r.queryItems(ctx,
		`SELECT `+itemColumns+` FROM bank_statement_items WHERE statement_id = ANY($1) ORDER BY transaction_date, created_at;`, ids)
	if err != nil {
		return err
	}
	for _, it := range items {
		i := index[it.StatementID]
		statements[i].Items = append(statements[i].Items, it)
	}
	return nil
}

func (r *PgxBankStatementRepository) findStatement(ctx context.Context, statementID string, forUpdate bool) (*domain.BankStatement, error) {
	query := `SELECT ` + statementColumns + ` FROM bank_statements WHERE statement_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	s, err := scanStatement(r.db(ctx).QueryRow(ctx, query, statementID))
	if err != nil {
		return nil, mapError(err, "bank statement", statementID)
	}
	statements := []domain.BankStatement{s}
	if err := r.attachItems(ctx, statements); err != nil {
		return nil, err
	}
	return &statements[0], nil
}

func (r *PgxBankStatementRepository) FindStatementByID(ctx context.Context, statementID string) (*domain.BankStatement, error) {
	return r.findStatement(ctx, statementID, false)
}

func (r *PgxBankStatementRepository) FindStatementByIDForUpdate(ctx context.Context, statementID string) (*domain.BankStatement, error) {
	return r.findStatement(ctx, statementID, true)
}

func (r *PgxBankStatementRepository) ListStatements(ctx context.Context, accountID *string) ([]domain.BankStatement, error) {
	query := `
		SELECT ` + statementColumns + ` FROM bank_statements
		WHERE ($1::text IS NULL OR account_id = $1)
		ORDER BY statement_date DESC;
	`
	rows, err := r.db(ctx).Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank statements: %w", err)
	}
	statements, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.BankStatement, error) {
		return scanStatement(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank statements: %w", err)
	}
	if err := r.attachItems(ctx, statements); err != nil {
		return nil, err
	}
	return statements, nil
}

func (r *PgxBankStatementRepository) findItem(ctx context.Context, where string, arg string, forUpdate bool, resource string) (*domain.StatementItem, error) {
	query := `SELECT ` + itemColumns + ` FROM bank_statement_items WHERE ` + where
	if forUpdate {
		query += ` FOR UPDATE`
	}
	it, err := scanItem(r.db(ctx).QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapError(err, resource, arg)
	}
	return &it, nil
}

func (r *PgxBankStatementRepository) FindItemByID(ctx context.Context, itemID string) (*domain.StatementItem, error) {
	return r.findItem(ctx, "item_id = $1", itemID, false, "bank statement item")
}

func (r *PgxBankStatementRepository) FindItemByIDForUpdate(ctx context.Context, itemID string) (*domain.StatementItem, error) {
	return r.findItem(ctx, "item_id = $1", itemID, true, "bank statement item")
}

func (r *PgxBankStatementRepository) FindItemByEntryID(ctx context.Context, entryID string) (*domain.StatementItem, error) {
	return r.findItem(ctx, "entry_id = $1", entryID, false, "bank statement item for entry")
}

func (r *PgxBankStatementRepository) SaveStatement(ctx context.Context, s domain.BankStatement) error {
	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO bank_statements (`+statementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		s.StatementID, s.AccountID, s.StatementDate, s.OpeningBalance, s.ClosingBalance, s.Status,
		s.CreatedAt, s.CreatedBy, s.LastUpdatedAt, s.LastUpdatedBy, s.Version,
	)
	return mapError(err, "bank statement", s.StatementID)
}

func (r *PgxBankStatementRepository) UpdateStatement(ctx context.Context, s domain.BankStatement) error {
	q := r.db(ctx)
	tag, err := q.Exec(ctx, `
		UPDATE bank_statements
		SET statement_date = $2, opening_balance = $3, closing_balance = $4, status = $5,
		    last_updated_at = $6, last_updated_by = $7, version = version + 1
		WHERE statement_id = $1 AND version = $8;`,
		s.StatementID, s.StatementDate, s.OpeningBalance, s.ClosingBalance, s.Status, s.LastUpdatedAt, s.LastUpdatedBy, s.Version,
	)
	if err != nil {
		return mapError(err, "bank statement", s.StatementID)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict(ctx, q, "bank_statements", "statement_id", "bank statement", s.StatementID)
	}
	return nil
}

// DeleteStatement removes the statement; items go with it through ON DELETE CASCADE.
func (r *PgxBankStatementRepository) DeleteStatement(ctx context.Context, statementID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM bank_statements WHERE statement_id = $1;`, statementID)
	if err != nil {
		return mapError(err, "bank statement", statementID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("bank statement", statementID)
	}
	return nil
}

func (r *PgxBankStatementRepository) SaveItems(ctx context.Context, items []domain.StatementItem) error {
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`
			INSERT INTO bank_statement_items (`+itemColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`,
			it.ItemID, it.StatementID, it.TransactionDate, it.Description, it.Amount, it.Balance, it.ExternalRef,
			it.Reconciled, it.EntryID, it.ReconciledAt, it.ReconciledBy,
			it.CreatedAt, it.CreatedBy, it.LastUpdatedAt, it.LastUpdatedBy, it.Version,
		)
	}
	if err := r.db(ctx).SendBatch(ctx, batch).Close(); err != nil {
		if code, _ := pgCode(err); code == pgForeignKeyViolation {
			return apperrors.NewNotFoundError("bank statement", items[0].StatementID)
		}
		return mapError(err, "bank statement item", "")
	}
	return nil
}

// UpdateItem stores the reconciliation fields. The unique index on entry_id keeps an
// entry linked to at most one item.
func (r *PgxBankStatementRepository) UpdateItem(ctx context.Context, it domain.StatementItem) error {
	q := r.db(ctx)
	tag, err := q.Exec(ctx, `
		UPDATE bank_statement_items
		SET reconciled = $2, entry_id = $3, reconciled_at = $4, reconciled_by = $5,
		    last_updated_at = $6, last_updated_by = $7, version = version + 1
		WHERE item_id = $1 AND version = $8;`,
		it.ItemID, it.Reconciled, it.EntryID, it.ReconciledAt, it.ReconciledBy, it.LastUpdatedAt, it.LastUpdatedBy, it.Version,
	)
	if err != nil {
		if code, _ := pgCode(err); code == pgUniqueViolation && it.EntryID != nil {
			return &apperrors.AlreadyReconciledError{ItemID: it.ItemID, EntryID: *it.EntryID, Reason: "entry is matched to another statement item"}
		}
		return mapError(err, "bank statement item", it.ItemID)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict(ctx, q, "bank_statement_items", "item_id", "bank statement item", it.ItemID)
	}
	return nil
}

package pgsql

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, code, name, account_type, parent_account_id, description, is_bank, balance,
	created_at, created_by, last_updated_at, last_updated_by, version`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row scanner) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID, &m.Code, &m.Name, &m.AccountType, &m.ParentAccountID, &m.Description, &m.IsBank, &m.Balance,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy, &m.Version,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

func accountMap(accounts []domain.Account) map[string]domain.Account {
	out := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		out[a.AccountID] = a
	}
	return out
}

// mapAccountError reports a taken code as DuplicateCodeError.
func mapAccountError(err error, account domain.Account) error {
	if code, pgErr := pgCode(err); code == pgUniqueViolation && pgErr.ConstraintName == "accounts_code_key" {
		return &apperrors.DuplicateCodeError{Code: account.Code}
	}
	return mapError(err, "account", account.AccountID)
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.AccountID, m.Code, m.Name, m.AccountType, m.ParentAccountID, m.Description, m.IsBank, m.Balance,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
	)
	if err != nil {
		return mapAccountError(err, account)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.db(ctx).QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, mapError(err, "account", accountID)
	}
	return &acc, nil
}

func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`
	acc, err := scanAccount(r.db(ctx).QueryRow(ctx, query, code))
	if err != nil {
		return nil, mapError(err, "account code", code)
	}
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts. Unknown ids are absent from the map.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	accounts, err := r.queryAccounts(ctx, query, accountIDs)
	if err != nil {
		return nil, err
	}
	return accountMap(accounts), nil
}

// FindAccountsByIDsForUpdate locks the rows in id order so concurrent postings
// touching the same accounts cannot deadlock.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	ids := append([]string(nil), accountIDs...)
	sort.Strings(ids)
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`
	accounts, err := r.queryAccounts(ctx, query, ids)
	if err != nil {
		return nil, mapError(err, "account", "")
	}
	return accountMap(accounts), nil
}

// hierarchyLockKey is the advisory lock taken by LockHierarchy.
const hierarchyLockKey int64 = 0x6c656467657231 // "ledger1"

// LockHierarchy takes a transaction-scoped advisory lock. It is released on
// commit or rollback, so it must run inside WithinTx.
func (r *PgxAccountRepository) LockHierarchy(ctx context.Context) error {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return fmt.Errorf("account hierarchy lock requires a transaction")
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1);`, hierarchyLockKey); err != nil {
		return mapError(err, "account hierarchy", "")
	}
	return nil
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY code;`
	return r.queryAccounts(ctx, query)
}

func (r *PgxAccountRepository) CountAccountsByType(ctx context.Context, accountType domain.AccountType) (int, error) {
	var n int
	err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE account_type = $1;`, string(accountType)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return n, nil
}

func (r *PgxAccountRepository) CountChildAccounts(ctx context.Context, accountID string) (int, error) {
	var n int
	err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE parent_account_id = $1;`, accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count child accounts: %w", err)
	}
	return n, nil
}

func (r *PgxAccountRepository) IsAccountReferenced(ctx context.Context, accountID string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM voucher_entries WHERE account_id = $1)
		    OR EXISTS (SELECT 1 FROM bank_statements WHERE account_id = $1);
	`
	var referenced bool
	if err := r.db(ctx).QueryRow(ctx, query, accountID).Scan(&referenced); err != nil {
		return false, fmt.Errorf("failed to check account references: %w", err)
	}
	return referenced, nil
}

// UpdateAccount stores descriptive fields when the version matches. The balance
// column is owned by UpdateAccountBalances.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET code = $2, name = $3, account_type = $4, parent_account_id = $5, description = $6, is_bank = $7,
		    last_updated_at = $8, last_updated_by = $9, version = version + 1
		WHERE account_id = $1 AND version = $10;
	`
	q := r.db(ctx)
	tag, err := q.Exec(ctx, query,
		m.AccountID, m.Code, m.Name, m.AccountType, m.ParentAccountID, m.Description, m.IsBank,
		m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
	)
	if err != nil {
		return mapAccountError(err, account)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict(ctx, q, "accounts", "account_id", "account", account.AccountID)
	}
	return nil
}

func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		return mapError(err, "account", accountID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account", accountID)
	}
	return nil
}

// UpdateAccountBalances adds each delta to the stored balance and bumps the version.
// Must run inside the transaction that locked the rows.
func (r *PgxAccountRepository) UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, actorID string, now time.Time) error {
	ids := make([]string, 0, len(balanceChanges))
	for id := range balanceChanges {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	query := `
		UPDATE accounts
		SET balance = balance + $1, last_updated_at = $2, last_updated_by = $3, version = version + 1
		WHERE account_id = $4;
	`
	q := r.db(ctx)
	for _, id := range ids {
		tag, err := q.Exec(ctx, query, balanceChanges[id], now, actorID, id)
		if err != nil {
			return mapError(err, "account", id)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("account", id)
		}
	}
	return nil
}

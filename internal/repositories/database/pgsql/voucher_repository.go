package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const voucherColumns = `v.voucher_id, v.sequence_no, v.voucher_no, v.voucher_date, v.description, v.review_status,
	v.posted, v.posted_at, v.posted_by, v.vendor_id,
	v.created_at, v.created_by, v.last_updated_at, v.last_updated_by, v.version`

const entryColumns = `e.entry_id, e.voucher_id, e.line_no, e.account_id, e.direction, e.amount, e.description, e.applied_delta`

type PgxVoucherRepository struct {
	BaseRepository
}

func newPgxVoucherRepository(pool *pgxpool.Pool) *PgxVoucherRepository {
	return &PgxVoucherRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.VoucherRepositoryFacade = (*PgxVoucherRepository)(nil)

func scanVoucher(row scanner) (domain.Voucher, error) {
	var m models.Voucher
	err := row.Scan(
		&m.VoucherID, &m.SequenceNo, &m.VoucherNo, &m.VoucherDate, &m.Description, &m.ReviewStatus,
		&m.Posted, &m.PostedAt, &m.PostedBy, &m.VendorID,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy, &m.Version,
	)
	if err != nil {
		return domain.Voucher{}, err
	}
	return mapping.ToDomainVoucher(m), nil
}

// entryDest returns the scan targets of entryColumns.
func entryDest(m *models.VoucherEntry) []any {
	return []any{&m.EntryID, &m.VoucherID, &m.LineNo, &m.AccountID, &m.Direction, &m.Amount, &m.Description, &m.AppliedDelta}
}

// NextVoucherSequence draws from a database sequence; values are not returned on rollback.
func (r *PgxVoucherRepository) NextVoucherSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.db(ctx).QueryRow(ctx, `SELECT nextval('voucher_sequence');`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate voucher number: %w", err)
	}
	return seq, nil
}

// attachEntries loads the entries of the given vouchers, ordered by line number.
func (r *PgxVoucherRepository) attachEntries(ctx context.Context, vouchers []domain.Voucher) error {
	if len(vouchers) == 0 {
		return nil
	}
	ids := make([]string, len(vouchers))
	index := make(map[string]int, len(vouchers))
	for i, v := range vouchers {
		ids[i] = v.VoucherID
		index[v.VoucherID] = i
		vouchers[i].Entries = []domain.Entry{}
	}
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+entryColumns+` FROM voucher_entries e WHERE e.voucher_id = ANY($1) ORDER BY e.voucher_id, e.line_no;`, ids)
	if err != nil {
		return fmt.Errorf("failed to query voucher entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m models.VoucherEntry
		if err := rows.Scan(entryDest(&m)...); err != nil {
			return fmt.Errorf("failed to scan voucher entry: %w", err)
		}
		i := index[m.VoucherID]
		vouchers[i].Entries = append(vouchers[i].Entries, mapping.ToDomainEntry(m))
	}
	return rows.Err()
}

func (r *PgxVoucherRepository) findVoucher(ctx context.Context, voucherID string, forUpdate bool) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers v WHERE v.voucher_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	v, err := scanVoucher(r.db(ctx).QueryRow(ctx, query, voucherID))
	if err != nil {
		return nil, mapError(err, "voucher", voucherID)
	}
	vouchers := []domain.Voucher{v}
	if err := r.attachEntries(ctx, vouchers); err != nil {
		return nil, err
	}
	return &vouchers[0], nil
}

func (r *PgxVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	return r.findVoucher(ctx, voucherID, false)
}

func (r *PgxVoucherRepository) FindVoucherByIDForUpdate(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	return r.findVoucher(ctx, voucherID, true)
}

// ListVouchers applies the filter and keyset cursor, newest first.
func (r *PgxVoucherRepository) ListVouchers(ctx context.Context, filter domain.VoucherFilter) ([]domain.Voucher, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Posted != nil {
		conds = append(conds, "v.posted = "+arg(*filter.Posted))
	}
	if filter.ReviewStatus != nil {
		conds = append(conds, "v.review_status = "+arg(string(*filter.ReviewStatus)))
	}
	if filter.From != nil {
		conds = append(conds, "v.voucher_date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "v.voucher_date < "+arg(*filter.To))
	}
	if filter.AccountID != nil {
		conds = append(conds, "EXISTS (SELECT 1 FROM voucher_entries x WHERE x.voucher_id = v.voucher_id AND x.account_id = "+arg(*filter.AccountID)+")")
	}
	if filter.AfterDate != nil {
		d, seq := arg(*filter.AfterDate), arg(filter.AfterSeq)
		conds = append(conds, fmt.Sprintf("(v.voucher_date < %s OR (v.voucher_date = %s AND v.sequence_no < %s))", d, d, seq))
	}

	query := `SELECT ` + voucherColumns + ` FROM vouchers v`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY v.voucher_date DESC, v.sequence_no DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vouchers: %w", err)
	}
	vouchers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Voucher, error) {
		return scanVoucher(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan vouchers: %w", err)
	}
	if err := r.attachEntries(ctx, vouchers); err != nil {
		return nil, err
	}
	return vouchers, nil
}

const ledgerEntrySelect = `
	SELECT ` + entryColumns + `, v.voucher_no, v.voucher_date, v.posted, a.name
	FROM voucher_entries e
	JOIN vouchers v ON v.voucher_id = e.voucher_id
	JOIN accounts a ON a.account_id = e.account_id`

func scanLedgerEntry(row scanner) (domain.LedgerEntry, error) {
	var m models.VoucherEntry
	var le domain.LedgerEntry
	dest := append(entryDest(&m), &le.VoucherNo, &le.VoucherDate, &le.Posted, &le.AccountName)
	if err := row.Scan(dest...); err != nil {
		return domain.LedgerEntry{}, err
	}
	le.Entry = mapping.ToDomainEntry(m)
	return le, nil
}

func (r *PgxVoucherRepository) FindLedgerEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	le, err := scanLedgerEntry(r.db(ctx).QueryRow(ctx, ledgerEntrySelect+` WHERE e.entry_id = $1;`, entryID))
	if err != nil {
		return nil, mapError(err, "voucher entry", entryID)
	}
	return &le, nil
}

func (r *PgxVoucherRepository) ListUnreconciledBankEntries(ctx context.Context, accountID *string) ([]domain.LedgerEntry, error) {
	query := ledgerEntrySelect + `
		WHERE v.posted AND a.is_bank
		  AND ($1::text IS NULL OR e.account_id = $1)
		  AND NOT EXISTS (SELECT 1 FROM bank_statement_items i WHERE i.entry_id = e.entry_id)
		ORDER BY v.voucher_date, v.voucher_no, e.line_no;
	`
	rows, err := r.db(ctx).Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unreconciled entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LedgerEntry, error) {
		return scanLedgerEntry(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan unreconciled entries: %w", err)
	}
	return entries, nil
}

func (r *PgxVoucherRepository) SumPostedActivity(ctx context.Context, from, to *time.Time) ([]domain.AccountActivity, error) {
	query := `
		SELECT e.account_id,
		       COALESCE(SUM(e.amount) FILTER (WHERE e.direction = 'DEBIT'), 0),
		       COALESCE(SUM(e.amount) FILTER (WHERE e.direction = 'CREDIT'), 0)
		FROM voucher_entries e
		JOIN vouchers v ON v.voucher_id = e.voucher_id
		WHERE v.posted
		  AND ($1::date IS NULL OR v.voucher_date >= $1)
		  AND ($2::date IS NULL OR v.voucher_date < $2)
		GROUP BY e.account_id
		ORDER BY e.account_id;
	`
	rows, err := r.db(ctx).Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum posted activity: %w", err)
	}
	activity, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AccountActivity, error) {
		var a domain.AccountActivity
		err := row.Scan(&a.AccountID, &a.Debits, &a.Credits)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan posted activity: %w", err)
	}
	return activity, nil
}

func (r *PgxVoucherRepository) CountVouchers(ctx context.Context, from, to *time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM vouchers
		WHERE ($1::date IS NULL OR voucher_date >= $1) AND ($2::date IS NULL OR voucher_date < $2);
	`
	var n int
	if err := r.db(ctx).QueryRow(ctx, query, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count vouchers: %w", err)
	}
	return n, nil
}

func queueEntries(batch *pgx.Batch, entries []domain.Entry) {
	query := `
		INSERT INTO voucher_entries (entry_id, voucher_id, line_no, account_id, direction, amount, description, applied_delta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, e := range entries {
		m := mapping.ToModelVoucherEntry(e)
		batch.Queue(query, m.EntryID, m.VoucherID, m.LineNo, m.AccountID, m.Direction, m.Amount, m.Description, m.AppliedDelta)
	}
}

// SaveVoucher inserts the header and entries. Call within a transaction.
func (r *PgxVoucherRepository) SaveVoucher(ctx context.Context, voucher domain.Voucher) error {
	m := mapping.ToModelVoucher(voucher)
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO vouchers (voucher_id, sequence_no, voucher_no, voucher_date, description, review_status,
			posted, posted_at, posted_by, vendor_id, created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`,
		m.VoucherID, m.SequenceNo, m.VoucherNo, m.VoucherDate, m.Description, m.ReviewStatus,
		m.Posted, m.PostedAt, m.PostedBy, m.VendorID, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
	)
	queueEntries(batch, voucher.Entries)
	if err := r.db(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err, "voucher", voucher.VoucherID)
	}
	return nil
}

// lockUnposted locks the voucher row and checks it is still an editable draft at the given version.
func (r *PgxVoucherRepository) lockUnposted(ctx context.Context, voucherID string, version *int64) error {
	var posted bool
	var stored int64
	err := r.db(ctx).QueryRow(ctx, `SELECT posted, version FROM vouchers WHERE voucher_id = $1 FOR UPDATE;`, voucherID).Scan(&posted, &stored)
	if err != nil {
		return mapError(err, "voucher", voucherID)
	}
	if version != nil && stored != *version {
		return apperrors.NewConflictError("voucher", voucherID)
	}
	if posted {
		return &apperrors.PostedVoucherImmutableError{VoucherID: voucherID}
	}
	return nil
}

// UpdateVoucher replaces the header and entries of an unposted voucher.
func (r *PgxVoucherRepository) UpdateVoucher(ctx context.Context, voucher domain.Voucher) error {
	if err := r.lockUnposted(ctx, voucher.VoucherID, &voucher.Version); err != nil {
		return err
	}
	m := mapping.ToModelVoucher(voucher)
	batch := &pgx.Batch{}
	batch.Queue(`
		UPDATE vouchers
		SET voucher_date = $2, description = $3, review_status = $4, vendor_id = $5,
		    last_updated_at = $6, last_updated_by = $7, version = version + 1
		WHERE voucher_id = $1;`,
		m.VoucherID, m.VoucherDate, m.Description, m.ReviewStatus, m.VendorID, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	batch.Queue(`DELETE FROM voucher_entries WHERE voucher_id = $1;`, m.VoucherID)
	queueEntries(batch, voucher.Entries)
	if err := r.db(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err, "voucher", voucher.VoucherID)
	}
	return nil
}

// UpdatePostingState stores posting fields and the applied delta of each entry.
func (r *PgxVoucherRepository) UpdatePostingState(ctx context.Context, voucher domain.Voucher) error {
	m := mapping.ToModelVoucher(voucher)
	q := r.db(ctx)
	tag, err := q.Exec(ctx, `
		UPDATE vouchers
		SET posted = $2, posted_at = $3, posted_by = $4, review_status = $5,
		    last_updated_at = $6, last_updated_by = $7, version = version + 1
		WHERE voucher_id = $1 AND version = $8;`,
		m.VoucherID, m.Posted, m.PostedAt, m.PostedBy, m.ReviewStatus, m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
	)
	if err != nil {
		return mapError(err, "voucher", voucher.VoucherID)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict(ctx, q, "vouchers", "voucher_id", "voucher", voucher.VoucherID)
	}

	batch := &pgx.Batch{}
	for _, e := range voucher.Entries {
		em := mapping.ToModelVoucherEntry(e)
		batch.Queue(`UPDATE voucher_entries SET applied_delta = $2 WHERE entry_id = $1;`, em.EntryID, em.AppliedDelta)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err, "voucher entry", voucher.VoucherID)
	}
	return nil
}

func (r *PgxVoucherRepository) DeleteVoucher(ctx context.Context, voucherID string) error {
	if err := r.lockUnposted(ctx, voucherID, nil); err != nil {
		return err
	}
	if _, err := r.db(ctx).Exec(ctx, `DELETE FROM vouchers WHERE voucher_id = $1;`, voucherID); err != nil {
		return mapError(err, "voucher", voucherID)
	}
	return nil
}

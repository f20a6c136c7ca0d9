package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `payment_id, batch_id, kind, record_id, reference, voucher_id, bank_account_id, amount,
	method, receipt_number, status, payment_date, created_at, created_by, last_updated_at, last_updated_by, version`

type PgxPaymentRepository struct {
	BaseRepository
}

func newPgxPaymentRepository(pool *pgxpool.Pool) *PgxPaymentRepository {
	return &PgxPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

func (r *PgxPaymentRepository) SavePayments(ctx context.Context, payments []domain.Payment) error {
	batch := &pgx.Batch{}
	for _, p := range payments {
		batch.Queue(`
			INSERT INTO payments (`+paymentColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);`,
			p.PaymentID, p.BatchID, p.Kind, p.RecordID, p.Reference, p.VoucherID, p.BankAccountID, p.Amount,
			p.Method, p.ReceiptNumber, p.Status, p.PaymentDate, p.CreatedAt, p.CreatedBy, p.LastUpdatedAt, p.LastUpdatedBy, p.Version,
		)
	}
	if err := r.db(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err, "payment", "")
	}
	return nil
}

// ListPayments returns the most recent payments first.
func (r *PgxPaymentRepository) ListPayments(ctx context.Context, limit int) ([]domain.Payment, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+paymentColumns+` FROM payments ORDER BY payment_date DESC, created_at DESC LIMIT $1;`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	payments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Payment, error) {
		var p domain.Payment
		err := row.Scan(&p.PaymentID, &p.BatchID, &p.Kind, &p.RecordID, &p.Reference, &p.VoucherID, &p.BankAccountID, &p.Amount,
			&p.Method, &p.ReceiptNumber, &p.Status, &p.PaymentDate, &p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy, &p.Version)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan payments: %w", err)
	}
	return payments, nil
}

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

// PgxPayableRepository stores the three kinds of payable records: bills, tax
// declarations and purchase orders.
type PgxPayableRepository struct {
	BaseRepository
}

func newPgxPayableRepository(pool *pgxpool.Pool) *PgxPayableRepository {
	return &PgxPayableRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.BillRepositoryFacade           = (*PgxPayableRepository)(nil)
	_ portsrepo.TaxDeclarationRepositoryFacade = (*PgxPayableRepository)(nil)
	_ portsrepo.PurchaseOrderRepositoryFacade  = (*PgxPayableRepository)(nil)
)

// --- bills ---

const billColumns = `bill_id, bill_no, vendor_id, purchase_order_id, amount, due_date, status, description,
	created_at, created_by, last_updated_at, last_updated_by, version`

func scanBill(row scanner) (domain.Bill, error) {
	var b domain.Bill
	err := row.Scan(&b.BillID, &b.BillNo, &b.VendorID, &b.PurchaseOrderID, &b.Amount, &b.DueDate, &b.Status, &b.Description,
		&b.CreatedAt, &b.CreatedBy, &b.LastUpdatedAt, &b.LastUpdatedBy, &b.Version)
	return b, err
}

func (r *PgxPayableRepository) queryBills(ctx context.Context, query string, args ...any) ([]domain.Bill, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	bills, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Bill, error) {
		return scanBill(row)
	})
	if err != nil {
		return nil, mapError(err, "bill", "")
	}
	return bills, nil
}

func (r *PgxPayableRepository) FindBillByID(ctx context.Context, billID string) (*domain.Bill, error) {
	b, err := scanBill(r.db(ctx).QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE bill_id = $1;`, billID))
	if err != nil {
		return nil, mapError(err, "bill", billID)
	}
	return &b, nil
}

func (r *PgxPayableRepository) ListBills(ctx context.Context, status *domain.BillStatus) ([]domain.Bill, error) {
	return r.queryBills(ctx, `
		SELECT `+billColumns+` FROM bills
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY due_date, bill_no;`, status)
}

func (r *PgxPayableRepository) FindBillsByIDsForUpdate(ctx context.Context, billIDs []string) (map[string]domain.Bill, error) {
	bills, err := r.queryBills(ctx,
		`SELECT `+billColumns+` FROM bills WHERE bill_id = ANY($1) ORDER BY bill_id FOR UPDATE;`, billIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Bill, len(bills))
	for _, b := range bills {
		out[b.BillID] = b
	}
	return out, nil
}

func (r *PgxPayableRepository) SaveBill(ctx context.Context, b domain.Bill) error {
	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO bills (`+billColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
		b.BillID, b.BillNo, b.VendorID, b.PurchaseOrderID, b.Amount, b.DueDate, b.Status, b.Description,
		b.CreatedAt, b.CreatedBy, b.LastUpdatedAt, b.LastUpdatedBy, b.Version,
	)
	return mapError(err, "bill "+b.BillNo, b.BillID)
}

func (r *PgxPayableRepository) UpdateBill(ctx context.Context, b domain.Bill) error {
	q := r.db(ctx)
	tag, err := q.Exec(ctx, `
		UPDATE bills
		SET bill_no = $2, vendor_id = $3, purchase_order_id = $4, amount = $5, due_date = $6, status = $7, description = $8,
		    last_updated_at = $9, last_updated_by = $10, version = version + 1
		WHERE bill_id = $1 AND version = $11;`,
		b.BillID, b.BillNo, b.VendorID, b.PurchaseOrderID, b.Amount, b.DueDate, b.Status, b.Description,
		b.LastUpdatedAt, b.LastUpdatedBy, b.Version,
	)
	if err != nil {
		return mapError(err, "bill "+b.BillNo, b.BillID)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict(ctx, q, "bills", "bill_id", "bill", b.BillID)
	}
	return nil
}

func (r *PgxPayableRepository) DeleteBill(ctx context.Context, billID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM bills WHERE bill_id = $1;`, billID)
	if err != nil {
		return mapError(err, "bill", billID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("bill", billID)
	}
	return nil
}

// --- tax declarations ---

const declarationColumns = `declaration_id, period, tax_type, taxable_income, tax_rate, input_tax, output_tax,
	taxable_amount, deduction_amount, tax_payable, status, declaration_time, receipt_number, failure_reason,
	created_at, created_by, last_updated_at, last_updated_by, version`

func scanDeclaration(row scanner) (domain.TaxDeclaration, error) {
	var d domain.TaxDeclaration
	err := row.Scan(&d.DeclarationID, &d.Period, &d.TaxType, &d.TaxableIncome, &d.TaxRate, &d.InputTax, &d.OutputTax,
		&d.TaxableAmount, &d.DeductionAmount, &d.TaxPayable, &d.Status, &d.DeclarationTime, &d.ReceiptNumber, &d.FailureReason,
		&d.CreatedAt, &d.CreatedBy, &d.LastUpdatedAt, &d.LastUpdatedBy, &d.Version)
	return d, err
}

func (r *PgxPayableRepository) queryDeclarations(ctx context.Context, query string, args ...any) ([]domain.TaxDeclaration, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax declarations: %w", err)
	}
	decls, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TaxDeclaration, error) {
		return scanDeclaration(row)
	})
	if err != nil {
		return nil, mapError(err, "tax declaration", "")
	}
	return decls, nil
}

func (r *PgxPayableRepository) FindDeclarationByID(ctx context.Context, declarationID string) (*domain.TaxDeclaration, error) {
	d, err := scanDeclaration(r.db(ctx).QueryRow(ctx,
		`SELECT `+declarationColumns+` FROM tax_declarations WHERE declaration_id = $1;`, declarationID))
	if err != nil {
		return nil, mapError(err, "tax declaration", declarationID)
	}
	return &d, nil
}

func (r *PgxPayableRepository) ListDeclarations(ctx context.Context, status *domain.TaxStatus) ([]domain.TaxDeclaration, error) {
	return r.queryDeclarations(ctx, `
		SELECT `+declarationColumns+` FROM tax_declarations
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY period DESC, tax_type;`, status)
}

func (r *PgxPayableRepository) FindDeclarationsByIDsForUpdate(ctx context.Context, declarationIDs []string) (map[string]domain.TaxDeclaration, error) {
	decls, err := r.queryDeclarations(ctx,
		`SELECT `+declarationColumns+` FROM tax_declarations WHERE declaration_id = ANY($1) ORDER BY declaration_id FOR UPDATE;`, declarationIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.TaxDeclaration, len(decls))
	for _, d := range decls {
		out[d.DeclarationID] = d
	}
	return out, nil
}

func (r *PgxPayableRepository) SaveDeclaration(ctx context.Context, d domain.TaxDeclaration) error {
	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO tax_declarations (`+declarationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);`,
		d.DeclarationID, d.Period, d.TaxType, d.TaxableIncome, d.TaxRate, d.InputTax, d.OutputTax,
		d.TaxableAmount, d.DeductionAmount, d.TaxPayable, d.Status, d.DeclarationTime, d.ReceiptNumber, d.FailureReason,
		d.CreatedAt, d.CreatedBy, d.LastUpdatedAt, d.LastUpdatedBy, d.Version,
	)
	return mapError(err, "tax declaration", d.DeclarationID)
}

func (r *PgxPayableRepository) UpdateDeclaration(ctx context.Context, d domain.TaxDeclaration) error {
	q := r.db(ctx)
	tag, err := q.Exec(ctx, `
		UPDATE tax_declarations
		SET period = $2, tax_type = $3, taxable_income = $4, tax_rate = $5, input_tax = $6, output_tax = $7,
		    taxable_amount = $8, deduction_amount = $9, tax_payable = $10, status = $11,
		    declaration_time = $12, receipt_number = $13, failure_reason = $14,
		    last_updated_at = $15, last_updated_by = $16, version = version + 1
		WHERE declaration_id = $1 AND version = $17;`,
		d.DeclarationID, d.Period, d.TaxType, d.TaxableIncome, d.TaxRate, d.InputTax, d.OutputTax,
		d.TaxableAmount, d.DeductionAmount, d.TaxPayable, d.Status,
		d.DeclarationTime, d.ReceiptNumber, d.FailureReason,
		d.LastUpdatedAt, d.LastUpdatedBy, d.Version,
	)
	if err != nil {
		return mapError(err, "tax declaration", d.DeclarationID)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict(ctx, q, "tax_declarations", "declaration_id", "tax declaration", d.DeclarationID)
	}
	return nil
}

func (r *PgxPayableRepository) DeleteDeclaration(ctx context.Context, declarationID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM tax_declarations WHERE declaration_id = $1;`, declarationID)
	if err != nil {
		return mapError(err, "tax declaration", declarationID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("tax declaration", declarationID)
	}
	return nil
}

// --- purchase orders ---

const orderColumns = `order_id, order_number, vendor_id, order_date, description, status,
	created_at, created_by, last_updated_at, last_updated_by, version`

const orderItemColumns = `item_id, order_id, product_name, quantity, unit_price, account_id, description`

func scanOrder(row scanner) (domain.PurchaseOrder, error) {
	var o domain.PurchaseOrder
	err := row.Scan(&o.OrderID, &o.OrderNumber, &o.VendorID, &o.OrderDate, &o.Description, &o.Status,
		&o.CreatedAt, &o.CreatedBy, &o.LastUpdatedAt, &o.LastUpdatedBy, &o.Version)
	return o, err
}

// attachOrderItems loads order lines in line order.
func (r *PgxPayableRepository) attachOrderItems(ctx context.Context, orders []domain.PurchaseOrder) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.OrderID
		index[o.OrderID] = i
		orders[i].Items = []domain.PurchaseOrderItem{}
	}
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+orderItemColumns+` FROM purchase_order_items WHERE order_id = ANY($1) ORDER BY order_id, line_no;`, ids)
	if err != nil {
		return fmt.Errorf("failed to query purchase order items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PurchaseOrderItem, error) {
		var it domain.PurchaseOrderItem
		err := row.Scan(&it.ItemID, &it.OrderID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.AccountID, &it.Description)
		return it, err
	})
	if err != nil {
		return fmt.Errorf("failed to scan purchase order items: %w", err)
	}
	for _, it := range items {
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return nil
}

func (r *PgxPayableRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.PurchaseOrder, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PurchaseOrder, error) {
		return scanOrder(row)
	})
	if err != nil {
		return nil, mapError(err, "purchase order", "")
	}
	if err := r.attachOrderItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PgxPayableRepository) FindOrderByID(ctx context.Context, orderID string) (*domain.PurchaseOrder, error) {
	o, err := scanOrder(r.db(ctx).QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE order_id = $1;`, orderID))
	if err != nil {
		return nil, mapError(err, "purchase order", orderID)
	}
	orders := []domain.PurchaseOrder{o}
	if err := r.attachOrderItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *PgxPayableRepository) ListOrders(ctx context.Context, status *domain.PurchaseOrderStatus) ([]domain.PurchaseOrder, error) {
	return r.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM purchase_orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY order_date DESC, order_number DESC;`, status)
}

func (r *PgxPayableRepository) FindOrdersByIDsForUpdate(ctx context.Context, orderIDs []string) (map[string]domain.PurchaseOrder, error) {
	orders, err := r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM purchase_orders WHERE order_id = ANY($1) ORDER BY order_id FOR UPDATE;`, orderIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.PurchaseOrder, len(orders))
	for _, o := range orders {
		out[o.OrderID] = o
	}
	return out, nil
}

func queueOrderItems(batch *pgx.Batch, items []domain.PurchaseOrderItem) {
	for i, it := range items {
		batch.Queue(`
			INSERT INTO purchase_order_items (`+orderItemColumns+`, line_no)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
			it.ItemID, it.OrderID, it.ProductName, it.Quantity, it.UnitPrice, it.AccountID, it.Description, i+1,
		)
	}
}

func (r *PgxPayableRepository) SaveOrder(ctx context.Context, o domain.PurchaseOrder) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO purchase_orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		o.OrderID, o.OrderNumber, o.VendorID, o.OrderDate, o.Description, o.Status,
		o.CreatedAt, o.CreatedBy, o.LastUpdatedAt, o.LastUpdatedBy, o.Version,
	)
	queueOrderItems(batch, o.Items)
	if err := r.db(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err, "purchase order "+o.OrderNumber, o.OrderID)
	}
	return nil
}

// UpdateOrder stores the header and replaces every line when the version matches.
func (r *PgxPayableRepository) UpdateOrder(ctx context.Context, o domain.PurchaseOrder) error {
	q := r.db(ctx)
	tag, err := q.Exec(ctx, `
		UPDATE purchase_orders
		SET order_number = $2, vendor_id = $3, order_date = $4, description = $5, status = $6,
		    last_updated_at = $7, last_updated_by = $8, version = version + 1
		WHERE order_id = $1 AND version = $9;`,
		o.OrderID, o.OrderNumber, o.VendorID, o.OrderDate, o.Description, o.Status, o.LastUpdatedAt, o.LastUpdatedBy, o.Version,
	)
	if err != nil {
		return mapError(err, "purchase order "+o.OrderNumber, o.OrderID)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict(ctx, q, "purchase_orders", "order_id", "purchase order", o.OrderID)
	}
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM purchase_order_items WHERE order_id = $1;`, o.OrderID)
	queueOrderItems(batch, o.Items)
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err, "purchase order item", o.OrderID)
	}
	return nil
}

// DeleteOrder fails with ErrInUse while a bill references the order.
func (r *PgxPayableRepository) DeleteOrder(ctx context.Context, orderID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM purchase_orders WHERE order_id = $1;`, orderID)
	if err != nil {
		return mapError(err, "purchase order "+orderID, orderID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("purchase order", orderID)
	}
	return nil
}

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

const vendorColumns = `vendor_id, name, contact, email, phone, address, description,
	created_at, created_by, last_updated_at, last_updated_by, version`

type PgxVendorRepository struct {
	BaseRepository
}

func newPgxVendorRepository(pool *pgxpool.Pool) *PgxVendorRepository {
	return &PgxVendorRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.VendorRepositoryFacade = (*PgxVendorRepository)(nil)

func scanVendor(row scanner) (domain.Vendor, error) {
	var v domain.Vendor
	err := row.Scan(&v.VendorID, &v.Name, &v.Contact, &v.Email, &v.Phone, &v.Address, &v.Description,
		&v.CreatedAt, &v.CreatedBy, &v.LastUpdatedAt, &v.LastUpdatedBy, &v.Version)
	return v, err
}

func (r *PgxVendorRepository) queryVendors(ctx context.Context, query string, args ...any) ([]domain.Vendor, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	vendors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Vendor, error) {
		return scanVendor(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan vendors: %w", err)
	}
	return vendors, nil
}

func (r *PgxVendorRepository) FindVendorByID(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	v, err := scanVendor(r.db(ctx).QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE vendor_id = $1;`, vendorID))
	if err != nil {
		return nil, mapError(err, "vendor", vendorID)
	}
	return &v, nil
}

func (r *PgxVendorRepository) FindVendorsByIDs(ctx context.Context, vendorIDs []string) (map[string]domain.Vendor, error) {
	out := make(map[string]domain.Vendor, len(vendorIDs))
	if len(vendorIDs) == 0 {
		return out, nil
	}
	vendors, err := r.queryVendors(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE vendor_id = ANY($1);`, vendorIDs)
	if err != nil {
		return nil, err
	}
	for _, v := range vendors {
		out[v.VendorID] = v
	}
	return out, nil
}

func (r *PgxVendorRepository) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	return r.queryVendors(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY name;`)
}

func (r *PgxVendorRepository) CountVendors(ctx context.Context) (int, error) {
	var n int
	if err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM vendors;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count vendors: %w", err)
	}
	return n, nil
}

func (r *PgxVendorRepository) IsVendorReferenced(ctx context.Context, vendorID string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM bills WHERE vendor_id = $1)
		    OR EXISTS (SELECT 1 FROM purchase_orders WHERE vendor_id = $1)
		    OR EXISTS (SELECT 1 FROM vouchers WHERE vendor_id = $1);
	`
	var referenced bool
	if err := r.db(ctx).QueryRow(ctx, query, vendorID).Scan(&referenced); err != nil {
		return false, fmt.Errorf("failed to check vendor references: %w", err)
	}
	return referenced, nil
}

func (r *PgxVendorRepository) SaveVendor(ctx context.Context, v domain.Vendor) error {
	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO vendors (`+vendorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
		v.VendorID, v.Name, v.Contact, v.Email, v.Phone, v.Address, v.Description,
		v.CreatedAt, v.CreatedBy, v.LastUpdatedAt, v.LastUpdatedBy, v.Version,
	)
	return mapError(err, "vendor", v.VendorID)
}

func (r *PgxVendorRepository) UpdateVendor(ctx context.Context, v domain.Vendor) error {
	q := r.db(ctx)
	tag, err := q.Exec(ctx, `
		UPDATE vendors
		SET name = $2, contact = $3, email = $4, phone = $5, address = $6, description = $7,
		    last_updated_at = $8, last_updated_by = $9, version = version + 1
		WHERE vendor_id = $1 AND version = $10;`,
		v.VendorID, v.Name, v.Contact, v.Email, v.Phone, v.Address, v.Description, v.LastUpdatedAt, v.LastUpdatedBy, v.Version,
	)
	if err != nil {
		return mapError(err, "vendor", v.VendorID)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict(ctx, q, "vendors", "vendor_id", "vendor", v.VendorID)
	}
	return nil
}

func (r *PgxVendorRepository) DeleteVendor(ctx context.Context, vendorID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM vendors WHERE vendor_id = $1;`, vendorID)
	if err != nil {
		return mapError(err, "vendor", vendorID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("vendor", vendorID)
	}
	return nil
}

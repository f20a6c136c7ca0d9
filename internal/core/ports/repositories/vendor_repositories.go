package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// VendorReader defines read operations for vendors.
type VendorReader interface {
	FindVendorByID(ctx context.Context, vendorID string) (*domain.Vendor, error)
	FindVendorsByIDs(ctx context.Context, vendorIDs []string) (map[string]domain.Vendor, error)
	ListVendors(ctx context.Context) ([]domain.Vendor, error)
	CountVendors(ctx context.Context) (int, error)

	// IsVendorReferenced reports whether bills, purchase orders or vouchers point at the vendor.
	IsVendorReferenced(ctx context.Context, vendorID string) (bool, error)
}

// VendorWriter defines write operations for vendors.
type VendorWriter interface {
	SaveVendor(ctx context.Context, vendor domain.Vendor) error
	UpdateVendor(ctx context.Context, vendor domain.Vendor) error
	DeleteVendor(ctx context.Context, vendorID string) error
}

// VendorRepositoryFacade combines all vendor repository interfaces
type VendorRepositoryFacade interface {
	VendorReader
	VendorWriter
}

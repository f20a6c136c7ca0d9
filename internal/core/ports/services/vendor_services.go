package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// VendorSvcFacade defines vendor management.
type VendorSvcFacade interface {
	CreateVendor(ctx context.Context, req dto.CreateVendorRequest, userID string) (*domain.Vendor, error)
	GetVendorByID(ctx context.Context, vendorID string) (*domain.Vendor, error)

	// ListVendors returns all vendors by name, or the closest matches first when query is set.
	ListVendors(ctx context.Context, query string) ([]domain.Vendor, error)

	UpdateVendor(ctx context.Context, vendorID string, req dto.UpdateVendorRequest, userID string) (*domain.Vendor, error)
	DeleteVendor(ctx context.Context, vendorID string, userID string) error
}

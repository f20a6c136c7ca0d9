package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// CreateVendorRequest defines the data needed to create a vendor.
type CreateVendorRequest struct {
	Name        string `json:"name" binding:"required,max=128"`
	Contact     string `json:"contact" binding:"max=128"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone" binding:"max=64"`
	Address     string `json:"address" binding:"max=255"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateVendorRequest edits a vendor. Nil fields are left unchanged.
type UpdateVendorRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=128"`
	Contact     *string `json:"contact" binding:"omitempty,max=128"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone" binding:"omitempty,max=64"`
	Address     *string `json:"address" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Version     *int64  `json:"version"`
}

// ListVendorsParams defines query parameters for listing vendors.
type ListVendorsParams struct {
	Query string `form:"q"`
}

// VendorResponse defines the data returned for a vendor.
type VendorResponse struct {
	VendorID    string    `json:"vendorID"`
	Name        string    `json:"name"`
	Contact     string    `json:"contact"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
}

func ToVendorResponse(v *domain.Vendor) VendorResponse {
	return VendorResponse{
		VendorID:    v.VendorID,
		Name:        v.Name,
		Contact:     v.Contact,
		Email:       v.Email,
		Phone:       v.Phone,
		Address:     v.Address,
		Description: v.Description,
		Version:     v.Version,
		CreatedAt:   v.CreatedAt,
	}
}

func ToVendorListResponse(vendors []domain.Vendor) []VendorResponse {
	res := make([]VendorResponse, len(vendors))
	for i := range vendors {
		res[i] = ToVendorResponse(&vendors[i])
	}
	return res
}

package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryRequest is one debit or credit line of a voucher request.
type EntryRequest struct {
	AccountID   string           `json:"accountID" binding:"required"`
	Direction   domain.Direction `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal  `json:"amount" binding:"required,money2dp" swaggertype:"string"`
	Description string           `json:"description" binding:"max=500"`
}

// CreateVoucherRequest defines the data needed to record a voucher.
type CreateVoucherRequest struct {
	Date        Date           `json:"date" binding:"required" swaggertype:"string" format:"date"`
	Description string         `json:"description" binding:"max=500"`
	VendorID    *string        `json:"vendorID"`
	Entries     []EntryRequest `json:"entries" binding:"required,min=2,dive"`
}

// UpdateVoucherRequest replaces the header and entries of an unposted voucher.
type UpdateVoucherRequest struct {
	Date        Date           `json:"date" binding:"required" swaggertype:"string" format:"date"`
	Description string         `json:"description" binding:"max=500"`
	VendorID    *string        `json:"vendorID"`
	Entries     []EntryRequest `json:"entries" binding:"required,min=2,dive"`
	Version     *int64         `json:"version"`
}

// ReviewVoucherRequest sets the review annotation of a voucher.
type ReviewVoucherRequest struct {
	ReviewStatus domain.ReviewStatus `json:"reviewStatus" binding:"required,oneof=UNREVIEWED REVIEWED REJECTED"`
}

// ListVouchersParams defines query parameters for listing vouchers.
type ListVouchersParams struct {
	Posted       *bool      `form:"posted"`
	ReviewStatus string     `form:"reviewStatus" binding:"omitempty,oneof=UNREVIEWED REVIEWED REJECTED"`
	From         *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To           *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"` // inclusive
	AccountID    string     `form:"accountId"`
	Limit        int        `form:"limit,default=20" binding:"min=1,max=200"`
	NextToken    string     `form:"nextToken"`
}

// EntryResponse defines the data returned for a voucher entry.
type EntryResponse struct {
	EntryID      string           `json:"entryID"`
	LineNo       int              `json:"lineNo"`
	AccountID    string           `json:"accountID"`
	Direction    domain.Direction `json:"direction"`
	Amount       decimal.Decimal  `json:"amount" swaggertype:"string"`
	Description  string           `json:"description"`
	AppliedDelta *decimal.Decimal `json:"appliedDelta,omitempty" swaggertype:"string"`
}

// VoucherResponse defines the data returned for a voucher.
type VoucherResponse struct {
	VoucherID     string              `json:"voucherID"`
	VoucherNo     string              `json:"voucherNo"`
	Date          Date                `json:"date" swaggertype:"string" format:"date"`
	Description   string              `json:"description"`
	ReviewStatus  domain.ReviewStatus `json:"reviewStatus"`
	Posted        bool                `json:"posted"`
	PostedAt      *time.Time          `json:"postedAt,omitempty"`
	PostedBy      *string             `json:"postedBy,omitempty"`
	VendorID      *string             `json:"vendorID,omitempty"`
	DebitTotal    decimal.Decimal     `json:"debitTotal" swaggertype:"string"`
	CreditTotal   decimal.Decimal     `json:"creditTotal" swaggertype:"string"`
	Entries       []EntryResponse     `json:"entries"`
	Version       int64               `json:"version"`
	CreatedAt     time.Time           `json:"createdAt"`
	CreatedBy     string              `json:"createdBy"`
	LastUpdatedAt time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy string              `json:"lastUpdatedBy"`
}

// ListVouchersResponse wraps a page of vouchers.
type ListVouchersResponse struct {
	Vouchers  []VoucherResponse `json:"vouchers"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToVoucherResponse converts a domain.Voucher to its response DTO.
func ToVoucherResponse(v *domain.Voucher) VoucherResponse {
	debits, credits := v.Totals()
	entries := make([]EntryResponse, len(v.Entries))
	for i, e := range v.Entries {
		entries[i] = EntryResponse{
			EntryID:      e.EntryID,
			LineNo:       e.LineNo,
			AccountID:    e.AccountID,
			Direction:    e.Direction,
			Amount:       e.Amount,
			Description:  e.Description,
			AppliedDelta: e.AppliedDelta,
		}
	}
	return VoucherResponse{
		VoucherID:     v.VoucherID,
		VoucherNo:     v.VoucherNo,
		Date:          NewDate(v.Date),
		Description:   v.Description,
		ReviewStatus:  v.ReviewStatus,
		Posted:        v.Posted,
		PostedAt:      v.PostedAt,
		PostedBy:      v.PostedBy,
		VendorID:      v.VendorID,
		DebitTotal:    debits,
		CreditTotal:   credits,
		Entries:       entries,
		Version:       v.Version,
		CreatedAt:     v.CreatedAt,
		CreatedBy:     v.CreatedBy,
		LastUpdatedAt: v.LastUpdatedAt,
		LastUpdatedBy: v.LastUpdatedBy,
	}
}

func ToVoucherListResponse(vouchers []domain.Voucher) []VoucherResponse {
	res := make([]VoucherResponse, len(vouchers))
	for i := range vouchers {
		res[i] = ToVoucherResponse(&vouchers[i])
	}
	return res
}

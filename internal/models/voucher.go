package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Voucher is a row of the vouchers table.
type Voucher struct {
	VoucherID    string         `db:"voucher_id"`
	SequenceNo   int64          `db:"sequence_no"`
	VoucherNo    string         `db:"voucher_no"`
	VoucherDate  time.Time      `db:"voucher_date"`
	Description  string         `db:"description"`
	ReviewStatus string         `db:"review_status"`
	Posted       bool           `db:"posted"`
	PostedAt     sql.NullTime   `db:"posted_at"`
	PostedBy     sql.NullString `db:"posted_by"`
	VendorID     sql.NullString `db:"vendor_id"`
	AuditFields
}

// VoucherEntry is a row of the voucher_entries table. AppliedDelta is set while
// the voucher is posted.
type VoucherEntry struct {
	EntryID      string              `db:"entry_id"`
	VoucherID    string              `db:"voucher_id"`
	LineNo       int                 `db:"line_no"`
	AccountID    string              `db:"account_id"`
	Direction    string              `db:"direction"`
	Amount       decimal.Decimal     `db:"amount"`
	Description  string              `db:"description"`
	AppliedDelta decimal.NullDecimal `db:"applied_delta"`
}

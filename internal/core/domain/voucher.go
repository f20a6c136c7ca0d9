package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether an entry is a Debit or a Credit.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// IsValid reports whether d is DEBIT or CREDIT.
func (d Direction) IsValid() bool {
	return d == Debit || d == Credit
}

// ReviewStatus is an annotation on a voucher. It does not gate posting.
type ReviewStatus string

const (
	Unreviewed ReviewStatus = "UNREVIEWED"
	Reviewed   ReviewStatus = "REVIEWED"
	Rejected   ReviewStatus = "REJECTED"
)

// IsValid reports whether s is a known review status.
func (s ReviewStatus) IsValid() bool {
	switch s {
	case Unreviewed, Reviewed, Rejected:
		return true
	}
	return false
}

// Voucher is a double-entry transaction: two or more entries whose debits equal credits.
type Voucher struct {
	VoucherID    string       `json:"voucherID"`
	SequenceNo   int64        `json:"sequenceNo"`
	VoucherNo    string       `json:"voucherNo"`
	Date         time.Time    `json:"date"`
	Description  string       `json:"description"`
	ReviewStatus ReviewStatus `json:"reviewStatus"`
	Posted       bool         `json:"posted"`
	PostedAt     *time.Time   `json:"postedAt,omitempty"`
	PostedBy     *string      `json:"postedBy,omitempty"`
	VendorID     *string      `json:"vendorID,omitempty"`
	Entries      []Entry      `json:"entries"`
	AuditFields
}

// FormatVoucherNo renders the human readable number for a sequence value.
func FormatVoucherNo(seq int64) string {
	return fmt.Sprintf("V-%06d", seq)
}

// Totals returns the debit and credit sums of the voucher's entries.
func (v Voucher) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range v.Entries {
		if e.Direction == Debit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}

// AccountIDs returns the distinct account ids referenced by the entries, in entry order.
func (v Voucher) AccountIDs() []string {
	seen := make(map[string]struct{}, len(v.Entries))
	ids := make([]string, 0, len(v.Entries))
	for _, e := range v.Entries {
		if _, ok := seen[e.AccountID]; ok {
			continue
		}
		seen[e.AccountID] = struct{}{}
		ids = append(ids, e.AccountID)
	}
	return ids
}

// Entry is one debit or credit line of a voucher. It is owned by exactly one voucher.
// AppliedDelta is the signed change made to the account's balance when the voucher
// was posted; unposting subtracts exactly this value.
type Entry struct {
	EntryID      string           `json:"entryID"`
	VoucherID    string           `json:"voucherID"`
	LineNo       int              `json:"lineNo"`
	AccountID    string           `json:"accountID"`
	Direction    Direction        `json:"direction"`
	Amount       decimal.Decimal  `json:"amount"`
	Description  string           `json:"description"`
	AppliedDelta *decimal.Decimal `json:"appliedDelta,omitempty"`
}

// LedgerEntry is an entry joined with its voucher header and account, as shown
// to the reconciliation matcher.
type LedgerEntry struct {
	Entry
	VoucherNo   string    `json:"voucherNo"`
	VoucherDate time.Time `json:"voucherDate"`
	Posted      bool      `json:"posted"`
	AccountName string    `json:"accountName"`
}

// VoucherFilter narrows voucher listings.
type VoucherFilter struct {
	Posted       *bool
	ReviewStatus *ReviewStatus
	From         *time.Time
	To           *time.Time
	AccountID    *string
	Limit        int
	// Cursor position: vouchers strictly after (Date, SequenceNo) in date desc, seq desc order.
	AfterDate *time.Time
	AfterSeq  int64
}

// AccountActivity aggregates posted entry amounts per account over a date range.
type AccountActivity struct {
	AccountID string          `json:"accountID"`
	Debits    decimal.Decimal `json:"debits"`
	Credits   decimal.Decimal `json:"credits"`
}

package mapping

import (
	"database/sql"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelVoucher converts a domain Voucher header to a model Voucher. Entries are mapped separately.
func ToModelVoucher(d domain.Voucher) models.Voucher {
	m := models.Voucher{
		VoucherID:    d.VoucherID,
		SequenceNo:   d.SequenceNo,
		VoucherNo:    d.VoucherNo,
		VoucherDate:  d.Date,
		Description:  d.Description,
		ReviewStatus: string(d.ReviewStatus),
		Posted:       d.Posted,
		PostedBy:     NullString(d.PostedBy),
		VendorID:     NullString(d.VendorID),
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
	if d.PostedAt != nil {
		m.PostedAt = sql.NullTime{Time: *d.PostedAt, Valid: true}
	}
	return m
}

// ToDomainVoucher converts a model Voucher to a domain Voucher without entries.
func ToDomainVoucher(m models.Voucher) domain.Voucher {
	d := domain.Voucher{
		VoucherID:    m.VoucherID,
		SequenceNo:   m.SequenceNo,
		VoucherNo:    m.VoucherNo,
		Date:         m.VoucherDate,
		Description:  m.Description,
		ReviewStatus: domain.ReviewStatus(m.ReviewStatus),
		Posted:       m.Posted,
		PostedBy:     StringPtr(m.PostedBy),
		VendorID:     StringPtr(m.VendorID),
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
	if m.PostedAt.Valid {
		t := m.PostedAt.Time
		d.PostedAt = &t
	}
	return d
}

// ToModelVoucherEntry converts a domain Entry to a model VoucherEntry
func ToModelVoucherEntry(d domain.Entry) models.VoucherEntry {
	m := models.VoucherEntry{
		EntryID:     d.EntryID,
		VoucherID:   d.VoucherID,
		LineNo:      d.LineNo,
		AccountID:   d.AccountID,
		Direction:   string(d.Direction),
		Amount:      d.Amount,
		Description: d.Description,
	}
	if d.AppliedDelta != nil {
		m.AppliedDelta = decimal.NullDecimal{Decimal: *d.AppliedDelta, Valid: true}
	}
	return m
}

// ToDomainEntry converts a model VoucherEntry to a domain Entry
func ToDomainEntry(m models.VoucherEntry) domain.Entry {
	d := domain.Entry{
		EntryID:     m.EntryID,
		VoucherID:   m.VoucherID,
		LineNo:      m.LineNo,
		AccountID:   m.AccountID,
		Direction:   domain.Direction(m.Direction),
		Amount:      m.Amount,
		Description: m.Description,
	}
	if m.AppliedDelta.Valid {
		delta := m.AppliedDelta.Decimal
		d.AppliedDelta = &delta
	}
	return d
}

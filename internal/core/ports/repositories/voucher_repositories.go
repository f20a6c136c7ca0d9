package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// VoucherReader defines read operations for vouchers and their entries.
type VoucherReader interface {
	// FindVoucherByID returns the voucher with its entries ordered by line number.
	FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// ListVouchers returns vouchers ordered by date desc, sequence desc.
	ListVouchers(ctx context.Context, filter domain.VoucherFilter) ([]domain.Voucher, error)

	// FindLedgerEntryByID returns an entry joined with its voucher header.
	FindLedgerEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// ListUnreconciledBankEntries returns entries of posted vouchers on bank accounts
	// that no statement item links to. accountID optionally narrows to one account.
	ListUnreconciledBankEntries(ctx context.Context, accountID *string) ([]domain.LedgerEntry, error)

	// SumPostedActivity totals debits and credits of posted entries per account for
	// vouchers dated in [from, to). Nil bounds are open.
	SumPostedActivity(ctx context.Context, from, to *time.Time) ([]domain.AccountActivity, error)

	// CountVouchers counts vouchers dated in [from, to).
	CountVouchers(ctx context.Context, from, to *time.Time) (int, error)
}

// VoucherWriter defines write operations for vouchers.
type VoucherWriter interface {
	// NextVoucherSequence hands out the next voucher number. Numbers are never reused.
	NextVoucherSequence(ctx context.Context) (int64, error)

	// SaveVoucher persists a new voucher and its entries.
	SaveVoucher(ctx context.Context, voucher domain.Voucher) error

	// UpdateVoucher replaces the header and entries of an unposted voucher.
	// voucher.Version must equal the stored version.
	UpdateVoucher(ctx context.Context, voucher domain.Voucher) error

	DeleteVoucher(ctx context.Context, voucherID string) error
}

// VoucherTransactionSupport defines operations used while posting and unposting.
type VoucherTransactionSupport interface {
	FindVoucherByIDForUpdate(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// UpdatePostingState stores the posted flag, posting audit fields, review status and
	// each entry's applied delta. voucher.Version must equal the stored version.
	UpdatePostingState(ctx context.Context, voucher domain.Voucher) error
}

// VoucherRepositoryFacade combines all voucher-related repository interfaces
type VoucherRepositoryFacade interface {
	VoucherReader
	VoucherWriter
	VoucherTransactionSupport
}

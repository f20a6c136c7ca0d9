package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// VoucherReaderSvc defines read operations for vouchers
type VoucherReaderSvc interface {
	GetVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// ListVouchers returns one page of vouchers, newest first, with a token for the next page.
	ListVouchers(ctx context.Context, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error)
}

// VoucherWriterSvc defines edits of unposted vouchers
type VoucherWriterSvc interface {
	CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, userID string) (*domain.Voucher, error)
	UpdateVoucher(ctx context.Context, voucherID string, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, error)
	DeleteVoucher(ctx context.Context, voucherID string, userID string) error

	// ReviewVoucher sets the review annotation. It is allowed whether or not the voucher is posted.
	ReviewVoucher(ctx context.Context, voucherID string, req dto.ReviewVoucherRequest, userID string) (*domain.Voucher, error)
}

// VoucherPostingSvc defines the posting state transitions
type VoucherPostingSvc interface {
	// PostVoucher applies every entry to its account balance atomically.
	PostVoucher(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error)

	// UnpostVoucher reverses exactly the deltas applied by the last post.
	UnpostVoucher(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error)
}

// VoucherSvcFacade combines all voucher-related service interfaces
type VoucherSvcFacade interface {
	VoucherReaderSvc
	VoucherWriterSvc
	VoucherPostingSvc
}

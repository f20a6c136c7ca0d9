package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/SscSPs/ledger_core/internal/utils/pagination"
	"github.com/google/uuid"
)

// voucherService provides double-entry voucher operations.
type voucherService struct {
	BaseService
	tx            portsrepo.TransactionManager
	voucherRepo   portsrepo.VoucherRepositoryFacade
	accountRepo   portsrepo.AccountRepositoryFacade
	vendorRepo    portsrepo.VendorReader
	statementRepo portsrepo.BankStatementReader
	poster        ledgerPoster
	retries       int
}

// NewVoucherService creates a new voucher service. retries bounds the conflict retries of post and unpost.
func NewVoucherService(repos portsrepo.RepositoryProvider, retries int, opts ...Option) portssvc.VoucherSvcFacade {
	svc := &voucherService{
		tx:            repos.Tx,
		voucherRepo:   repos.VoucherRepo,
		accountRepo:   repos.AccountRepo,
		vendorRepo:    repos.VendorRepo,
		statementRepo: repos.BankStatementRepo,
		poster:        ledgerPoster{accountRepo: repos.AccountRepo, voucherRepo: repos.VoucherRepo},
		retries:       retries,
	}
	applyOptions(svc, opts)
	return svc
}

// Ensure voucherService implements the portssvc.VoucherSvcFacade interface
var _ portssvc.VoucherSvcFacade = (*voucherService)(nil)

// calendarDate drops the time of day so vouchers sort and filter by date.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func buildEntries(voucherID string, reqs []dto.EntryRequest) []domain.Entry {
	entries := make([]domain.Entry, len(reqs))
	for i, r := range reqs {
		entries[i] = domain.Entry{
			EntryID:     uuid.NewString(),
			VoucherID:   voucherID,
			LineNo:      i + 1,
			AccountID:   r.AccountID,
			Direction:   r.Direction,
			Amount:      r.Amount,
			Description: r.Description,
		}
	}
	return entries
}

// checkReferences verifies that every entry account and the vendor exist.
func (s *voucherService) checkReferences(ctx context.Context, v domain.Voucher) error {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, v.AccountIDs())
	if err != nil {
		return fmt.Errorf("failed to load entry accounts: %w", err)
	}
	for i, e := range v.Entries {
		if _, ok := accounts[e.AccountID]; !ok {
			return apperrors.NewValidationError(fmt.Sprintf("entries[%d].accountID", i), fmt.Sprintf("account %s does not exist", e.AccountID))
		}
	}
	if v.VendorID != nil {
		if _, err := s.vendorRepo.FindVendorByID(ctx, *v.VendorID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewValidationError("vendorID", "vendor does not exist")
			}
			return err
		}
	}
	return nil
}

// optionalID treats an empty id as absent.
func optionalID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	v := *id
	return &v
}

// CreateVoucher records an unposted voucher with the next sequence number.
func (s *voucherService) CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, userID string) (*domain.Voucher, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	if req.Date.IsZero() {
		return nil, apperrors.NewValidationError("date", "is required")
	}
	now := s.Now()
	voucher := domain.Voucher{
		VoucherID:    uuid.NewString(),
		Date:         calendarDate(req.Date.Time),
		Description:  req.Description,
		ReviewStatus: domain.Unreviewed,
		VendorID:     optionalID(req.VendorID),
		AuditFields:  domain.NewAuditFields(userID, now),
	}
	voucher.Entries = buildEntries(voucher.VoucherID, req.Entries)
	if err := accounting.ValidateEntries(voucher.Entries); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, voucher); err != nil {
			return err
		}
		seq, err := s.voucherRepo.NextVoucherSequence(ctx)
		if err != nil {
			return fmt.Errorf("failed to allocate voucher number: %w", err)
		}
		voucher.SequenceNo = seq
		voucher.VoucherNo = domain.FormatVoucherNo(seq)
		return s.voucherRepo.SaveVoucher(ctx, voucher)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create voucher")
		return nil, err
	}
	s.LogInfo(ctx, "Voucher created",
		slog.String("voucher_id", voucher.VoucherID),
		slog.String("voucher_no", voucher.VoucherNo))
	return &voucher, nil
}

func (s *voucherService) GetVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get voucher", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}
	return voucher, nil
}

// ListVouchers returns one page ordered by date desc, sequence desc. The To bound is
// an inclusive calendar date.
func (s *voucherService) ListVouchers(ctx context.Context, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	filter := domain.VoucherFilter{Posted: params.Posted, Limit: limit + 1}
	if params.ReviewStatus != "" {
		status := domain.ReviewStatus(params.ReviewStatus)
		if !status.IsValid() {
			return nil, apperrors.NewValidationError("reviewStatus", "unknown review status")
		}
		filter.ReviewStatus = &status
	}
	if params.From != nil {
		from := calendarDate(*params.From)
		filter.From = &from
	}
	if params.To != nil {
		to := calendarDate(*params.To).AddDate(0, 0, 1)
		filter.To = &to
	}
	if params.AccountID != "" {
		accountID := params.AccountID
		filter.AccountID = &accountID
	}
	if params.NextToken != "" {
		date, seq, err := pagination.DecodeVoucherCursor(params.NextToken)
		if err != nil {
			return nil, apperrors.NewValidationError("nextToken", err.Error())
		}
		filter.AfterDate = &date
		filter.AfterSeq = seq
	}

	vouchers, err := s.voucherRepo.ListVouchers(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list vouchers")
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}

	resp := &dto.ListVouchersResponse{}
	if len(vouchers) > limit {
		vouchers = vouchers[:limit]
		last := vouchers[len(vouchers)-1]
		token := pagination.EncodeVoucherCursor(last.Date, last.SequenceNo)
		resp.NextToken = &token
	}
	resp.Vouchers = dto.ToVoucherListResponse(vouchers)
	return resp, nil
}

// UpdateVoucher replaces the header and entries of an unposted voucher.
func (s *voucherService) UpdateVoucher(ctx context.Context, voucherID string, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	var updated domain.Voucher
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		voucher, err := s.voucherRepo.FindVoucherByIDForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		if voucher.Posted {
			return &apperrors.PostedVoucherImmutableError{VoucherID: voucherID}
		}
		if req.Version != nil && *req.Version != voucher.Version {
			return apperrors.NewConflictError("voucher", voucherID)
		}
		if !req.Date.IsZero() {
			voucher.Date = calendarDate(req.Date.Time)
		}
		voucher.Description = req.Description
		voucher.VendorID = optionalID(req.VendorID)
		voucher.Entries = buildEntries(voucherID, req.Entries)
		if err := accounting.ValidateEntries(voucher.Entries); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, *voucher); err != nil {
			return err
		}
		voucher.Touch(userID, s.Now())
		if err := s.voucherRepo.UpdateVoucher(ctx, *voucher); err != nil {
			return err
		}
		voucher.Version++
		updated = *voucher
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update voucher", slog.String("voucher_id", voucherID))
		return nil, err
	}
	s.LogInfo(ctx, "Voucher updated", slog.String("voucher_id", voucherID))
	return &updated, nil
}

func (s *voucherService) DeleteVoucher(ctx context.Context, voucherID string, userID string) error {
	if err := s.RequireActor(ctx, userID); err != nil {
		return err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		voucher, err := s.voucherRepo.FindVoucherByIDForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		if voucher.Posted {
			return &apperrors.PostedVoucherImmutableError{VoucherID: voucherID}
		}
		return s.voucherRepo.DeleteVoucher(ctx, voucherID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete voucher", slog.String("voucher_id", voucherID))
		return err
	}
	s.LogInfo(ctx, "Voucher deleted", slog.String("voucher_id", voucherID), slog.String("user_id", userID))
	return nil
}

// ReviewVoucher sets the review annotation without touching the posting state.
func (s *voucherService) ReviewVoucher(ctx context.Context, voucherID string, req dto.ReviewVoucherRequest, userID string) (*domain.Voucher, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	if !req.ReviewStatus.IsValid() {
		return nil, apperrors.NewValidationError("reviewStatus", "unknown review status")
	}
	var reviewed domain.Voucher
	err := s.withConflictRetry(ctx, "review_voucher", s.retries, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			voucher, err := s.voucherRepo.FindVoucherByIDForUpdate(ctx, voucherID)
			if err != nil {
				return err
			}
			voucher.ReviewStatus = req.ReviewStatus
			voucher.Touch(userID, s.Now())
			if err := s.voucherRepo.UpdatePostingState(ctx, *voucher); err != nil {
				return err
			}
			voucher.Version++
			reviewed = *voucher
			return nil
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to review voucher", slog.String("voucher_id", voucherID))
		return nil, err
	}
	return &reviewed, nil
}

// PostVoucher applies the voucher to account balances in one transaction.
func (s *voucherService) PostVoucher(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	var posted domain.Voucher
	err := s.withConflictRetry(ctx, "post_voucher", s.retries, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			voucher, err := s.voucherRepo.FindVoucherByIDForUpdate(ctx, voucherID)
			if err != nil {
				return err
			}
			if err := s.poster.post(ctx, voucher, userID, s.Now()); err != nil {
				return err
			}
			posted = *voucher
			return nil
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to post voucher", slog.String("voucher_id", voucherID))
		return nil, err
	}
	vouchersPostedTotal.Inc()
	s.LogInfo(ctx, "Voucher posted",
		slog.String("voucher_id", voucherID),
		slog.String("voucher_no", posted.VoucherNo))
	return &posted, nil
}

// UnpostVoucher reverses the applied deltas. Vouchers with a reconciled entry cannot be unposted.
func (s *voucherService) UnpostVoucher(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	var unposted domain.Voucher
	err := s.withConflictRetry(ctx, "unpost_voucher", s.retries, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			voucher, err := s.voucherRepo.FindVoucherByIDForUpdate(ctx, voucherID)
			if err != nil {
				return err
			}
			for _, e := range voucher.Entries {
				item, err := s.statementRepo.FindItemByEntryID(ctx, e.EntryID)
				if err == nil {
					return &apperrors.AlreadyReconciledError{
						ItemID:  item.ItemID,
						EntryID: e.EntryID,
						Reason:  fmt.Sprintf("entry %d of voucher %s is reconciled with a bank statement item", e.LineNo, voucher.VoucherNo),
					}
				}
				if !errors.Is(err, apperrors.ErrNotFound) {
					return err
				}
			}
			if err := s.poster.unpost(ctx, voucher, userID, s.Now()); err != nil {
				return err
			}
			unposted = *voucher
			return nil
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to unpost voucher", slog.String("voucher_id", voucherID))
		return nil, err
	}
	vouchersUnpostedTotal.Inc()
	s.LogInfo(ctx, "Voucher unposted", slog.String("voucher_id", voucherID))
	return &unposted, nil
}

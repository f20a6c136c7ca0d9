package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// NextVoucherSequence hands out voucher numbers. The counter lives outside the
// transactional state so a rolled back number is never handed out again.
func (s *Store) NextVoucherSequence(_ context.Context) (int64, error) {
	return s.voucherSeq.Add(1), nil
}

func (s *Store) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	var out *domain.Voucher
	err := s.read(ctx, func(st *state) error {
		v, ok := st.vouchers[voucherID]
		if !ok {
			return apperrors.NewNotFoundError("voucher", voucherID)
		}
		v = cloneVoucher(v)
		out = &v
		return nil
	})
	return out, err
}

// FindVoucherByIDForUpdate is FindVoucherByID; the transaction already holds the write lock.
func (s *Store) FindVoucherByIDForUpdate(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	return s.FindVoucherByID(ctx, voucherID)
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

func voucherTouches(v domain.Voucher, accountID string) bool {
	for _, e := range v.Entries {
		if e.AccountID == accountID {
			return true
		}
	}
	return false
}

// ListVouchers returns matching vouchers ordered by date desc, sequence desc.
func (s *Store) ListVouchers(ctx context.Context, filter domain.VoucherFilter) ([]domain.Voucher, error) {
	var out []domain.Voucher
	err := s.read(ctx, func(st *state) error {
		for _, v := range st.vouchers {
			if filter.Posted != nil && v.Posted != *filter.Posted {
				continue
			}
			if filter.ReviewStatus != nil && v.ReviewStatus != *filter.ReviewStatus {
				continue
			}
			if !inRange(v.Date, filter.From, filter.To) {
				continue
			}
			if filter.AccountID != nil && !voucherTouches(v, *filter.AccountID) {
				continue
			}
			if filter.AfterDate != nil {
				after := *filter.AfterDate
				if v.Date.After(after) || (v.Date.Equal(after) && v.SequenceNo >= filter.AfterSeq) {
					continue
				}
			}
			out = append(out, cloneVoucher(v))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].SequenceNo > out[j].SequenceNo
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func ledgerEntry(st *state, v domain.Voucher, e domain.Entry) domain.LedgerEntry {
	return domain.LedgerEntry{
		Entry:       e,
		VoucherNo:   v.VoucherNo,
		VoucherDate: v.Date,
		Posted:      v.Posted,
		AccountName: st.accounts[e.AccountID].Name,
	}
}

func (s *Store) FindLedgerEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	var out *domain.LedgerEntry
	err := s.read(ctx, func(st *state) error {
		vid, ok := st.entryIndex[entryID]
		if !ok {
			return apperrors.NewNotFoundError("voucher entry", entryID)
		}
		v := st.vouchers[vid]
		for _, e := range v.Entries {
			if e.EntryID == entryID {
				le := ledgerEntry(st, v, e)
				out = &le
				return nil
			}
		}
		return apperrors.NewNotFoundError("voucher entry", entryID)
	})
	return out, err
}

// ListUnreconciledBankEntries returns posted entries on bank accounts with no linked item.
func (s *Store) ListUnreconciledBankEntries(ctx context.Context, accountID *string) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	err := s.read(ctx, func(st *state) error {
		for _, v := range st.vouchers {
			if !v.Posted {
				continue
			}
			for _, e := range v.Entries {
				if accountID != nil && e.AccountID != *accountID {
					continue
				}
				if !st.accounts[e.AccountID].IsBank {
					continue
				}
				if _, linked := st.itemByEntry[e.EntryID]; linked {
					continue
				}
				out = append(out, ledgerEntry(st, v, e))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].VoucherDate.Equal(out[j].VoucherDate) {
			return out[i].VoucherDate.Before(out[j].VoucherDate)
		}
		if out[i].VoucherNo != out[j].VoucherNo {
			return out[i].VoucherNo < out[j].VoucherNo
		}
		return out[i].LineNo < out[j].LineNo
	})
	return out, err
}

// SumPostedActivity totals posted debits and credits per account over [from, to).
func (s *Store) SumPostedActivity(ctx context.Context, from, to *time.Time) ([]domain.AccountActivity, error) {
	byAccount := make(map[string]*domain.AccountActivity)
	err := s.read(ctx, func(st *state) error {
		for _, v := range st.vouchers {
			if !v.Posted || !inRange(v.Date, from, to) {
				continue
			}
			for _, e := range v.Entries {
				act, ok := byAccount[e.AccountID]
				if !ok {
					act = &domain.AccountActivity{AccountID: e.AccountID}
					byAccount[e.AccountID] = act
				}
				if e.Direction == domain.Debit {
					act.Debits = act.Debits.Add(e.Amount)
				} else {
					act.Credits = act.Credits.Add(e.Amount)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.AccountActivity, 0, len(byAccount))
	for _, act := range byAccount {
		out = append(out, *act)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func (s *Store) CountVouchers(ctx context.Context, from, to *time.Time) (int, error) {
	n := 0
	err := s.read(ctx, func(st *state) error {
		for _, v := range st.vouchers {
			if inRange(v.Date, from, to) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (s *Store) SaveVoucher(ctx context.Context, voucher domain.Voucher) error {
	return s.write(ctx, func(st *state) error {
		if _, ok := st.vouchers[voucher.VoucherID]; ok {
			return fmt.Errorf("%w: voucher %s", apperrors.ErrDuplicate, voucher.VoucherID)
		}
		for _, e := range voucher.Entries {
			if _, ok := st.entryIndex[e.EntryID]; ok {
				return fmt.Errorf("%w: voucher entry %s", apperrors.ErrDuplicate, e.EntryID)
			}
		}
		st.vouchers[voucher.VoucherID] = cloneVoucher(voucher)
		for _, e := range voucher.Entries {
			st.entryIndex[e.EntryID] = voucher.VoucherID
		}
		return nil
	})
}

// UpdateVoucher replaces the header and entries of an unposted voucher.
func (s *Store) UpdateVoucher(ctx context.Context, voucher domain.Voucher) error {
	return s.write(ctx, func(st *state) error {
		stored, ok := st.vouchers[voucher.VoucherID]
		if !ok {
			return apperrors.NewNotFoundError("voucher", voucher.VoucherID)
		}
		if stored.Version != voucher.Version {
			return apperrors.NewConflictError("voucher", voucher.VoucherID)
		}
		if stored.Posted {
			return &apperrors.PostedVoucherImmutableError{VoucherID: voucher.VoucherID}
		}
		for _, e := range stored.Entries {
			delete(st.entryIndex, e.EntryID)
		}
		voucher = cloneVoucher(voucher)
		voucher.Version = stored.Version + 1
		st.vouchers[voucher.VoucherID] = voucher
		for _, e := range voucher.Entries {
			st.entryIndex[e.EntryID] = voucher.VoucherID
		}
		return nil
	})
}

// UpdatePostingState stores posting fields and applied deltas. Entry lines are left as stored.
func (s *Store) UpdatePostingState(ctx context.Context, voucher domain.Voucher) error {
	return s.write(ctx, func(st *state) error {
		stored, ok := st.vouchers[voucher.VoucherID]
		if !ok {
			return apperrors.NewNotFoundError("voucher", voucher.VoucherID)
		}
		if stored.Version != voucher.Version {
			return apperrors.NewConflictError("voucher", voucher.VoucherID)
		}
		deltas := make(map[string]domain.Entry, len(voucher.Entries))
		for _, e := range voucher.Entries {
			deltas[e.EntryID] = e
		}
		stored = cloneVoucher(stored)
		for i, e := range stored.Entries {
			if updated, ok := deltas[e.EntryID]; ok {
				stored.Entries[i].AppliedDelta = updated.AppliedDelta
			}
		}
		stored.Posted = voucher.Posted
		stored.PostedAt = voucher.PostedAt
		stored.PostedBy = voucher.PostedBy
		stored.ReviewStatus = voucher.ReviewStatus
		stored.LastUpdatedAt = voucher.LastUpdatedAt
		stored.LastUpdatedBy = voucher.LastUpdatedBy
		stored.Version++
		st.vouchers[voucher.VoucherID] = stored
		return nil
	})
}

func (s *Store) DeleteVoucher(ctx context.Context, voucherID string) error {
	return s.write(ctx, func(st *state) error {
		stored, ok := st.vouchers[voucherID]
		if !ok {
			return apperrors.NewNotFoundError("voucher", voucherID)
		}
		if stored.Posted {
			return &apperrors.PostedVoucherImmutableError{VoucherID: voucherID}
		}
		for _, e := range stored.Entries {
			delete(st.entryIndex, e.EntryID)
		}
		delete(st.vouchers, voucherID)
		return nil
	})
}

package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// ledgerPoster moves vouchers between the unposted and posted states. Both methods
// must run inside a transaction; the caller owns the voucher lock.
type ledgerPoster struct {
	accountRepo portsrepo.AccountRepositoryFacade
	voucherRepo portsrepo.VoucherRepositoryFacade
}

func sortedIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

// post applies every entry to its account and records the applied deltas.
func (p ledgerPoster) post(ctx context.Context, v *domain.Voucher, actorID string, now time.Time) error {
	if v.Posted {
		return apperrors.NewValidationError("posted", fmt.Sprintf("voucher %s is already posted", v.VoucherNo))
	}
	if err := accounting.ValidateEntries(v.Entries); err != nil {
		return err
	}
	accounts, err := p.accountRepo.FindAccountsByIDsForUpdate(ctx, sortedIDs(v.AccountIDs()))
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	perAccount, perEntry, err := accounting.BalanceDeltas(v.Entries, accounts)
	if err != nil {
		return err
	}
	if err := p.accountRepo.UpdateAccountBalances(ctx, perAccount, actorID, now); err != nil {
		return fmt.Errorf("failed to apply balances: %w", err)
	}
	for i := range v.Entries {
		delta := perEntry[i]
		v.Entries[i].AppliedDelta = &delta
	}
	v.Posted = true
	v.PostedAt = &now
	v.PostedBy = &actorID
	v.Touch(actorID, now)
	if err := p.voucherRepo.UpdatePostingState(ctx, *v); err != nil {
		return err
	}
	v.Version++
	return nil
}

// unpost subtracts exactly the deltas stored by post.
func (p ledgerPoster) unpost(ctx context.Context, v *domain.Voucher, actorID string, now time.Time) error {
	if !v.Posted {
		return apperrors.NewValidationError("posted", fmt.Sprintf("voucher %s is not posted", v.VoucherNo))
	}
	reversal := make(map[string]decimal.Decimal, len(v.Entries))
	for _, e := range v.Entries {
		if e.AppliedDelta == nil {
			return fmt.Errorf("voucher %s entry %s has no applied delta", v.VoucherID, e.EntryID)
		}
		reversal[e.AccountID] = reversal[e.AccountID].Sub(*e.AppliedDelta)
	}
	if _, err := p.accountRepo.FindAccountsByIDsForUpdate(ctx, sortedIDs(v.AccountIDs())); err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	if err := p.accountRepo.UpdateAccountBalances(ctx, reversal, actorID, now); err != nil {
		return fmt.Errorf("failed to reverse balances: %w", err)
	}
	for i := range v.Entries {
		v.Entries[i].AppliedDelta = nil
	}
	v.Posted = false
	v.PostedAt = nil
	v.PostedBy = nil
	v.Touch(actorID, now)
	if err := p.voucherRepo.UpdatePostingState(ctx, *v); err != nil {
		return err
	}
	v.Version++
	return nil
}

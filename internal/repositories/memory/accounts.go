package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FindAccountByID returns an account by ID.
func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var out *domain.Account
	err := s.read(ctx, func(st *state) error {
		acc, ok := st.accounts[accountID]
		if !ok {
			return apperrors.NewNotFoundError("account", accountID)
		}
		out = &acc
		return nil
	})
	return out, err
}

// FindAccountByCode returns an account by its code.
func (s *Store) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	var out *domain.Account
	err := s.read(ctx, func(st *state) error {
		for _, acc := range st.accounts {
			if acc.Code == code {
				a := acc
				out = &a
				return nil
			}
		}
		return apperrors.NewNotFoundError("account code", code)
	})
	return out, err
}

func (s *Store) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	err := s.read(ctx, func(st *state) error {
		for _, id := range accountIDs {
			if acc, ok := st.accounts[id]; ok {
				out[id] = acc
			}
		}
		return nil
	})
	return out, err
}

// FindAccountsByIDsForUpdate is FindAccountsByIDs; the transaction already holds the write lock.
func (s *Store) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return s.FindAccountsByIDs(ctx, accountIDs)
}

// LockHierarchy is a no-op: transactions already hold the store's write lock.
func (s *Store) LockHierarchy(_ context.Context) error {
	return nil
}

// ListAccounts returns all accounts ordered by code.
func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var out []domain.Account
	err := s.read(ctx, func(st *state) error {
		out = make([]domain.Account, 0, len(st.accounts))
		for _, acc := range st.accounts {
			out = append(out, acc)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

func (s *Store) CountAccountsByType(ctx context.Context, accountType domain.AccountType) (int, error) {
	n := 0
	err := s.read(ctx, func(st *state) error {
		for _, acc := range st.accounts {
			if acc.AccountType == accountType {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (s *Store) CountChildAccounts(ctx context.Context, accountID string) (int, error) {
	n := 0
	err := s.read(ctx, func(st *state) error {
		for _, acc := range st.accounts {
			if acc.ParentAccountID != nil && *acc.ParentAccountID == accountID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (s *Store) IsAccountReferenced(ctx context.Context, accountID string) (bool, error) {
	found := false
	err := s.read(ctx, func(st *state) error {
		for _, v := range st.vouchers {
			for _, e := range v.Entries {
				if e.AccountID == accountID {
					found = true
					return nil
				}
			}
		}
		for _, stmt := range st.statements {
			if stmt.AccountID == accountID {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

// SaveAccount inserts a new account. Codes are unique.
func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	return s.write(ctx, func(st *state) error {
		if _, ok := st.accounts[account.AccountID]; ok {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
		}
		for _, existing := range st.accounts {
			if existing.Code == account.Code {
				return &apperrors.DuplicateCodeError{Code: account.Code}
			}
		}
		st.accounts[account.AccountID] = account
		return nil
	})
}

// UpdateAccount stores descriptive fields. Balance is owned by UpdateAccountBalances.
func (s *Store) UpdateAccount(ctx context.Context, account domain.Account) error {
	return s.write(ctx, func(st *state) error {
		stored, ok := st.accounts[account.AccountID]
		if !ok {
			return apperrors.NewNotFoundError("account", account.AccountID)
		}
		if stored.Version != account.Version {
			return apperrors.NewConflictError("account", account.AccountID)
		}
		for id, existing := range st.accounts {
			if id != account.AccountID && existing.Code == account.Code {
				return &apperrors.DuplicateCodeError{Code: account.Code}
			}
		}
		account.Balance = stored.Balance
		account.Version = stored.Version + 1
		st.accounts[account.AccountID] = account
		return nil
	})
}

func (s *Store) DeleteAccount(ctx context.Context, accountID string) error {
	return s.write(ctx, func(st *state) error {
		if _, ok := st.accounts[accountID]; !ok {
			return apperrors.NewNotFoundError("account", accountID)
		}
		delete(st.accounts, accountID)
		return nil
	})
}

// UpdateAccountBalances adds each delta to the stored balance and bumps the version.
func (s *Store) UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, actorID string, now time.Time) error {
	return s.write(ctx, func(st *state) error {
		for id := range balanceChanges {
			if _, ok := st.accounts[id]; !ok {
				return apperrors.NewNotFoundError("account", id)
			}
		}
		for id, delta := range balanceChanges {
			acc := st.accounts[id]
			acc.Balance = acc.Balance.Add(delta)
			acc.LastUpdatedAt = now
			acc.LastUpdatedBy = actorID
			acc.Version++
			st.accounts[id] = acc
		}
		return nil
	})
}

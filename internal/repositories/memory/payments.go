package memory

import (
	"context"
	"sort"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

func (s *Store) SavePayments(ctx context.Context, payments []domain.Payment) error {
	return s.write(ctx, func(st *state) error {
		st.payments = append(st.payments, payments...)
		return nil
	})
}

// ListPayments returns the most recent payments first.
func (s *Store) ListPayments(ctx context.Context, limit int) ([]domain.Payment, error) {
	var out []domain.Payment
	err := s.read(ctx, func(st *state) error {
		out = append(out, st.payments...)
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

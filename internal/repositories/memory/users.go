package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
)

func (s *Store) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	var out *domain.User
	err := s.read(ctx, func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return apperrors.NewNotFoundError("user", userID)
		}
		out = &u
		return nil
	})
	return out, err
}

// FindUserByUsername matches usernames case-insensitively.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var out *domain.User
	err := s.read(ctx, func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Username, username) {
				user := u
				out = &user
				return nil
			}
		}
		return apperrors.NewNotFoundError("user", username)
	})
	return out, err
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	n := 0
	err := s.read(ctx, func(st *state) error {
		n = len(st.users)
		return nil
	})
	return n, err
}

func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	return s.write(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.UserID == user.UserID || strings.EqualFold(u.Username, user.Username) {
				return fmt.Errorf("%w: username %s", apperrors.ErrDuplicate, user.Username)
			}
		}
		st.users[user.UserID] = user
		return nil
	})
}

package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
)

func statementWithItems(st *state, stmt domain.BankStatement) domain.BankStatement {
	stmt.Items = nil
	for _, it := range st.items {
		if it.StatementID == stmt.StatementID {
			stmt.Items = append(stmt.Items, it)
		}
	}
	sort.Slice(stmt.Items, func(i, j int) bool {
		if !stmt.Items[i].TransactionDate.Equal(stmt.Items[j].TransactionDate) {
			return stmt.Items[i].TransactionDate.Before(stmt.Items[j].TransactionDate)
		}
		return stmt.Items[i].CreatedAt.Before(stmt.Items[j].CreatedAt)
	})
	return stmt
}

func (s *Store) FindStatementByID(ctx context.Context, statementID string) (*domain.BankStatement, error) {
	var out *domain.BankStatement
	err := s.read(ctx, func(st *state) error {
		stmt, ok := st.statements[statementID]
		if !ok {
			return apperrors.NewNotFoundError("bank statement", statementID)
		}
		stmt = statementWithItems(st, stmt)
		out = &stmt
		return nil
	})
	return out, err
}

// FindStatementByIDForUpdate is FindStatementByID; the transaction already holds the write lock.
func (s *Store) FindStatementByIDForUpdate(ctx context.Context, statementID string) (*domain.BankStatement, error) {
	return s.FindStatementByID(ctx, statementID)
}

func (s *Store) ListStatements(ctx context.Context, accountID *string) ([]domain.BankStatement, error) {
	var out []domain.BankStatement
	err := s.read(ctx, func(st *state) error {
		for _, stmt := range st.statements {
			if accountID != nil && stmt.AccountID != *accountID {
				continue
			}
			out = append(out, statementWithItems(st, stmt))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StatementDate.After(out[j].StatementDate) })
	return out, err
}

func (s *Store) FindItemByID(ctx context.Context, itemID string) (*domain.StatementItem, error) {
	var out *domain.StatementItem
	err := s.read(ctx, func(st *state) error {
		it, ok := st.items[itemID]
		if !ok {
			return apperrors.NewNotFoundError("bank statement item", itemID)
		}
		out = &it
		return nil
	})
	return out, err
}

func (s *Store) FindItemByIDForUpdate(ctx context.Context, itemID string) (*domain.StatementItem, error) {
	return s.FindItemByID(ctx, itemID)
}

func (s *Store) FindItemByEntryID(ctx context.Context, entryID string) (*domain.StatementItem, error) {
	var out *domain.StatementItem
	err := s.read(ctx, func(st *state) error {
		itemID, ok := st.itemByEntry[entryID]
		if !ok {
			return apperrors.NewNotFoundError("bank statement item for entry", entryID)
		}
		it := st.items[itemID]
		out = &it
		return nil
	})
	return out, err
}

func (s *Store) SaveStatement(ctx context.Context, statement domain.BankStatement) error {
	return s.write(ctx, func(st *state) error {
		if _, ok := st.statements[statement.StatementID]; ok {
			return fmt.Errorf("%w: bank statement %s", apperrors.ErrDuplicate, statement.StatementID)
		}
		statement.Items = nil
		st.statements[statement.StatementID] = statement
		return nil
	})
}

func (s *Store) UpdateStatement(ctx context.Context, statement domain.BankStatement) error {
	return s.write(ctx, func(st *state) error {
		stored, ok := st.statements[statement.StatementID]
		if !ok {
			return apperrors.NewNotFoundError("bank statement", statement.StatementID)
		}
		if stored.Version != statement.Version {
			return apperrors.NewConflictError("bank statement", statement.StatementID)
		}
		statement.Items = nil
		statement.Version = stored.Version + 1
		st.statements[statement.StatementID] = statement
		return nil
	})
}

func (s *Store) DeleteStatement(ctx context.Context, statementID string) error {
	return s.write(ctx, func(st *state) error {
		if _, ok := st.statements[statementID]; !ok {
			return apperrors.NewNotFoundError("bank statement", statementID)
		}
		for id, it := range st.items {
			if it.StatementID != statementID {
				continue
			}
			if it.EntryID != nil {
				delete(st.itemByEntry, *it.EntryID)
			}
			delete(st.items, id)
		}
		delete(st.statements, statementID)
		return nil
	})
}

func (s *Store) SaveItems(ctx context.Context, items []domain.StatementItem) error {
	return s.write(ctx, func(st *state) error {
		for _, it := range items {
			if _, ok := st.statements[it.StatementID]; !ok {
				return apperrors.NewNotFoundError("bank statement", it.StatementID)
			}
			if _, ok := st.items[it.ItemID]; ok {
				return fmt.Errorf("%w: bank statement item %s", apperrors.ErrDuplicate, it.ItemID)
			}
		}
		for _, it := range items {
			st.items[it.ItemID] = it
			if it.EntryID != nil {
				st.itemByEntry[*it.EntryID] = it.ItemID
			}
		}
		return nil
	})
}

// UpdateItem stores the reconciliation fields. An entry can be linked to at most one item.
func (s *Store) UpdateItem(ctx context.Context, item domain.StatementItem) error {
	return s.write(ctx, func(st *state) error {
		stored, ok := st.items[item.ItemID]
		if !ok {
			return apperrors.NewNotFoundError("bank statement item", item.ItemID)
		}
		if stored.Version != item.Version {
			return apperrors.NewConflictError("bank statement item", item.ItemID)
		}
		if item.EntryID != nil {
			if owner, linked := st.itemByEntry[*item.EntryID]; linked && owner != item.ItemID {
				return &apperrors.AlreadyReconciledError{ItemID: owner, EntryID: *item.EntryID, Reason: "entry is matched to another statement item"}
			}
		}
		if stored.EntryID != nil {
			delete(st.itemByEntry, *stored.EntryID)
		}
		if item.EntryID != nil {
			st.itemByEntry[*item.EntryID] = item.ItemID
		}
		item.Version = stored.Version + 1
		st.items[item.ItemID] = item
		return nil
	})
}

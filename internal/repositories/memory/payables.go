package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// Bills

func (s *Store) FindBillByID(ctx context.Context, billID string) (*domain.Bill, error) {
	var out *domain.Bill
	err := s.read(ctx, func(st *state) error {
		b, ok := st.bills[billID]
		if !ok {
			return apperrors.NewNotFoundError("bill", billID)
		}
		out = &b
		return nil
	})
	return out, err
}

// ListBills returns bills ordered by due date.
func (s *Store) ListBills(ctx context.Context, status *domain.BillStatus) ([]domain.Bill, error) {
	var out []domain.Bill
	err := s.read(ctx, func(st *state) error {
		for _, b := range st.bills {
			if status == nil || b.Status == *status {
				out = append(out, b)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].BillNo < out[j].BillNo
	})
	return out, err
}

func (s *Store) FindBillsByIDsForUpdate(ctx context.Context, billIDs []string) (map[string]domain.Bill, error) {
	out := make(map[string]domain.Bill, len(billIDs))
	err := s.read(ctx, func(st *state) error {
		for _, id := range billIDs {
			if b, ok := st.bills[id]; ok {
				out[id] = b
			}
		}
		return nil
	})
	return out, err
}

// SaveBill inserts a bill. Bill numbers are unique.
func (s *Store) SaveBill(ctx context.Context, bill domain.Bill) error {
	return s.write(ctx, func(st *state) error {
		for _, b := range st.bills {
			if b.BillID == bill.BillID || b.BillNo == bill.BillNo {
				return fmt.Errorf("%w: bill %s", apperrors.ErrDuplicate, bill.BillNo)
			}
		}
		st.bills[bill.BillID] = bill
		return nil
	})
}

func (s *Store) UpdateBill(ctx context.Context, bill domain.Bill) error {
	return s.write(ctx, func(st *state) error {
		stored, ok := st.bills[bill.BillID]
		if !ok {
			return apperrors.NewNotFoundError("bill", bill.BillID)
		}
		if stored.Version != bill.Version {
			return apperrors.NewConflictError("bill", bill.BillID)
		}
		for id, b := range st.bills {
			if id != bill.BillID && b.BillNo == bill.BillNo {
				return fmt.Errorf("%w: bill %s", apperrors.ErrDuplicate, bill.BillNo)
			}
		}
		bill.Version = stored.Version + 1
		st.bills[bill.BillID] = bill
		return nil
	})
}

func (s *Store) DeleteBill(ctx context.Context, billID string) error {
	return s.write(ctx, func(st *state) error {
		if _, ok := st.bills[billID]; !ok {
			return apperrors.NewNotFoundError("bill", billID)
		}
		delete(st.bills, billID)
		return nil
	})
}

// Tax declarations

func (s *Store) FindDeclarationByID(ctx context.Context, declarationID string) (*domain.TaxDeclaration, error) {
	var out *domain.TaxDeclaration
	err := s.read(ctx, func(st *state) error {
		d, ok := st.taxes[declarationID]
		if !ok {
			return apperrors.NewNotFoundError("tax declaration", declarationID)
		}
		out = &d
		return nil
	})
	return out, err
}

// ListDeclarations returns declarations ordered by period desc.
func (s *Store) ListDeclarations(ctx context.Context, status *domain.TaxStatus) ([]domain.TaxDeclaration, error) {
	var out []domain.TaxDeclaration
	err := s.read(ctx, func(st *state) error {
		for _, d := range st.taxes {
			if status == nil || d.Status == *status {
				out = append(out, d)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period > out[j].Period
		}
		return out[i].TaxType < out[j].TaxType
	})
	return out, err
}

func (s *Store) FindDeclarationsByIDsForUpdate(ctx context.Context, declarationIDs []string) (map[string]domain.TaxDeclaration, error) {
	out := make(map[string]domain.TaxDeclaration, len(declarationIDs))
	err := s.read(ctx, func(st *state) error {
		for _, id := range declarationIDs {
			if d, ok := st.taxes[id]; ok {
				out[id] = d
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) SaveDeclaration(ctx context.Context, declaration domain.TaxDeclaration) error {
	return s.write(ctx, func(st *state) error {
		if _, ok := st.taxes[declaration.DeclarationID]; ok {
			return fmt.Errorf("%w: tax declaration %s", apperrors.ErrDuplicate, declaration.DeclarationID)
		}
		st.taxes[declaration.DeclarationID] = declaration
		return nil
	})
}

func (s *Store) UpdateDeclaration(ctx context.Context, declaration domain.TaxDeclaration) error {
	return s.write(ctx, func(st *state) error {
		stored, ok := st.taxes[declaration.DeclarationID]
		if !ok {
			return apperrors.NewNotFoundError("tax declaration", declaration.DeclarationID)
		}
		if stored.Version != declaration.Version {
			return apperrors.NewConflictError("tax declaration", declaration.DeclarationID)
		}
		declaration.Version = stored.Version + 1
		st.taxes[declaration.DeclarationID] = declaration
		return nil
	})
}

func (s *Store) DeleteDeclaration(ctx context.Context, declarationID string) error {
	return s.write(ctx, func(st *state) error {
		if _, ok := st.taxes[declarationID]; !ok {
			return apperrors.NewNotFoundError("tax declaration", declarationID)
		}
		delete(st.taxes, declarationID)
		return nil
	})
}

// Purchase orders

func (s *Store) FindOrderByID(ctx context.Context, orderID string) (*domain.PurchaseOrder, error) {
	var out *domain.PurchaseOrder
	err := s.read(ctx, func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return apperrors.NewNotFoundError("purchase order", orderID)
		}
		o = cloneOrder(o)
		out = &o
		return nil
	})
	return out, err
}

// ListOrders returns orders ordered by order date desc.
func (s *Store) ListOrders(ctx context.Context, status *domain.PurchaseOrderStatus) ([]domain.PurchaseOrder, error) {
	var out []domain.PurchaseOrder
	err := s.read(ctx, func(st *state) error {
		for _, o := range st.orders {
			if status == nil || o.Status == *status {
				out = append(out, cloneOrder(o))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].OrderNumber > out[j].OrderNumber
	})
	return out, err
}

func (s *Store) FindOrdersByIDsForUpdate(ctx context.Context, orderIDs []string) (map[string]domain.PurchaseOrder, error) {
	out := make(map[string]domain.PurchaseOrder, len(orderIDs))
	err := s.read(ctx, func(st *state) error {
		for _, id := range orderIDs {
			if o, ok := st.orders[id]; ok {
				out[id] = cloneOrder(o)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) SaveOrder(ctx context.Context, order domain.PurchaseOrder) error {
	return s.write(ctx, func(st *state) error {
		for _, o := range st.orders {
			if o.OrderID == order.OrderID || o.OrderNumber == order.OrderNumber {
				return fmt.Errorf("%w: purchase order %s", apperrors.ErrDuplicate, order.OrderNumber)
			}
		}
		st.orders[order.OrderID] = cloneOrder(order)
		return nil
	})
}

func (s *Store) UpdateOrder(ctx context.Context, order domain.PurchaseOrder) error {
	return s.write(ctx, func(st *state) error {
		stored, ok := st.orders[order.OrderID]
		if !ok {
			return apperrors.NewNotFoundError("purchase order", order.OrderID)
		}
		if stored.Version != order.Version {
			return apperrors.NewConflictError("purchase order", order.OrderID)
		}
		order = cloneOrder(order)
		order.Version = stored.Version + 1
		st.orders[order.OrderID] = order
		return nil
	})
}

func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	return s.write(ctx, func(st *state) error {
		if _, ok := st.orders[orderID]; !ok {
			return apperrors.NewNotFoundError("purchase order", orderID)
		}
		for _, b := range st.bills {
			if b.PurchaseOrderID != nil && *b.PurchaseOrderID == orderID {
				return fmt.Errorf("%w: purchase order %s is referenced by bill %s", apperrors.ErrInUse, orderID, b.BillNo)
			}
		}
		delete(st.orders, orderID)
		return nil
	})
}

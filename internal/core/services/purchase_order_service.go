package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/google/uuid"
)

type purchaseOrderService struct {
	BaseService
	tx          portsrepo.TransactionManager
	orderRepo   portsrepo.PurchaseOrderRepositoryFacade
	vendorRepo  portsrepo.VendorReader
	accountRepo portsrepo.AccountReader
}

// NewPurchaseOrderService creates the purchase order service.
func NewPurchaseOrderService(repos portsrepo.RepositoryProvider, opts ...Option) portssvc.PurchaseOrderSvcFacade {
	svc := &purchaseOrderService{
		tx:          repos.Tx,
		orderRepo:   repos.PurchaseOrderRepo,
		vendorRepo:  repos.VendorRepo,
		accountRepo: repos.AccountRepo,
	}
	applyOptions(svc, opts)
	return svc
}

var _ portssvc.PurchaseOrderSvcFacade = (*purchaseOrderService)(nil)

func buildOrderItems(orderID string, reqs []dto.PurchaseOrderItemRequest) ([]domain.PurchaseOrderItem, error) {
	if len(reqs) == 0 {
		return nil, apperrors.NewValidationError("items", "at least one item is required")
	}
	items := make([]domain.PurchaseOrderItem, len(reqs))
	for i, r := range reqs {
		field := fmt.Sprintf("items[%d]", i)
		name := strings.TrimSpace(r.ProductName)
		if name == "" {
			return nil, apperrors.NewValidationError(field+".productName", "is required")
		}
		if !r.Quantity.IsPositive() {
			return nil, apperrors.NewValidationError(field+".quantity", "must be greater than zero")
		}
		if r.UnitPrice.IsNegative() || !accounting.IsMoney(r.UnitPrice) {
			return nil, apperrors.NewValidationError(field+".unitPrice", "must be a non-negative amount with at most 2 decimal places")
		}
		items[i] = domain.PurchaseOrderItem{
			ItemID:      uuid.NewString(),
			OrderID:     orderID,
			ProductName: name,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
			AccountID:   optionalID(r.AccountID),
			Description: r.Description,
		}
	}
	return items, nil
}

// checkOrderReferences verifies the vendor and every item account exist.
func (s *purchaseOrderService) checkOrderReferences(ctx context.Context, order domain.PurchaseOrder) error {
	if _, err := s.vendorRepo.FindVendorByID(ctx, order.VendorID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("vendorID", "vendor does not exist")
		}
		return err
	}
	var ids []string
	for _, it := range order.Items {
		if it.AccountID != nil {
			ids = append(ids, *it.AccountID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load item accounts: %w", err)
	}
	for i, it := range order.Items {
		if it.AccountID == nil {
			continue
		}
		if _, ok := accounts[*it.AccountID]; !ok {
			return apperrors.NewValidationError(fmt.Sprintf("items[%d].accountID", i), fmt.Sprintf("account %s does not exist", *it.AccountID))
		}
	}
	return nil
}

func (s *purchaseOrderService) CreateOrder(ctx context.Context, req dto.CreatePurchaseOrderRequest, userID string) (*domain.PurchaseOrder, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	if req.OrderDate.IsZero() {
		return nil, apperrors.NewValidationError("orderDate", "is required")
	}
	now := s.Now()
	order := domain.PurchaseOrder{
		OrderID:     uuid.NewString(),
		OrderNumber: strings.TrimSpace(req.OrderNumber),
		VendorID:    req.VendorID,
		OrderDate:   calendarDate(req.OrderDate.Time),
		Description: req.Description,
		Status:      domain.POPending,
		AuditFields: domain.NewAuditFields(userID, now),
	}
	items, err := buildOrderItems(order.OrderID, req.Items)
	if err != nil {
		return nil, err
	}
	order.Items = items
	if order.OrderNumber == "" {
		ref, err := utils.NewReference("PO", now)
		if err != nil {
			return nil, err
		}
		order.OrderNumber = ref
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkOrderReferences(ctx, order); err != nil {
			return err
		}
		return s.orderRepo.SaveOrder(ctx, order)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create purchase order")
		return nil, err
	}
	s.LogInfo(ctx, "Purchase order created",
		slog.String("order_id", order.OrderID),
		slog.String("order_number", order.OrderNumber),
		slog.String("total", order.Total().StringFixed(2)))
	return &order, nil
}

func (s *purchaseOrderService) GetOrderByID(ctx context.Context, orderID string) (*domain.PurchaseOrder, error) {
	return s.orderRepo.FindOrderByID(ctx, orderID)
}

func (s *purchaseOrderService) ListOrders(ctx context.Context, status *domain.PurchaseOrderStatus) ([]domain.PurchaseOrder, error) {
	orders, err := s.orderRepo.ListOrders(ctx, status)
	if err != nil {
		s.LogError(ctx, err, "Failed to list purchase orders")
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	if orders == nil {
		return []domain.PurchaseOrder{}, nil
	}
	return orders, nil
}

func completedOrderError(o *domain.PurchaseOrder) error {
	return fmt.Errorf("%w: purchase order %s is %s", apperrors.ErrInvalidState, o.OrderNumber, o.Status)
}

// UpdateOrder edits an order that is not completed. Lines may only change while the
// order is PENDING.
func (s *purchaseOrderService) UpdateOrder(ctx context.Context, orderID string, req dto.UpdatePurchaseOrderRequest, userID string) (*domain.PurchaseOrder, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	var updated domain.PurchaseOrder
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.FindOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == domain.POCompleted {
			return completedOrderError(order)
		}
		if req.Version != nil && *req.Version != order.Version {
			return apperrors.NewConflictError("purchase order", orderID)
		}
		if req.Items != nil {
			if order.Status != domain.POPending {
				return fmt.Errorf("%w: items of purchase order %s can only change while PENDING", apperrors.ErrInvalidState, order.OrderNumber)
			}
			items, err := buildOrderItems(order.OrderID, req.Items)
			if err != nil {
				return err
			}
			order.Items = items
		}
		if req.Status != nil {
			if !req.Status.IsValid() {
				return apperrors.NewValidationError("status", "unknown purchase order status")
			}
			if !order.Status.CanTransition(*req.Status) {
				return fmt.Errorf("%w: purchase order cannot move from %s to %s", apperrors.ErrInvalidState, order.Status, *req.Status)
			}
			order.Status = *req.Status
		}
		if req.VendorID != nil {
			order.VendorID = *req.VendorID
		}
		if req.OrderDate != nil {
			order.OrderDate = calendarDate(req.OrderDate.Time)
		}
		if req.Description != nil {
			order.Description = *req.Description
		}
		if err := s.checkOrderReferences(ctx, *order); err != nil {
			return err
		}
		order.Touch(userID, s.Now())
		if err := s.orderRepo.UpdateOrder(ctx, *order); err != nil {
			return err
		}
		order.Version++
		updated = *order
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update purchase order", slog.String("order_id", orderID))
		return nil, err
	}
	return &updated, nil
}

func (s *purchaseOrderService) DeleteOrder(ctx context.Context, orderID string, userID string) error {
	if err := s.RequireActor(ctx, userID); err != nil {
		return err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.FindOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == domain.POCompleted {
			return completedOrderError(order)
		}
		return s.orderRepo.DeleteOrder(ctx, orderID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete purchase order", slog.String("order_id", orderID))
		return err
	}
	s.LogInfo(ctx, "Purchase order deleted", slog.String("order_id", orderID))
	return nil
}

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
	"github.com/shopspring/decimal"
)

type billService struct {
	BaseService
	tx         portsrepo.TransactionManager
	billRepo   portsrepo.BillRepositoryFacade
	vendorRepo portsrepo.VendorReader
	orderRepo  portsrepo.PurchaseOrderRepositoryFacade
}

// NewBillService creates the vendor bill service.
func NewBillService(repos portsrepo.RepositoryProvider, opts ...Option) portssvc.BillSvcFacade {
	svc := &billService{
		tx:         repos.Tx,
		billRepo:   repos.BillRepo,
		vendorRepo: repos.VendorRepo,
		orderRepo:  repos.PurchaseOrderRepo,
	}
	applyOptions(svc, opts)
	return svc
}

var _ portssvc.BillSvcFacade = (*billService)(nil)

func validateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.NewValidationError(field, "must be greater than zero")
	}
	if !accounting.IsMoney(amount) {
		return apperrors.NewValidationError(field, "must have at most 2 decimal places")
	}
	return nil
}

func validateEditableBillStatus(status domain.BillStatus) error {
	if status != domain.BillPendingReview && status != domain.BillAwaitingPayment {
		return apperrors.NewValidationError("status", "must be PENDING_REVIEW or AWAITING_PAYMENT")
	}
	return nil
}

func (s *billService) requireVendor(ctx context.Context, vendorID string) error {
	if _, err := s.vendorRepo.FindVendorByID(ctx, vendorID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("vendorID", "vendor does not exist")
		}
		return err
	}
	return nil
}

func (s *billService) CreateBill(ctx context.Context, req dto.CreateBillRequest, userID string) (*domain.Bill, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	if err := validateAmount("amount", req.Amount); err != nil {
		return nil, err
	}
	if req.DueDate.IsZero() {
		return nil, apperrors.NewValidationError("dueDate", "is required")
	}
	status := req.Status
	if status == "" {
		status = domain.BillPendingReview
	}
	if err := validateEditableBillStatus(status); err != nil {
		return nil, err
	}
	now := s.Now()
	bill := domain.Bill{
		BillID:          uuid.NewString(),
		BillNo:          strings.TrimSpace(req.BillNo),
		VendorID:        req.VendorID,
		PurchaseOrderID: optionalID(req.PurchaseOrderID),
		Amount:          req.Amount,
		DueDate:         calendarDate(req.DueDate.Time),
		Status:          status,
		Description:     req.Description,
		AuditFields:     domain.NewAuditFields(userID, now),
	}
	if bill.BillNo == "" {
		ref, err := utils.NewReference("BILL", now)
		if err != nil {
			return nil, err
		}
		bill.BillNo = ref
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requireVendor(ctx, bill.VendorID); err != nil {
			return err
		}
		if bill.PurchaseOrderID != nil {
			if _, err := s.orderRepo.FindOrderByID(ctx, *bill.PurchaseOrderID); err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return apperrors.NewValidationError("purchaseOrderID", "purchase order does not exist")
				}
				return err
			}
		}
		return s.billRepo.SaveBill(ctx, bill)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create bill", slog.String("bill_no", bill.BillNo))
		return nil, err
	}
	s.LogInfo(ctx, "Bill created", slog.String("bill_id", bill.BillID), slog.String("bill_no", bill.BillNo))
	return &bill, nil
}

func (s *billService) GetBillByID(ctx context.Context, billID string) (*domain.Bill, error) {
	return s.billRepo.FindBillByID(ctx, billID)
}

func (s *billService) ListBills(ctx context.Context, status *domain.BillStatus) ([]domain.Bill, error) {
	bills, err := s.billRepo.ListBills(ctx, status)
	if err != nil {
		s.LogError(ctx, err, "Failed to list bills")
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	if bills == nil {
		return []domain.Bill{}, nil
	}
	return bills, nil
}

func (s *billService) UpdateBill(ctx context.Context, billID string, req dto.UpdateBillRequest, userID string) (*domain.Bill, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	var updated domain.Bill
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.FindBillByID(ctx, billID)
		if err != nil {
			return err
		}
		if bill.Status == domain.BillPaid {
			return fmt.Errorf("%w: bill %s is paid", apperrors.ErrInvalidState, bill.BillNo)
		}
		if req.Version != nil && *req.Version != bill.Version {
			return apperrors.NewConflictError("bill", billID)
		}
		if req.BillNo != nil {
			bill.BillNo = strings.TrimSpace(*req.BillNo)
		}
		if req.VendorID != nil {
			if err := s.requireVendor(ctx, *req.VendorID); err != nil {
				return err
			}
			bill.VendorID = *req.VendorID
		}
		if req.Amount != nil {
			if err := validateAmount("amount", *req.Amount); err != nil {
				return err
			}
			bill.Amount = *req.Amount
		}
		if req.DueDate != nil {
			bill.DueDate = calendarDate(req.DueDate.Time)
		}
		if req.Status != nil {
			if err := validateEditableBillStatus(*req.Status); err != nil {
				return err
			}
			bill.Status = *req.Status
		}
		if req.Description != nil {
			bill.Description = *req.Description
		}
		bill.Touch(userID, s.Now())
		if err := s.billRepo.UpdateBill(ctx, *bill); err != nil {
			return err
		}
		bill.Version++
		updated = *bill
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update bill", slog.String("bill_id", billID))
		return nil, err
	}
	return &updated, nil
}

func (s *billService) DeleteBill(ctx context.Context, billID string, userID string) error {
	if err := s.RequireActor(ctx, userID); err != nil {
		return err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.FindBillByID(ctx, billID)
		if err != nil {
			return err
		}
		if bill.Status == domain.BillPaid {
			return fmt.Errorf("%w: bill %s is paid", apperrors.ErrInvalidState, bill.BillNo)
		}
		return s.billRepo.DeleteBill(ctx, billID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete bill", slog.String("bill_id", billID))
		return err
	}
	s.LogInfo(ctx, "Bill deleted", slog.String("bill_id", billID))
	return nil
}

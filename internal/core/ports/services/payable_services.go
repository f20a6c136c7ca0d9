package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// BillSvcFacade defines vendor bill management. Bills become PAID only through payments.
type BillSvcFacade interface {
	CreateBill(ctx context.Context, req dto.CreateBillRequest, userID string) (*domain.Bill, error)
	GetBillByID(ctx context.Context, billID string) (*domain.Bill, error)
	ListBills(ctx context.Context, status *domain.BillStatus) ([]domain.Bill, error)
	UpdateBill(ctx context.Context, billID string, req dto.UpdateBillRequest, userID string) (*domain.Bill, error)
	DeleteBill(ctx context.Context, billID string, userID string) error
}

// TaxSvcFacade defines tax declaration management.
type TaxSvcFacade interface {
	// CalculateTax derives a declaration from posted ledger activity in the period.
	CalculateTax(ctx context.Context, req dto.CalculateTaxRequest) (*domain.TaxCalculation, error)

	CreateDeclaration(ctx context.Context, req dto.CreateTaxDeclarationRequest, userID string) (*domain.TaxDeclaration, error)
	GetDeclarationByID(ctx context.Context, declarationID string) (*domain.TaxDeclaration, error)
	ListDeclarations(ctx context.Context, status *domain.TaxStatus) ([]domain.TaxDeclaration, error)
	UpdateDeclaration(ctx context.Context, declarationID string, req dto.UpdateTaxDeclarationRequest, userID string) (*domain.TaxDeclaration, error)
	DeleteDeclaration(ctx context.Context, declarationID string, userID string) error

	// SubmitDeclaration files a pending or failed declaration.
	SubmitDeclaration(ctx context.Context, declarationID string, userID string) (*domain.TaxDeclaration, error)
}

// PurchaseOrderSvcFacade defines purchase order management.
type PurchaseOrderSvcFacade interface {
	CreateOrder(ctx context.Context, req dto.CreatePurchaseOrderRequest, userID string) (*domain.PurchaseOrder, error)
	GetOrderByID(ctx context.Context, orderID string) (*domain.PurchaseOrder, error)
	ListOrders(ctx context.Context, status *domain.PurchaseOrderStatus) ([]domain.PurchaseOrder, error)
	UpdateOrder(ctx context.Context, orderID string, req dto.UpdatePurchaseOrderRequest, userID string) (*domain.PurchaseOrder, error)
	DeleteOrder(ctx context.Context, orderID string, userID string) error
}

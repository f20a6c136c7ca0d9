package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// BillRepositoryFacade defines persistence for vendor bills.
type BillRepositoryFacade interface {
	FindBillByID(ctx context.Context, billID string) (*domain.Bill, error)
	ListBills(ctx context.Context, status *domain.BillStatus) ([]domain.Bill, error)
	FindBillsByIDsForUpdate(ctx context.Context, billIDs []string) (map[string]domain.Bill, error)
	SaveBill(ctx context.Context, bill domain.Bill) error
	UpdateBill(ctx context.Context, bill domain.Bill) error
	DeleteBill(ctx context.Context, billID string) error
}

// TaxDeclarationRepositoryFacade defines persistence for tax declarations.
type TaxDeclarationRepositoryFacade interface {
	FindDeclarationByID(ctx context.Context, declarationID string) (*domain.TaxDeclaration, error)
	ListDeclarations(ctx context.Context, status *domain.TaxStatus) ([]domain.TaxDeclaration, error)
	FindDeclarationsByIDsForUpdate(ctx context.Context, declarationIDs []string) (map[string]domain.TaxDeclaration, error)
	SaveDeclaration(ctx context.Context, declaration domain.TaxDeclaration) error
	UpdateDeclaration(ctx context.Context, declaration domain.TaxDeclaration) error
	DeleteDeclaration(ctx context.Context, declarationID string) error
}

// PurchaseOrderRepositoryFacade defines persistence for purchase orders and their lines.
type PurchaseOrderRepositoryFacade interface {
	FindOrderByID(ctx context.Context, orderID string) (*domain.PurchaseOrder, error)
	ListOrders(ctx context.Context, status *domain.PurchaseOrderStatus) ([]domain.PurchaseOrder, error)
	FindOrdersByIDsForUpdate(ctx context.Context, orderIDs []string) (map[string]domain.PurchaseOrder, error)
	SaveOrder(ctx context.Context, order domain.PurchaseOrder) error

	// UpdateOrder stores the header and replaces the line items. order.Version must match.
	UpdateOrder(ctx context.Context, order domain.PurchaseOrder) error
	DeleteOrder(ctx context.Context, orderID string) error
}

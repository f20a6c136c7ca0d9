package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBillRequest defines a new vendor bill. BillNo is generated when omitted.
type CreateBillRequest struct {
	BillNo          string            `json:"billNo" binding:"omitempty,max=64"`
	VendorID        string            `json:"vendorID" binding:"required"`
	PurchaseOrderID *string           `json:"purchaseOrderID"`
	Amount          decimal.Decimal   `json:"amount" binding:"required,money2dp" swaggertype:"string"`
	DueDate         Date              `json:"dueDate" binding:"required" swaggertype:"string" format:"date"`
	Status          domain.BillStatus `json:"status" binding:"omitempty,oneof=PENDING_REVIEW AWAITING_PAYMENT"`
	Description     string            `json:"description" binding:"max=500"`
}

// UpdateBillRequest edits an unpaid bill. Nil fields are left unchanged.
type UpdateBillRequest struct {
	BillNo      *string            `json:"billNo" binding:"omitempty,min=1,max=64"`
	VendorID    *string            `json:"vendorID" binding:"omitempty,min=1"`
	Amount      *decimal.Decimal   `json:"amount" binding:"omitempty,money2dp" swaggertype:"string"`
	DueDate     *Date              `json:"dueDate" swaggertype:"string" format:"date"`
	Status      *domain.BillStatus `json:"status" binding:"omitempty,oneof=PENDING_REVIEW AWAITING_PAYMENT"`
	Description *string            `json:"description" binding:"omitempty,max=500"`
	Version     *int64             `json:"version"`
}

// ListBillsParams filters bills by status.
type ListBillsParams struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING_REVIEW AWAITING_PAYMENT PAID"`
}

type BillResponse struct {
	BillID          string            `json:"billID"`
	BillNo          string            `json:"billNo"`
	VendorID        string            `json:"vendorID"`
	PurchaseOrderID *string           `json:"purchaseOrderID,omitempty"`
	Amount          decimal.Decimal   `json:"amount" swaggertype:"string"`
	DueDate         Date              `json:"dueDate" swaggertype:"string" format:"date"`
	Status          domain.BillStatus `json:"status"`
	Description     string            `json:"description"`
	Version         int64             `json:"version"`
	CreatedAt       time.Time         `json:"createdAt"`
}

func ToBillResponse(b *domain.Bill) BillResponse {
	return BillResponse{
		BillID:          b.BillID,
		BillNo:          b.BillNo,
		VendorID:        b.VendorID,
		PurchaseOrderID: b.PurchaseOrderID,
		Amount:          b.Amount,
		DueDate:         NewDate(b.DueDate),
		Status:          b.Status,
		Description:     b.Description,
		Version:         b.Version,
		CreatedAt:       b.CreatedAt,
	}
}

func ToBillListResponse(bills []domain.Bill) []BillResponse {
	res := make([]BillResponse, len(bills))
	for i := range bills {
		res[i] = ToBillResponse(&bills[i])
	}
	return res
}

// CalculateTaxRequest asks for a declaration computed from posted ledger activity.
// TaxRate is a percentage, e.g. 13 for 13%.
type CalculateTaxRequest struct {
	Period          string          `json:"period" binding:"required"`
	TaxType         domain.TaxType  `json:"taxType" binding:"required,oneof=VAT CORPORATE_INCOME SURCHARGE"`
	TaxRate         decimal.Decimal `json:"taxRate" binding:"required,money2dp" swaggertype:"string"`
	DeductionAmount decimal.Decimal `json:"deductionAmount" binding:"money2dp" swaggertype:"string"`
}

// CreateTaxDeclarationRequest records a declaration. The period format is
// checked on submit, where a malformed period marks the declaration failed.
type CreateTaxDeclarationRequest struct {
	Period          string          `json:"period" binding:"required,max=16"`
	TaxType         domain.TaxType  `json:"taxType" binding:"required,oneof=VAT CORPORATE_INCOME SURCHARGE"`
	TaxableIncome   decimal.Decimal `json:"taxableIncome" binding:"money2dp" swaggertype:"string"`
	TaxRate         decimal.Decimal `json:"taxRate" binding:"money2dp" swaggertype:"string"`
	InputTax        decimal.Decimal `json:"inputTax" binding:"money2dp" swaggertype:"string"`
	OutputTax       decimal.Decimal `json:"outputTax" binding:"money2dp" swaggertype:"string"`
	TaxableAmount   decimal.Decimal `json:"taxableAmount" binding:"money2dp" swaggertype:"string"`
	DeductionAmount decimal.Decimal `json:"deductionAmount" binding:"money2dp" swaggertype:"string"`
	TaxPayable      decimal.Decimal `json:"taxPayable" binding:"money2dp" swaggertype:"string"`
}

// UpdateTaxDeclarationRequest edits a pending or failed declaration.
type UpdateTaxDeclarationRequest struct {
	Period          *string          `json:"period" binding:"omitempty,min=1,max=16"`
	TaxType         *domain.TaxType  `json:"taxType" binding:"omitempty,oneof=VAT CORPORATE_INCOME SURCHARGE"`
	TaxableIncome   *decimal.Decimal `json:"taxableIncome" binding:"omitempty,money2dp" swaggertype:"string"`
	TaxRate         *decimal.Decimal `json:"taxRate" binding:"omitempty,money2dp" swaggertype:"string"`
	InputTax        *decimal.Decimal `json:"inputTax" binding:"omitempty,money2dp" swaggertype:"string"`
	OutputTax       *decimal.Decimal `json:"outputTax" binding:"omitempty,money2dp" swaggertype:"string"`
	TaxableAmount   *decimal.Decimal `json:"taxableAmount" binding:"omitempty,money2dp" swaggertype:"string"`
	DeductionAmount *decimal.Decimal `json:"deductionAmount" binding:"omitempty,money2dp" swaggertype:"string"`
	TaxPayable      *decimal.Decimal `json:"taxPayable" binding:"omitempty,money2dp" swaggertype:"string"`
	Version         *int64           `json:"version"`
}

// ListTaxDeclarationsParams filters declarations by status.
type ListTaxDeclarationsParams struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING SUCCESS FAILED PAID"`
}

type TaxDeclarationResponse struct {
	DeclarationID   string           `json:"declarationID"`
	Period          string           `json:"period"`
	TaxType         domain.TaxType   `json:"taxType"`
	TaxableIncome   decimal.Decimal  `json:"taxableIncome" swaggertype:"string"`
	TaxRate         decimal.Decimal  `json:"taxRate" swaggertype:"string"`
	InputTax        decimal.Decimal  `json:"inputTax" swaggertype:"string"`
	OutputTax       decimal.Decimal  `json:"outputTax" swaggertype:"string"`
	TaxableAmount   decimal.Decimal  `json:"taxableAmount" swaggertype:"string"`
	DeductionAmount decimal.Decimal  `json:"deductionAmount" swaggertype:"string"`
	TaxPayable      decimal.Decimal  `json:"taxPayable" swaggertype:"string"`
	Status          domain.TaxStatus `json:"status"`
	DeclarationTime *time.Time       `json:"declarationTime,omitempty"`
	ReceiptNumber   *string          `json:"receiptNumber,omitempty"`
	FailureReason   *string          `json:"failureReason,omitempty"`
	Version         int64            `json:"version"`
	CreatedAt       time.Time        `json:"createdAt"`
}

func ToTaxDeclarationResponse(d *domain.TaxDeclaration) TaxDeclarationResponse {
	return TaxDeclarationResponse{
		DeclarationID:   d.DeclarationID,
		Period:          d.Period,
		TaxType:         d.TaxType,
		TaxableIncome:   d.TaxableIncome,
		TaxRate:         d.TaxRate,
		InputTax:        d.InputTax,
		OutputTax:       d.OutputTax,
		TaxableAmount:   d.TaxableAmount,
		DeductionAmount: d.DeductionAmount,
		TaxPayable:      d.TaxPayable,
		Status:          d.Status,
		DeclarationTime: d.DeclarationTime,
		ReceiptNumber:   d.ReceiptNumber,
		FailureReason:   d.FailureReason,
		Version:         d.Version,
		CreatedAt:       d.CreatedAt,
	}
}

func ToTaxDeclarationListResponse(decls []domain.TaxDeclaration) []TaxDeclarationResponse {
	res := make([]TaxDeclarationResponse, len(decls))
	for i := range decls {
		res[i] = ToTaxDeclarationResponse(&decls[i])
	}
	return res
}

// PurchaseOrderItemRequest is one product line of a purchase order.
type PurchaseOrderItemRequest struct {
	ProductName string          `json:"productName" binding:"required,max=255"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required" swaggertype:"string"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required,money2dp" swaggertype:"string"`
	AccountID   *string         `json:"accountID"`
	Description string          `json:"description" binding:"max=500"`
}

// CreatePurchaseOrderRequest defines a new purchase order. OrderNumber is generated when omitted.
type CreatePurchaseOrderRequest struct {
	OrderNumber string                     `json:"orderNumber" binding:"omitempty,max=64"`
	VendorID    string                     `json:"vendorID" binding:"required"`
	OrderDate   Date                       `json:"orderDate" binding:"required" swaggertype:"string" format:"date"`
	Description string                     `json:"description" binding:"max=500"`
	Items       []PurchaseOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdatePurchaseOrderRequest edits an order. A non-nil Items replaces every line.
type UpdatePurchaseOrderRequest struct {
	VendorID    *string                     `json:"vendorID" binding:"omitempty,min=1"`
	OrderDate   *Date                       `json:"orderDate" swaggertype:"string" format:"date"`
	Description *string                     `json:"description" binding:"omitempty,max=500"`
	Status      *domain.PurchaseOrderStatus `json:"status" binding:"omitempty,oneof=PENDING APPROVED COMPLETED CANCELLED"`
	Items       []PurchaseOrderItemRequest  `json:"items" binding:"omitempty,dive"`
	Version     *int64                      `json:"version"`
}

// ListPurchaseOrdersParams filters orders by status.
type ListPurchaseOrdersParams struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING APPROVED COMPLETED CANCELLED"`
}

type PurchaseOrderItemResponse struct {
	ItemID      string          `json:"itemID"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"string"`
	UnitPrice   decimal.Decimal `json:"unitPrice" swaggertype:"string"`
	LineTotal   decimal.Decimal `json:"lineTotal" swaggertype:"string"`
	AccountID   *string         `json:"accountID,omitempty"`
	Description string          `json:"description"`
}

type PurchaseOrderResponse struct {
	OrderID     string                      `json:"orderID"`
	OrderNumber string                      `json:"orderNumber"`
	VendorID    string                      `json:"vendorID"`
	OrderDate   Date                        `json:"orderDate" swaggertype:"string" format:"date"`
	Description string                      `json:"description"`
	Status      domain.PurchaseOrderStatus  `json:"status"`
	Total       decimal.Decimal             `json:"total" swaggertype:"string"`
	Items       []PurchaseOrderItemResponse `json:"items"`
	Version     int64                       `json:"version"`
	CreatedAt   time.Time                   `json:"createdAt"`
}

func ToPurchaseOrderResponse(o *domain.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = PurchaseOrderItemResponse{
			ItemID:      it.ItemID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal().Round(domain.MoneyPlaces),
			AccountID:   it.AccountID,
			Description: it.Description,
		}
	}
	return PurchaseOrderResponse{
		OrderID:     o.OrderID,
		OrderNumber: o.OrderNumber,
		VendorID:    o.VendorID,
		OrderDate:   NewDate(o.OrderDate),
		Description: o.Description,
		Status:      o.Status,
		Total:       o.Total(),
		Items:       items,
		Version:     o.Version,
		CreatedAt:   o.CreatedAt,
	}
}

func ToPurchaseOrderListResponse(orders []domain.PurchaseOrder) []PurchaseOrderResponse {
	res := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		res[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return res
}

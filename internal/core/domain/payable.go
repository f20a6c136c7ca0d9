package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus is the lifecycle of a vendor bill.
type BillStatus string

const (
	BillPendingReview   BillStatus = "PENDING_REVIEW"
	BillAwaitingPayment BillStatus = "AWAITING_PAYMENT"
	BillPaid            BillStatus = "PAID"
)

// Bill is an amount owed to a vendor.
type Bill struct {
	BillID          string          `json:"billID"`
	BillNo          string          `json:"billNo"`
	VendorID        string          `json:"vendorID"`
	PurchaseOrderID *string         `json:"purchaseOrderID,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	DueDate         time.Time       `json:"dueDate"`
	Status          BillStatus      `json:"status"`
	Description     string          `json:"description"`
	AuditFields
}

// TaxType names the kind of tax being declared.
type TaxType string

const (
	TaxVAT             TaxType = "VAT"
	TaxCorporateIncome TaxType = "CORPORATE_INCOME"
	TaxSurcharge       TaxType = "SURCHARGE"
)

// IsValid reports whether t is a supported tax type.
func (t TaxType) IsValid() bool {
	switch t {
	case TaxVAT, TaxCorporateIncome, TaxSurcharge:
		return true
	}
	return false
}

// TaxStatus is the lifecycle of a tax declaration.
type TaxStatus string

const (
	TaxPending TaxStatus = "PENDING"
	TaxSuccess TaxStatus = "SUCCESS" // accepted by the tax office, awaiting payment
	TaxFailed  TaxStatus = "FAILED"
	TaxPaid    TaxStatus = "PAID"
)

var taxPeriodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// IsValidTaxPeriod reports whether p has the YYYY-MM form.
func IsValidTaxPeriod(p string) bool {
	return taxPeriodPattern.MatchString(p)
}

// PeriodRange returns the first instant of the period and the first instant of the next one.
func PeriodRange(period string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}

// TaxDeclaration is a periodic tax filing. Rates are percentages.
type TaxDeclaration struct {
	DeclarationID   string          `json:"declarationID"`
	Period          string          `json:"period"`
	TaxType         TaxType         `json:"taxType"`
	TaxableIncome   decimal.Decimal `json:"taxableIncome"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	InputTax        decimal.Decimal `json:"inputTax"`
	OutputTax       decimal.Decimal `json:"outputTax"`
	TaxableAmount   decimal.Decimal `json:"taxableAmount"`
	DeductionAmount decimal.Decimal `json:"deductionAmount"`
	TaxPayable      decimal.Decimal `json:"taxPayable"`
	Status          TaxStatus       `json:"status"`
	DeclarationTime *time.Time      `json:"declarationTime,omitempty"`
	ReceiptNumber   *string         `json:"receiptNumber,omitempty"`
	FailureReason   *string         `json:"failureReason,omitempty"`
	AuditFields
}

// IsEditable reports whether the declaration may still be changed or deleted.
func (t TaxDeclaration) IsEditable() bool {
	return t.Status == TaxPending || t.Status == TaxFailed
}

// TaxCalculation is the result of computing a declaration from ledger activity.
type TaxCalculation struct {
	Period          string          `json:"period"`
	TaxType         TaxType         `json:"taxType"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	TaxableIncome   decimal.Decimal `json:"taxableIncome"`
	InputTax        decimal.Decimal `json:"inputTax"`
	OutputTax       decimal.Decimal `json:"outputTax"`
	TaxableAmount   decimal.Decimal `json:"taxableAmount"`
	DeductionAmount decimal.Decimal `json:"deductionAmount"`
	TaxPayable      decimal.Decimal `json:"taxPayable"`
}

// PurchaseOrderStatus is the lifecycle of a purchase order.
type PurchaseOrderStatus string

const (
	POPending   PurchaseOrderStatus = "PENDING"
	POApproved  PurchaseOrderStatus = "APPROVED"
	POCompleted PurchaseOrderStatus = "COMPLETED"
	POCancelled PurchaseOrderStatus = "CANCELLED"
)

// IsValid reports whether s is a known purchase order status.
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case POPending, POApproved, POCompleted, POCancelled:
		return true
	}
	return false
}

// purchaseOrderTransitions lists the status changes allowed through an update.
// COMPLETED is reached only by paying the order.
var purchaseOrderTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	POPending:  {POApproved, POCancelled},
	POApproved: {POPending, POCancelled},
}

// CanTransition reports whether an update may move the order from s to next.
func (s PurchaseOrderStatus) CanTransition(next PurchaseOrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range purchaseOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PurchaseOrder is an order placed with a vendor.
type PurchaseOrder struct {
	OrderID     string              `json:"orderID"`
	OrderNumber string              `json:"orderNumber"`
	VendorID    string              `json:"vendorID"`
	OrderDate   time.Time           `json:"orderDate"`
	Description string              `json:"description"`
	Status      PurchaseOrderStatus `json:"status"`
	Items       []PurchaseOrderItem `json:"items"`
	AuditFields
}

// Total is the sum of quantity x unit price over all lines, rounded to money precision.
func (p PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range p.Items {
		total = total.Add(it.LineTotal())
	}
	return total.Round(MoneyPlaces)
}

// PurchaseOrderItem is one product line of a purchase order.
type PurchaseOrderItem struct {
	ItemID      string          `json:"itemID"`
	OrderID     string          `json:"orderID"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	AccountID   *string         `json:"accountID,omitempty"` // expense account
	Description string          `json:"description"`
}

// LineTotal returns quantity x unit price.
func (i PurchaseOrderItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// PayableKind tags the source of a payable record.
type PayableKind string

const (
	PayableBill          PayableKind = "bill"
	PayableTax           PayableKind = "tax"
	PayablePurchaseOrder PayableKind = "purchase_order"
)

// PayableRecord is the sealed union of records that can be settled by a payment.
// The implementations are BillPayable, TaxPayable and PurchaseOrderPayable.
type PayableRecord interface {
	Kind() PayableKind
	RecordID() string
	Reference() string
	AmountDue() decimal.Decimal
	PayeeName() string
	DueOn() time.Time
	StatusLabel() string

	payable()
}

// BillPayable is a bill awaiting payment.
type BillPayable struct {
	Bill       Bill
	VendorName string
}

func (b BillPayable) Kind() PayableKind { return PayableBill }
func (b BillPayable) RecordID() string { return b.Bill.BillID }
func (b BillPayable) Reference() string { return b.Bill.BillNo }
func (b BillPayable) AmountDue() decimal.Decimal { return b.Bill.Amount }
func (b BillPayable) PayeeName() string { return b.VendorName }
func (b BillPayable) DueOn() time.Time { return b.Bill.DueDate }
func (b BillPayable) StatusLabel() string { return string(b.Bill.Status) }
func (BillPayable) payable() {}

// TaxAuthorityName is the payee shown for tax declarations.
const TaxAuthorityName = "Tax Authority"

// TaxPayable is an accepted tax declaration awaiting payment.
type TaxPayable struct {
	Declaration TaxDeclaration
	DueDate     time.Time
}

func (t TaxPayable) Kind() PayableKind { return PayableTax }
func (t TaxPayable) RecordID() string { return t.Declaration.DeclarationID }
func (t TaxPayable) Reference() string { return string(t.Declaration.TaxType) + " " + t.Declaration.Period }
func (t TaxPayable) AmountDue() decimal.Decimal { return t.Declaration.TaxPayable }
func (t TaxPayable) PayeeName() string { return TaxAuthorityName }
func (t TaxPayable) DueOn() time.Time { return t.DueDate }
func (t TaxPayable) StatusLabel() string { return string(t.Declaration.Status) }
func (TaxPayable) payable() {}

// PurchaseOrderPayable is an approved purchase order awaiting payment.
type PurchaseOrderPayable struct {
	Order      PurchaseOrder
	VendorName string
}

func (p PurchaseOrderPayable) Kind() PayableKind { return PayablePurchaseOrder }
func (p PurchaseOrderPayable) RecordID() string { return p.Order.OrderID }
func (p PurchaseOrderPayable) Reference() string { return p.Order.OrderNumber }
func (p PurchaseOrderPayable) AmountDue() decimal.Decimal { return p.Order.Total() }
func (p PurchaseOrderPayable) PayeeName() string { return p.VendorName }
func (p PurchaseOrderPayable) DueOn() time.Time { return p.Order.OrderDate }
func (p PurchaseOrderPayable) StatusLabel() string { return string(p.Order.Status) }
func (PurchaseOrderPayable) payable() {}

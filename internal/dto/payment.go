package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExecutePaymentRequest selects payable records to settle from one bank account.
type ExecutePaymentRequest struct {
	BillIDs          []string `json:"billIds"`
	TaxIDs           []string `json:"taxIds"`
	PurchaseOrderIDs []string `json:"purchaseOrderIds"`
	Method           string   `json:"method" binding:"max=64"`
	BankAccountID    string   `json:"bankAccountId" binding:"required"`
	PaymentDate      *Date    `json:"paymentDate" swaggertype:"string" format:"date"`
}

// ListPaymentsParams bounds the payment history listing.
type ListPaymentsParams struct {
	Limit int `form:"limit,default=100" binding:"min=1,max=1000"`
}

// PayableRecordResponse is one row of the awaiting-payment view.
type PayableRecordResponse struct {
	Kind      domain.PayableKind `json:"kind"`
	RecordID  string             `json:"recordID"`
	Reference string             `json:"reference"`
	Amount    decimal.Decimal    `json:"amount" swaggertype:"string"`
	Payee     string             `json:"payee"`
	DueDate   Date               `json:"dueDate" swaggertype:"string" format:"date"`
	Status    string             `json:"status"`
}

// AwaitingPaymentResponse wraps the awaiting-payment view with totals.
type AwaitingPaymentResponse struct {
	Records []PayableRecordResponse `json:"records"`
	Count   int                     `json:"count"`
	Total   decimal.Decimal         `json:"total" swaggertype:"string"`
}

type PaymentResponse struct {
	PaymentID     string               `json:"paymentID"`
	BatchID       string               `json:"batchID"`
	Kind          domain.PayableKind   `json:"kind"`
	RecordID      string               `json:"recordID"`
	Reference     string               `json:"reference"`
	VoucherID     string               `json:"voucherID"`
	BankAccountID string               `json:"bankAccountID"`
	Amount        decimal.Decimal      `json:"amount" swaggertype:"string"`
	Method        string               `json:"method"`
	ReceiptNumber string               `json:"receiptNumber"`
	Status        domain.PaymentStatus `json:"status"`
	PaymentDate   Date                 `json:"paymentDate" swaggertype:"string" format:"date"`
	CreatedAt     time.Time            `json:"createdAt"`
	CreatedBy     string               `json:"createdBy"`
}

// PaymentBatchResponse is returned by payment execution.
type PaymentBatchResponse struct {
	BatchID       string            `json:"batchID"`
	BankAccountID string            `json:"bankAccountID"`
	Method        string            `json:"method"`
	ReceiptNumber string            `json:"receiptNumber"`
	Total         decimal.Decimal   `json:"total" swaggertype:"string"`
	Payments      []PaymentResponse `json:"payments"`
	Vouchers      []VoucherResponse `json:"vouchers"`
}

func ToAwaitingPaymentResponse(records []domain.PayableRecord) AwaitingPaymentResponse {
	resp := AwaitingPaymentResponse{
		Records: make([]PayableRecordResponse, len(records)),
		Count:   len(records),
		Total:   decimal.Zero,
	}
	for i, r := range records {
		resp.Records[i] = PayableRecordResponse{
			Kind:      r.Kind(),
			RecordID:  r.RecordID(),
			Reference: r.Reference(),
			Amount:    r.AmountDue(),
			Payee:     r.PayeeName(),
			DueDate:   NewDate(r.DueOn()),
			Status:    r.StatusLabel(),
		}
		resp.Total = resp.Total.Add(r.AmountDue())
	}
	return resp
}

func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:     p.PaymentID,
		BatchID:       p.BatchID,
		Kind:          p.Kind,
		RecordID:      p.RecordID,
		Reference:     p.Reference,
		VoucherID:     p.VoucherID,
		BankAccountID: p.BankAccountID,
		Amount:        p.Amount,
		Method:        p.Method,
		ReceiptNumber: p.ReceiptNumber,
		Status:        p.Status,
		PaymentDate:   NewDate(p.PaymentDate),
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
	}
}

func ToPaymentListResponse(payments []domain.Payment) []PaymentResponse {
	res := make([]PaymentResponse, len(payments))
	for i := range payments {
		res[i] = ToPaymentResponse(&payments[i])
	}
	return res
}

func ToPaymentBatchResponse(b *domain.PaymentBatch) PaymentBatchResponse {
	return PaymentBatchResponse{
		BatchID:       b.BatchID,
		BankAccountID: b.BankAccountID,
		Method:        b.Method,
		ReceiptNumber: b.ReceiptNumber,
		Total:         b.Total,
		Payments:      ToPaymentListResponse(b.Payments),
		Vouchers:      ToVoucherListResponse(b.Vouchers),
	}
}

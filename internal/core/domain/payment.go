package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the outcome of a payment instruction.
type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Payment records the settlement of one payable record from a bank account.
type Payment struct {
	PaymentID     string          `json:"paymentID"`
	BatchID       string          `json:"batchID"`
	Kind          PayableKind     `json:"kind"`
	RecordID      string          `json:"recordID"`
	Reference     string          `json:"reference"`
	VoucherID     string          `json:"voucherID"`
	BankAccountID string          `json:"bankAccountID"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	ReceiptNumber string          `json:"receiptNumber"`
	Status        PaymentStatus   `json:"status"`
	PaymentDate   time.Time       `json:"paymentDate"`
	AuditFields
}

// PaymentBatch is the result of executing one payment selection.
type PaymentBatch struct {
	BatchID       string          `json:"batchID"`
	BankAccountID string          `json:"bankAccountID"`
	Method        string          `json:"method"`
	ReceiptNumber string          `json:"receiptNumber"`
	Total         decimal.Decimal `json:"total"`
	Payments      []Payment       `json:"payments"`
	Vouchers      []Voucher       `json:"vouchers"`
}

package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBankStatementRequest defines the header of a new bank statement.
type CreateBankStatementRequest struct {
	AccountID      string          `json:"accountID" binding:"required"`
	StatementDate  Date            `json:"statementDate" binding:"required" swaggertype:"string" format:"date"`
	OpeningBalance decimal.Decimal `json:"openingBalance" binding:"money2dp" swaggertype:"string"`
	ClosingBalance decimal.Decimal `json:"closingBalance" binding:"money2dp" swaggertype:"string"`
}

// UpdateBankStatementRequest edits statement header fields. Nil fields are left unchanged.
type UpdateBankStatementRequest struct {
	StatementDate  *Date            `json:"statementDate" swaggertype:"string" format:"date"`
	OpeningBalance *decimal.Decimal `json:"openingBalance" binding:"omitempty,money2dp" swaggertype:"string"`
	ClosingBalance *decimal.Decimal `json:"closingBalance" binding:"omitempty,money2dp" swaggertype:"string"`
	Version        *int64           `json:"version"`
}

// StatementItemRequest is one bank statement line. Deposits are positive.
type StatementItemRequest struct {
	TransactionDate Date            `json:"transactionDate" binding:"required" swaggertype:"string" format:"date"`
	Description     string          `json:"description" binding:"max=500"`
	Amount          decimal.Decimal `json:"amount" binding:"required,money2dp" swaggertype:"string"`
	Balance         decimal.Decimal `json:"balance" binding:"money2dp" swaggertype:"string"`
	ExternalRef     string          `json:"externalRef" binding:"max=255"`
}

// BatchStatementItemsRequest adds several lines at once. The batch is all-or-nothing.
type BatchStatementItemsRequest struct {
	Items []StatementItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReconcileRequest links a statement item to a voucher entry. An empty
// VoucherEntryID clears the existing link.
type ReconcileRequest struct {
	VoucherEntryID string `json:"voucherEntryId"`
}

// ListBankStatementsParams filters statements by account.
type ListBankStatementsParams struct {
	AccountID string `form:"accountId"`
}

// ListUnreconciledParams filters reconciliation candidates by account.
type ListUnreconciledParams struct {
	AccountID string `form:"accountId"`
}

// StatementItemResponse defines the data returned for a bank statement line.
type StatementItemResponse struct {
	ItemID          string          `json:"itemID"`
	StatementID     string          `json:"statementID"`
	TransactionDate Date            `json:"transactionDate" swaggertype:"string" format:"date"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string"`
	Balance         decimal.Decimal `json:"balance" swaggertype:"string"`
	ExternalRef     string          `json:"externalRef,omitempty"`
	Reconciled      bool            `json:"reconciled"`
	VoucherEntryID  *string         `json:"voucherEntryId,omitempty"`
	ReconciledAt    *time.Time      `json:"reconciledAt,omitempty"`
	ReconciledBy    *string         `json:"reconciledBy,omitempty"`
	Version         int64           `json:"version"`
}

// BankStatementResponse defines the data returned for a bank statement.
type BankStatementResponse struct {
	StatementID     string                  `json:"statementID"`
	AccountID       string                  `json:"accountID"`
	StatementDate   Date                    `json:"statementDate" swaggertype:"string" format:"date"`
	OpeningBalance  decimal.Decimal         `json:"openingBalance" swaggertype:"string"`
	ClosingBalance  decimal.Decimal         `json:"closingBalance" swaggertype:"string"`
	Status          domain.StatementStatus  `json:"status"`
	ItemCount       int                     `json:"itemCount"`
	ReconciledCount int                     `json:"reconciledCount"`
	Items           []StatementItemResponse `json:"items"`
	Version         int64                   `json:"version"`
	CreatedAt       time.Time               `json:"createdAt"`
	CreatedBy       string                  `json:"createdBy"`
}

// ImportStatementResponse reports the outcome of an OFX import.
type ImportStatementResponse struct {
	Imported int                     `json:"imported"`
	Skipped  int                     `json:"skipped"`
	Items    []StatementItemResponse `json:"items"`
}

// UnreconciledEntryResponse is a posted bank entry that no statement item links to yet.
type UnreconciledEntryResponse struct {
	EntryID     string           `json:"entryID"`
	VoucherID   string           `json:"voucherID"`
	VoucherNo   string           `json:"voucherNo"`
	VoucherDate Date             `json:"voucherDate" swaggertype:"string" format:"date"`
	AccountID   string           `json:"accountID"`
	AccountName string           `json:"accountName"`
	Direction   domain.Direction `json:"direction"`
	Amount      decimal.Decimal  `json:"amount" swaggertype:"string"`
	Description string           `json:"description"`
}

func ToStatementItemResponse(it *domain.StatementItem) StatementItemResponse {
	return StatementItemResponse{
		ItemID:          it.ItemID,
		StatementID:     it.StatementID,
		TransactionDate: NewDate(it.TransactionDate),
		Description:     it.Description,
		Amount:          it.Amount,
		Balance:         it.Balance,
		ExternalRef:     it.ExternalRef,
		Reconciled:      it.Reconciled,
		VoucherEntryID:  it.EntryID,
		ReconciledAt:    it.ReconciledAt,
		ReconciledBy:    it.ReconciledBy,
		Version:         it.Version,
	}
}

func ToStatementItemListResponse(items []domain.StatementItem) []StatementItemResponse {
	res := make([]StatementItemResponse, len(items))
	for i := range items {
		res[i] = ToStatementItemResponse(&items[i])
	}
	return res
}

func ToBankStatementResponse(s *domain.BankStatement) BankStatementResponse {
	reconciled := 0
	for _, it := range s.Items {
		if it.Reconciled {
			reconciled++
		}
	}
	return BankStatementResponse{
		StatementID:     s.StatementID,
		AccountID:       s.AccountID,
		StatementDate:   NewDate(s.StatementDate),
		OpeningBalance:  s.OpeningBalance,
		ClosingBalance:  s.ClosingBalance,
		Status:          s.Status,
		ItemCount:       len(s.Items),
		ReconciledCount: reconciled,
		Items:           ToStatementItemListResponse(s.Items),
		Version:         s.Version,
		CreatedAt:       s.CreatedAt,
		CreatedBy:       s.CreatedBy,
	}
}

func ToBankStatementListResponse(statements []domain.BankStatement) []BankStatementResponse {
	res := make([]BankStatementResponse, len(statements))
	for i := range statements {
		res[i] = ToBankStatementResponse(&statements[i])
	}
	return res
}

func ToUnreconciledEntryResponses(entries []domain.LedgerEntry) []UnreconciledEntryResponse {
	res := make([]UnreconciledEntryResponse, len(entries))
	for i, e := range entries {
		res[i] = UnreconciledEntryResponse{
			EntryID:     e.EntryID,
			VoucherID:   e.VoucherID,
			VoucherNo:   e.VoucherNo,
			VoucherDate: NewDate(e.VoucherDate),
			AccountID:   e.AccountID,
			AccountName: e.AccountName,
			Direction:   e.Direction,
			Amount:      e.Amount,
			Description: e.Description,
		}
	}
	return res
}

func ToImportStatementResponse(res *domain.StatementImport) ImportStatementResponse {
	return ImportStatementResponse{
		Imported: len(res.Imported),
		Skipped:  res.Skipped,
		Items:    ToStatementItemListResponse(res.Imported),
	}
}

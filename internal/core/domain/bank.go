package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementStatus tracks how far a bank statement has been matched.
type StatementStatus string

const (
	StatementPending    StatementStatus = "PENDING"
	StatementReconciled StatementStatus = "RECONCILED" // some items matched
	StatementCompleted  StatementStatus = "COMPLETED"  // every item matched
)

// BankStatement is an external statement for one bank or cash account.
type BankStatement struct {
	StatementID    string          `json:"statementID"`
	AccountID      string          `json:"accountID"`
	StatementDate  time.Time       `json:"statementDate"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	Status         StatementStatus `json:"status"`
	Items          []StatementItem `json:"items"`
	AuditFields
}

// DeriveStatus computes the statement status from its items.
func (s BankStatement) DeriveStatus() StatementStatus {
	return DeriveStatementStatus(s.Items)
}

// DeriveStatementStatus returns pending when nothing is matched, completed when every
// item is matched and reconciled otherwise.
func DeriveStatementStatus(items []StatementItem) StatementStatus {
	matched := 0
	for _, it := range items {
		if it.Reconciled {
			matched++
		}
	}
	switch {
	case matched == 0:
		return StatementPending
	case matched == len(items):
		return StatementCompleted
	default:
		return StatementReconciled
	}
}

// StatementItem is one line of a bank statement. Amount is signed: deposits are positive.
type StatementItem struct {
	ItemID          string          `json:"itemID"`
	StatementID     string          `json:"statementID"`
	TransactionDate time.Time       `json:"transactionDate"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Balance         decimal.Decimal `json:"balance"`
	ExternalRef     string          `json:"externalRef,omitempty"` // e.g. OFX FITID
	Reconciled      bool            `json:"reconciled"`
	EntryID         *string         `json:"entryID,omitempty"`
	ReconciledAt    *time.Time      `json:"reconciledAt,omitempty"`
	ReconciledBy    *string         `json:"reconciledBy,omitempty"`
	AuditFields
}

// LinkTo marks the item as matched with entryID.
func (i *StatementItem) LinkTo(entryID, actorID string, now time.Time) {
	i.Reconciled = true
	i.EntryID = &entryID
	i.ReconciledAt = &now
	i.ReconciledBy = &actorID
	i.Touch(actorID, now)
}

// Unlink clears the match.
func (i *StatementItem) Unlink(actorID string, now time.Time) {
	i.Reconciled = false
	i.EntryID = nil
	i.ReconciledAt = nil
	i.ReconciledBy = nil
	i.Touch(actorID, now)
}

// StatementImport is the outcome of importing an OFX document into a statement.
type StatementImport struct {
	Imported []StatementItem `json:"imported"`
	Skipped  int             `json:"skipped"`
}

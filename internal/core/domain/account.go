package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// AllAccountTypes lists the account types in chart-of-accounts order.
var AllAccountTypes = []AccountType{Asset, Liability, Equity, Income, Expense}

// IsValid reports whether t is one of the five known types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// IsDebitNormal reports whether debits increase accounts of this type.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// CodePrefix is the prefix used when generating account codes for the type.
func (t AccountType) CodePrefix() string {
	switch t {
	case Asset:
		return "100"
	case Liability:
		return "200"
	case Equity:
		return "400"
	case Income:
		return "600"
	case Expense:
		return "660"
	default:
		return "999"
	}
}

// Account represents a node of the chart of accounts.
// Balance is the account's own balance; roll-ups are computed, never stored.
type Account struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	ParentAccountID *string         `json:"parentAccountID,omitempty"`
	Description     string          `json:"description"`
	IsBank          bool            `json:"isBank"` // cash or bank account, eligible for reconciliation and payments
	Balance         decimal.Decimal `json:"balance"`
	AuditFields
}

// HasParent reports whether the account sits under another account.
func (a Account) HasParent() bool {
	return a.ParentAccountID != nil && *a.ParentAccountID != ""
}

// AccountNode is an account together with its computed effective balance and children.
type AccountNode struct {
	Account
	EffectiveBalance decimal.Decimal `json:"effectiveBalance"`
	Children         []AccountNode   `json:"children"`
}

package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
// Code is generated from the account type when omitted.
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"omitempty,max=32"`
	Name            string             `json:"name" binding:"required,max=128"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	ParentAccountID *string            `json:"parentAccountID"`
	Description     string             `json:"description" binding:"max=500"`
	IsBank          bool               `json:"isBank"`
	OpeningBalance  *decimal.Decimal   `json:"openingBalance" binding:"omitempty,money2dp" swaggertype:"string"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Nil fields are left unchanged. An empty ParentAccountID moves the account to the root.
type UpdateAccountRequest struct {
	Code            *string             `json:"code" binding:"omitempty,min=1,max=32"`
	Name            *string             `json:"name" binding:"omitempty,min=1,max=128"`
	AccountType     *domain.AccountType `json:"accountType" binding:"omitempty,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	ParentAccountID *string             `json:"parentAccountID"`
	Description     *string             `json:"description" binding:"omitempty,max=500"`
	IsBank          *bool               `json:"isBank"`
	Version         *int64              `json:"version"`
}

// ReparentAccountRequest moves an account. A nil or empty ParentAccountID moves it to the root.
type ReparentAccountRequest struct {
	ParentAccountID *string `json:"parentAccountID"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Tree bool `form:"tree"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID        string             `json:"accountID"`
	Code             string             `json:"code"`
	Name             string             `json:"name"`
	AccountType      domain.AccountType `json:"accountType"`
	ParentAccountID  *string            `json:"parentAccountID,omitempty"`
	Description      string             `json:"description"`
	IsBank           bool               `json:"isBank"`
	Balance          decimal.Decimal    `json:"balance" swaggertype:"string"`
	EffectiveBalance *decimal.Decimal   `json:"effectiveBalance,omitempty" swaggertype:"string"`
	Version          int64              `json:"version"`
	CreatedAt        time.Time          `json:"createdAt"`
	CreatedBy        string             `json:"createdBy"`
	LastUpdatedAt    time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy    string             `json:"lastUpdatedBy"`
}

// AccountTreeResponse is one node of the account forest.
type AccountTreeResponse struct {
	AccountResponse
	Children []AccountTreeResponse `json:"children"`
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID        string          `json:"accountID"`
	Balance          decimal.Decimal `json:"balance" swaggertype:"string"`
	EffectiveBalance decimal.Decimal `json:"effectiveBalance" swaggertype:"string"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		ParentAccountID: acc.ParentAccountID,
		Description:     acc.Description,
		IsBank:          acc.IsBank,
		Balance:         acc.Balance,
		Version:         acc.Version,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ToAccountTreeResponse converts a computed node and its descendants.
func ToAccountTreeResponse(node domain.AccountNode) AccountTreeResponse {
	resp := AccountTreeResponse{AccountResponse: ToAccountResponse(&node.Account)}
	effective := node.EffectiveBalance
	resp.EffectiveBalance = &effective
	resp.Children = make([]AccountTreeResponse, len(node.Children))
	for i, child := range node.Children {
		resp.Children[i] = ToAccountTreeResponse(child)
	}
	return resp
}

func ToAccountForestResponse(nodes []domain.AccountNode) []AccountTreeResponse {
	res := make([]AccountTreeResponse, len(nodes))
	for i, n := range nodes {
		res[i] = ToAccountTreeResponse(n)
	}
	return res
}

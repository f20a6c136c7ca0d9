package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	AccountID       string          `db:"account_id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	AccountType     string          `db:"account_type"`
	ParentAccountID sql.NullString  `db:"parent_account_id"`
	Description     string          `db:"description"`
	IsBank          bool            `db:"is_bank"`
	Balance         decimal.Decimal `db:"balance"`
	AuditFields
}

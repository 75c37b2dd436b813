package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionView is the read projection of a stored transaction, serialised
// as-is to API clients. SessionID is nil for transactions created without
// session scoping.
type TransactionView struct {
	ID        string          `json:"id" db:"id"`
	Title     string          `json:"title" db:"title"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	SessionID *string         `json:"session_id" db:"session_id"`
}

// SummaryView holds the sum of signed amounts for a scope. Amount is invalid
// (rendered as null) when the scope has no transactions.
type SummaryView struct {
	Amount decimal.NullDecimal `json:"amount"`
}

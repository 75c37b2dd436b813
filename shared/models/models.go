package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are rendered as JSON numbers, matching what clients send.
	decimal.MarshalJSONWithoutQuotes = true
}

// Transaction types accepted on creation. The type only decides the sign of the
// stored amount; it is not persisted.
const (
	TransactionTypeCredit = "credit"
	TransactionTypeDebit  = "debit"
)

// Scoping decides whether transactions are partitioned by client session.
type Scoping string

const (
	ScopingSession Scoping = "session"
	ScopingNone    Scoping = "none"
)

// Transaction is the write model. Amount is already signed: credits are
// positive, debits negative. CreatedAt is assigned by the store.
type Transaction struct {
	ID        string          `db:"id"`
	Title     string          `db:"title"`
	Amount    decimal.Decimal `db:"amount"`
	SessionID *string         `db:"session_id"`
}

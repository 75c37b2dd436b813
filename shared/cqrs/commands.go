package cqrs

// CreateTransactionCommand carries an unsigned amount; Type decides the sign.
// SessionID is empty when transactions are not session-scoped.
type CreateTransactionCommand struct {
	Title     string
	Amount    float64
	Type      string
	SessionID string
}

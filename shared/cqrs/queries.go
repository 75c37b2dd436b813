package cqrs

// ---------- Transaction queries ----------
//
// Every query carries the caller's session explicitly. An empty SessionID
// means the query runs over the unscoped ledger.

// GetTransactionQuery fetches a single transaction by id.
type GetTransactionQuery struct {
	TransactionID string
	SessionID     string
}

// ListTransactionsQuery fetches all transactions visible to a session.
type ListTransactionsQuery struct {
	SessionID string
}

// GetSummaryQuery sums the signed amounts visible to a session.
type GetSummaryQuery struct {
	SessionID string
}

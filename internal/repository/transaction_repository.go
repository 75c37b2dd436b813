package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/ledgerbook/ledger/shared/models"
)

// TransactionWriteRepository handles all state-mutating operations for transactions.
// Transactions are append-only: the only mutation is a single-row insert.
type TransactionWriteRepository struct {
	db *sqlx.DB
}

func NewTransactionWriteRepository(db *sqlx.DB) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db}
}

func (r *TransactionWriteRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, title, amount, session_id)
		VALUES (:id, :title, :amount, :session_id)
	`
	if _, err := r.db.NamedExecContext(ctx, query, transaction); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

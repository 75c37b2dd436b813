package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ledgerbook/ledger/shared/models"
	sharedredis "github.com/ledgerbook/ledger/shared/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	transactionViewKeyPrefix = "transaction:view:"
	unscopedCacheKey         = "global"
)

const selectTransactionViews = `SELECT id, title, amount, created_at, session_id FROM transactions`

// TransactionReadRepository handles all read operations for transactions.
// Every read is restricted to the given session; an empty session reads the
// whole table. Lookups by id go through Redis when a client is configured.
type TransactionReadRepository struct {
	db    *sqlx.DB
	cache *sharedredis.ViewCache[models.TransactionView]
}

// NewTransactionReadRepository builds the read side. redisClient may be nil,
// in which case every read hits the database.
func NewTransactionReadRepository(db *sqlx.DB, redisClient *goredis.Client, ttl time.Duration) *TransactionReadRepository {
	r := &TransactionReadRepository{db: db}
	if redisClient != nil {
		r.cache = sharedredis.NewViewCache[models.TransactionView](redisClient, ttl)
	}
	return r
}

// GetByID returns the transaction with id inside the session, or
// models.ErrTransactionNotFound.
func (r *TransactionReadRepository) GetByID(ctx context.Context, id, sessionID string) (*models.TransactionView, error) {
	load := func(ctx context.Context) (*models.TransactionView, error) {
		return r.getByID(ctx, id, sessionID)
	}
	if r.cache == nil {
		return load(ctx)
	}
	return r.cache.Fetch(ctx, viewCacheKey(id, sessionID), load)
}

func (r *TransactionReadRepository) getByID(ctx context.Context, id, sessionID string) (*models.TransactionView, error) {
	conds, args := sessionScope(sessionID, []string{"id = ?"}, []any{id})

	var view models.TransactionView
	err := r.db.GetContext(ctx, &view, r.db.Rebind(selectTransactionViews+where(conds)), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &view, nil
}

// List returns every transaction in the session in store order. It never
// returns nil on success.
func (r *TransactionReadRepository) List(ctx context.Context, sessionID string) ([]models.TransactionView, error) {
	conds, args := sessionScope(sessionID, nil, nil)

	views := []models.TransactionView{}
	if err := r.db.SelectContext(ctx, &views, r.db.Rebind(selectTransactionViews+where(conds)), args...); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return views, nil
}

// Sum adds up the signed amounts in the session. The result is invalid (SQL
// NULL) when the session has no transactions.
func (r *TransactionReadRepository) Sum(ctx context.Context, sessionID string) (decimal.NullDecimal, error) {
	conds, args := sessionScope(sessionID, nil, nil)
	if r.db.DriverName() == sqliteDriver {
		return r.sumRows(ctx, conds, args)
	}

	var sum decimal.NullDecimal
	query := `SELECT SUM(amount) AS amount FROM transactions` + where(conds)
	if err := r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...).Scan(&sum); err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return sum, nil
}

// sumRows adds amounts in Go. SQLite stores fractional NUMERIC values as REAL,
// so its SUM accumulates binary rounding error.
func (r *TransactionReadRepository) sumRows(ctx context.Context, conds []string, args []any) (decimal.NullDecimal, error) {
	var amounts []decimal.Decimal
	query := `SELECT amount FROM transactions` + where(conds)
	if err := r.db.SelectContext(ctx, &amounts, r.db.Rebind(query), args...); err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("failed to sum transactions: %w", err)
	}
	if len(amounts) == 0 {
		return decimal.NullDecimal{}, nil
	}
	return decimal.NewNullDecimal(decimal.Sum(amounts[0], amounts[1:]...)), nil
}

func sessionScope(sessionID string, conds []string, args []any) ([]string, []any) {
	if sessionID == "" {
		return conds, args
	}
	return append(conds, "session_id = ?"), append(args, sessionID)
}

func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func viewCacheKey(id, sessionID string) string {
	scope := sessionID
	if scope == "" {
		scope = unscopedCacheKey
	}
	return fmt.Sprintf("%s%s:%s", transactionViewKeyPrefix, scope, id)
}

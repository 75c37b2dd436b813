package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/ledgerbook/ledger/shared/models"
	"github.com/ledgerbook/ledger/shared/utils"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ---- helpers ----

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(context.Background(), ClientSQLite, filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertTx(t *testing.T, repo *TransactionWriteRepository, title string, amount int64, sessionID string) string {
	t.Helper()
	tx := &models.Transaction{
		ID:     utils.GenerateID(),
		Title:  title,
		Amount: decimal.NewFromInt(amount),
	}
	if sessionID != "" {
		tx.SessionID = &sessionID
	}
	if err := repo.Create(context.Background(), tx); err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return tx.ID
}

func countRows(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM transactions`); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

// ---- tests ----

func TestOpenRejectsUnknownClient(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "whatever"); err == nil {
		t.Fatal("expected error for unsupported client")
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 2; i++ {
		if err := RunMigrations(ClientSQLite, path); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}

func TestCreateAndGetByID(t *testing.T) {
	db := openTestDB(t)
	writeRepo := NewTransactionWriteRepository(db)
	readRepo := NewTransactionReadRepository(db, nil, 0)
	ctx := context.Background()

	session := utils.GenerateID()
	id := insertTx(t, writeRepo, "groceries", -50, session)

	view, err := readRepo.GetByID(ctx, id, session)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.ID != id || view.Title != "groceries" {
		t.Errorf("unexpected view %+v", view)
	}
	if !view.Amount.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("expected amount -50, got %s", view.Amount)
	}
	if view.SessionID == nil || *view.SessionID != session {
		t.Errorf("expected session %s, got %v", session, view.SessionID)
	}
	if view.CreatedAt.IsZero() {
		t.Error("expected created_at to be assigned by the store")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db := openTestDB(t)
	writeRepo := NewTransactionWriteRepository(db)
	readRepo := NewTransactionReadRepository(db, nil, 0)
	ctx := context.Background()

	owner := utils.GenerateID()
	id := insertTx(t, writeRepo, "salary", 100, owner)

	tests := []struct {
		name      string
		id        string
		sessionID string
	}{
		{name: "unknown id", id: utils.GenerateID(), sessionID: owner},
		{name: "id of another session", id: id, sessionID: utils.GenerateID()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := readRepo.GetByID(ctx, tt.id, tt.sessionID)
			if !errors.Is(err, models.ErrTransactionNotFound) {
				t.Fatalf("expected ErrTransactionNotFound, got view=%+v err=%v", view, err)
			}
		})
	}

	if _, err := readRepo.GetByID(ctx, id, ""); err != nil {
		t.Errorf("unscoped lookup should find any id, got %v", err)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	db := openTestDB(t)
	writeRepo := NewTransactionWriteRepository(db)
	readRepo := NewTransactionReadRepository(db, nil, 0)
	ctx := context.Background()

	s1, s2 := utils.GenerateID(), utils.GenerateID()
	insertTx(t, writeRepo, "s1 credit", 100, s1)
	insertTx(t, writeRepo, "s1 debit", -30, s1)
	insertTx(t, writeRepo, "s2 credit", 7, s2)

	list1, err := readRepo.List(ctx, s1)
	if err != nil {
		t.Fatalf("list s1: %v", err)
	}
	if len(list1) != 2 {
		t.Fatalf("expected 2 transactions for s1, got %d", len(list1))
	}
	for _, v := range list1 {
		if v.SessionID == nil || *v.SessionID != s1 {
			t.Errorf("s1 list leaked %+v", v)
		}
	}

	list2, err := readRepo.List(ctx, s2)
	if err != nil {
		t.Fatalf("list s2: %v", err)
	}
	if len(list2) != 1 || list2[0].Title != "s2 credit" {
		t.Errorf("unexpected s2 list %+v", list2)
	}

	sum2, err := readRepo.Sum(ctx, s2)
	if err != nil {
		t.Fatalf("sum s2: %v", err)
	}
	if !sum2.Valid || !sum2.Decimal.Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected s2 sum 7, got %+v", sum2)
	}

	all, err := readRepo.List(ctx, "")
	if err != nil {
		t.Fatalf("list unscoped: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 unscoped transactions, got %d", len(all))
	}
}

func TestListEmptyIsNotNil(t *testing.T) {
	db := openTestDB(t)
	readRepo := NewTransactionReadRepository(db, nil, 0)

	views, err := readRepo.List(context.Background(), utils.GenerateID())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if views == nil || len(views) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", views)
	}
}

func TestSum(t *testing.T) {
	db := openTestDB(t)
	writeRepo := NewTransactionWriteRepository(db)
	readRepo := NewTransactionReadRepository(db, nil, 0)
	ctx := context.Background()

	session := utils.GenerateID()

	empty, err := readRepo.Sum(ctx, session)
	if err != nil {
		t.Fatalf("sum of empty session: %v", err)
	}
	if empty.Valid {
		t.Errorf("expected null sum for empty session, got %s", empty.Decimal)
	}

	insertTx(t, writeRepo, "a", 100, session)
	insertTx(t, writeRepo, "b", -30, session)
	insertTx(t, writeRepo, "c", 5, session)

	sum, err := readRepo.Sum(ctx, session)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if !sum.Valid || !sum.Decimal.Equal(decimal.NewFromInt(75)) {
		t.Errorf("expected sum 75, got %+v", sum)
	}
}

func TestSumFractionalAmountsIsExact(t *testing.T) {
	db := openTestDB(t)
	writeRepo := NewTransactionWriteRepository(db)
	readRepo := NewTransactionReadRepository(db, nil, 0)
	ctx := context.Background()

	session := utils.GenerateID()
	for _, amount := range []string{"0.1", "0.2", "-0.05"} {
		tx := &models.Transaction{
			ID:        utils.GenerateID(),
			Title:     amount,
			Amount:    decimal.RequireFromString(amount),
			SessionID: &session,
		}
		if err := writeRepo.Create(ctx, tx); err != nil {
			t.Fatalf("create %s: %v", amount, err)
		}
	}

	sum, err := readRepo.Sum(ctx, session)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if !sum.Valid || sum.Decimal.String() != "0.25" {
		t.Errorf("expected sum 0.25, got %+v", sum)
	}
}

func TestUnscopedTransactionHasNullSession(t *testing.T) {
	db := openTestDB(t)
	writeRepo := NewTransactionWriteRepository(db)
	readRepo := NewTransactionReadRepository(db, nil, 0)

	id := insertTx(t, writeRepo, "cash", 20, "")
	view, err := readRepo.GetByID(context.Background(), id, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.SessionID != nil {
		t.Errorf("expected nil session, got %q", *view.SessionID)
	}
	if n := countRows(t, db); n != 1 {
		t.Errorf("expected 1 row, got %d", n)
	}
}

func TestGetByIDReadsThroughCache(t *testing.T) {
	db := openTestDB(t)
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	writeRepo := NewTransactionWriteRepository(db)
	readRepo := NewTransactionReadRepository(db, client, time.Minute)
	ctx := context.Background()

	session := utils.GenerateID()
	id := insertTx(t, writeRepo, "rent", -900, session)

	if _, err := readRepo.GetByID(ctx, id, session); err != nil {
		t.Fatalf("first get: %v", err)
	}
	if !mr.Exists(viewCacheKey(id, session)) {
		t.Fatal("expected view to be cached after a miss")
	}

	// Served from Redis even once the row is gone.
	if _, err := db.Exec(`DELETE FROM transactions`); err != nil {
		t.Fatalf("delete: %v", err)
	}
	view, err := readRepo.GetByID(ctx, id, session)
	if err != nil {
		t.Fatalf("cached get: %v", err)
	}
	if !view.Amount.Equal(decimal.NewFromInt(-900)) {
		t.Errorf("expected cached amount -900, got %s", view.Amount)
	}

	if _, err := readRepo.GetByID(ctx, id, utils.GenerateID()); !errors.Is(err, models.ErrTransactionNotFound) {
		t.Errorf("cache must not leak across sessions, got %v", err)
	}
}

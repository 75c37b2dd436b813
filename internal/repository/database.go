package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported values of DATABASE_CLIENT.
const (
	ClientPostgres = "pg"
	ClientSQLite   = "sqlite"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

const sqliteDriver = "sqlite"

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about.
	sqlx.BindDriver(sqliteDriver, sqlx.QUESTION)
}

func driverName(client string) (string, error) {
	switch client {
	case ClientPostgres:
		return "postgres", nil
	case ClientSQLite:
		return sqliteDriver, nil
	default:
		return "", fmt.Errorf("unsupported database client %q", client)
	}
}

// Open migrates the database to the latest schema and returns a connection
// pool for it.
func Open(ctx context.Context, client, dsn string) (*sqlx.DB, error) {
	driver, err := driverName(client)
	if err != nil {
		return nil, err
	}

	if client == ClientSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	if err := RunMigrations(client, dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if client == ClientSQLite {
		// SQLite serialises writers; a single connection avoids "database is locked".
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// RunMigrations applies the embedded migrations for client. It uses its own
// connection because closing the migrator closes the underlying database.
func RunMigrations(client, dsn string) error {
	driver, err := driverName(client)
	if err != nil {
		return err
	}

	migrateDB, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	var dbDriver database.Driver
	switch client {
	case ClientPostgres:
		dbDriver, err = postgres.WithInstance(migrateDB, &postgres.Config{})
	case ClientSQLite:
		dbDriver, err = sqlite.WithInstance(migrateDB, &sqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("create %s migration driver: %w", client, err)
	}

	d, err := iofs.New(migrationsFS, "migrations/"+client)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, client, dbDriver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

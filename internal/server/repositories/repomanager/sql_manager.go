// Package repomanager vends dialect-specific repository implementations
// and runs the embedded goose migrations for the selected backend.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/shelfsync/internal/dbx"
	"github.com/dmitrijs2005/shelfsync/internal/server/migrations"
	"github.com/dmitrijs2005/shelfsync/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/shelfsync/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager builds repositories for one SQL dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dbx.DialectPostgres}
}

// NewSQLiteRepositoryManager constructs a SQLite-backed RepositoryManager.
func NewSQLiteRepositoryManager() *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dbx.DialectSQLite}
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect { return m.dialect }

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	if m.dialect == dbx.DialectSQLite {
		return users.NewSQLiteRepository(db)
	}
	return users.NewPostgresRepository(db)
}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	if m.dialect == dbx.DialectSQLite {
		return accounts.NewSQLiteRepository(db)
	}
	return accounts.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations of the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(string(m.dialect)); err != nil {
		return err
	}
	dir := "postgres"
	if m.dialect == dbx.DialectSQLite {
		dir = "sqlite"
	}
	return gooseUpContext(ctx, db, dir)
}

// Open connects to the database named by dsn, picks the matching manager
// and verifies the connection. Migrations are left to the caller.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	dialect, driverDSN, ok := dbx.DialectFromDSN(dsn)
	if !ok {
		return nil, nil, fmt.Errorf("unsupported database dsn")
	}

	db, err := sql.Open(dialect.DriverName(), driverDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if dialect == dbx.DialectSQLite {
		// a single writer avoids SQLITE_BUSY under concurrent logins
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	var m RepositoryManager = NewPostgresRepositoryManager()
	if dialect == dbx.DialectSQLite {
		m = NewSQLiteRepositoryManager()
	}
	return db, m, nil
}

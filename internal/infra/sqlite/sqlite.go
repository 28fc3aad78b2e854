package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver" // pure Go SQLite driver via wazero
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/migrate"

	sqlitemigrations "trivia-quiz/internal/infra/sqlite/migrations"
)

// Open opens the local quiz history file. A single connection is kept so the
// process holds exactly one storage handle and writes are serialized by SQLite itself.
func Open(ctx context.Context, path string) (*bun.DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)"
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Migrate creates or upgrades the history schema.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, sqlitemigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, err
	}
	return migrator.Migrate(ctx)
}

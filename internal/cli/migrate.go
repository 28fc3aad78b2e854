package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"trivia-quiz/internal/config"
	"trivia-quiz/internal/infra/postgres"
	"trivia-quiz/internal/infra/sqlite"
	"trivia-quiz/internal/logger"
)

type migrateFunc func(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error)

// NewMigrateCmd applies database migrations for the configured storage driver.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var (
		db  *bun.DB
		run migrateFunc
	)
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Info("memory storage has no schema, nothing to migrate")
		return nil
	case config.DriverPostgres:
		db, err = postgres.Open(ctx, cfg.Postgres.URL)
		run = postgres.Migrate
	default:
		db, err = sqlite.Open(ctx, cfg.Storage.SQLitePath)
		run = sqlite.Migrate
	}
	if err != nil {
		return err
	}
	defer db.Close()

	return migrateDB(ctx, db, run, log)
}

func migrateDB(ctx context.Context, db *bun.DB, run migrateFunc, log *zap.Logger) error {
	group, err := run(ctx, db)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("schema up to date")
		return nil
	}
	log.Info("migrations applied", zap.String("group", group.String()))
	return nil
}

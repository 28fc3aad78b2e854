package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/config"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/infra/bundb"
	"trivia-quiz/internal/infra/memory"
	"trivia-quiz/internal/infra/postgres"
	rediscache "trivia-quiz/internal/infra/redis"
	"trivia-quiz/internal/infra/sqlite"
	"trivia-quiz/internal/logger"
)

// runtime is the single set of storage handles and services shared by a command.
type runtime struct {
	log     *zap.Logger
	quizzes *app.QuizService
	history *app.HistoryService
	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func loadRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, err
	}
	return buildRuntime(ctx, cfg, log)
}

// buildRuntime releases everything it opened when it fails.
func buildRuntime(ctx context.Context, cfg config.Config, log *zap.Logger) (*runtime, error) {
	rt := &runtime{log: log}
	rt.closers = append(rt.closers, func() { _ = log.Sync() })
	if err := rt.wire(ctx, cfg); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) wire(ctx context.Context, cfg config.Config) error {
	log := rt.log

	store, err := openHistoryStore(ctx, cfg, rt)
	if err != nil {
		return err
	}

	var repo app.HistoryRepository = store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = client.Close() })
		repo = rediscache.NewHistoryCache(client, store, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute), log)
		log.Info("history cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	var builtin memory.BankLoader = memory.NewStaticBankLoader(map[string][]domain.Question{
		memory.DefaultBankID: memory.DefaultBank(),
	})
	if cfg.Quiz.BankFile != "" {
		fileLoader, err := memory.LoadBankFile(cfg.Quiz.BankFile)
		if err != nil {
			return err
		}
		builtin = memory.NewFallbackLoader(fileLoader, builtin)
	}

	loader := builtin
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect question banks: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		loader = memory.NewFallbackLoader(postgres.NewBankLoader(pool), builtin)
	}

	banks := memory.NewBankRepository(loader, config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute))
	rt.quizzes = app.NewQuizService(banks, cfg.Quiz.Bank)
	rt.history = app.NewHistoryService(repo, log)
	rt.closers = append(rt.closers, rt.history.Close)
	return nil
}

// openHistoryStore opens the configured durable store and brings its schema up to date.
func openHistoryStore(ctx context.Context, cfg config.Config, rt *runtime) (rediscache.HistoryStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		rt.log.Warn("using in-memory history, games are lost on exit")
		return memory.NewHistoryRepository(), nil
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = db.Close() })
		if err := migrateDB(ctx, db, postgres.Migrate, rt.log); err != nil {
			return nil, err
		}
		return bundb.NewHistoryRepository(db), nil
	default:
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = db.Close() })
		if err := migrateDB(ctx, db, sqlite.Migrate, rt.log); err != nil {
			return nil, err
		}
		return bundb.NewHistoryRepository(db), nil
	}
}

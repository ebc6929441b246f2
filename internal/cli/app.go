package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ppiankov/quizguard/internal/audit"
	"github.com/ppiankov/quizguard/internal/cache"
	"github.com/ppiankov/quizguard/internal/extract"
	"github.com/ppiankov/quizguard/internal/llm"
	"github.com/ppiankov/quizguard/internal/logging"
	"github.com/ppiankov/quizguard/internal/metrics"
	"github.com/ppiankov/quizguard/internal/model"
	"github.com/ppiankov/quizguard/internal/pipeline"
	"github.com/ppiankov/quizguard/internal/review"
	"github.com/ppiankov/quizguard/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app holds the collaborators one command invocation works with
type app struct {
	settings *model.Config
	logger   *zap.Logger
	pipeline *pipeline.Pipeline

	redis   *redis.Client
	db      *sql.DB
	closers []func() error
}

// newApp builds the pipeline from the resolved configuration.
// withAdapter attaches the model registry for consensus generation.
func newApp(ctx context.Context, withAdapter bool) (*app, error) {
	settings, err := loadSettings(viper.GetViper())
	if err != nil {
		return nil, err
	}

	a := &app{
		settings: settings,
		logger:   logging.New(settings.Logging.Level, settings.Logging.Format),
	}
	if err := a.build(ctx, withAdapter); err != nil {
		_ = a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) build(ctx context.Context, withAdapter bool) error {
	rules, err := extract.LoadRules(a.settings.Rules.File)
	if err != nil {
		return err
	}

	store, err := a.auditStore(ctx)
	if err != nil {
		return err
	}
	auditLog, err := audit.NewLogger(ctx, store, a.settings.Audit.BufferSize, a.logger)
	if err != nil {
		return fmt.Errorf("start audit logger: %w", err)
	}
	// Registered after the store so the writer drains before the store closes
	a.closers = append(a.closers, auditLog.Close)

	queue, err := a.reviewQueue(ctx)
	if err != nil {
		return err
	}

	deps := pipeline.Deps{
		Settings: a.settings,
		Rules:    rules,
		Queue:    queue,
		Audit:    auditLog,
		Cache:    cache.New(a.settings.Cache),
		Logger:   a.logger,
	}
	if withAdapter {
		deps.Adapter = llm.NewRegistry(a.settings.LLM)
	}

	a.pipeline, err = pipeline.New(deps)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	return nil
}

func (a *app) auditStore(ctx context.Context) (audit.Store, error) {
	switch a.settings.Audit.Backend {
	case "", "memory":
		return audit.NewMemoryStore(), nil
	case "file":
		store, err := audit.NewFileStore(a.settings.Audit.FilePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	case "redis":
		client, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return audit.NewRedisStore(client, a.settings.Redis.KeyPrefix), nil
	case "postgres":
		db, err := a.postgres()
		if err != nil {
			return nil, err
		}
		store, err := audit.NewPostgresStore(db, a.settings.Postgres.Table)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown audit backend %q (memory, file, redis, postgres)", a.settings.Audit.Backend)
	}
}

func (a *app) reviewQueue(ctx context.Context) (review.Queue, error) {
	switch a.settings.Review.Backend {
	case "", "memory":
		return review.NewMemoryQueue(), nil
	case "redis":
		client, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return review.NewRedisQueue(client, a.settings.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown review backend %q (memory, redis)", a.settings.Review.Backend)
	}
}

// redisClient is shared by the audit stream and the review queue
func (a *app) redisClient(ctx context.Context) (*redis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	client := storage.NewRedis(a.settings.Redis)
	if err := storage.PingRedis(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	a.redis = client
	a.closers = append(a.closers, client.Close)
	return client, nil
}

func (a *app) postgres() (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := storage.NewPostgres(a.settings.Postgres)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.closers = append(a.closers, db.Close)
	return db, nil
}

// close releases resources in reverse order of acquisition
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

func writeMetrics(path string) error {
	return metrics.WriteTextfile(path)
}

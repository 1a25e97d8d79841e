// Package app wires configuration into a ready tutor: store, engine, service.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"geo-tutor/api/internal/config"
	"geo-tutor/api/internal/llm"
	"geo-tutor/api/internal/llm/deepseek"
	"geo-tutor/api/internal/llm/gemini"
	"geo-tutor/api/internal/llm/openai"
	"geo-tutor/api/internal/metrics"
	"geo-tutor/api/internal/store"
	"geo-tutor/api/internal/tutor"
)

// Store is what every binary needs from persistence.
type Store interface {
	tutor.Store
	ListSubmissions(ctx context.Context, sessionID string) ([]tutor.Submission, error)
	Ping(ctx context.Context) error
}

type App struct {
	Cfg    *config.Config
	Log    *zap.Logger
	Store  Store
	Engine llm.Engine
	Tutor  *tutor.Service

	closers []func() error
}

// New validates cfg, opens the store (migrating Postgres) and builds the configured engine.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Cfg: cfg, Log: log}

	st, err := a.openStore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Store = st

	eng, err := a.openEngine(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Engine = eng
	log.Info("llm engine ready", zap.String("engine", eng.Name()), zap.String("model", eng.GetModel()))

	a.Tutor = tutor.New(eng, st,
		tutor.WithLogger(log.Named("tutor")),
		tutor.WithRecorder(metrics.Recorder{}),
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (Store, error) {
	st, closeFn, err := OpenStore(ctx, a.Cfg, a.Log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeFn)
	return st, nil
}

// OpenStore opens the store named by cfg.StoreDriver. Postgres is migrated before use.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (Store, func() error, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store; sessions are lost on restart")
		return store.NewMemory(), func() error { return nil }, nil
	}

	dsn := cfg.DSN()
	db, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	log.Info("db connected", zap.String("dsn", config.SafeDSNSummary(dsn)))

	if err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store.NewSessionRepo(db), db.Close, nil
}

func (a *App) openEngine(ctx context.Context) (llm.Engine, error) {
	engines := &llm.Engines{}
	if a.Cfg.GeminiAPIKey != "" {
		g, err := gemini.New(ctx, a.Cfg.GeminiAPIKey, a.Cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		a.closers = append(a.closers, g.Close)
		engines.Gemini = g
	}
	if a.Cfg.OpenAIAPIKey != "" {
		o := openai.New(a.Cfg.OpenAIAPIKey, a.Cfg.OpenAIModel)
		a.closers = append(a.closers, o.Close)
		engines.OpenAI = o
	}
	if a.Cfg.DeepseekAPIKey != "" {
		d := deepseek.New(a.Cfg.DeepseekAPIKey, a.Cfg.DeepseekModel)
		a.closers = append(a.closers, d.Close)
		engines.Deepseek = d
	}
	return engines.GetEngine(a.Cfg.LLMProvider)
}

// Close releases everything New opened, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

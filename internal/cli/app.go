package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/journeys"
	"github.com/aretw0/journeys/internal/config"
	"github.com/aretw0/journeys/pkg/adapters/file"
	"github.com/aretw0/journeys/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/journeys/pkg/adapters/redis"
	"github.com/aretw0/journeys/pkg/observability"
	"github.com/aretw0/journeys/pkg/persistence/middleware"
	"github.com/aretw0/journeys/pkg/ports"
	"github.com/aretw0/journeys/pkg/session"
)

// App holds the components shared by every command.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Engine   *journeys.Engine
	Sessions *session.Manager
	// Metrics is nil unless requested.
	Metrics *observability.Metrics

	closers []func() error
}

// AppOption configures NewApp.
type AppOption func(*appOptions)

type appOptions struct {
	metrics bool
	logger  *slog.Logger
}

// WithMetrics feeds engine lifecycle events into Prometheus collectors.
func WithMetrics() AppOption {
	return func(o *appOptions) {
		o.metrics = true
	}
}

// WithAppLogger overrides the logger built from the configuration.
func WithAppLogger(logger *slog.Logger) AppOption {
	return func(o *appOptions) {
		o.logger = logger
	}
}

// NewApp wires the engine and the session store described by cfg.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = cfg.Logger()
	}

	app := &App{Config: cfg, Logger: o.logger}
	if o.metrics {
		app.Metrics = observability.NewMetrics()
	}

	eng, err := newEngine(cfg, app.Logger, app.Metrics)
	if err != nil {
		return nil, err
	}
	app.Engine = eng

	if err := app.openSessions(); err != nil {
		return nil, err
	}
	return app, nil
}

func newEngine(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*journeys.Engine, error) {
	hooks := observability.LogHooks(logger)
	if metrics != nil {
		hooks = hooks.Merge(metrics.Hooks())
	}
	opts := []journeys.Option{
		journeys.WithLogger(logger),
		journeys.WithLifecycleHooks(hooks),
	}
	if cfg.Journeys.Loader == "file" {
		opts = append(opts, journeys.WithLoader(file.NewLoader(cfg.Journeys.Dir)))
	}

	eng, err := journeys.New(cfg.Journeys.Dir, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return eng, nil
}

func (a *App) openSessions() error {
	cfg := a.Config

	var (
		store  ports.StateStore
		locker ports.DistributedLocker
	)
	switch cfg.Store.Backend {
	case config.StoreFile:
		store = file.NewStore(cfg.Store.Dir)
	case config.StoreRedis:
		rs := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithTTL(cfg.Redis.TTL),
			redisAdapter.WithPrefix(cfg.Redis.Prefix),
		)
		a.closers = append(a.closers, rs.Close)
		store = rs
		locker = redisAdapter.NewLocker(rs.Client(), cfg.Redis.Prefix+"lock:")
	default:
		store = memory.NewStore()
	}

	var mws []middleware.Middleware
	if len(cfg.Store.PIIPatterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.Store.PIIPatterns))
	}
	key, err := cfg.EncryptionKey()
	if err != nil {
		return err
	}
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	store = middleware.Chain(store, mws...)

	opts := []session.Option{
		session.WithLogger(a.Logger),
		session.WithLockTTL(cfg.Store.LockTTL),
	}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	a.Sessions = session.NewManager(store, opts...)

	a.Logger.Debug("session store ready", "backend", cfg.Store.Backend, "middlewares", len(mws))
	return nil
}

// Close releases the store connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

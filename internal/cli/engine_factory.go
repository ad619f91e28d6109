package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/aacflow"
	"github.com/aretw0/aacflow/internal/config"
	"github.com/aretw0/aacflow/internal/logging"
	aachttp "github.com/aretw0/aacflow/pkg/adapters/http"
	"github.com/aretw0/aacflow/pkg/adapters/llm"
	"github.com/aretw0/aacflow/pkg/adapters/memory"
	"github.com/aretw0/aacflow/pkg/adapters/redis"
	"github.com/aretw0/aacflow/pkg/observability"
	"github.com/aretw0/aacflow/pkg/persistence/middleware"
	"github.com/aretw0/aacflow/pkg/ports"
	"github.com/aretw0/aacflow/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Stack is everything a command needs to drive the workflow.
type Stack struct {
	Engine   *aacflow.Engine
	Store    ports.PhraseStore
	Registry *prometheus.Registry
	Streams  *aachttp.StreamManager
	Logger   *slog.Logger

	closers []func() error
}

// Close releases the store connection.
func (s *Stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewLogger configures the application logger from cfg, writing to w.
func NewLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(w, level, cfg.Format), nil
}

// newStore opens the phrase store selected by cfg and wraps it with the
// configured masking and encryption.
func newStore(ctx context.Context, cfg config.StoreConfig) (ports.PhraseStore, ports.Locker, func() error, error) {
	store, locker, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	var mws []middleware.Middleware
	if len(cfg.MaskPatterns) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.MaskPatterns)
		if err != nil {
			_ = closeStore()
			return nil, nil, nil, err
		}
		mws = append(mws, pii)
	}
	enc, err := cfg.Encryption()
	if err != nil {
		_ = closeStore()
		return nil, nil, nil, err
	}
	if enc != nil {
		sealed, err := middleware.NewEncryptionMiddleware(*enc)
		if err != nil {
			_ = closeStore()
			return nil, nil, nil, err
		}
		mws = append(mws, sealed)
	}

	return middleware.Wrap(store, mws...), locker, closeStore, nil
}

// openStore returns the raw store and, for shared backends, a locker on the same connection.
func openStore(ctx context.Context, cfg config.StoreConfig) (ports.PhraseStore, ports.Locker, func() error, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		var opts []redis.Option
		if cfg.Cap > 0 {
			opts = append(opts, redis.WithCap(cfg.Cap))
		}
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		store := redis.New(cfg.Addr, cfg.Password, cfg.DB, opts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Addr, err)
		}
		return store, store.Locker(cfg.KeyPrefix), store.Close, nil
	case config.DriverMemory:
		var opts []memory.StoreOption
		if cfg.Cap > 0 {
			opts = append(opts, memory.WithCap(int(cfg.Cap)))
		}
		return memory.NewStore(opts...), nil, func() error { return nil }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// NewStack wires store, providers, metrics, event streams and logging into an engine.
func NewStack(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	generator, err := llm.New(cfg.Generator)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	verifier, err := llm.New(cfg.Verifier)
	if err != nil {
		return nil, fmt.Errorf("verifier: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(registry)
	if err != nil {
		return nil, err
	}
	streams := aachttp.NewStreamManager(logger)

	store, locker, closeStore, err := newStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	var sessions *session.Manager
	if cfg.Workflow.SerializeRuns {
		opts := []session.Option{session.WithLogger(logger), session.WithLockTTL(cfg.Workflow.LockTTL)}
		if locker != nil {
			opts = append(opts, session.WithLocker(locker))
		}
		sessions = session.NewManager(opts...)
	}

	engine, err := aacflow.New(store, generator, verifier,
		aacflow.WithSessions(sessions),
		aacflow.WithLogger(logger),
		aacflow.WithLifecycleHooks(observability.Chain(
			metrics.Hooks(),
			observability.LoggingHooks(logger, cfg.Log.Payloads),
			streams.Hooks(),
		)),
		aacflow.WithMaxAttempts(cfg.Workflow.MaxAttempts),
		aacflow.WithMaxSteps(cfg.Workflow.MaxSteps),
		aacflow.WithKeyPrefix(cfg.Store.KeyPrefix),
		aacflow.WithWindow(cfg.Store.Window),
		aacflow.WithLanguage(cfg.Workflow.Language),
	)
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	logger.Debug("engine ready",
		"store", cfg.Store.Driver,
		"generator", cfg.Generator.Kind,
		"verifier", cfg.Verifier.Kind,
		"max_attempts", cfg.Workflow.MaxAttempts,
	)

	return &Stack{
		Engine:   engine,
		Store:    store,
		Registry: registry,
		Streams:  streams,
		Logger:   logger,
		closers:  []func() error{closeStore},
	}, nil
}

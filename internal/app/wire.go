package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"raiap/internal/domain"
	"raiap/internal/platform/logger"
	"raiap/internal/platform/metrics"
	identitysvc "raiap/internal/services/identity"
	streamsvc "raiap/internal/services/stream"
	"raiap/internal/store"
)

// Option adjusts how New builds the graph.
type Option func(*options)

type options struct {
	log    *logrus.Logger
	scrypt store.ScryptParams
}

// WithLogger replaces the logger built from Config.
func WithLogger(l *logrus.Logger) Option { return func(o *options) { o.log = l } }

// WithScryptParams overrides the keystore cost parameters.
func WithScryptParams(p store.ScryptParams) Option { return func(o *options) { o.scrypt = p } }

// New constructs the dependency graph from cfg. The caller must Close the
// returned App.
func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	o := options{scrypt: store.DefaultScryptParams()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}

	log := o.log
	if log == nil {
		var err error
		if log, err = logger.New(cfg.LogLevel, cfg.LogFormat); err != nil {
			return nil, err
		}
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	a := &App{
		Config:   cfg,
		Log:      log,
		Registry: reg,
		Metrics:  m,
		Keystore: store.NewKeystore(cfg.Home, o.scrypt),
	}
	streams, err := a.openStreams(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Streams = streams

	a.Identity = identitysvc.New(a.Keystore,
		identitysvc.WithAlgorithm(cfg.Algorithm),
		identitysvc.WithLogger(log),
		identitysvc.WithMetrics(m),
	)
	a.Stream = streamsvc.New(streams,
		streamsvc.WithLogger(log),
		streamsvc.WithMetrics(m),
	)
	log.WithFields(logrus.Fields{"home": cfg.Home, "store": cfg.Store}).Debug("app wired")
	return a, nil
}

// openStreams builds the stream store named by Config.Store.
func (a *App) openStreams(ctx context.Context) (domain.StreamStore, error) {
	cfg := a.Config
	switch cfg.Store {
	case StoreMemory:
		return store.NewMemoryStreams(), nil
	case StoreFile:
		return store.NewFileStreams(cfg.Home, a.Log), nil
	case StoreBadger:
		b, err := store.OpenBadgerStreams(store.BadgerConfig{
			Path:   filepath.Join(cfg.Home, "badger"),
			Logger: a.Log,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, b.Close)
		return b, nil
	case StoreRedis:
		client, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return store.NewRedisStreams(client, a.Log), nil
	case StorePostgres:
		db, err := store.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		p := store.NewPostgresStreams(db, a.Log)
		if err := p.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

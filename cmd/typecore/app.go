package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/funvibe/typecore/internal/coercion"
	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/evaluator"
	"github.com/funvibe/typecore/internal/fqncache"
	"github.com/funvibe/typecore/internal/registry"
	"github.com/funvibe/typecore/internal/typesystem"
)

// app holds the components shared by every command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	cm     *coercion.Standard
	reg    *registry.Registry
	eval   *evaluator.Evaluator
	cache  *fqncache.Cache[registry.Entry]

	shutdownMetrics func(context.Context) error
}

// loadConfig reads path, or the default file when path is empty and the
// default exists, or falls back to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.Load(config.DefaultConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	mp, shutdownMetrics, err := newMeterProvider(cfg.Metrics, logOut)
	if err != nil {
		return nil, err
	}
	cacheOpts := []fqncache.Option{fqncache.WithLogger(logger), fqncache.WithMeterProvider(mp)}

	var cache *fqncache.Cache[registry.Entry]
	switch cfg.Cache.Strategy {
	case config.StrategyStrong:
		cache = fqncache.NewStrong[registry.Entry](cacheOpts...)
	case config.StrategyExpiring:
		cache, err = fqncache.NewExpiring[registry.Entry](fqncache.ExpiringOptions{
			TTL:        cfg.Cache.TTL,
			MaxEntries: cfg.Cache.MaxEntries,
		}, cacheOpts...)
		if err != nil {
			return nil, err
		}
	default:
		cache = fqncache.NewWeak[registry.Entry](cacheOpts...)
	}

	cm := coercion.NewStandard(cfg.Decimal.Precision)
	reg := registry.New(cm, registry.WithCache(cache), registry.WithLogger(logger))
	if err := reg.DefineUnits(cfg.Units); err != nil {
		cache.Close()
		return nil, err
	}
	if err := defineNames(reg, cfg.Fqns); err != nil {
		cache.Close()
		return nil, err
	}

	logger.Debug("initialized",
		slog.String("cache", cache.ID()),
		slog.String("strategy", cfg.Cache.Strategy),
		slog.Int("units", len(cfg.Units)))

	return &app{
		cfg:    cfg,
		logger: logger,
		cm:     cm,
		reg:    reg,
		eval:   evaluator.New(reg, cm, evaluator.WithLogger(logger), evaluator.WithMeterProvider(mp)),
		cache:  cache,

		shutdownMetrics: shutdownMetrics,
	}, nil
}

// defineNames registers plain nominal types for names not yet known.
func defineNames(reg *registry.Registry, names []string) error {
	for _, name := range names {
		if _, err := reg.Lookup(name); err == nil {
			continue
		}
		if err := reg.Define(typesystem.TCon{FQN: name}); err != nil {
			return fmt.Errorf("defining %s: %w", name, err)
		}
	}
	return nil
}

func (a *app) Close() {
	a.cache.Close()
	if err := a.shutdownMetrics(context.Background()); err != nil {
		a.logger.Warn("flushing metrics", slog.Any("error", err))
	}
}

// emphasize renders s in bold when w is a terminal.
func emphasize(w io.Writer, s string) string {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("TERM") == "dumb" {
		return s
	}
	if !isTerminal(f) {
		return s
	}
	return "\x1b[1m" + s + "\x1b[0m"
}

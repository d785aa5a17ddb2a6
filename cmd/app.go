package cmd

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/riddhika-19/openboxcodelearn/internal/analysis"
	"github.com/riddhika-19/openboxcodelearn/internal/config"
	"github.com/riddhika-19/openboxcodelearn/internal/dispatch"
	"github.com/riddhika-19/openboxcodelearn/internal/logging"
	"github.com/riddhika-19/openboxcodelearn/internal/metrics"
	"github.com/riddhika-19/openboxcodelearn/internal/notify"
	"github.com/riddhika-19/openboxcodelearn/internal/store"
	"github.com/riddhika-19/openboxcodelearn/internal/store/memstore"
	"github.com/riddhika-19/openboxcodelearn/internal/store/redisstore"
)

// app is everything a command needs, wired from configuration.
type app struct {
	cfg      config.Config
	log      *logging.Logger
	repo     store.MistakeRepo
	builder  *analysis.Builder
	trigger  *notify.Trigger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	closers []func()
}

// loadConfig resolves configuration for cmd without opening anything.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, err
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup opens the store and builds the trigger pipeline. Callers must defer
// Close.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a := &app{cfg: cfg, log: log, registry: prometheus.NewRegistry()}
	a.closers = append(a.closers, log.Sync)
	a.metrics = metrics.New(a.registry)

	repo, closeRepo, err := openRepo(cmd.Context(), cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.repo = repo
	a.closers = append(a.closers, closeRepo)

	d, closeDispatch, err := dispatch.FromConfig(cfg, log)
	if err != nil {
		closeDispatch()
		a.Close()
		return nil, fmt.Errorf("configure dispatch: %w", err)
	}
	a.closers = append(a.closers, closeDispatch)

	a.builder = analysis.NewBuilder(repo)
	a.trigger = notify.NewTrigger(repo,
		notify.WithBuilder(a.builder),
		notify.WithDispatcher(d),
		notify.WithLogger(log),
		notify.WithMetrics(a.metrics),
	)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func openRepo(ctx context.Context, cfg config.Config) (store.MistakeRepo, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memstore.New(), func() {}, nil

	case config.StoreRedis:
		s, err := redisstore.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisstore.WithPrefix(cfg.Redis.Prefix))
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return s, func() { _ = s.Close() }, nil

	default:
		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		return s.MistakeRepo(), func() { _ = s.Close() }, nil
	}
}

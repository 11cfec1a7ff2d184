package commands

import (
	"fmt"
	"os"

	"github.com/wonny/momentum/internal/marketdata"
	"github.com/wonny/momentum/internal/scanner"
	"github.com/wonny/momentum/internal/strategy"
	"github.com/wonny/momentum/internal/universe"
	"github.com/wonny/momentum/pkg/config"
	"github.com/wonny/momentum/pkg/database"
	"github.com/wonny/momentum/pkg/httputil"
	"github.com/wonny/momentum/pkg/logger"
	"github.com/wonny/momentum/pkg/metrics"
	"github.com/wonny/momentum/pkg/redis"
)

// deps holds everything a command needs after wiring.
type deps struct {
	cfg      *config.Config
	log      *logger.Logger
	source   universe.Source
	strat    *strategy.Config
	scanner  *scanner.Scanner
	recorder *metrics.Recorder

	closers []func()
}

// close releases held connections, most recent first.
func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// buildDeps loads config and wires the scan pipeline: provider client,
// optional Redis cache, CSV or Postgres universe source, strategy file.
func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if envName != "" {
		cfg.Env = envName
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	d := &deps{cfg: cfg, log: log}

	// Market data provider, rate limited per config
	httpClient := httputil.New(cfg.Provider.Timeout, log).
		WithRateLimit(cfg.Provider.RequestsPerSec, cfg.Provider.Burst)
	var gateway marketdata.Gateway = marketdata.NewYahooClient(cfg.Provider, httpClient, log)

	// Optional Redis cache in front of the provider
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(cfg)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		d.closers = append(d.closers, func() { _ = redisClient.Close() })

		cache := redis.NewCache(redisClient, "momentum")
		gateway = marketdata.NewCachedGateway(gateway, cache, cfg.Redis.CacheTTL, log)
		log.Info("Market data caching enabled")
	}

	// Universe source: Postgres when configured, CSV directory otherwise
	if cfg.Database.Enabled() {
		db, err := database.New(cfg)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		d.closers = append(d.closers, db.Close)
		d.source = universe.NewPGSource(db.Pool)
		log.Info("Using Postgres universe source")
	} else {
		d.source = universe.NewDirSource(cfg.UniverseDir, log)
	}

	// Strategy: file when present, built-in default otherwise
	if _, err := os.Stat(cfg.StrategyFile); err == nil {
		strat, err := strategy.Load(cfg.StrategyFile)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("load strategy %s: %w", cfg.StrategyFile, err)
		}
		d.strat = strat
		log.WithField("strategy", strat.Meta.StrategyID).Info("Strategy loaded")
	} else {
		d.strat = strategy.Default()
	}

	if cfg.MetricsEnabled {
		d.recorder = metrics.New()
	}

	d.scanner = scanner.New(d.source, gateway, d.strat, scanner.Options{
		Workers:    cfg.Scan.Workers,
		BatchLimit: cfg.Scan.BatchLimit,
	}, d.recorder, log)

	return d, nil
}

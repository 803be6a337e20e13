package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/prop-evaluator/internal/cache"
	"github.com/yourusername/prop-evaluator/internal/config"
	"github.com/yourusername/prop-evaluator/internal/database"
	"github.com/yourusername/prop-evaluator/internal/datasource"
	"github.com/yourusername/prop-evaluator/internal/evaluator"
	"github.com/yourusername/prop-evaluator/internal/features"
	"github.com/yourusername/prop-evaluator/internal/housebias"
	"github.com/yourusername/prop-evaluator/internal/market"
	"github.com/yourusername/prop-evaluator/internal/models"
	"github.com/yourusername/prop-evaluator/internal/repository"
	"github.com/yourusername/prop-evaluator/internal/resolver"
	"github.com/yourusername/prop-evaluator/internal/sink"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cache     *cache.Service
	evaluator *evaluator.Evaluator
	db        *database.DB
	closers   []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func openCache(ctx context.Context, c config.CacheConfig) (*cache.Service, error) {
	var secondary cache.Store
	switch strings.ToLower(c.Secondary) {
	case "sqlite":
		store, err := cache.NewSQLiteStore(c.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
		}
		secondary = store
	case "redis":
		store, err := cache.DialRedis(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis cache: %w", err)
		}
		secondary = store
	}
	return cache.NewService(time.Duration(c.DefaultTTLMinutes)*time.Minute, c.MaxItems, secondary, log), nil
}

func collectorConfig(c config.CollectorConfig) features.Config {
	fc := features.DefaultConfig()
	fc.TargetSample = c.TargetSample
	for name, days := range c.LookbackDays {
		if sport, ok := models.ParseSport(name); ok {
			fc.LookbackDays[sport] = days
		}
	}
	fc.NFLLookbackWeeks = c.NFLLookbackWeeks
	fc.MinInningsForRate = c.MinInningsForRate
	fc.RecentWeight = c.RecentWeight
	fc.Concurrency = c.Concurrency
	return fc
}

func evaluatorConfig(c *config.Config) evaluator.Config {
	ec := evaluator.DefaultConfig()
	ec.Weights = market.Weights{
		Model:  c.Model.WeightModel,
		Market: c.Model.WeightMarket,
		Sharp:  c.Model.WeightSharp,
	}
	ec.Calibration = c.Model.Calibration
	ec.CLVNeutralBand = c.Model.CLVNeutralBand

	bias := housebias.DefaultConfig()
	bias.MaxBias = c.Model.MaxBias
	ec.Bias = bias

	d := c.Decision
	ec.Thresholds = evaluator.Thresholds{
		Lock:               d.Lock,
		StrongLean:         d.StrongLean,
		Lean:               d.Lean,
		LowConfidence:      d.LowConfidence,
		GateCap:            d.GateCap,
		MinSample:          c.Collector.MinSample,
		MinStake:           d.MinStake,
		MaxStake:           d.MaxStake,
		MaxStakeConfidence: d.MaxStakeConfidence,
		BiasPenalty:        d.BiasPenaltyThreshold,
	}
	return ec
}

// buildApp wires the evaluation pipeline. extra sinks are appended after the
// configured analytics and history sinks.
func buildApp(ctx context.Context, extra ...evaluator.Sink) (*app, error) {
	a := &app{}

	cacheSvc, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	a.cache = cacheSvc
	a.closers = append(a.closers, func() { _ = cacheSvc.Close() })

	factory := datasource.NewFactory(cfg, cacheSvc, log)
	httpClient := factory.HTTPClient(cfg.Provider.TimeoutSeconds)
	a.closers = append(a.closers, func() { _ = httpClient.Close() })

	provider, err := factory.NewSportsData(httpClient)
	if err != nil {
		a.Close()
		return nil, err
	}
	odds := factory.NewOddsSources(provider, httpClient)

	res := resolver.New(resolver.Config{
		Threshold:       cfg.Model.IdentityThreshold,
		AmbiguityMargin: cfg.Model.AmbiguityMargin,
	})
	baselines := func(sport models.Sport, stat models.Statistic) (float64, bool) {
		return cfg.Model.Baseline(string(sport), string(stat))
	}
	collector := features.NewCollector(provider, res, baselines, collectorConfig(cfg.Collector), log)

	sinks, err := a.sinks(ctx, factory)
	if err != nil {
		a.Close()
		return nil, err
	}
	sinks = append(sinks, extra...)

	a.evaluator = evaluator.New(collector, odds, evaluatorConfig(cfg), log, sinks...)
	// pending sink writes finish before anything else is released
	a.closers = append(a.closers, a.evaluator.Wait)
	return a, nil
}

func (a *app) sinks(ctx context.Context, factory *datasource.Factory) ([]evaluator.Sink, error) {
	var sinks []evaluator.Sink

	if cfg.Analytics.Enabled {
		timeout := cfg.Analytics.TimeoutSeconds
		if timeout <= 0 {
			timeout = 5
		}
		client := factory.HTTPClient(timeout)
		a.closers = append(a.closers, func() { _ = client.Close() })
		sinks = append(sinks, sink.NewAnalytics(client, cfg.Analytics.URL, cfg.Analytics.Token))
	}

	if cfg.Database.Enabled {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize history database: %w", err)
		}
		a.db = db
		a.closers = append(a.closers, db.Close)

		repos, err := repository.NewRepositories(db)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink.NewHistory(repos.History))
	}

	return sinks, nil
}

package main

import (
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/audit"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/connectors"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/engine"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/infra"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/provider"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/render"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/shaper"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app — собранное ядро, общее для serve и render
type app struct {
	cfg      *infra.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *engine.Metrics
	journal  *audit.Journal
	core     *engine.DashboardCore
	renderer *render.PNGRenderer
}

func newApp(cmd *cobra.Command) (*app, error) {
	// 1. Конфиг и логгер
	cfg, err := infra.LoadConfig(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return nil, err
	}
	return buildApp(cfg, logger), nil
}

// buildApp собирает зависимости по готовому конфигу
func buildApp(cfg *infra.Config, logger *zap.Logger) *app {
	// 2. Метрики
	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)

	// 3. Лента уязвимостей: HTTP-клиент -> лимитер + Circuit Breaker
	feed := connectors.NewGitHubFeed(connectors.GitHubFeedConfig{
		URL:       cfg.Feed.URL,
		Timeout:   cfg.Feed.Timeout,
		UserAgent: cfg.Feed.UserAgent,
	})
	safeFeed := engine.NewReliabilityWrapper(feed, engine.ReliabilityConfig{
		Name:          "github-advisories",
		RateInterval:  cfg.Feed.RateInterval,
		RateBurst:     cfg.Feed.RateBurst,
		CBMaxRequests: cfg.Feed.CBMaxRequests,
		CBInterval:    cfg.Feed.CBInterval,
		CBTimeout:     cfg.Feed.CBTimeout,
		CBFailures:    cfg.Feed.CBFailures,
	}, metrics, logger)

	// 4. Данные, шейпинг, журнал
	p := provider.New(safeFeed, provider.Config{
		Seed:          cfg.Generator.Seed,
		MaxAdvisories: cfg.Feed.MaxRecords,
	}, metrics, logger)

	journal := audit.NewJournal(audit.NewLogSink(logger), audit.Config{
		BufferSize:    cfg.Journal.BufferSize,
		BatchSize:     cfg.Journal.BatchSize,
		FlushInterval: cfg.Journal.FlushInterval,
	}, metrics, logger)

	// 5. Ядро
	core := engine.NewDashboardCore(p, shaper.New(), journal, metrics, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		metrics:  metrics,
		journal:  journal,
		core:     core,
		renderer: render.NewPNGRenderer(render.Config{Width: cfg.Render.Width, Height: cfg.Render.Height}, logger),
	}
}

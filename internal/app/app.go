package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lubosr/linuxconfig-toolkit/internal/config"
	"github.com/lubosr/linuxconfig-toolkit/internal/infrastructure/analytics"
	cronsched "github.com/lubosr/linuxconfig-toolkit/internal/infrastructure/scheduler"
	"github.com/lubosr/linuxconfig-toolkit/internal/infrastructure/searchconsole"
	"github.com/lubosr/linuxconfig-toolkit/internal/infrastructure/storage"
	"github.com/lubosr/linuxconfig-toolkit/internal/infrastructure/telegram"
	"github.com/lubosr/linuxconfig-toolkit/internal/infrastructure/wordpress"
	"github.com/lubosr/linuxconfig-toolkit/internal/metrics"
	"github.com/lubosr/linuxconfig-toolkit/internal/ports"
	"github.com/lubosr/linuxconfig-toolkit/internal/report"
	"github.com/lubosr/linuxconfig-toolkit/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg         config.Config
	logger      *slog.Logger
	toolkitDB   *sqlx.DB
	wordpressDB *sqlx.DB
	tracker     *usecase.Tracker
	attention   *usecase.AttentionFinder
	scheduler   *usecase.Scheduler
}

// New builds a runnable application instance with all adapters wired.
func New(cfg config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	toolkitDB, err := sqlx.Open("postgres", cfg.Database.ToolkitDSN)
	if err != nil {
		return nil, fmt.Errorf("open toolkit database: %w", err)
	}
	wordpressDB, err := sqlx.Open("postgres", cfg.Database.WordPressDSN)
	if err != nil {
		return nil, fmt.Errorf("open wordpress database: %w", err)
	}

	repo := storage.NewPostgresRepository(toolkitDB)
	content := wordpress.NewRepository(wordpressDB, cfg.Database.TablePrefix, time.Now)
	traffic := analytics.NewClient(cfg.Sources.Analytics, nil)
	search := searchconsole.NewClient(cfg.Sources.SearchConsole, nil, time.Now)
	reports := report.NewWriter(os.Stdout, cfg.Reports, logger.With("component", "report"))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	tracker := usecase.NewTracker(cfg.Tracking, usecase.TrackerDeps{
		Traffic:   traffic,
		Search:    search,
		Content:   content,
		Snapshots: repo,
		Alerts:    repo,
		Runs:      repo,
		Reports:   reports,
		Notifier:  notifier,
		Logger:    logger.With("component", "tracker"),
	})

	attention := usecase.NewAttentionFinder(cfg.Tracking, usecase.AttentionDeps{
		Traffic:   traffic,
		Search:    search,
		Content:   content,
		Snapshots: repo,
		Runs:      repo,
		Reports:   reports,
		Logger:    logger.With("component", "attention"),
	})

	driver := cronsched.NewCronScheduler(cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, tracker, attention, logger.With("component", "scheduler"))

	return &Application{
		cfg:         cfg,
		logger:      logger,
		toolkitDB:   toolkitDB,
		wordpressDB: wordpressDB,
		tracker:     tracker,
		attention:   attention,
		scheduler:   sched,
	}, nil
}

// RunTracker executes one core-article tracking pass.
func (a *Application) RunTracker(ctx context.Context) error {
	return a.tracker.Run(ctx)
}

// RunAttention executes one attention-finder pass.
func (a *Application) RunAttention(ctx context.Context) error {
	return a.attention.Run(ctx)
}

// RunDaemon schedules both jobs on their cron expressions and serves
// Prometheus metrics until the context is cancelled.
func (a *Application) RunDaemon(ctx context.Context) error {
	metrics.Init()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: a.cfg.Metrics.ListenAddr, Handler: mux}

	go func() {
		a.logger.Info("metrics listener started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics listener stopped", "error", err)
		}
	}()

	if err := a.scheduler.Start(ctx, a.cfg.Scheduler.TrackerCron, a.cfg.Scheduler.AttentionCron); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("daemon started",
		"tracker_cron", a.cfg.Scheduler.TrackerCron,
		"attention_cron", a.cfg.Scheduler.AttentionCron)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("metrics shutdown", "error", err)
	}
	return a.scheduler.Stop(shutdownCtx)
}

// Close releases database handles.
func (a *Application) Close() error {
	var firstErr error
	if err := a.toolkitDB.Close(); err != nil {
		firstErr = fmt.Errorf("close toolkit database: %w", err)
	}
	if err := a.wordpressDB.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close wordpress database: %w", err)
	}
	return firstErr
}

// Package app assembles the dispatcher and its collaborators from
// configuration. Shared by cmd/api and cmd/milestone.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/config"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/db"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/gateway/email"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/gateway/whatsapp"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/ledger"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/metrics"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/milestone"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/notifications"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/subscriber"
)

// Options select how the dispatcher is assembled.
type Options struct {
	DryRun bool
}

// App owns the long-lived resources of one process.
type App struct {
	Config     *config.Config
	Pool       *db.Pool
	Dispatcher *notifications.Dispatcher
	Metrics    *metrics.Metrics

	redis  *redis.Client
	logger *slog.Logger
}

// New connects to the stores and builds the dispatcher. Gateways without
// credentials are left unset; the dispatcher refuses to send through them.
func New(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (*App, error) {
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns,
		"subscribers_table", cfg.SubscribersTable,
		"system_table", cfg.SystemTable)

	renderer, err := notifications.NewEmailRenderer(cfg.EmailTemplatePath, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Pool:    pool,
		Metrics: metrics.New(),
		logger:  logger,
	}

	deps := notifications.Deps{
		Subscribers: subscriber.NewStore(pool, cfg.ScanPageSize, logger),
		Catalog:     milestone.NewStore(pool),
		Renderer:    renderer,
		Recorder:    a.Metrics,
	}

	if err := cfg.ValidateMessaging(); err == nil {
		deps.Messenger = whatsapp.NewClient(cfg.WhatsAppEndpoint, cfg.WhatsAppToken,
			cfg.WhatsAppTimeout, cfg.WhatsAppRequestsPerMinute, logger)
	} else {
		logger.Warn("Messaging gateway disabled", "reason", err)
	}

	if err := cfg.ValidateEmail(); err == nil {
		deps.Mailer = email.NewMailer(cfg.SMTPHost(), cfg.EmailSMTPPort,
			cfg.EmailSMTPUsername, cfg.EmailSMTPPassword,
			cfg.EmailFrom, cfg.EmailConfiguration, cfg.EmailTimeout, logger)
	} else {
		logger.Warn("Email gateway disabled", "reason", err)
	}

	if cfg.LedgerRedisAddr != "" {
		a.redis = ledger.NewClient(cfg.LedgerRedisAddr, cfg.LedgerRedisPassword, cfg.LedgerRedisDB)
		l := ledger.New(a.redis, ledger.DefaultTTL)
		if err := l.Ping(ctx); err != nil {
			logger.Warn("Send ledger unreachable, sends will not be deduplicated", "addr", cfg.LedgerRedisAddr, "error", err)
		}
		deps.Ledger = l
		logger.Info("Send ledger enabled", "addr", cfg.LedgerRedisAddr)
	}

	a.Dispatcher = notifications.NewDispatcher(deps, notifications.Options{
		SendHour: cfg.SendHour,
		MaxBatch: cfg.WhatsAppMaxBatch,
		DryRun:   opts.DryRun,
	}, logger)
	return a, nil
}

// Close releases the database pool and the ledger client.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("Close ledger client", "error", err)
		}
	}
	a.Pool.Close()
}

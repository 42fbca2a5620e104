package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tailor_shop/internal/config"
	"tailor_shop/internal/database"
	"tailor_shop/internal/events"
	"tailor_shop/internal/handlers"
	"tailor_shop/internal/metrics"
	"tailor_shop/internal/redis"
	"tailor_shop/internal/repository"
	"tailor_shop/internal/services"
	"tailor_shop/pkg/whatsapp"

	"gorm.io/gorm"
)

// app holds the wired server side of the shop.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	db        *gorm.DB
	cache     *redis.Client
	publisher events.Publisher
	metrics   *metrics.Metrics
	services  handlers.Services
}

func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	db, err := database.Initialize(cfg.DatabaseURL, cfg.AppEnv, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cache, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	publisher := events.Noop()
	if cfg.AMQPURL != "" {
		publisher, err = events.Dial(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		log.Info("publishing workflow events", "exchange", cfg.AMQPExchange)
	}

	var notifier services.Notifier
	if cfg.WhatsAppAPIURL != "" {
		notifier = whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
	} else {
		log.Warn("WHATSAPP_API_URL not set, customer notifications disabled")
	}

	m := metrics.New()
	a := &app{cfg: cfg, log: log, db: db, cache: cache, publisher: publisher, metrics: m}

	users := repository.NewUserRepository(db)
	customers := repository.NewCustomerRepository(db)
	bills := repository.NewBillRepository(db)
	tailors := repository.NewTailorRepository(db)
	jobs := repository.NewJobRepository(db)
	settings := repository.NewSettingRepository(db)

	settingsSvc := services.NewSettingsService(settings)
	jobSvc := services.NewJobService(jobs, tailors, settingsSvc, notifier, publisher, m, cache,
		services.JobServiceConfig{EnforceOrder: cfg.EnforceOrder}, log)
	customerSvc := services.NewCustomerService(customers, bills, cache)
	tailorSvc := services.NewTailorService(tailors, jobs, cache)

	a.services = handlers.Services{
		Auth:      services.NewAuthService(users, cache, time.Duration(cfg.SessionTimeout)*time.Second),
		Customers: customerSvc,
		Bills:     services.NewBillService(bills, customers, jobSvc, cache, publisher, m, log),
		Tailors:   tailorSvc,
		Jobs:      jobSvc,
		Settings:  settingsSvc,
		Reports:   services.NewReportService(customerSvc, tailorSvc, bills, jobs),
		Dashboard: services.NewDashboardService(customers, bills, tailors, jobs, cache, time.Duration(cfg.CacheTTL)*time.Second, log),
		Backfill:  services.NewBackfillService(bills, jobSvc, log),
	}
	return a, nil
}

func (a *app) Close() {
	a.publisher.Close()
	if err := a.cache.Close(); err != nil {
		a.log.Warn("failed to close redis", "err", err)
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (a *app) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return a.cache.Ping(ctx)
}

package main

import (
	"context"
	"errors"
	"fmt"

	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/internal/infrastructure/config"
	"flightwatch-service/internal/infrastructure/oauth"
	"flightwatch-service/internal/infrastructure/persistence"
	"flightwatch-service/internal/interface/gmail"
	repo "flightwatch-service/internal/interface/repository"
	"flightwatch-service/internal/usecase"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "flightwatch"

// app holds the wired components shared by the serve and reconcile commands
type app struct {
	cfg           *config.Config
	log           logger.Logger
	registry      *prometheus.Registry
	reconciler    *usecase.Reconciler
	subscriptions *usecase.SubscriptionService
	closers       []func(context.Context) error
}

type stores struct {
	flights       repository.FlightRecordRepository
	subscribers   repository.SubscriberRepository
	subscriptions repository.SubscriptionRepository
	airlines      repository.AirlineRepository
}

func loadConfig(configFile string) (*config.Config, *logger.ZapLogger, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.NewLoggerWithLevel(cfg.LogLevel), nil
}

func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(metricsNamespace, a.registry)

	st, err := a.openStores(ctx)
	if err != nil {
		a.close(context.Background())
		return nil, err
	}

	gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, "", log)
	emailSender, err := gmail.NewGmailSender(ctx, gmailOAuth.GetTokenSource(ctx), cfg.GmailSender, log)
	if err != nil {
		a.close(context.Background())
		return nil, err
	}

	dispatcherOpts := []usecase.DispatcherOption{usecase.WithSendTimeout(cfg.NotifyTimeout)}
	if st.airlines != nil {
		dispatcherOpts = append(dispatcherOpts, usecase.WithAirlines(st.airlines))
	}
	if cfg.SMSEnabled {
		dispatcherOpts = append(dispatcherOpts, usecase.WithSMS(repo.NewWhatsappRepository(repo.WhatsappConfig{
			BaseURL:     cfg.SMSGatewayURL,
			BearerToken: cfg.SMSGatewayToken,
			CompanyID:   cfg.CompanyID,
			AgentID:     cfg.AgentID,
			Timeout:     cfg.NotifyTimeout,
		}, log)))
	}
	dispatcher := usecase.NewNotificationDispatcher(st.subscriptions, emailSender, m, log, dispatcherOpts...)

	statusRepo := repo.NewHTTPFlightStatusRepository(repo.FlightStatusConfig{
		BaseURL: cfg.FlightAPIURL,
		APIKey:  cfg.FlightAPIKey,
		Timeout: cfg.FlightAPITimeout,
	}, log)

	a.reconciler = usecase.NewReconciler(
		st.flights,
		usecase.NewStatusFetcher(statusRepo, log),
		usecase.NewSnapshotExtractor(log),
		usecase.NewReconciliationUpdater(st.flights, log),
		dispatcher,
		m,
		log,
	)
	a.subscriptions = usecase.NewSubscriptionService(st.flights, st.subscribers, st.subscriptions, dispatcher, log)

	return a, nil
}

func (a *app) openStores(ctx context.Context) (*stores, error) {
	switch a.cfg.StorageDriver {
	case config.StorageSQLite:
		a.log.Info("Opening SQLite store", "path", a.cfg.SQLitePath)
		store, err := persistence.NewSQLiteStore(a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
		return &stores{flights: store, subscribers: store, subscriptions: store}, nil

	default:
		a.log.Info("Connecting to MongoDB")
		client, err := persistence.NewMongoClient(ctx, a.cfg.MongoURI, a.cfg.MongoUser, a.cfg.MongoPassword, a.log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)

		flights, err := repo.NewMongoFlightRecordRepository(ctx, persistence.GetDatabase(client, a.cfg.MongoDB))
		if err != nil {
			return nil, err
		}

		a.log.Info("Connecting to PostgreSQL")
		gormDB, err := persistence.NewPostgresDB(ctx, a.cfg.PostgresURI, a.log)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := gormDB.DB(); err == nil {
			a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })
		}
		if err := repo.MigrateSubscriptions(gormDB); err != nil {
			return nil, err
		}

		return &stores{
			flights:       flights,
			subscribers:   repo.NewGormSubscriberRepository(gormDB),
			subscriptions: repo.NewGormSubscriptionRepository(gormDB),
			airlines:      repo.NewGormAirlineRepository(gormDB),
		}, nil
	}
}

// close releases store connections in reverse order of opening
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"flightwatch-service/internal/infrastructure/router"
	"flightwatch-service/internal/infrastructure/scheduler"
	"flightwatch-service/internal/interface/api"
	"flightwatch-service/internal/usecase"

	"github.com/spf13/cobra"
)

const (
	reconcileJob    = "reconcile"
	shutdownTimeout = 30 * time.Second
)

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reconciliation scheduler and the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configFile)
		},
	}
}

func runServe(parent context.Context, configFile string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting Flightwatch Service", "version", cfg.AppVersion, "storage", cfg.StorageDriver)

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to start", "error", err)
		return err
	}

	sched := scheduler.New(log)
	err = sched.Every(reconcileJob, cfg.ReconcileInterval, func(jobCtx context.Context) {
		if _, err := a.reconciler.Tick(jobCtx); err != nil && !errors.Is(err, usecase.ErrTickInProgress) {
			log.Error("Reconciliation tick failed", "error", err)
		}
	})
	if err != nil {
		_ = a.close(context.Background())
		return err
	}
	sched.Start()
	if err := sched.RunNow(reconcileJob); err != nil {
		log.Warn("Initial reconciliation not started", "error", err)
	}

	handler := api.NewHandler(a.subscriptions, a.reconciler, cfg.AppVersion, log,
		api.WithAdminToken(cfg.AdminToken),
		api.WithTickContext(ctx),
		api.WithTickTimeout(cfg.ReconcileInterval),
	)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(a.registry, log, handler),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
			log.Error("HTTP server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error("Scheduler shutdown error", "error", err)
	}
	waitIdle(shutdownCtx, a.reconciler)
	if err := a.close(shutdownCtx); err != nil {
		log.Error("Store disconnect error", "error", err)
	}

	log.Info("Flightwatch Service stopped")
	return runErr
}

// waitIdle blocks until no tick is running or ctx expires. Ticks started via
// RunNow are not tracked by the cron stop handle.
func waitIdle(ctx context.Context, r *usecase.Reconciler) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for r.Running() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

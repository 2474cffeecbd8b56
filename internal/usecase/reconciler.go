package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/pkg/metrics"
)

// TickReport summarizes one reconciliation pass
type TickReport struct {
	Loaded              int `json:"loaded"`
	Eligible            int `json:"eligible"`
	Processed           int `json:"processed"`
	Failed              int `json:"failed"`
	Unchanged           int `json:"unchanged"`
	Cancelled           int `json:"cancelled"`
	Changed             int `json:"changed"`
	Ignored             int `json:"ignored"`
	NotificationsSent   int `json:"notificationsSent"`
	NotificationsFailed int `json:"notificationsFailed"`
}

func (r *TickReport) count(tag entity.Classification) {
	switch tag {
	case entity.Unchanged:
		r.Unchanged++
	case entity.Cancelled:
		r.Cancelled++
	case entity.SignificantChange:
		r.Changed++
	case entity.Ignored:
		r.Ignored++
	}
}

// Reconciler drives the per-flight pipeline over every eligible flight
type Reconciler struct {
	flightRepo repository.FlightRecordRepository
	fetcher    *StatusFetcher
	extractor  *SnapshotExtractor
	updater    *ReconciliationUpdater
	dispatcher *NotificationDispatcher
	metrics    *metrics.Metrics
	logger     logger.Logger
	now        func() time.Time

	running atomic.Bool
}

// ReconcilerOption configures the reconciler
type ReconcilerOption func(*Reconciler)

// WithClock replaces the wall clock used for the eligibility window
func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		r.now = now
	}
}

// NewReconciler creates a new reconciler
func NewReconciler(
	flightRepo repository.FlightRecordRepository,
	fetcher *StatusFetcher,
	extractor *SnapshotExtractor,
	updater *ReconciliationUpdater,
	dispatcher *NotificationDispatcher,
	metrics *metrics.Metrics,
	logger logger.Logger,
	opts ...ReconcilerOption,
) *Reconciler {
	r := &Reconciler{
		flightRepo: flightRepo,
		fetcher:    fetcher,
		extractor:  extractor,
		updater:    updater,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Running reports whether a tick is in progress
func (r *Reconciler) Running() bool {
	return r.running.Load()
}

// Tick runs one reconciliation pass. Only one tick runs at a time; a call
// made while another is in progress returns ErrTickInProgress immediately.
// Per-flight failures are logged and counted in the report, never returned.
func (r *Reconciler) Tick(ctx context.Context) (report TickReport, err error) {
	if !r.running.CompareAndSwap(false, true) {
		r.metrics.TicksTotal.WithLabelValues("skipped").Inc()
		r.logger.Warn("Skipping reconciliation tick, previous tick still running")
		return TickReport{}, ErrTickInProgress
	}
	defer r.running.Store(false)

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = newFlightError(WholeTickFailure, "tick", "", fmt.Errorf("panic: %v", rec))
			r.logger.Error("Reconciliation tick aborted", "error", err)
		}

		r.metrics.TickDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			r.metrics.TicksTotal.WithLabelValues("failed").Inc()
			r.metrics.ErrorsCount.WithLabelValues("tick").Inc()
			return
		}
		r.metrics.TicksTotal.WithLabelValues("completed").Inc()
	}()

	records, err := r.flightRepo.FindAll(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load flights: %w", err)
	}

	now := r.now()
	eligible := FilterEligible(records, now)
	report.Loaded = len(records)
	report.Eligible = len(eligible)

	r.logger.Info("Starting reconciliation tick",
		"flights", report.Loaded,
		"eligible", report.Eligible)

	for _, record := range eligible {
		if ctx.Err() != nil {
			r.logger.Warn("Reconciliation tick interrupted", "remaining", report.Eligible-report.Processed-report.Failed)
			break
		}

		if flightErr := r.reconcileFlight(ctx, record, &report); flightErr != nil {
			report.Failed++
			r.logFailure(record.FlightNumber, flightErr)
			continue
		}
		report.Processed++
	}

	r.logger.Info("Reconciliation tick finished",
		"eligible", report.Eligible,
		"processed", report.Processed,
		"failed", report.Failed,
		"unchanged", report.Unchanged,
		"cancelled", report.Cancelled,
		"changed", report.Changed,
		"ignored", report.Ignored,
		"notificationsSent", report.NotificationsSent,
		"notificationsFailed", report.NotificationsFailed,
		"duration", time.Since(start))

	return report, nil
}

// reconcileFlight runs Fetch -> Extract -> Classify -> (Update, Notify) for
// every provider item of one flight. A failing item does not stop the
// remaining items; all failures are joined and returned to the caller.
func (r *Reconciler) reconcileFlight(ctx context.Context, record *entity.FlightRecord, report *TickReport) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = newFlightError(UnexpectedFailure, "reconcile", record.FlightNumber, fmt.Errorf("panic: %v", rec))
		}
	}()

	r.metrics.FlightsProcessed.Inc()

	items, err := r.fetcher.Fetch(ctx, record.FlightNumber)
	if err != nil {
		return err
	}

	var errs []error
	for _, item := range items {
		if err := r.reconcileItem(ctx, record, item, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Reconciler) reconcileItem(ctx context.Context, record *entity.FlightRecord, item ProviderRecord, report *TickReport) error {
	// stored is read-only for the rest of this item; only the updater touches record
	stored := *record

	snapshot, err := r.extractor.Extract(item, stored)
	if err != nil {
		return err
	}

	result := Classify(stored, snapshot, item.Status())
	report.count(result.Tag)
	r.metrics.Classifications.WithLabelValues(string(result.Tag)).Inc()

	var errs []error
	switch result.Tag {
	case entity.SignificantChange:
		r.logger.Info("Significant change detected",
			"flightNumber", stored.FlightNumber,
			"changes", result.Changes)
		if err := r.updater.Apply(ctx, record, snapshot); err != nil {
			errs = append(errs, err)
		}
		errs = append(errs, r.notify(ctx, stored, result, report))
	case entity.Cancelled:
		r.logger.Info("Flight cancelled", "flightNumber", stored.FlightNumber)
		errs = append(errs, r.notify(ctx, stored, result, report))
	case entity.Ignored:
		r.logger.Debug("Ignoring provider record for another departure",
			"flightNumber", stored.FlightNumber,
			"storedScheduled", stored.ScheduledTime,
			"providerScheduled", snapshot.ScheduledTime)
	default:
		r.logger.Debug("Flight unchanged", "flightNumber", stored.FlightNumber)
	}

	return errors.Join(errs...)
}

func (r *Reconciler) notify(ctx context.Context, stored entity.FlightRecord, result entity.ClassificationResult, report *TickReport) error {
	sent, err := r.dispatcher.Dispatch(ctx, stored, result)
	report.NotificationsSent += sent.Sent
	report.NotificationsFailed += sent.Failed
	return err
}

// logFailure writes one entry per underlying FlightError
func (r *Reconciler) logFailure(flightNumber string, err error) {
	for _, e := range flatten(err) {
		var fe *FlightError
		if errors.As(e, &fe) {
			r.metrics.ErrorsCount.WithLabelValues(string(fe.Kind)).Inc()
			r.logger.Error("Failed to reconcile flight",
				"flightNumber", flightNumber,
				"kind", fe.Kind,
				"stage", fe.Stage,
				"error", fe.Err)
			continue
		}
		r.metrics.ErrorsCount.WithLabelValues(string(UnexpectedFailure)).Inc()
		r.logger.Error("Failed to reconcile flight", "flightNumber", flightNumber, "error", e)
	}
}

func flatten(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

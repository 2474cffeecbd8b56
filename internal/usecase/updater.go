package usecase

import (
	"context"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"
)

// ReconciliationUpdater writes significant changes back to the flight store
type ReconciliationUpdater struct {
	flightRepo repository.FlightRecordRepository
	logger     logger.Logger
}

// NewReconciliationUpdater creates a new updater
func NewReconciliationUpdater(flightRepo repository.FlightRecordRepository, logger logger.Logger) *ReconciliationUpdater {
	return &ReconciliationUpdater{
		flightRepo: flightRepo,
		logger:     logger,
	}
}

// Apply overwrites the tracked fields and saves the record. On a save error
// the in-memory record keeps the new values; the next tick compares against
// whatever the store still holds.
func (u *ReconciliationUpdater) Apply(ctx context.Context, record *entity.FlightRecord, snapshot entity.FlightSnapshot) error {
	ApplySnapshot(record, snapshot)

	if err := u.flightRepo.Save(ctx, record); err != nil {
		return newFlightError(PersistenceFailure, "update", record.FlightNumber, err)
	}

	u.logger.Info("Flight record updated",
		"flightNumber", record.FlightNumber,
		"gate", record.Gate,
		"terminal", record.Terminal,
		"delay", record.Delay,
		"estimatedTime", record.EstimatedTime)
	return nil
}

// ApplySnapshot copies the snapshot's tracked fields onto the record
func ApplySnapshot(record *entity.FlightRecord, snapshot entity.FlightSnapshot) {
	record.Gate = snapshot.Gate
	record.Delay = snapshot.Delay
	record.Terminal = snapshot.Terminal
	record.EstimatedTime = snapshot.EstimatedTime
	record.ScheduledTime = snapshot.ScheduledTime
}

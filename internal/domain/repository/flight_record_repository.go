package repository

import (
	"context"

	"flightwatch-service/internal/domain/entity"
)

// FlightRecordRepository defines the interface for flight record operations
type FlightRecordRepository interface {
	FindAll(ctx context.Context) ([]*entity.FlightRecord, error)
	FindByID(ctx context.Context, id string) (*entity.FlightRecord, error)
	// FindByFlightNumber returns the first record carrying the number.
	// Flight numbers are reused across days, so callers must not assume uniqueness.
	FindByFlightNumber(ctx context.Context, flightNumber string) (*entity.FlightRecord, error)
	Save(ctx context.Context, record *entity.FlightRecord) error
	// Delete removes the flight record only. Subscription rows are removed
	// through SubscriptionRepository.RemoveFlight.
	Delete(ctx context.Context, id string) error
}

package repository

import "context"

// FlightStatusRepository fetches the raw provider response for a flight number
type FlightStatusRepository interface {
	FetchStatus(ctx context.Context, flightNumber string) ([]byte, error)
}

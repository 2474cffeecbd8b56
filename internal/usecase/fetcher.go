package usecase

import (
	"context"
	"errors"
	"strings"

	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"

	"github.com/tidwall/gjson"
)

// ProviderRecord is one element of the provider response's data array
type ProviderRecord struct {
	raw gjson.Result
}

// NewProviderRecord wraps a single JSON object from the provider
func NewProviderRecord(json string) ProviderRecord {
	return ProviderRecord{raw: gjson.Parse(json)}
}

// Status returns the provider's flight_status value
func (r ProviderRecord) Status() string {
	return r.raw.Get("flight_status").String()
}

// StatusFetcher calls the flight status provider for one flight at a time
type StatusFetcher struct {
	statusRepo repository.FlightStatusRepository
	logger     logger.Logger
}

// NewStatusFetcher creates a new status fetcher
func NewStatusFetcher(statusRepo repository.FlightStatusRepository, logger logger.Logger) *StatusFetcher {
	return &StatusFetcher{
		statusRepo: statusRepo,
		logger:     logger,
	}
}

// Fetch returns the provider records for a flight number. Any transport or
// decoding problem is returned as a *FlightError; nothing is retried.
// A response without a data array yields no records and no error.
func (f *StatusFetcher) Fetch(ctx context.Context, flightNumber string) ([]ProviderRecord, error) {
	number := strings.TrimSpace(flightNumber)
	if number == "" {
		return nil, newFlightError(ParseFailure, "fetch", flightNumber, errors.New("empty flight number"))
	}

	body, err := f.statusRepo.FetchStatus(ctx, number)
	if err != nil {
		return nil, newFlightError(TransportFailure, "fetch", number, err)
	}

	if !gjson.ValidBytes(body) {
		return nil, newFlightError(ParseFailure, "fetch", number, errors.New("provider returned malformed JSON"))
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		f.logger.Debug("Provider response has no data array", "flightNumber", number)
		return nil, nil
	}

	items := data.Array()
	records := make([]ProviderRecord, 0, len(items))
	for _, item := range items {
		records = append(records, ProviderRecord{raw: item})
	}

	f.logger.Debug("Fetched flight status", "flightNumber", number, "records", len(records))
	return records, nil
}

package usecase

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/pkg/utils"

	"github.com/tidwall/gjson"
)

// SnapshotExtractor normalizes provider records into snapshots
type SnapshotExtractor struct {
	logger logger.Logger
}

// NewSnapshotExtractor creates a new snapshot extractor
func NewSnapshotExtractor(logger logger.Logger) *SnapshotExtractor {
	return &SnapshotExtractor{logger: logger}
}

// Extract builds a snapshot from one provider record. stored must be a copy
// taken before any update in this tick; it supplies gate, terminal and
// estimated time when the provider omits them. Delay falls back to zero.
//
// Every field is extracted even when another one is malformed. A malformed
// timestamp makes the whole item unusable and is returned as a ParseFailure
// alongside the partially filled snapshot.
func (e *SnapshotExtractor) Extract(record ProviderRecord, stored entity.FlightRecord) (entity.FlightSnapshot, error) {
	var snapshot entity.FlightSnapshot
	var errs []error

	if number := record.raw.Get("flight.iata"); isPresent(number) {
		snapshot.FlightNumber = strings.TrimSpace(number.String())
	}

	departure := record.raw.Get("departure")

	scheduled, err := parseTimestamp(departure.Get("scheduled"))
	if err != nil {
		errs = append(errs, fmt.Errorf("departure.scheduled: %w", err))
	}
	snapshot.ScheduledTime = scheduled

	estimated, err := parseTimestamp(departure.Get("estimated"))
	if err != nil {
		errs = append(errs, fmt.Errorf("departure.estimated: %w", err))
	}
	if estimated.IsZero() && err == nil {
		estimated = stored.EstimatedTime
	}
	snapshot.EstimatedTime = estimated

	snapshot.Gate = textOr(departure.Get("gate"), stored.Gate)
	snapshot.Terminal = textOr(departure.Get("terminal"), stored.Terminal)
	snapshot.Delay = e.parseDelay(departure.Get("delay"), stored.FlightNumber)

	if len(errs) > 0 {
		return snapshot, newFlightError(ParseFailure, "extract", stored.FlightNumber, errors.Join(errs...))
	}
	return snapshot, nil
}

// parseDelay reads the delay in minutes; absent, null, malformed and
// negative values all become zero.
func (e *SnapshotExtractor) parseDelay(value gjson.Result, flightNumber string) int64 {
	if !isPresent(value) {
		return 0
	}

	var delay int64
	switch value.Type {
	case gjson.Number:
		delay = value.Int()
	case gjson.String:
		raw := strings.TrimSpace(value.String())
		if raw == "" {
			return 0
		}
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			e.logger.Warn("Ignoring malformed delay", "flightNumber", flightNumber, "delay", raw, "error", err)
			return 0
		}
		delay = parsed
	default:
		e.logger.Warn("Ignoring malformed delay", "flightNumber", flightNumber, "delay", value.Raw)
		return 0
	}

	if delay < 0 {
		e.logger.Warn("Ignoring negative delay", "flightNumber", flightNumber, "delay", delay)
		return 0
	}
	return delay
}

// isPresent treats missing keys, JSON null and the literal "null" alike
func isPresent(value gjson.Result) bool {
	return value.Exists() && value.Type != gjson.Null && !strings.EqualFold(value.String(), "null")
}

func textOr(value gjson.Result, fallback string) string {
	if !isPresent(value) {
		return fallback
	}
	return value.String()
}

func parseTimestamp(value gjson.Result) (time.Time, error) {
	if !isPresent(value) || strings.TrimSpace(value.String()) == "" {
		return time.Time{}, nil
	}
	return utils.ParseNaiveTimestamp(value.String())
}

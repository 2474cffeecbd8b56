package usecase

import (
	"time"

	"flightwatch-service/internal/domain/entity"
)

// EligibilityWindow is how far ahead of now a scheduled departure is polled
const EligibilityWindow = 12 * time.Hour

// IsEligible reports whether a flight should be polled at now: it must be
// running late (scheduled < estimated) and depart within (now, now+12h).
func IsEligible(record *entity.FlightRecord, now time.Time) bool {
	if record == nil {
		return false
	}
	scheduled := record.ScheduledTime
	return scheduled.Before(record.EstimatedTime) &&
		scheduled.After(now) &&
		scheduled.Before(now.Add(EligibilityWindow))
}

// FilterEligible returns the subset of records to poll this tick, keeping input order
func FilterEligible(records []*entity.FlightRecord, now time.Time) []*entity.FlightRecord {
	eligible := make([]*entity.FlightRecord, 0, len(records))
	for _, record := range records {
		if IsEligible(record, now) {
			eligible = append(eligible, record)
		}
	}
	return eligible
}

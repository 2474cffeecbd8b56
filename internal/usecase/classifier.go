package usecase

import (
	"strings"

	"flightwatch-service/internal/domain/entity"
)

// DelayThreshold is the delay difference in minutes that must be exceeded
// for a change to be significant. A difference of exactly 10 is not.
const DelayThreshold int64 = 10

var cancelledStatuses = map[string]struct{}{
	"cancelled": {},
	"canceled":  {},
}

// Classify compares a snapshot with the stored record. The checks run in a
// fixed order: cancellation, then a scheduled-time mismatch (the provider may
// answer with another day's flight under the same number), then the
// delay/gate/terminal comparison. Every input maps to exactly one tag.
func Classify(stored entity.FlightRecord, snapshot entity.FlightSnapshot, status string) entity.ClassificationResult {
	result := entity.ClassificationResult{
		Snapshot: snapshot,
		Status:   status,
	}

	if isCancelled(status) {
		result.Tag = entity.Cancelled
		return result
	}

	if !snapshot.ScheduledTime.Equal(stored.ScheduledTime) {
		result.Tag = entity.Ignored
		return result
	}

	if absDiff(stored.Delay, snapshot.Delay) > DelayThreshold {
		result.Changes = append(result.Changes, entity.FieldDelay)
	}
	if !strings.EqualFold(stored.Gate, snapshot.Gate) {
		result.Changes = append(result.Changes, entity.FieldGate)
	}
	if !strings.EqualFold(stored.Terminal, snapshot.Terminal) {
		result.Changes = append(result.Changes, entity.FieldTerminal)
	}

	if len(result.Changes) > 0 {
		result.Tag = entity.SignificantChange
	} else {
		result.Tag = entity.Unchanged
	}
	return result
}

func isCancelled(status string) bool {
	_, ok := cancelledStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

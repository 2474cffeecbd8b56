package entity

import "time"

// FlightSnapshot is the normalized view of one provider record, built once
// per tick and discarded after the flight's branch completes.
type FlightSnapshot struct {
	FlightNumber  string
	ScheduledTime time.Time
	EstimatedTime time.Time
	Terminal      string
	Gate          string
	Delay         int64
}

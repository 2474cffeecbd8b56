// internal/domain/entity/flight_record.go
package entity

import (
	"time"
)

// FlightRecord is the stored state of a subscribed flight.
// Subscribers are linked through Subscription, not embedded here.
type FlightRecord struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	FlightNumber  string    `bson:"flightNumber" json:"flightNumber"` // provider IATA code, reused across days
	ScheduledTime time.Time `bson:"scheduledTime" json:"scheduledTime"`
	EstimatedTime time.Time `bson:"estimatedTime" json:"estimatedTime"`
	Terminal      string    `bson:"terminal" json:"terminal"`
	Gate          string    `bson:"gate" json:"gate"`
	Delay         int64     `bson:"delay" json:"delay"` // minutes
	TimeZone      string    `bson:"timeZone" json:"timeZone"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

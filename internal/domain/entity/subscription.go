package entity

import "time"

// Subscription links a flight to a subscriber. Removing a flight's
// subscriptions never removes the subscriber itself.
type Subscription struct {
	FlightID     string
	SubscriberID string
	CreatedAt    time.Time
}

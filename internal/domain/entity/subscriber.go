package entity

import "time"

// Subscriber is a contact identity that receives flight notifications.
// Email is the identity key; the same subscriber may follow many flights.
type Subscriber struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	TravelDate  *time.Time `json:"travelDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

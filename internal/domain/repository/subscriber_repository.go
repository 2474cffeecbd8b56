package repository

import (
	"context"

	"flightwatch-service/internal/domain/entity"
)

// SubscriberRepository defines the interface for subscriber operations
type SubscriberRepository interface {
	// UpsertByEmail creates the subscriber or refreshes its contact details,
	// filling in the stored ID.
	UpsertByEmail(ctx context.Context, subscriber *entity.Subscriber) error
	FindByEmail(ctx context.Context, email string) (*entity.Subscriber, error)
}

// SubscriptionRepository manages the flight -> subscriber relation
type SubscriptionRepository interface {
	Subscribe(ctx context.Context, flightID, subscriberID string) error
	Unsubscribe(ctx context.Context, flightID, subscriberID string) error
	FindSubscribers(ctx context.Context, flightID string) ([]*entity.Subscriber, error)
	// RemoveFlight drops every subscription of the flight. Subscribers are kept.
	RemoveFlight(ctx context.Context, flightID string) error
}

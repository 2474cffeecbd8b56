package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Subscribers GORM model for database mapping
type Subscribers struct {
	ID          string     `gorm:"primaryKey;size:36"`
	Name        string     `gorm:"column:name"`
	Email       string     `gorm:"column:email;uniqueIndex;not null"`
	PhoneNumber string     `gorm:"column:phone_number"`
	TravelDate  *time.Time `gorm:"column:travel_date"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (Subscribers) TableName() string {
	return "subscribers"
}

func (s Subscribers) toEntity() *entity.Subscriber {
	return &entity.Subscriber{
		ID:          s.ID,
		Name:        s.Name,
		Email:       s.Email,
		PhoneNumber: s.PhoneNumber,
		TravelDate:  s.TravelDate,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// FlightSubscriptions GORM model for the flight -> subscriber relation.
// Rows reference subscribers but never own them.
type FlightSubscriptions struct {
	FlightID     string `gorm:"primaryKey;size:64"`
	SubscriberID string `gorm:"primaryKey;size:36;index"`
	CreatedAt    time.Time
}

// TableName overrides the default table name
func (FlightSubscriptions) TableName() string {
	return "flight_subscriptions"
}

// MigrateSubscriptions creates the subscriber tables when missing
func MigrateSubscriptions(db *gorm.DB) error {
	if err := db.AutoMigrate(&Subscribers{}, &FlightSubscriptions{}, &Airlines{}); err != nil {
		return fmt.Errorf("failed to migrate subscription tables: %w", err)
	}
	return nil
}

// GormSubscriberRepository implements the SubscriberRepository interface
type GormSubscriberRepository struct {
	db *gorm.DB
}

// NewGormSubscriberRepository creates a new GORM subscriber repository
func NewGormSubscriberRepository(db *gorm.DB) *GormSubscriberRepository {
	return &GormSubscriberRepository{db: db}
}

var _ repository.SubscriberRepository = (*GormSubscriberRepository)(nil)

// UpsertByEmail inserts the subscriber or refreshes the contact details of
// the one already registered under the same email
func (r *GormSubscriberRepository) UpsertByEmail(ctx context.Context, subscriber *entity.Subscriber) error {
	model := Subscribers{
		ID:          subscriber.ID,
		Name:        subscriber.Name,
		Email:       subscriber.Email,
		PhoneNumber: subscriber.PhoneNumber,
		TravelDate:  subscriber.TravelDate,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "phone_number", "travel_date", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscriber: %w", err)
	}

	stored, err := r.FindByEmail(ctx, subscriber.Email)
	if err != nil {
		return err
	}
	*subscriber = *stored
	return nil
}

// FindByEmail finds a subscriber by email
func (r *GormSubscriberRepository) FindByEmail(ctx context.Context, email string) (*entity.Subscriber, error) {
	var model Subscribers
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.toEntity(), nil
}

// GormSubscriptionRepository implements the SubscriptionRepository interface
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GORM subscription repository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

var _ repository.SubscriptionRepository = (*GormSubscriptionRepository)(nil)

// Subscribe links a subscriber to a flight; linking twice is a no-op
func (r *GormSubscriptionRepository) Subscribe(ctx context.Context, flightID, subscriberID string) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&FlightSubscriptions{
		FlightID:     flightID,
		SubscriberID: subscriberID,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// Unsubscribe removes the link, leaving the subscriber in place
func (r *GormSubscriptionRepository) Unsubscribe(ctx context.Context, flightID, subscriberID string) error {
	err := r.db.WithContext(ctx).
		Where("flight_id = ? AND subscriber_id = ?", flightID, subscriberID).
		Delete(&FlightSubscriptions{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// RemoveFlight deletes every subscription of a flight
func (r *GormSubscriptionRepository) RemoveFlight(ctx context.Context, flightID string) error {
	err := r.db.WithContext(ctx).Where("flight_id = ?", flightID).Delete(&FlightSubscriptions{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete flight subscriptions: %w", err)
	}
	return nil
}

// FindSubscribers lists everyone subscribed to a flight
func (r *GormSubscriptionRepository) FindSubscribers(ctx context.Context, flightID string) ([]*entity.Subscriber, error) {
	var models []Subscribers
	err := r.db.WithContext(ctx).
		Joins("JOIN flight_subscriptions ON flight_subscriptions.subscriber_id = subscribers.id").
		Where("flight_subscriptions.flight_id = ?", flightID).
		Order("subscribers.created_at").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}

	subscribers := make([]*entity.Subscriber, 0, len(models))
	for _, m := range models {
		subscribers = append(subscribers, m.toEntity())
	}
	return subscribers, nil
}

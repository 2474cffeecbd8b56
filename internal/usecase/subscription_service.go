package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/pkg/utils"

	"github.com/google/uuid"
)

// SubscriberRequest carries the contact details of a new subscriber
type SubscriberRequest struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	TravelDate  *time.Time `json:"travelDate,omitempty"`
}

// SubscribeRequest registers a subscriber for a flight
type SubscribeRequest struct {
	FlightNumber  string            `json:"flightNumber"`
	ScheduledTime time.Time         `json:"scheduledTime"`
	EstimatedTime time.Time         `json:"estimatedTime"`
	Terminal      string            `json:"terminal"`
	Gate          string            `json:"gate"`
	TimeZone      string            `json:"timeZone"`
	Subscriber    SubscriberRequest `json:"subscriber"`
}

// SubscriptionService links subscribers to tracked flights
type SubscriptionService struct {
	flightRepo       repository.FlightRecordRepository
	subscriberRepo   repository.SubscriberRepository
	subscriptionRepo repository.SubscriptionRepository
	dispatcher       *NotificationDispatcher
	logger           logger.Logger
	now              func() time.Time
}

// NewSubscriptionService creates a new subscription service. dispatcher may
// be nil, in which case no confirmation is sent.
func NewSubscriptionService(
	flightRepo repository.FlightRecordRepository,
	subscriberRepo repository.SubscriberRepository,
	subscriptionRepo repository.SubscriptionRepository,
	dispatcher *NotificationDispatcher,
	logger logger.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		flightRepo:       flightRepo,
		subscriberRepo:   subscriberRepo,
		subscriptionRepo: subscriptionRepo,
		dispatcher:       dispatcher,
		logger:           logger,
		now:              time.Now,
	}
}

// Subscribe stores the flight if it is not tracked yet, upserts the
// subscriber by email and links the two. Flights are matched by number
// only, so a second subscription for a reused number joins the first
// stored departure.
func (s *SubscriptionService) Subscribe(ctx context.Context, req SubscribeRequest) (*entity.FlightRecord, error) {
	flightNumber := utils.NormalizeFlightNumber(req.FlightNumber)
	if flightNumber == "" {
		return nil, fmt.Errorf("%w: flight number is required", ErrInvalidFlight)
	}

	email := strings.TrimSpace(req.Subscriber.Email)
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	record, err := s.findOrCreateFlight(ctx, flightNumber, req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	subscriber := &entity.Subscriber{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Subscriber.Name),
		Email:       email,
		PhoneNumber: strings.TrimSpace(req.Subscriber.PhoneNumber),
		TravelDate:  req.Subscriber.TravelDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.subscriberRepo.UpsertByEmail(ctx, subscriber); err != nil {
		return nil, fmt.Errorf("failed to save subscriber: %w", err)
	}

	if err := s.subscriptionRepo.Subscribe(ctx, record.ID, subscriber.ID); err != nil {
		return nil, fmt.Errorf("failed to link subscriber to flight: %w", err)
	}

	s.logger.Info("Subscriber registered",
		"flightNumber", record.FlightNumber,
		"flightID", record.ID,
		"subscriberID", subscriber.ID)

	if s.dispatcher != nil {
		report := s.dispatcher.SendConfirmation(ctx, *record, subscriber)
		if report.Failed > 0 {
			s.logger.Warn("Subscription confirmation not delivered",
				"flightNumber", record.FlightNumber,
				"subscriberID", subscriber.ID,
				"failed", report.Failed)
		}
	}

	return record, nil
}

// Unsubscribe removes the link between a subscriber and a flight
func (s *SubscriptionService) Unsubscribe(ctx context.Context, flightID, email string) error {
	subscriber, err := s.subscriberRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("failed to find subscriber: %w", err)
	}
	if err := s.subscriptionRepo.Unsubscribe(ctx, flightID, subscriber.ID); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	s.logger.Info("Subscriber removed", "flightID", flightID, "subscriberID", subscriber.ID)
	return nil
}

// RemoveFlight stops tracking a flight. Its subscriptions are dropped
// before the record so a failure never leaves links to a missing flight;
// subscribers stay registered for their other flights.
func (s *SubscriptionService) RemoveFlight(ctx context.Context, flightID string) error {
	record, err := s.flightRepo.FindByID(ctx, flightID)
	if err != nil {
		return fmt.Errorf("failed to find flight: %w", err)
	}
	if err := s.subscriptionRepo.RemoveFlight(ctx, record.ID); err != nil {
		return fmt.Errorf("failed to remove subscriptions: %w", err)
	}
	if err := s.flightRepo.Delete(ctx, record.ID); err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}
	s.logger.Info("Flight removed", "flightNumber", record.FlightNumber, "flightID", record.ID)
	return nil
}

func (s *SubscriptionService) findOrCreateFlight(ctx context.Context, flightNumber string, req SubscribeRequest) (*entity.FlightRecord, error) {
	record, err := s.flightRepo.FindByFlightNumber(ctx, flightNumber)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to find flight: %w", err)
	}

	if req.ScheduledTime.IsZero() {
		return nil, fmt.Errorf("%w: scheduled time is required for a new flight", ErrInvalidFlight)
	}

	estimated := req.EstimatedTime
	if estimated.IsZero() {
		estimated = req.ScheduledTime
	}

	now := s.now().UTC()
	record = &entity.FlightRecord{
		ID:            uuid.NewString(),
		FlightNumber:  flightNumber,
		ScheduledTime: req.ScheduledTime.UTC(),
		EstimatedTime: estimated.UTC(),
		Terminal:      strings.TrimSpace(req.Terminal),
		Gate:          strings.TrimSpace(req.Gate),
		TimeZone:      strings.TrimSpace(req.TimeZone),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.flightRepo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save flight: %w", err)
	}

	s.logger.Info("Tracking new flight", "flightNumber", flightNumber, "flightID", record.ID)
	return record, nil
}

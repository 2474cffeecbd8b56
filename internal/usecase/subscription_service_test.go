package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type subscriptionFixture struct {
	flights       *mockFlightRepo
	subscribers   *mockSubscriberRepo
	subscriptions *mockSubscriptionRepo
	email         *mockEmailRepo
	service       *SubscriptionService
}

func newSubscriptionFixture() *subscriptionFixture {
	f := &subscriptionFixture{
		flights:       &mockFlightRepo{},
		subscribers:   &mockSubscriberRepo{},
		subscriptions: &mockSubscriptionRepo{},
		email:         &mockEmailRepo{},
	}
	log := logger.NewNopLogger()
	dispatcher := NewNotificationDispatcher(f.subscriptions, f.email, newTestMetrics(), log)
	f.service = NewSubscriptionService(f.flights, f.subscribers, f.subscriptions, dispatcher, log)
	return f
}

func subscribeRequest() SubscribeRequest {
	return SubscribeRequest{
		FlightNumber:  " 6e2016 ",
		ScheduledTime: scheduled,
		EstimatedTime: scheduled.Add(20 * time.Minute),
		Gate:          "T1",
		Terminal:      "2",
		TimeZone:      "Asia/Kolkata",
		Subscriber: SubscriberRequest{
			Name:        "Asha",
			Email:       "asha@example.com",
			PhoneNumber: "+919800000001",
		},
	}
}

func TestSubscribeCreatesFlight(t *testing.T) {
	t.Parallel()

	f := newSubscriptionFixture()
	f.flights.On("FindByFlightNumber", mock.Anything, "6E2016").Return(nil, repository.ErrNotFound)
	f.flights.On("Save", mock.Anything, mock.MatchedBy(func(r *entity.FlightRecord) bool {
		return r.ID != "" && r.FlightNumber == "6E2016" && r.Gate == "T1" && r.TimeZone == "Asia/Kolkata"
	})).Return(nil)
	f.subscribers.On("UpsertByEmail", mock.Anything, mock.MatchedBy(func(s *entity.Subscriber) bool {
		return s.Email == "asha@example.com" && s.Name == "Asha"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Subscriber).ID = "s-1"
	}).Return(nil)
	f.subscriptions.On("Subscribe", mock.Anything, mock.Anything, "s-1").Return(nil)
	f.email.On("SendEmail", mock.Anything, "asha@example.com", "Subscription confirmation for flight: 6E2016", mock.Anything).Return(nil)

	record, err := f.service.Subscribe(context.Background(), subscribeRequest())

	require.NoError(t, err)
	assert.Equal(t, "6E2016", record.FlightNumber)
	assert.NotEmpty(t, record.ID)
	f.flights.AssertExpectations(t)
	f.subscriptions.AssertExpectations(t)
	f.email.AssertExpectations(t)
}

func TestSubscribeJoinsExistingFlight(t *testing.T) {
	t.Parallel()

	f := newSubscriptionFixture()
	existing := trackedFlight("f-1", "6E2016")
	f.flights.On("FindByFlightNumber", mock.Anything, "6E2016").Return(existing, nil)
	f.subscribers.On("UpsertByEmail", mock.Anything, mock.Anything).Return(nil)
	f.subscriptions.On("Subscribe", mock.Anything, "f-1", mock.Anything).Return(nil)
	f.email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("quota exceeded"))

	record, err := f.service.Subscribe(context.Background(), subscribeRequest())

	require.NoError(t, err)
	assert.Same(t, existing, record)
	f.flights.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubscribeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*SubscribeRequest)
		wantErr error
	}{
		{"invalid email", func(r *SubscribeRequest) { r.Subscriber.Email = "asha@" }, ErrInvalidEmail},
		{"empty email", func(r *SubscribeRequest) { r.Subscriber.Email = "" }, ErrInvalidEmail},
		{"empty flight number", func(r *SubscribeRequest) { r.FlightNumber = "  " }, ErrInvalidFlight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newSubscriptionFixture()
			req := subscribeRequest()
			tt.mutate(&req)

			_, err := f.service.Subscribe(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			f.flights.AssertNotCalled(t, "FindByFlightNumber", mock.Anything, mock.Anything)
		})
	}
}

func TestSubscribeNewFlightNeedsScheduledTime(t *testing.T) {
	t.Parallel()

	f := newSubscriptionFixture()
	f.flights.On("FindByFlightNumber", mock.Anything, "6E2016").Return(nil, repository.ErrNotFound)

	req := subscribeRequest()
	req.ScheduledTime = time.Time{}

	_, err := f.service.Subscribe(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidFlight)
	f.flights.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubscribeStoreFailure(t *testing.T) {
	t.Parallel()

	f := newSubscriptionFixture()
	f.flights.On("FindByFlightNumber", mock.Anything, "6E2016").Return(nil, errors.New("connection refused"))

	_, err := f.service.Subscribe(context.Background(), subscribeRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to find flight")
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()

	f := newSubscriptionFixture()
	f.subscribers.On("FindByEmail", mock.Anything, "asha@example.com").Return(&entity.Subscriber{ID: "s-1"}, nil)
	f.subscriptions.On("Unsubscribe", mock.Anything, "f-1", "s-1").Return(nil)

	require.NoError(t, f.service.Unsubscribe(context.Background(), "f-1", " asha@example.com "))
	f.subscriptions.AssertExpectations(t)

	f.subscribers.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)
	err := f.service.Unsubscribe(context.Background(), "f-1", "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRemoveFlight(t *testing.T) {
	t.Parallel()

	f := newSubscriptionFixture()
	f.flights.On("FindByID", mock.Anything, "f-1").Return(&entity.FlightRecord{ID: "f-1", FlightNumber: "6E2016"}, nil)
	f.subscriptions.On("RemoveFlight", mock.Anything, "f-1").Return(nil).Once()
	f.flights.On("Delete", mock.Anything, "f-1").Return(nil).Once()

	require.NoError(t, f.service.RemoveFlight(context.Background(), "f-1"))
	f.flights.AssertExpectations(t)
	f.subscriptions.AssertExpectations(t)
	f.subscribers.AssertNotCalled(t, "UpsertByEmail", mock.Anything, mock.Anything)
}

func TestRemoveFlightErrors(t *testing.T) {
	t.Parallel()

	t.Run("unknown flight", func(t *testing.T) {
		t.Parallel()

		f := newSubscriptionFixture()
		f.flights.On("FindByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

		err := f.service.RemoveFlight(context.Background(), "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		f.subscriptions.AssertNotCalled(t, "RemoveFlight", mock.Anything, mock.Anything)
		f.flights.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("subscription store failure keeps the flight", func(t *testing.T) {
		t.Parallel()

		f := newSubscriptionFixture()
		f.flights.On("FindByID", mock.Anything, "f-1").Return(&entity.FlightRecord{ID: "f-1"}, nil)
		f.subscriptions.On("RemoveFlight", mock.Anything, "f-1").Return(errors.New("connection reset"))

		err := f.service.RemoveFlight(context.Background(), "f-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to remove subscriptions")
		f.flights.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

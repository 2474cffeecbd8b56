package usecase

import (
	"context"

	"flightwatch-service/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

type mockFlightRepo struct {
	mock.Mock
}

func (m *mockFlightRepo) FindAll(ctx context.Context) ([]*entity.FlightRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]*entity.FlightRecord)
	return records, args.Error(1)
}

func (m *mockFlightRepo) FindByID(ctx context.Context, id string) (*entity.FlightRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*entity.FlightRecord)
	return record, args.Error(1)
}

func (m *mockFlightRepo) FindByFlightNumber(ctx context.Context, flightNumber string) (*entity.FlightRecord, error) {
	args := m.Called(ctx, flightNumber)
	record, _ := args.Get(0).(*entity.FlightRecord)
	return record, args.Error(1)
}

func (m *mockFlightRepo) Save(ctx context.Context, record *entity.FlightRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockFlightRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockStatusRepo struct {
	mock.Mock
}

func (m *mockStatusRepo) FetchStatus(ctx context.Context, flightNumber string) ([]byte, error) {
	args := m.Called(ctx, flightNumber)
	body, _ := args.Get(0).([]byte)
	return body, args.Error(1)
}

type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) Subscribe(ctx context.Context, flightID, subscriberID string) error {
	return m.Called(ctx, flightID, subscriberID).Error(0)
}

func (m *mockSubscriptionRepo) Unsubscribe(ctx context.Context, flightID, subscriberID string) error {
	return m.Called(ctx, flightID, subscriberID).Error(0)
}

func (m *mockSubscriptionRepo) RemoveFlight(ctx context.Context, flightID string) error {
	return m.Called(ctx, flightID).Error(0)
}

func (m *mockSubscriptionRepo) FindSubscribers(ctx context.Context, flightID string) ([]*entity.Subscriber, error) {
	args := m.Called(ctx, flightID)
	subscribers, _ := args.Get(0).([]*entity.Subscriber)
	return subscribers, args.Error(1)
}

type mockSubscriberRepo struct {
	mock.Mock
}

func (m *mockSubscriberRepo) UpsertByEmail(ctx context.Context, subscriber *entity.Subscriber) error {
	return m.Called(ctx, subscriber).Error(0)
}

func (m *mockSubscriberRepo) FindByEmail(ctx context.Context, email string) (*entity.Subscriber, error) {
	args := m.Called(ctx, email)
	subscriber, _ := args.Get(0).(*entity.Subscriber)
	return subscriber, args.Error(1)
}

type mockEmailRepo struct {
	mock.Mock
}

func (m *mockEmailRepo) SendEmail(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type mockSMSRepo struct {
	mock.Mock
}

func (m *mockSMSRepo) SendSMS(ctx context.Context, to, body string) error {
	return m.Called(ctx, to, body).Error(0)
}

type mockAirlineRepo struct {
	mock.Mock
}

func (m *mockAirlineRepo) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	args := m.Called(ctx, code)
	airline, _ := args.Get(0).(*entity.Airline)
	return airline, args.Error(1)
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics("test", prometheus.NewRegistry())
}

func testSubscribers() []*entity.Subscriber {
	return []*entity.Subscriber{
		{ID: "s-1", Email: "asha@example.com", PhoneNumber: "+919800000001"},
		{ID: "s-2", Email: "ravi@example.com"},
		{ID: "s-3", PhoneNumber: "+919800000003"},
	}
}

func TestDispatchChangeNotifiesEverySubscriber(t *testing.T) {
	t.Parallel()

	record := storedFlight()
	record.ID = "f-1"
	snapshot := snapshotOf(record)
	snapshot.Gate = "T28"
	result := Classify(record, snapshot, "active")

	subs := &mockSubscriptionRepo{}
	subs.On("FindSubscribers", mock.Anything, "f-1").Return(testSubscribers(), nil)

	email := &mockEmailRepo{}
	email.On("SendEmail", mock.Anything, mock.Anything, "Notification: Flight Details for 6E2016",
		mock.MatchedBy(func(body string) bool { return strings.Contains(body, "T28") })).
		Return(nil)

	sms := &mockSMSRepo{}
	sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	m := newTestMetrics()
	dispatcher := NewNotificationDispatcher(subs, email, m, logger.NewNopLogger(), WithSMS(sms))

	report, err := dispatcher.Dispatch(context.Background(), record, result)

	require.NoError(t, err)
	assert.Equal(t, DispatchReport{Recipients: 3, Sent: 4, Failed: 0}, report)
	email.AssertNumberOfCalls(t, "SendEmail", 2)
	sms.AssertNumberOfCalls(t, "SendSMS", 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("email", "sent")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("sms", "sent")))
}

func TestDispatchSkipsSMSWhenDisabled(t *testing.T) {
	t.Parallel()

	record := storedFlight()
	record.ID = "f-1"

	subs := &mockSubscriptionRepo{}
	subs.On("FindSubscribers", mock.Anything, "f-1").Return(testSubscribers(), nil)
	email := &mockEmailRepo{}
	email.On("SendEmail", mock.Anything, mock.Anything, "Cancelled: Flight 6E2016", mock.Anything).Return(nil)

	dispatcher := NewNotificationDispatcher(subs, email, newTestMetrics(), logger.NewNopLogger())
	result := Classify(record, snapshotOf(record), "cancelled")

	report, err := dispatcher.Dispatch(context.Background(), record, result)

	require.NoError(t, err)
	assert.Equal(t, 3, report.Recipients)
	assert.Equal(t, 2, report.Sent)
	email.AssertExpectations(t)
}

func TestDispatchIsolatesFailedSends(t *testing.T) {
	t.Parallel()

	record := storedFlight()
	record.ID = "f-1"
	snapshot := snapshotOf(record)
	snapshot.Terminal = "1"

	subs := &mockSubscriptionRepo{}
	subs.On("FindSubscribers", mock.Anything, "f-1").Return([]*entity.Subscriber{
		{ID: "s-1", Email: "first@example.com"},
		{ID: "s-2", Email: "second@example.com"},
		{ID: "s-3", Email: "third@example.com"},
	}, nil)

	email := &mockEmailRepo{}
	email.On("SendEmail", mock.Anything, "first@example.com", mock.Anything, mock.Anything).Return(errors.New("smtp 451"))
	email.On("SendEmail", mock.Anything, "second@example.com", mock.Anything, mock.Anything).
		Panic("transport exploded")
	email.On("SendEmail", mock.Anything, "third@example.com", mock.Anything, mock.Anything).Return(nil)

	m := newTestMetrics()
	dispatcher := NewNotificationDispatcher(subs, email, m, logger.NewNopLogger())

	report, err := dispatcher.Dispatch(context.Background(), record, Classify(record, snapshot, ""))

	require.NoError(t, err)
	assert.Equal(t, DispatchReport{Recipients: 3, Sent: 1, Failed: 2}, report)
	email.AssertExpectations(t)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("email", "failed")))
}

func TestDispatchAppliesSendTimeout(t *testing.T) {
	t.Parallel()

	record := storedFlight()
	record.ID = "f-1"

	subs := &mockSubscriptionRepo{}
	subs.On("FindSubscribers", mock.Anything, "f-1").Return([]*entity.Subscriber{{ID: "s-1", Email: "slow@example.com"}}, nil)

	email := &mockEmailRepo{}
	email.On("SendEmail", mock.Anything, "slow@example.com", mock.Anything, mock.Anything).
		Return(context.DeadlineExceeded).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			<-ctx.Done()
		})

	dispatcher := NewNotificationDispatcher(subs, email, newTestMetrics(), logger.NewNopLogger(),
		WithSendTimeout(20*time.Millisecond))

	report, err := dispatcher.Dispatch(context.Background(), record, Classify(record, snapshotOf(record), "cancelled"))

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
}

func TestDispatchNoopForUnchangedAndIgnored(t *testing.T) {
	t.Parallel()

	subs := &mockSubscriptionRepo{}
	email := &mockEmailRepo{}
	dispatcher := NewNotificationDispatcher(subs, email, newTestMetrics(), logger.NewNopLogger())

	record := storedFlight()
	for _, tag := range []entity.Classification{entity.Unchanged, entity.Ignored} {
		report, err := dispatcher.Dispatch(context.Background(), record, entity.ClassificationResult{Tag: tag})
		require.NoError(t, err)
		assert.Zero(t, report)
	}

	subs.AssertNotCalled(t, "FindSubscribers", mock.Anything, mock.Anything)
	email.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchSubscriberLookupFailure(t *testing.T) {
	t.Parallel()

	subs := &mockSubscriptionRepo{}
	subs.On("FindSubscribers", mock.Anything, mock.Anything).Return(nil, errors.New("pq: connection reset"))

	dispatcher := NewNotificationDispatcher(subs, &mockEmailRepo{}, newTestMetrics(), logger.NewNopLogger())
	record := storedFlight()

	_, err := dispatcher.Dispatch(context.Background(), record, Classify(record, snapshotOf(record), "cancelled"))

	require.Error(t, err)
	assert.True(t, IsKind(err, NotificationFailure))
}

func TestDispatchIncludesAirlineName(t *testing.T) {
	t.Parallel()

	record := storedFlight()
	record.ID = "f-1"
	snapshot := snapshotOf(record)
	snapshot.Gate = "T28"

	subs := &mockSubscriptionRepo{}
	subs.On("FindSubscribers", mock.Anything, "f-1").Return([]*entity.Subscriber{{ID: "s-1", Email: "asha@example.com"}}, nil)

	airlines := &mockAirlineRepo{}
	airlines.On("GetByCode", mock.Anything, "6E").Return(&entity.Airline{Code: "6E", Name: "IndiGo"}, nil)

	var body string
	email := &mockEmailRepo{}
	email.On("SendEmail", mock.Anything, "asha@example.com", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { body = args.String(3) }).
		Return(nil)

	dispatcher := NewNotificationDispatcher(subs, email, newTestMetrics(), logger.NewNopLogger(), WithAirlines(airlines))
	_, err := dispatcher.Dispatch(context.Background(), record, Classify(record, snapshot, "active"))

	require.NoError(t, err)
	assert.Contains(t, body, "IndiGo")
	assert.Contains(t, body, "T28")
}

func TestSendConfirmationUnknownAirline(t *testing.T) {
	t.Parallel()

	airlines := &mockAirlineRepo{}
	airlines.On("GetByCode", mock.Anything, "6E").Return(nil, repository.ErrNotFound)

	email := &mockEmailRepo{}
	email.On("SendEmail", mock.Anything, "asha@example.com", "Subscription confirmation for flight: 6E2016", mock.Anything).Return(nil)

	dispatcher := NewNotificationDispatcher(&mockSubscriptionRepo{}, email, newTestMetrics(), logger.NewNopLogger(), WithAirlines(airlines))
	report := dispatcher.SendConfirmation(context.Background(), storedFlight(), &entity.Subscriber{ID: "s-1", Email: "asha@example.com"})

	assert.Equal(t, DispatchReport{Recipients: 1, Sent: 1}, report)
	email.AssertExpectations(t)
}

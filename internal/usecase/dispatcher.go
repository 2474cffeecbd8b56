package usecase

import (
	"context"
	"fmt"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/pkg/metrics"
	"flightwatch-service/pkg/utils"
	"flightwatch-service/templates"
)

const (
	channelEmail = "email"
	channelSMS   = "sms"

	defaultSendTimeout = 15 * time.Second
)

// DispatchReport counts the outcome of one fan-out
type DispatchReport struct {
	Recipients int
	Sent       int
	Failed     int
}

// NotificationDispatcher fans classifications out to a flight's subscribers
type NotificationDispatcher struct {
	subscriptionRepo repository.SubscriptionRepository
	airlineRepo      repository.AirlineRepository
	emailRepo        repository.EmailRepository
	smsRepo          repository.SMSRepository
	sendTimeout      time.Duration
	metrics          *metrics.Metrics
	logger           logger.Logger
}

// DispatcherOption configures the dispatcher
type DispatcherOption func(*NotificationDispatcher)

// WithSMS enables the SMS channel for subscribers with a phone number
func WithSMS(smsRepo repository.SMSRepository) DispatcherOption {
	return func(d *NotificationDispatcher) {
		d.smsRepo = smsRepo
	}
}

// WithAirlines resolves airline names for message texts
func WithAirlines(airlineRepo repository.AirlineRepository) DispatcherOption {
	return func(d *NotificationDispatcher) {
		d.airlineRepo = airlineRepo
	}
}

// WithSendTimeout bounds every single send
func WithSendTimeout(timeout time.Duration) DispatcherOption {
	return func(d *NotificationDispatcher) {
		if timeout > 0 {
			d.sendTimeout = timeout
		}
	}
}

// NewNotificationDispatcher creates a new dispatcher
func NewNotificationDispatcher(
	subscriptionRepo repository.SubscriptionRepository,
	emailRepo repository.EmailRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
	opts ...DispatcherOption,
) *NotificationDispatcher {
	d := &NotificationDispatcher{
		subscriptionRepo: subscriptionRepo,
		emailRepo:        emailRepo,
		sendTimeout:      defaultSendTimeout,
		metrics:          metrics,
		logger:           logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch notifies every subscriber of the flight about a Cancelled or
// SignificantChange result. Other tags send nothing. Individual send
// failures are logged and counted; only a failure to load the subscriber
// list is returned.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, record entity.FlightRecord, result entity.ClassificationResult) (DispatchReport, error) {
	var notification templates.Notification
	switch result.Tag {
	case entity.Cancelled:
		notification = templates.CancellationNotification(d.cancellationMessage(ctx, record, result.Snapshot))
	case entity.SignificantChange:
		notification = templates.ChangeNotification(d.changeMessage(ctx, record, result.Snapshot))
	default:
		return DispatchReport{}, nil
	}

	subscribers, err := d.subscriptionRepo.FindSubscribers(ctx, record.ID)
	if err != nil {
		d.metrics.ErrorsCount.WithLabelValues("load_subscribers").Inc()
		return DispatchReport{}, newFlightError(NotificationFailure, "dispatch", record.FlightNumber,
			fmt.Errorf("failed to load subscribers: %w", err))
	}

	report := d.fanOut(ctx, subscribers, notification)

	d.logger.Info("Notifications dispatched",
		"flightNumber", record.FlightNumber,
		"classification", result.Tag,
		"recipients", report.Recipients,
		"sent", report.Sent,
		"failed", report.Failed)
	return report, nil
}

// SendConfirmation tells a new subscriber the flight's current status
func (d *NotificationDispatcher) SendConfirmation(ctx context.Context, record entity.FlightRecord, subscriber *entity.Subscriber) DispatchReport {
	message := templates.FlightMessage{
		FlightNumber:  record.FlightNumber,
		AirlineName:   d.airlineName(ctx, record.FlightNumber),
		ScheduledTime: record.ScheduledTime,
		EstimatedTime: record.EstimatedTime,
		Gate:          record.Gate,
		Terminal:      record.Terminal,
		TimeZone:      record.TimeZone,
	}
	return d.fanOut(ctx, []*entity.Subscriber{subscriber}, templates.ConfirmationNotification(message))
}

func (d *NotificationDispatcher) fanOut(ctx context.Context, subscribers []*entity.Subscriber, n templates.Notification) DispatchReport {
	var report DispatchReport

	for _, subscriber := range subscribers {
		if subscriber == nil {
			continue
		}
		report.Recipients++

		if subscriber.Email != "" {
			email := subscriber.Email
			d.count(&report, d.send(ctx, channelEmail, subscriber, func(sendCtx context.Context) error {
				return d.emailRepo.SendEmail(sendCtx, email, n.Subject, n.Body)
			}))
		}

		if d.smsRepo != nil && subscriber.PhoneNumber != "" {
			phone := subscriber.PhoneNumber
			d.count(&report, d.send(ctx, channelSMS, subscriber, func(sendCtx context.Context) error {
				return d.smsRepo.SendSMS(sendCtx, phone, n.Short)
			}))
		}
	}

	return report
}

// send runs one transport call under its own timeout. A panicking transport
// is reported like any other failed send.
func (d *NotificationDispatcher) send(ctx context.Context, channel string, subscriber *entity.Subscriber, fn func(context.Context) error) (err error) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("transport panic: %v", rec)
		}
		if err != nil {
			d.metrics.NotificationsSent.WithLabelValues(channel, "failed").Inc()
			d.logger.Error("Failed to send notification",
				"channel", channel,
				"subscriberID", subscriber.ID,
				"error", err)
			return
		}
		d.metrics.NotificationsSent.WithLabelValues(channel, "sent").Inc()
	}()

	return fn(sendCtx)
}

func (d *NotificationDispatcher) count(report *DispatchReport, err error) {
	if err != nil {
		report.Failed++
		return
	}
	report.Sent++
}

func (d *NotificationDispatcher) changeMessage(ctx context.Context, record entity.FlightRecord, snapshot entity.FlightSnapshot) templates.FlightMessage {
	number := displayNumber(record, snapshot)
	return templates.FlightMessage{
		FlightNumber:  number,
		AirlineName:   d.airlineName(ctx, number),
		ScheduledTime: snapshot.ScheduledTime,
		EstimatedTime: snapshot.EstimatedTime,
		Gate:          snapshot.Gate,
		Terminal:      snapshot.Terminal,
		TimeZone:      record.TimeZone,
	}
}

// cancellationMessage reports the stored schedule; cancelled flights are never updated
func (d *NotificationDispatcher) cancellationMessage(ctx context.Context, record entity.FlightRecord, snapshot entity.FlightSnapshot) templates.FlightMessage {
	number := displayNumber(record, snapshot)
	return templates.FlightMessage{
		FlightNumber:  number,
		AirlineName:   d.airlineName(ctx, number),
		ScheduledTime: record.ScheduledTime,
		EstimatedTime: record.EstimatedTime,
		Gate:          record.Gate,
		Terminal:      record.Terminal,
		TimeZone:      record.TimeZone,
	}
}

func (d *NotificationDispatcher) airlineName(ctx context.Context, flightNumber string) string {
	if d.airlineRepo == nil {
		return ""
	}
	code := utils.AirlineCode(flightNumber)
	if code == "" {
		return ""
	}
	airline, err := d.airlineRepo.GetByCode(ctx, code)
	if err != nil {
		d.logger.Debug("Airline lookup failed", "code", code, "error", err)
		return ""
	}
	return airline.Name
}

func displayNumber(record entity.FlightRecord, snapshot entity.FlightSnapshot) string {
	if snapshot.FlightNumber != "" {
		return snapshot.FlightNumber
	}
	return record.FlightNumber
}

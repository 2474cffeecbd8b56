package templates

import (
	"fmt"
	"strings"
	"time"
)

const displayLayout = "2006-01-02 15:04"

// FlightMessage is the data rendered into a notification
type FlightMessage struct {
	FlightNumber  string
	AirlineName   string
	ScheduledTime time.Time
	EstimatedTime time.Time
	Gate          string
	Terminal      string
	TimeZone      string
}

// Notification is a rendered subject/body pair. SMS uses Short.
type Notification struct {
	Subject string
	Body    string
	Short   string
}

// ChangeNotification renders the message sent on a significant change
func ChangeNotification(m FlightMessage) Notification {
	body := fmt.Sprintf(
		"There are some changes in your flight timing, terminal or gate for the Flight Number: %s%s. "+
			"Scheduled: %s, Estimated: %s, Gate No: %s, Terminal: %s",
		m.FlightNumber, airlineSuffix(m.AirlineName),
		formatTime(m.ScheduledTime, m.TimeZone), formatTime(m.EstimatedTime, m.TimeZone),
		orUnknown(m.Gate), orUnknown(m.Terminal),
	)
	short := fmt.Sprintf("%s update: dep %s, est %s, gate %s, terminal %s",
		m.FlightNumber, formatTime(m.ScheduledTime, m.TimeZone), formatTime(m.EstimatedTime, m.TimeZone),
		orUnknown(m.Gate), orUnknown(m.Terminal))

	return Notification{
		Subject: "Notification: Flight Details for " + m.FlightNumber,
		Body:    body,
		Short:   short,
	}
}

// CancellationNotification renders the message sent when a flight is cancelled
func CancellationNotification(m FlightMessage) Notification {
	body := fmt.Sprintf(
		"Your flight %s%s scheduled at %s has been cancelled. Please contact your airline for rebooking options.",
		m.FlightNumber, airlineSuffix(m.AirlineName), formatTime(m.ScheduledTime, m.TimeZone),
	)
	return Notification{
		Subject: "Cancelled: Flight " + m.FlightNumber,
		Body:    body,
		Short:   fmt.Sprintf("%s scheduled %s is CANCELLED", m.FlightNumber, formatTime(m.ScheduledTime, m.TimeZone)),
	}
}

// ConfirmationNotification renders the message sent right after subscribing
func ConfirmationNotification(m FlightMessage) Notification {
	body := fmt.Sprintf(
		"Current status your flight with Flight Number: %s%s. Scheduled: %s, Estimated: %s, Gate No: %s, Terminal: %s",
		m.FlightNumber, airlineSuffix(m.AirlineName),
		formatTime(m.ScheduledTime, m.TimeZone), formatTime(m.EstimatedTime, m.TimeZone),
		orUnknown(m.Gate), orUnknown(m.Terminal),
	)
	return Notification{
		Subject: "Subscription confirmation for flight: " + m.FlightNumber,
		Body:    body,
		Short:   fmt.Sprintf("Subscribed to %s updates", m.FlightNumber),
	}
}

func formatTime(t time.Time, zone string) string {
	if t.IsZero() {
		return "unknown"
	}
	formatted := t.Format(displayLayout)
	if zone = strings.TrimSpace(zone); zone != "" {
		formatted += " (" + zone + ")"
	}
	return formatted
}

func airlineSuffix(name string) string {
	if name == "" {
		return ""
	}
	return " (" + name + ")"
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

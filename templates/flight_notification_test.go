package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleMessage() FlightMessage {
	return FlightMessage{
		FlightNumber:  "6E2016",
		ScheduledTime: time.Date(2024, 7, 28, 12, 20, 0, 0, time.UTC),
		EstimatedTime: time.Date(2024, 7, 28, 12, 50, 0, 0, time.UTC),
		Gate:          "T28",
		Terminal:      "2",
		TimeZone:      "Asia/Kolkata",
	}
}

func TestChangeNotification(t *testing.T) {
	t.Parallel()

	n := ChangeNotification(sampleMessage())

	assert.Equal(t, "Notification: Flight Details for 6E2016", n.Subject)
	assert.Contains(t, n.Body, "Flight Number: 6E2016")
	assert.Contains(t, n.Body, "Scheduled: 2024-07-28 12:20 (Asia/Kolkata)")
	assert.Contains(t, n.Body, "Estimated: 2024-07-28 12:50 (Asia/Kolkata)")
	assert.Contains(t, n.Body, "Gate No: T28")
	assert.Contains(t, n.Body, "Terminal: 2")
	assert.Contains(t, n.Short, "gate T28")
}

func TestCancellationNotification(t *testing.T) {
	t.Parallel()

	m := sampleMessage()
	m.AirlineName = "IndiGo"
	n := CancellationNotification(m)

	assert.Equal(t, "Cancelled: Flight 6E2016", n.Subject)
	assert.Contains(t, n.Body, "6E2016 (IndiGo)")
	assert.Contains(t, n.Body, "2024-07-28 12:20")
	assert.Contains(t, n.Short, "CANCELLED")
}

func TestConfirmationNotification_MissingFields(t *testing.T) {
	t.Parallel()

	n := ConfirmationNotification(FlightMessage{FlightNumber: "FL123"})

	assert.Equal(t, "Subscription confirmation for flight: FL123", n.Subject)
	assert.Contains(t, n.Body, "Scheduled: unknown")
	assert.Contains(t, n.Body, "Gate No: -")
}

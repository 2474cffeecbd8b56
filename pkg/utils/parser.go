package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Constants
const (
	NAIVE_DATE_LAYOUT = "2006-01-02T15:04:05"
	EMAIL_REGEX       = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
)

var (
	emailPattern = regexp.MustCompile(EMAIL_REGEX)
	// trailing Z or a +hh, +hh:mm or +hhmm offset (either sign) after the seconds field
	offsetPattern = regexp.MustCompile(`(Z|z|[+-]\d{2}(:?\d{2})?)$`)
)

// ParseNaiveTimestamp parses an ISO-8601 timestamp by discarding its UTC
// offset and reading the remaining wall clock as UTC.
// "2024-07-28T12:20:00+05:30" becomes 2024-07-28 12:20:00 UTC, not 06:50 UTC.
func ParseNaiveTimestamp(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	local := offsetPattern.ReplaceAllString(trimmed, "")
	parsed, err := time.ParseInLocation(NAIVE_DATE_LAYOUT, local, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return parsed, nil
}

// NormalizeFlightNumber trims whitespace and upper-cases a flight code
func NormalizeFlightNumber(flightNumber string) string {
	return strings.ToUpper(strings.TrimSpace(flightNumber))
}

// AirlineCode returns the two-character carrier prefix of a flight number
func AirlineCode(flightNumber string) string {
	prefix := strings.ReplaceAll(NormalizeFlightNumber(flightNumber), "/", "")
	if len(prefix) < 2 {
		return ""
	}
	return prefix[:2]
}

// IsValidEmail reports whether the address matches the accepted email pattern
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

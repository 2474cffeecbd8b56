package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNaiveTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 7, 28, 12, 20, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{"positive offset", "2024-07-28T12:20:00+00:00"},
		{"non-zero offset is discarded", "2024-07-28T12:20:00+05:30"},
		{"negative offset", "2024-07-28T12:20:00-04:00"},
		{"compact offset", "2024-07-28T12:20:00+0530"},
		{"hour-only offset", "2024-07-28T12:20:00+05"},
		{"negative hour-only offset", "2024-07-28T12:20:00-04"},
		{"zulu", "2024-07-28T12:20:00Z"},
		{"no offset", "2024-07-28T12:20:00"},
		{"surrounding spaces", "  2024-07-28T12:20:00+00:00 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseNaiveTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}
}

func TestParseNaiveTimestamp_FractionalSeconds(t *testing.T) {
	t.Parallel()

	got, err := ParseNaiveTimestamp("2024-07-28T12:20:00.250+00:00")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, time.Duration(got.Nanosecond()))

	got, err = ParseNaiveTimestamp("2024-07-28T12:20:00.250+07")
	require.NoError(t, err)
	assert.Equal(t, 12, got.Hour())
}

func TestParseNaiveTimestamp_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "null", "2024-07-28", "28/07/2024 12:20", "2024-13-28T12:20:00+00:00"} {
		_, err := ParseNaiveTimestamp(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestAirlineCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "6E", AirlineCode(" 6e2016 "))
	assert.Equal(t, "GA", AirlineCode("GA/410"))
	assert.Equal(t, "", AirlineCode("X"))
}

func TestIsValidEmail(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidEmail("john.doe@example.com"))
	assert.True(t, IsValidEmail("a+b@mail.co.id"))
	assert.False(t, IsValidEmail("john.doe@"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("x@y.c"))
}

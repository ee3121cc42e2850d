package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWeeklyAvailability(t *testing.T) {
	doctorID := uuid.New()

	entry, err := NewWeeklyAvailability(doctorID, 1, "09:00", "11:00")
	require.NoError(t, err)
	assert.Equal(t, doctorID, entry.DoctorID)
	assert.Equal(t, "09:00", entry.StartTime.String())
	assert.Equal(t, "11:00", entry.EndTime.String())

	cases := []struct {
		name    string
		doctor  uuid.UUID
		weekday int
		start   string
		end     string
	}{
		{"missing doctor", uuid.Nil, 1, "09:00", "11:00"},
		{"weekday too low", doctorID, -1, "09:00", "11:00"},
		{"weekday too high", doctorID, 7, "09:00", "11:00"},
		{"bad start format", doctorID, 1, "9am", "11:00"},
		{"bad end format", doctorID, 1, "09:00", "eleven"},
		{"start after end", doctorID, 1, "11:00", "09:00"},
		{"start equals end", doctorID, 1, "09:00", "09:00"},
		{"hour out of range", doctorID, 1, "25:00", "26:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewWeeklyAvailability(tc.doctor, tc.weekday, tc.start, tc.end)
			require.Error(t, err)
			assert.True(t, IsValidation(err), "expected a validation error, got %v", err)
		})
	}
}

func TestWeeklyAvailabilityOverlaps(t *testing.T) {
	doctorID := uuid.New()

	mk := func(weekday int, start, end string) *WeeklyAvailability {
		e, err := NewWeeklyAvailability(doctorID, weekday, start, end)
		require.NoError(t, err)
		return e
	}

	a := mk(1, "09:00", "11:00")

	assert.True(t, a.Overlaps(mk(1, "10:00", "12:00")))
	assert.True(t, a.Overlaps(mk(1, "08:00", "09:01")))
	assert.True(t, a.Overlaps(mk(1, "09:30", "10:00")))
	// Touching boundaries are fine, intervals are half-open.
	assert.False(t, a.Overlaps(mk(1, "11:00", "12:00")))
	assert.False(t, a.Overlaps(mk(1, "08:00", "09:00")))
	// Other weekday or other doctor never overlaps.
	assert.False(t, a.Overlaps(mk(2, "09:00", "11:00")))
	other, err := NewWeeklyAvailability(uuid.New(), 1, "09:00", "11:00")
	require.NoError(t, err)
	assert.False(t, a.Overlaps(other))
}

package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a clock time within a day, stored as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses a "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return 0, NewValidationError("time", fmt.Sprintf("invalid format %q, expected HH:MM", s))
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, NewValidationError("time", fmt.Sprintf("out of range %q", s))
	}
	return TimeOfDay(h*60 + m), nil
}

// Hour returns the hour component (0-23).
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component (0-59).
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// At anchors the clock time onto a calendar date in the date's location.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

// MarshalJSON renders the time as "HH:MM".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts a "HH:MM" string.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

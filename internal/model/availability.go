package model

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyAvailability is a recurring interval during which a doctor accepts
// appointments. Entries for the same doctor and weekday must not overlap.
type WeeklyAvailability struct {
	ID        uuid.UUID    `json:"id"`
	DoctorID  uuid.UUID    `json:"doctor_id"`
	Weekday   time.Weekday `json:"weekday"` // 0 = Sunday, 6 = Saturday
	StartTime TimeOfDay    `json:"start_time"`
	EndTime   TimeOfDay    `json:"end_time"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewWeeklyAvailability builds a validated entry from raw input.
func NewWeeklyAvailability(doctorID uuid.UUID, weekday int, start, end string) (*WeeklyAvailability, error) {
	if doctorID == uuid.Nil {
		return nil, NewValidationError("doctor_id", "is required")
	}
	if weekday < 0 || weekday > 6 {
		return nil, NewValidationError("weekday", "must be between 0 (Sunday) and 6 (Saturday)")
	}
	startTime, err := ParseTimeOfDay(start)
	if err != nil {
		return nil, NewValidationError("start_time", err.Error())
	}
	endTime, err := ParseTimeOfDay(end)
	if err != nil {
		return nil, NewValidationError("end_time", err.Error())
	}
	if startTime >= endTime {
		return nil, NewValidationError("end_time", "must be after start_time")
	}

	return &WeeklyAvailability{
		DoctorID:  doctorID,
		Weekday:   time.Weekday(weekday),
		StartTime: startTime,
		EndTime:   endTime,
	}, nil
}

// Overlaps reports whether two entries for the same doctor and weekday share
// any time. Intervals are half-open: [start, end).
func (a *WeeklyAvailability) Overlaps(other *WeeklyAvailability) bool {
	if a.DoctorID != other.DoctorID || a.Weekday != other.Weekday {
		return false
	}
	return a.StartTime < other.EndTime && other.StartTime < a.EndTime
}

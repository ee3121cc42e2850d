package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"   // Created by a patient, awaiting doctor confirmation
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"   // Confirmed by the doctor
	AppointmentStatusInProgress AppointmentStatus = "in_progress" // Consultation started
	AppointmentStatusCompleted  AppointmentStatus = "completed"   // Terminal
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"   // Terminal
	AppointmentStatusNoShow     AppointmentStatus = "no_show"     // Terminal, patient did not attend
)

// OccupyingStatuses are the statuses that keep a slot blocked for other
// patients. The database exclusion constraint applies only to these.
var OccupyingStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusConfirmed,
	AppointmentStatusInProgress,
}

// Occupying reports whether an appointment in this status blocks its slot.
func (s AppointmentStatus) Occupying() bool {
	for _, o := range OccupyingStatuses {
		if s == o {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status value.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusInProgress,
		AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

var transitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled:  {AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusConfirmed:  {AppointmentStatusInProgress, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusInProgress: {AppointmentStatusCompleted},
}

// CanTransition reports whether an appointment may move from one status to
// another. Terminal statuses have no outgoing transitions.
func CanTransition(from, to AppointmentStatus) bool {
	for _, allowed := range transitions[from] {
		if to == allowed {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID              uuid.UUID         `json:"id"`
	DoctorID        uuid.UUID         `json:"doctor_id"`
	PatientID       uuid.UUID         `json:"patient_id"`
	ScheduledAt     time.Time         `json:"scheduled_at"`
	DurationMinutes int               `json:"duration_minutes"`
	Status          AppointmentStatus `json:"status"`
	Reason          string            `json:"reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`

	// Joined for responses, not stored on the row itself
	Doctor  *User `json:"doctor,omitempty"`
	Patient *User `json:"patient,omitempty"`
}

// EndsAt returns the exclusive end of the appointment interval.
func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Overlaps reports whether two appointments for the same doctor share any
// time. Intervals are half-open: [scheduled_at, scheduled_at+duration).
func (a *Appointment) Overlaps(other *Appointment) bool {
	if a.DoctorID != other.DoctorID {
		return false
	}
	return a.ScheduledAt.Before(other.EndsAt()) && other.ScheduledAt.Before(a.EndsAt())
}

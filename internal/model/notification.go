package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationBookingCreated   NotificationKind = "booking_created"   // New booking awaiting confirmation
	NotificationBookingConfirmed NotificationKind = "booking_confirmed" // Doctor confirmed the appointment
	NotificationBookingCancelled NotificationKind = "booking_cancelled"
	NotificationReminder         NotificationKind = "reminder" // Appointment starts within 24h
)

type Notification struct {
	ID            uuid.UUID        `json:"id"`
	UserID        uuid.UUID        `json:"user_id"`
	AppointmentID uuid.UUID        `json:"appointment_id"`
	Kind          NotificationKind `json:"kind"`
	Message       string           `json:"message"`
	ReadAt        *time.Time       `json:"read_at"` // nil until marked read
	CreatedAt     time.Time        `json:"created_at"`
}

package service

import (
	"context"
	"time"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/google/uuid"
)

// Storage interfaces consumed by the services. The pgx repositories under
// internal/repository satisfy them; tests substitute in-memory fakes.

// AvailabilityStore persists doctors' weekly availability entries.
type AvailabilityStore interface {
	Create(ctx context.Context, entry *model.WeeklyAvailability) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.WeeklyAvailability, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, weekday int) ([]*model.WeeklyAvailability, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// AppointmentLedger persists appointments. Create must refuse a write that
// would overlap an occupying appointment for the same doctor and report it
// as model.ErrSlotTaken; this is the authoritative double-booking defense.
type AppointmentLedger interface {
	Create(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
	ListUpcoming(ctx context.Context, from, to time.Time) ([]*model.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) (bool, error)
}

// UserStore persists portal users.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListDoctors(ctx context.Context) ([]*model.User, error)
}

// NotificationStore persists user notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	CreateOnce(ctx context.Context, n *model.Notification) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/carebook/telemed-api/internal/events"
	"github.com/carebook/telemed-api/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService is the only writer of the booking ledger. It accepts a
// patient's slot selection, re-checks it against resolved availability as a
// courtesy, and lets the storage layer's exclusion constraint settle races:
// a write that loses comes back as model.ErrSlotTaken, never as a silent
// double booking.
type BookingService struct {
	ledger        AppointmentLedger
	users         UserStore
	slots         *SlotService
	notifications NotificationStore
	hub           *events.Hub
	logger        *zap.Logger

	now func() time.Time
}

func NewBookingService(
	ledger AppointmentLedger,
	users UserStore,
	slots *SlotService,
	notifications NotificationStore,
	hub *events.Hub,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		ledger:        ledger,
		users:         users,
		slots:         slots,
		notifications: notifications,
		hub:           hub,
		logger:        logger,
		now:           time.Now,
	}
}

// Book creates an appointment with status "scheduled" for the requested
// start time. The slot must lie on the doctor's availability grid and appear
// free; both checks are best-effort only, the database constraint has the
// final word.
func (s *BookingService) Book(ctx context.Context, doctorID, patientID uuid.UUID, startsAt time.Time, reason string) (*model.Appointment, error) {
	doctor, err := s.users.GetByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	if doctor == nil || doctor.Role != model.RoleDoctor {
		return nil, model.ErrNotFound
	}

	patient, err := s.users.GetByID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	if patient == nil || patient.Role != model.RolePatient {
		return nil, model.ErrNotFound
	}

	if !startsAt.After(s.now()) {
		return nil, model.NewValidationError("scheduled_at", "must be in the future")
	}

	daySlots, err := s.slots.DaySlots(ctx, doctorID, startsAt)
	if err != nil {
		return nil, fmt.Errorf("resolve day slots: %w", err)
	}

	requested := model.TimeOfDay(startsAt.Hour()*60 + startsAt.Minute())
	var found, free bool
	for _, slot := range daySlots {
		if slot.Time == requested {
			found, free = true, slot.Available
			break
		}
	}
	if !found {
		return nil, model.NewValidationError("scheduled_at", "outside the doctor's availability")
	}
	if !free {
		return nil, model.ErrSlotTaken
	}

	// Store the grid time itself. Stray seconds in the request would shift
	// the occupied interval onto the next slot.
	startsAt = requested.At(startsAt)

	appt := &model.Appointment{
		DoctorID:        doctorID,
		PatientID:       patientID,
		ScheduledAt:     startsAt,
		DurationMinutes: s.slots.SlotMinutes(),
		Status:          model.AppointmentStatusScheduled,
		Reason:          reason,
	}

	if err := s.ledger.Create(ctx, appt); err != nil {
		// ErrSlotTaken here means another patient won the race after our
		// precheck; the caller refreshes availability and retries.
		return nil, err
	}

	s.logger.Info("Appointment booked",
		zap.String("appointment_id", appt.ID.String()),
		zap.String("doctor_id", doctorID.String()),
		zap.String("patient_id", patientID.String()),
		zap.Time("scheduled_at", startsAt),
	)

	s.notify(ctx, doctorID, appt, model.NotificationBookingCreated,
		fmt.Sprintf("%s requested an appointment on %s", patient.FullName, formatSlot(appt.ScheduledAt)))

	s.hub.Publish(events.AppointmentEvent{
		Type:          events.AppointmentCreated,
		AppointmentID: appt.ID,
		DoctorID:      doctorID,
		Date:          appt.ScheduledAt.Format("2006-01-02"),
		Status:        appt.Status,
		OccurredAt:    s.now(),
	})

	appt.Doctor = doctor
	appt.Patient = patient
	return appt, nil
}

// UpdateStatus moves an appointment through its lifecycle on behalf of the
// acting user. Disallowed transitions return model.ErrInvalidTransition and
// leave the record untouched.
func (s *BookingService) UpdateStatus(ctx context.Context, appointmentID, actorID uuid.UUID, to model.AppointmentStatus) (*model.Appointment, error) {
	if !to.Valid() {
		return nil, model.NewValidationError("status", fmt.Sprintf("unknown status %q", to))
	}

	appt, err := s.ledger.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if appt == nil {
		return nil, model.ErrNotFound
	}

	if err := s.authorizeTransition(appt, actorID, to); err != nil {
		return nil, err
	}

	if !model.CanTransition(appt.Status, to) {
		return nil, model.ErrInvalidTransition
	}

	if to == model.AppointmentStatusNoShow && s.now().Before(appt.ScheduledAt) {
		return nil, model.NewValidationError("status", "no_show is only allowed after the scheduled time")
	}

	from := appt.Status
	updated, err := s.ledger.UpdateStatus(ctx, appointmentID, from, to)
	if err != nil {
		return nil, err
	}
	if !updated {
		// The row changed under us; re-read to report precisely.
		current, err := s.ledger.GetByID(ctx, appointmentID)
		if err != nil {
			return nil, fmt.Errorf("get appointment: %w", err)
		}
		if current == nil {
			return nil, model.ErrNotFound
		}
		return nil, model.ErrInvalidTransition
	}

	appt.Status = to
	appt.UpdatedAt = s.now()

	s.logger.Info("Appointment status updated",
		zap.String("appointment_id", appointmentID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", actorID.String()),
	)

	switch to {
	case model.AppointmentStatusConfirmed:
		s.notify(ctx, appt.PatientID, appt, model.NotificationBookingConfirmed,
			fmt.Sprintf("Your appointment on %s is confirmed", formatSlot(appt.ScheduledAt)))
	case model.AppointmentStatusCancelled:
		recipient := appt.PatientID
		if actorID == appt.PatientID {
			recipient = appt.DoctorID
		}
		s.notify(ctx, recipient, appt, model.NotificationBookingCancelled,
			fmt.Sprintf("The appointment on %s was cancelled", formatSlot(appt.ScheduledAt)))
	}

	s.hub.Publish(events.AppointmentEvent{
		Type:          events.AppointmentStatusChanged,
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
		Date:          appt.ScheduledAt.Format("2006-01-02"),
		Status:        to,
		OccurredAt:    s.now(),
	})

	return appt, nil
}

// GetByID returns an appointment visible to the acting user.
func (s *BookingService) GetByID(ctx context.Context, appointmentID, actorID uuid.UUID) (*model.Appointment, error) {
	appt, err := s.ledger.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if appt == nil {
		return nil, model.ErrNotFound
	}
	if appt.DoctorID != actorID && appt.PatientID != actorID {
		return nil, model.ErrForbidden
	}
	return appt, nil
}

// ListForDoctor returns a doctor's appointments starting in [from, to).
func (s *BookingService) ListForDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	return s.ledger.ListByDoctor(ctx, doctorID, from, to)
}

// ListForPatient returns a patient's appointments, most recent first.
func (s *BookingService) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	return s.ledger.ListByPatient(ctx, patientID)
}

func (s *BookingService) authorizeTransition(appt *model.Appointment, actorID uuid.UUID, to model.AppointmentStatus) error {
	switch actorID {
	case appt.DoctorID:
		return nil
	case appt.PatientID:
		// Patients may only cancel their own appointment.
		if to != model.AppointmentStatusCancelled {
			return model.ErrForbidden
		}
		return nil
	default:
		return model.ErrForbidden
	}
}

// notify records a notification; delivery problems must not fail the booking
// operation that triggered them.
func (s *BookingService) notify(ctx context.Context, userID uuid.UUID, appt *model.Appointment, kind model.NotificationKind, message string) {
	n := &model.Notification{
		UserID:        userID,
		AppointmentID: appt.ID,
		Kind:          kind,
		Message:       message,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.Warn("Failed to create notification",
			zap.Error(err),
			zap.String("appointment_id", appt.ID.String()),
			zap.String("kind", string(kind)),
		)
	}
}

func formatSlot(t time.Time) string {
	return t.Format("Mon, 02 Jan 2006 at 15:04")
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/carebook/telemed-api/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AppointmentRepository struct {
	*base.Repository
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{Repository: base.NewRepository(pool)}
}

const appointmentColumns = `id, doctor_id, patient_id, scheduled_at, duration_minutes, status, reason, created_at, updated_at`

// Create inserts a new appointment. The appointments table carries a gist
// exclusion constraint over (doctor_id, time range) for occupying statuses;
// an insert that would double-book the doctor comes back as
// model.ErrSlotTaken, which is the authoritative answer to booking races.
func (r *AppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}

	query := `
		INSERT INTO appointments (id, doctor_id, patient_id, scheduled_at, duration_minutes, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		appt.ID,
		appt.DoctorID,
		appt.PatientID,
		appt.ScheduledAt,
		appt.DurationMinutes,
		appt.Status,
		appt.Reason,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)

	if err != nil {
		if base.IsConstraintViolation(err) {
			return model.ErrSlotTaken
		}
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

// GetByID returns an appointment by id, or nil when none exists.
func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appt, err := scanAppointment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return appt, nil
}

// ListByDoctor returns a doctor's appointments starting in [from, to),
// ordered by start time.
func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1
		  AND scheduled_at >= $2
		  AND scheduled_at < $3
		ORDER BY scheduled_at
	`

	return r.list(ctx, query, doctorID, from, to)
}

// ListByPatient returns a patient's appointments, most recent first.
func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_id = $1
		ORDER BY scheduled_at DESC
	`

	return r.list(ctx, query, patientID)
}

// ListUpcoming returns appointments in an occupying status starting in
// [from, to). Used by the reminder worker.
func (r *AppointmentRepository) ListUpcoming(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE status = ANY($1)
		  AND scheduled_at >= $2
		  AND scheduled_at < $3
		ORDER BY scheduled_at
	`

	return r.list(ctx, query, statusStrings(model.OccupyingStatuses), from, to)
}

// UpdateStatus moves an appointment from one status to another in a single
// guarded UPDATE. Returns false when the row was missing or no longer in the
// expected status, leaving the caller to re-read and report precisely.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) (bool, error) {
	query := `
		UPDATE appointments
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`

	affected, err := r.ExecAffected(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update appointment status: %w", err)
	}

	return affected > 0, nil
}

func (r *AppointmentRepository) list(ctx context.Context, query string, args ...any) ([]*model.Appointment, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appts []*model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, appt)
	}

	return appts, nil
}

func scanAppointment(row rowScanner) (*model.Appointment, error) {
	var appt model.Appointment
	err := row.Scan(
		&appt.ID,
		&appt.DoctorID,
		&appt.PatientID,
		&appt.ScheduledAt,
		&appt.DurationMinutes,
		&appt.Status,
		&appt.Reason,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func statusStrings(statuses []model.AppointmentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

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

type AvailabilityRepository struct {
	*base.Repository
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{Repository: base.NewRepository(pool)}
}

// Create inserts a weekly availability entry. The schema carries an exclusion
// constraint over (doctor_id, weekday, minute range), so an overlapping entry
// that slipped past the service-level check comes back as model.ErrOverlap.
func (r *AvailabilityRepository) Create(ctx context.Context, entry *model.WeeklyAvailability) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	query := `
		INSERT INTO availability (id, doctor_id, weekday, start_min, end_min)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		entry.ID,
		entry.DoctorID,
		int(entry.Weekday),
		int(entry.StartTime),
		int(entry.EndTime),
	).Scan(&entry.CreatedAt)

	if err != nil {
		if base.IsConstraintViolation(err) {
			return model.ErrOverlap
		}
		return fmt.Errorf("create availability entry: %w", err)
	}

	return nil
}

// GetByID returns an entry by id, or nil when none exists.
func (r *AvailabilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WeeklyAvailability, error) {
	query := `
		SELECT id, doctor_id, weekday, start_min, end_min, created_at
		FROM availability
		WHERE id = $1
	`

	entry, err := scanAvailability(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get availability entry by id: %w", err)
	}

	return entry, nil
}

// ListByDoctor returns a doctor's entries ordered by weekday and start time.
// Pass a negative weekday to list all days.
func (r *AvailabilityRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, weekday int) ([]*model.WeeklyAvailability, error) {
	query := `
		SELECT id, doctor_id, weekday, start_min, end_min, created_at
		FROM availability
		WHERE doctor_id = $1
		  AND ($2 < 0 OR weekday = $2)
		ORDER BY weekday, start_min
	`

	rows, err := r.Query(ctx, query, doctorID, weekday)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	defer rows.Close()

	var entries []*model.WeeklyAvailability
	for rows.Next() {
		entry, err := scanAvailability(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Delete removes an entry by id. Returns false when the id did not exist.
func (r *AvailabilityRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM availability WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete availability entry: %w", err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAvailability(row rowScanner) (*model.WeeklyAvailability, error) {
	var (
		entry              model.WeeklyAvailability
		weekday, start, end int
	)
	err := row.Scan(
		&entry.ID,
		&entry.DoctorID,
		&weekday,
		&start,
		&end,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Weekday = time.Weekday(weekday)
	entry.StartTime = model.TimeOfDay(start)
	entry.EndTime = model.TimeOfDay(end)
	return &entry, nil
}

package service

import (
	"context"
	"fmt"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityService manages doctors' recurring weekly availability, the
// source of truth for when a doctor is willing to see patients.
type AvailabilityService struct {
	store  AvailabilityStore
	users  UserStore
	logger *zap.Logger
}

func NewAvailabilityService(store AvailabilityStore, users UserStore, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		store:  store,
		users:  users,
		logger: logger,
	}
}

// AddEntry creates a weekly availability entry for a doctor. An entry that
// overlaps an existing one for the same doctor and weekday is rejected with
// model.ErrOverlap before any write is attempted; the database exclusion
// constraint backstops the same rule.
func (s *AvailabilityService) AddEntry(ctx context.Context, doctorID uuid.UUID, weekday int, start, end string) (*model.WeeklyAvailability, error) {
	entry, err := model.NewWeeklyAvailability(doctorID, weekday, start, end)
	if err != nil {
		return nil, err
	}

	doctor, err := s.users.GetByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	if doctor == nil || doctor.Role != model.RoleDoctor {
		return nil, model.ErrNotFound
	}

	existing, err := s.store.ListByDoctor(ctx, doctorID, weekday)
	if err != nil {
		return nil, fmt.Errorf("list existing entries: %w", err)
	}
	for _, other := range existing {
		if entry.Overlaps(other) {
			return nil, model.ErrOverlap
		}
	}

	if err := s.store.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Availability entry added",
		zap.String("entry_id", entry.ID.String()),
		zap.String("doctor_id", doctorID.String()),
		zap.Int("weekday", weekday),
		zap.String("start", entry.StartTime.String()),
		zap.String("end", entry.EndTime.String()),
	)

	return entry, nil
}

// RemoveEntry deletes an availability entry owned by the doctor.
func (s *AvailabilityService) RemoveEntry(ctx context.Context, doctorID, entryID uuid.UUID) error {
	entry, err := s.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get availability entry: %w", err)
	}
	if entry == nil {
		return model.ErrNotFound
	}
	if entry.DoctorID != doctorID {
		return model.ErrForbidden
	}

	deleted, err := s.store.Delete(ctx, entryID)
	if err != nil {
		return err
	}
	if !deleted {
		return model.ErrNotFound
	}

	s.logger.Info("Availability entry removed",
		zap.String("entry_id", entryID.String()),
		zap.String("doctor_id", doctorID.String()),
	)

	return nil
}

// ListEntries returns a doctor's availability entries, optionally filtered
// to one weekday. Pass a negative weekday for all days.
func (s *AvailabilityService) ListEntries(ctx context.Context, doctorID uuid.UUID, weekday int) ([]*model.WeeklyAvailability, error) {
	if weekday > 6 {
		return nil, model.NewValidationError("weekday", "must be between 0 (Sunday) and 6 (Saturday)")
	}
	return s.store.ListByDoctor(ctx, doctorID, weekday)
}

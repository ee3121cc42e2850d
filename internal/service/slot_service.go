package service

import (
	"context"
	"fmt"
	"time"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/carebook/telemed-api/internal/schedule"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotService resolves a doctor's bookable slots for concrete dates by
// combining weekly availability with the appointments already on the books.
// It performs no writes; callers re-run it freely after any change.
type SlotService struct {
	availability AvailabilityStore
	ledger       AppointmentLedger
	slotMinutes  int
	logger       *zap.Logger
}

func NewSlotService(availability AvailabilityStore, ledger AppointmentLedger, slotMinutes int, logger *zap.Logger) *SlotService {
	if slotMinutes <= 0 {
		slotMinutes = schedule.DefaultSlotMinutes
	}
	return &SlotService{
		availability: availability,
		ledger:       ledger,
		slotMinutes:  slotMinutes,
		logger:       logger,
	}
}

// SlotMinutes returns the configured consultation length.
func (s *SlotService) SlotMinutes() int {
	return s.slotMinutes
}

// DaySlots returns the resolved slot list for one doctor and date.
// A doctor with no availability configured for that weekday gets an empty
// list; no fallback slots are offered.
func (s *SlotService) DaySlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]model.TimeSlot, error) {
	entries, err := s.availability.ListByDoctor(ctx, doctorID, int(date.Weekday()))
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	appts, err := s.ledger.ListByDoctor(ctx, doctorID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return schedule.Day(entries, appts, date, s.slotMinutes), nil
}

// BookableDays reports, for each day in [from, from+weeks*7), whether the
// doctor still has at least one free slot. Days whose slots are all booked
// are reported as not bookable rather than merely "has a schedule".
func (s *SlotService) BookableDays(ctx context.Context, doctorID uuid.UUID, from time.Time, weeks int) ([]model.DayAvailability, error) {
	if weeks <= 0 {
		weeks = 4
	}

	entries, err := s.availability.ListByDoctor(ctx, doctorID, -1)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := start.AddDate(0, 0, weeks*7)

	appts, err := s.ledger.ListByDoctor(ctx, doctorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	days := make([]model.DayAvailability, 0, weeks*7)
	for date := start; date.Before(end); date = date.AddDate(0, 0, 1) {
		slots := schedule.Day(entries, appts, date, s.slotMinutes)
		free := schedule.FreeCount(slots)
		days = append(days, model.DayAvailability{
			Date:      date.Format("2006-01-02"),
			Bookable:  free > 0,
			FreeSlots: free,
		})
	}

	return days, nil
}

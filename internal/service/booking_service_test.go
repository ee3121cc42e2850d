package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/carebook/telemed-api/internal/events"
	"github.com/carebook/telemed-api/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bookingFixture struct {
	users         *fakeUsers
	availability  *fakeAvailability
	ledger        *fakeLedger
	notifications *fakeNotifications
	hub           *events.Hub
	slots         *SlotService
	booking       *BookingService

	doctorID  uuid.UUID
	patientID uuid.UUID
}

// Clock frozen at Monday 2026-01-05 08:00 UTC.
var testNow = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	logger := zap.NewNop()

	f := &bookingFixture{
		users:         newFakeUsers(),
		availability:  newFakeAvailability(),
		ledger:        newFakeLedger(),
		notifications: newFakeNotifications(),
		hub:           events.NewHub(logger),
	}

	f.doctorID = f.users.addDoctor("Dr. Adams")
	f.patientID = f.users.addPatient("Pat Doe")

	// Monday 09:00-11:00.
	entry, err := model.NewWeeklyAvailability(f.doctorID, 1, "09:00", "11:00")
	require.NoError(t, err)
	require.NoError(t, f.availability.Create(context.Background(), entry))

	f.slots = NewSlotService(f.availability, f.ledger, 30, logger)
	f.booking = NewBookingService(f.ledger, f.users, f.slots, f.notifications, f.hub, logger)
	f.booking.now = func() time.Time { return testNow }

	return f
}

func (f *bookingFixture) mondaySlot(hhmm string) time.Time {
	tod, _ := model.ParseTimeOfDay(hhmm)
	return tod.At(testNow)
}

func TestBook_CreatesScheduledAppointment(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	appt, err := f.booking.Book(ctx, f.doctorID, f.patientID, f.mondaySlot("09:30"), "checkup")
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusScheduled, appt.Status)
	assert.Equal(t, 30, appt.DurationMinutes)
	assert.Equal(t, f.doctorID, appt.DoctorID)
	assert.Equal(t, f.patientID, appt.PatientID)
	assert.NotEqual(t, uuid.Nil, appt.ID)

	// The doctor is notified about the new request.
	notes, err := f.notifications.ListByUser(ctx, f.doctorID, false)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationBookingCreated, notes[0].Kind)

	// The booked slot now resolves as unavailable.
	slots, err := f.slots.DaySlots(ctx, f.doctorID, testNow)
	require.NoError(t, err)
	for _, s := range slots {
		if s.Time.String() == "09:30" {
			assert.False(t, s.Available)
		}
	}
}

func TestBook_PublishesChangeEvent(t *testing.T) {
	f := newBookingFixture(t)

	ch, cancel := f.hub.Subscribe(f.doctorID)
	defer cancel()

	_, err := f.booking.Book(context.Background(), f.doctorID, f.patientID, f.mondaySlot("09:00"), "")
	require.NoError(t, err)

	select {
	case ev := <-ch:
		assert.Equal(t, events.AppointmentCreated, ev.Type)
		assert.Equal(t, f.doctorID, ev.DoctorID)
		assert.Equal(t, "2026-01-05", ev.Date)
	default:
		t.Fatal("expected an appointment event")
	}
}

func TestBook_RejectsSlotOffTheGrid(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	cases := []string{"08:30", "09:15", "11:00", "12:00"}
	for _, hhmm := range cases {
		_, err := f.booking.Book(ctx, f.doctorID, f.patientID, f.mondaySlot(hhmm), "")
		require.Error(t, err, "slot %s is off the availability grid", hhmm)
		assert.True(t, model.IsValidation(err), "slot %s: expected validation error, got %v", hhmm, err)
	}
}

func TestBook_AnchorsStraySecondsToTheSlot(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	appt, err := f.booking.Book(ctx, f.doctorID, f.patientID, f.mondaySlot("09:30").Add(45*time.Second), "")
	require.NoError(t, err)
	assert.True(t, appt.ScheduledAt.Equal(f.mondaySlot("09:30")),
		"stored time %s must be the grid slot", appt.ScheduledAt)

	// The stored interval ends exactly at 10:00, so the next slot stays
	// bookable instead of phantom-conflicting.
	_, err = f.booking.Book(ctx, f.doctorID, f.patientID, f.mondaySlot("10:00"), "")
	require.NoError(t, err)
}

func TestBook_RejectsPastSlot(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.booking.Book(context.Background(), f.doctorID, f.patientID, testNow.AddDate(0, 0, -7).Add(9*time.Hour+30*time.Minute), "")
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestBook_TakenSlotReturnsConflict(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.booking.Book(ctx, f.doctorID, f.patientID, f.mondaySlot("10:00"), "")
	require.NoError(t, err)

	otherPatient := f.users.addPatient("Second Patient")
	_, err = f.booking.Book(ctx, f.doctorID, otherPatient, f.mondaySlot("10:00"), "")
	assert.ErrorIs(t, err, model.ErrSlotTaken)
}

func TestBook_UnknownParties(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.booking.Book(ctx, uuid.New(), f.patientID, f.mondaySlot("09:00"), "")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.booking.Book(ctx, f.doctorID, uuid.New(), f.mondaySlot("09:00"), "")
	assert.ErrorIs(t, err, model.ErrNotFound)

	// A doctor cannot book as the patient.
	_, err = f.booking.Book(ctx, f.doctorID, f.doctorID, f.mondaySlot("09:00"), "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

// Two patients race for the same slot: exactly one wins, the other gets the
// conflict outcome that tells the UI to refresh availability.
func TestBook_ConcurrentBookingOneWinner(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	secondPatient := f.users.addPatient("Second Patient")
	slot := f.mondaySlot("09:30")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, patientID := range []uuid.UUID{f.patientID, secondPatient} {
		wg.Add(1)
		go func(i int, patientID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.booking.Book(ctx, f.doctorID, patientID, slot, "")
		}(i, patientID)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, model.ErrSlotTaken):
			conflicts++
		}
	}
	assert.Equal(t, 1, successes, "exactly one booking must win")
	assert.Equal(t, 1, conflicts, "the loser must see the conflict outcome")

	appts, err := f.ledger.ListByDoctor(ctx, f.doctorID, testNow, testNow.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

func TestUpdateStatus_DoctorLifecycle(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	appt, err := f.booking.Book(ctx, f.doctorID, f.patientID, f.mondaySlot("10:30"), "")
	require.NoError(t, err)

	confirmed, err := f.booking.UpdateStatus(ctx, appt.ID, f.doctorID, model.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, confirmed.Status)

	// The patient hears about the confirmation.
	notes, err := f.notifications.ListByUser(ctx, f.patientID, false)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, model.NotificationBookingConfirmed, notes[0].Kind)

	started, err := f.booking.UpdateStatus(ctx, appt.ID, f.doctorID, model.AppointmentStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInProgress, started.Status)

	done, err := f.booking.UpdateStatus(ctx, appt.ID, f.doctorID, model.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, done.Status)
}

func TestUpdateStatus_TerminalStateIsFinal(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	appt, err := f.booking.Book(ctx, f.doctorID, f.patientID, f.mondaySlot("09:00"), "")
	require.NoError(t, err)

	for _, to := range []model.AppointmentStatus{
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusInProgress,
		model.AppointmentStatusCompleted,
	} {
		_, err = f.booking.UpdateStatus(ctx, appt.ID, f.doctorID, to)
		require.NoError(t, err)
	}

	_, err = f.booking.UpdateStatus(ctx, appt.ID, f.doctorID, model.AppointmentStatusConfirmed)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	// The record stays completed.
	current, err := f.ledger.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, current.Status)
}

func TestUpdateStatus_PatientMayOnlyCancel(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	appt, err := f.booking.Book(ctx, f.doctorID, f.patientID, f.mondaySlot("09:00"), "")
	require.NoError(t, err)

	_, err = f.booking.UpdateStatus(ctx, appt.ID, f.patientID, model.AppointmentStatusConfirmed)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.booking.UpdateStatus(ctx, appt.ID, uuid.New(), model.AppointmentStatusCancelled)
	assert.ErrorIs(t, err, model.ErrForbidden)

	cancelled, err := f.booking.UpdateStatus(ctx, appt.ID, f.patientID, model.AppointmentStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)

	// Cancelling frees the slot for the next patient.
	otherPatient := f.users.addPatient("Second Patient")
	_, err = f.booking.Book(ctx, f.doctorID, otherPatient, f.mondaySlot("09:00"), "")
	assert.NoError(t, err)
}

func TestUpdateStatus_NoShowOnlyAfterStart(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	appt, err := f.booking.Book(ctx, f.doctorID, f.patientID, f.mondaySlot("10:00"), "")
	require.NoError(t, err)

	// 08:00, the appointment has not started yet.
	_, err = f.booking.UpdateStatus(ctx, appt.ID, f.doctorID, model.AppointmentStatusNoShow)
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))

	f.booking.now = func() time.Time { return testNow.Add(3 * time.Hour) }
	marked, err := f.booking.UpdateStatus(ctx, appt.ID, f.doctorID, model.AppointmentStatusNoShow)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusNoShow, marked.Status)
}

func TestUpdateStatus_UnknownStatusAndAppointment(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	appt, err := f.booking.Book(ctx, f.doctorID, f.patientID, f.mondaySlot("09:00"), "")
	require.NoError(t, err)

	_, err = f.booking.UpdateStatus(ctx, appt.ID, f.doctorID, "postponed")
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))

	_, err = f.booking.UpdateStatus(ctx, uuid.New(), f.doctorID, model.AppointmentStatusConfirmed)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGetByID_VisibilityRules(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	appt, err := f.booking.Book(ctx, f.doctorID, f.patientID, f.mondaySlot("09:00"), "")
	require.NoError(t, err)

	_, err = f.booking.GetByID(ctx, appt.ID, f.doctorID)
	assert.NoError(t, err)

	_, err = f.booking.GetByID(ctx, appt.ID, f.patientID)
	assert.NoError(t, err)

	_, err = f.booking.GetByID(ctx, appt.ID, uuid.New())
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.booking.GetByID(ctx, uuid.New(), f.doctorID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carebook/telemed-api/internal/model"
	"github.com/google/uuid"
)

// In-memory stores mirroring the behavior of the pgx repositories, including
// the conflict rules the database constraints enforce.

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUsers) ListDoctors(_ context.Context) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var doctors []*model.User
	for _, user := range f.users {
		if user.Role == model.RoleDoctor {
			cp := *user
			doctors = append(doctors, &cp)
		}
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].FullName < doctors[j].FullName })
	return doctors, nil
}

func (f *fakeUsers) addDoctor(name string) uuid.UUID {
	user := &model.User{Role: model.RoleDoctor, FullName: name, Email: name + "@clinic.test"}
	_ = f.Create(context.Background(), user)
	return user.ID
}

func (f *fakeUsers) addPatient(name string) uuid.UUID {
	user := &model.User{Role: model.RolePatient, FullName: name, Email: name + "@mail.test"}
	_ = f.Create(context.Background(), user)
	return user.ID
}

type fakeAvailability struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*model.WeeklyAvailability
}

func newFakeAvailability() *fakeAvailability {
	return &fakeAvailability{entries: make(map[uuid.UUID]*model.WeeklyAvailability)}
}

func (f *fakeAvailability) Create(_ context.Context, entry *model.WeeklyAvailability) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.entries {
		if entry.Overlaps(other) {
			return model.ErrOverlap
		}
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	cp := *entry
	f.entries[entry.ID] = &cp
	return nil
}

func (f *fakeAvailability) GetByID(_ context.Context, id uuid.UUID) (*model.WeeklyAvailability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (f *fakeAvailability) ListByDoctor(_ context.Context, doctorID uuid.UUID, weekday int) ([]*model.WeeklyAvailability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.WeeklyAvailability
	for _, entry := range f.entries {
		if entry.DoctorID != doctorID {
			continue
		}
		if weekday >= 0 && int(entry.Weekday) != weekday {
			continue
		}
		cp := *entry
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weekday != out[j].Weekday {
			return out[i].Weekday < out[j].Weekday
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (f *fakeAvailability) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[id]; !ok {
		return false, nil
	}
	delete(f.entries, id)
	return true, nil
}

// fakeLedger enforces the same no-overlap rule as the appointments table's
// exclusion constraint: the check and the insert happen under one lock, so
// concurrent bookings of the same slot see exactly one winner.
type fakeLedger struct {
	mu    sync.Mutex
	appts map[uuid.UUID]*model.Appointment
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{appts: make(map[uuid.UUID]*model.Appointment)}
}

func (f *fakeLedger) Create(_ context.Context, appt *model.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if appt.Status.Occupying() {
		for _, other := range f.appts {
			if other.Status.Occupying() && appt.Overlaps(other) {
				return model.ErrSlotTaken
			}
		}
	}

	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = appt.CreatedAt
	cp := *appt
	f.appts[appt.ID] = &cp
	return nil
}

func (f *fakeLedger) GetByID(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.appts[id]
	if !ok {
		return nil, nil
	}
	cp := *appt
	return &cp, nil
}

func (f *fakeLedger) ListByDoctor(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, appt := range f.appts {
		if appt.DoctorID != doctorID {
			continue
		}
		if appt.ScheduledAt.Before(from) || !appt.ScheduledAt.Before(to) {
			continue
		}
		cp := *appt
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (f *fakeLedger) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, appt := range f.appts {
		if appt.PatientID == patientID {
			cp := *appt
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].ScheduledAt.Before(out[i].ScheduledAt) })
	return out, nil
}

func (f *fakeLedger) ListUpcoming(_ context.Context, from, to time.Time) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, appt := range f.appts {
		if !appt.Status.Occupying() {
			continue
		}
		if appt.ScheduledAt.Before(from) || !appt.ScheduledAt.Before(to) {
			continue
		}
		cp := *appt
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (f *fakeLedger) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.AppointmentStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.appts[id]
	if !ok || appt.Status != from {
		return false, nil
	}
	appt.Status = to
	appt.UpdatedAt = time.Now()
	return true, nil
}

type noteKey struct {
	user uuid.UUID
	appt uuid.UUID
	kind model.NotificationKind
}

type fakeNotifications struct {
	mu    sync.Mutex
	notes []*model.Notification
	seen  map[noteKey]bool
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{seen: make(map[noteKey]bool)}
}

func (f *fakeNotifications) Create(_ context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insert(n)
	return nil
}

func (f *fakeNotifications) CreateOnce(_ context.Context, n *model.Notification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := noteKey{user: n.UserID, appt: n.AppointmentID, kind: n.Kind}
	if f.seen[key] {
		return false, nil
	}
	f.insert(n)
	return true, nil
}

func (f *fakeNotifications) insert(n *model.Notification) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	cp := *n
	f.notes = append(f.notes, &cp)
	f.seen[noteKey{user: n.UserID, appt: n.AppointmentID, kind: n.Kind}] = true
}

func (f *fakeNotifications) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Notification
	for i := len(f.notes) - 1; i >= 0; i-- {
		n := f.notes[i]
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notes {
		if n.ID == id && n.UserID == userID && n.ReadAt == nil {
			now := time.Now()
			n.ReadAt = &now
			return true, nil
		}
	}
	return false, nil
}

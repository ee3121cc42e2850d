// Package schedule derives bookable time slots from a doctor's weekly
// availability and the appointments already on the books. Everything here is
// pure: no I/O, no clock reads, and malformed input produces an empty result
// rather than an error, so callers always have something renderable.
package schedule

import (
	"sort"
	"time"

	"github.com/carebook/telemed-api/internal/model"
)

// DefaultSlotMinutes is the consultation length used across the portal.
const DefaultSlotMinutes = 30

// Slots expands the availability entries matching date's weekday into an
// ascending list of candidate slot start times, stepping by slotMinutes.
// A slot is emitted only if [start, start+slotMinutes) fits entirely inside
// its interval; a trailing partial interval is dropped.
func Slots(entries []*model.WeeklyAvailability, date time.Time, slotMinutes int) []model.TimeOfDay {
	if slotMinutes <= 0 {
		slotMinutes = DefaultSlotMinutes
	}

	step := model.TimeOfDay(slotMinutes)
	var out []model.TimeOfDay
	for _, entry := range entries {
		if entry == nil || entry.Weekday != date.Weekday() {
			continue
		}
		if entry.StartTime >= entry.EndTime {
			continue
		}
		for t := entry.StartTime; t+step <= entry.EndTime; t += step {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return dedupe(out)
}

// Resolve marks each candidate slot as available or not against the occupying
// appointments on date. A slot is taken when its start equals the start time
// of an appointment whose status still blocks the slot. Resolve performs no
// writes and is idempotent, so it is safe to re-run after every change.
func Resolve(candidates []model.TimeOfDay, appointments []*model.Appointment, date time.Time) []model.TimeSlot {
	taken := make(map[model.TimeOfDay]bool, len(appointments))
	for _, appt := range appointments {
		if appt == nil || !appt.Status.Occupying() {
			continue
		}
		start := appt.ScheduledAt.In(date.Location())
		if !sameDay(start, date) {
			continue
		}
		taken[model.TimeOfDay(start.Hour()*60+start.Minute())] = true
	}

	slots := make([]model.TimeSlot, 0, len(candidates))
	for _, t := range candidates {
		slots = append(slots, model.TimeSlot{Time: t, Available: !taken[t]})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })
	return slots
}

// Day is a convenience combining Slots and Resolve for one doctor-date.
func Day(entries []*model.WeeklyAvailability, appointments []*model.Appointment, date time.Time, slotMinutes int) []model.TimeSlot {
	return Resolve(Slots(entries, date, slotMinutes), appointments, date)
}

// FreeCount returns how many of the resolved slots are still available.
func FreeCount(slots []model.TimeSlot) int {
	n := 0
	for _, s := range slots {
		if s.Available {
			n++
		}
	}
	return n
}

func dedupe(sorted []model.TimeOfDay) []model.TimeOfDay {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, t := range sorted[1:] {
		if t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

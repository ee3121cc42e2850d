package model

// TimeSlot is a bookable slot for one doctor on one date. Slots are derived
// on demand from weekly availability and existing appointments; they are
// never persisted.
type TimeSlot struct {
	Time      TimeOfDay `json:"time"`
	Available bool      `json:"available"`
}

// DayAvailability summarizes one calendar day for the booking calendar.
// A day is bookable only while it still has at least one free slot.
type DayAvailability struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Bookable  bool   `json:"bookable"`
	FreeSlots int    `json:"free_slots"`
}

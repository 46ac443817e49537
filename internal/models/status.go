package models

import "fmt"

// Status reasons surfaced to callers. The wording is part of the API
// contract consumed by the dashboard front-end.
const (
	ReasonOutsideClassHours = "Outside class hours"
	ReasonManualOverride    = "Manual override"
	ReasonNoScheduledClass  = "No scheduled classes"
	DefaultReservationLabel = "Reserved"
)

// StatusInfo is the result of resolving a room's effective status for one
// slot/weekday/date key.
type StatusInfo struct {
	Status   RoomStatus `json:"status"`
	Reason   string     `json:"reason"`
	Faculty  string     `json:"faculty,omitempty"`
	BookedBy string     `json:"booked_by,omitempty"`
}

// TimeContext carries the resolved (slot, weekday, date) triple for one
// logical request so every lookup within it sees the same instant. A nil
// SlotID means no slot is active ("outside class hours").
type TimeContext struct {
	SlotID  *int   `json:"slot_id"`
	Weekday string `json:"weekday"`
	Date    string `json:"date"`
}

// ConflictType discriminates what kind of booking blocks a prospective
// reservation.
type ConflictType string

const (
	ConflictTimetable   ConflictType = "timetable"
	ConflictReservation ConflictType = "reservation"
)

// ConflictResult is the advisory outcome of a conflict check. It is a data
// condition, not an error: callers must inspect HasConflict.
type ConflictResult struct {
	HasConflict bool         `json:"has_conflict"`
	Type        ConflictType `json:"type,omitempty"`
	Details     string       `json:"details,omitempty"`
}

// NewTimetableConflict builds the conflict result for a recurring class.
func NewTimetableConflict(entry TimetableEntry) ConflictResult {
	return ConflictResult{
		HasConflict: true,
		Type:        ConflictTimetable,
		Details:     fmt.Sprintf("Regular class: %s by %s", entry.Subject, entry.Faculty),
	}
}

// NewReservationConflict builds the conflict result for an existing booking.
func NewReservationConflict(res Reservation) ConflictResult {
	return ConflictResult{
		HasConflict: true,
		Type:        ConflictReservation,
		Details:     fmt.Sprintf("Already reserved: %s by %s", res.Purpose, res.BookedBy),
	}
}

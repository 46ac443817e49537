package models

import "time"

// TimetableEntry is a recurring weekly class assignment for a room/slot/day.
// Uniqueness of (room, slot, day) is not enforced at write time; lookups use
// first-match with a deterministic order.
type TimetableEntry struct {
	ID        string    `db:"id" json:"id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	SlotID    int       `db:"slot_id" json:"slot_id"`
	Day       string    `db:"day" json:"day"`
	Subject   string    `db:"subject" json:"subject"`
	Faculty   string    `db:"faculty" json:"faculty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TimetableEntryDetail joins the slot columns for schedule views.
type TimetableEntryDetail struct {
	TimetableEntry
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	SlotLabel string `db:"slot_label" json:"slot_label"`
}

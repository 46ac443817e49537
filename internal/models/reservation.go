package models

import "time"

// Reservation is a one-off booking for a room/slot/date. There is no update
// operation: cancel and recreate instead.
type Reservation struct {
	ID        string    `db:"id" json:"id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	SlotID    int       `db:"slot_id" json:"slot_id"`
	Date      string    `db:"date" json:"date"`
	Purpose   string    `db:"purpose" json:"purpose"`
	BookedBy  string    `db:"booked_by" json:"booked_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReservationDetail joins slot and room columns for listing views.
type ReservationDetail struct {
	Reservation
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	SlotLabel string `db:"slot_label" json:"slot_label"`
	Block     string `db:"block" json:"block"`
	Floor     int    `db:"floor" json:"floor"`
	Capacity  int    `db:"capacity" json:"capacity"`
}

// ReservationFilter describes query params for listing reservations.
type ReservationFilter struct {
	RoomID   string
	Date     string
	FromDate string
	Page     int
	PageSize int
}

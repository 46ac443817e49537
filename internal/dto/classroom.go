package dto

import (
	"time"

	"github.com/campusops/classtrack-api/internal/models"
)

// RoomListQuery captures dashboard listing parameters. SlotID and Date pin
// resolution to an explicit key instead of "now"; the remaining fields are
// post-resolution filters composed by logical AND.
type RoomListQuery struct {
	SlotID      *int
	Date        string
	Block       string
	Floor       *int
	MinCapacity int
	Status      string
	Search      string
}

// RoomWithStatus attaches resolved status fields to a classroom record.
type RoomWithStatus struct {
	models.Classroom
	CurrentStatus models.RoomStatus `json:"current_status"`
	StatusReason  string            `json:"status_reason"`
	StatusDetails models.StatusInfo `json:"status_details"`
}

// RoomStats aggregates status counts over the filtered room set.
type RoomStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Occupied  int `json:"occupied"`
	Reserved  int `json:"reserved"`
}

// RoomListResponse is the dashboard listing payload.
type RoomListResponse struct {
	Rooms   []RoomWithStatus `json:"rooms"`
	Stats   RoomStats        `json:"stats"`
	Slot    *models.TimeSlot `json:"current_slot"`
	Weekday string           `json:"current_day"`
	Date    string           `json:"date"`
}

// RoomDetailResponse describes one room with its schedule for today.
type RoomDetailResponse struct {
	RoomWithStatus
	CurrentSlot       *models.TimeSlot              `json:"current_slot"`
	TodaySchedule     []models.TimetableEntryDetail `json:"today_schedule"`
	TodayReservations []models.ReservationDetail    `json:"today_reservations"`
}

// OverrideRequest sets a manual status override on a room. ExpiresIn is
// expressed in minutes; zero means the override holds until cleared.
type OverrideRequest struct {
	Status    string `json:"status" validate:"required"`
	ExpiresIn int    `json:"expires_in" validate:"gte=0"`
}

// OverrideResponse reports the applied override.
type OverrideResponse struct {
	Status    models.RoomStatus `json:"status"`
	ExpiresAt *time.Time        `json:"expires_at,omitempty"`
}

// SlotAvailability marks whether one slot is bookable for a room/date.
type SlotAvailability struct {
	models.TimeSlot
	IsAvailable   bool              `json:"is_available"`
	StatusDetails models.StatusInfo `json:"status_details"`
}

package dto

import "github.com/campusops/classtrack-api/internal/models"

// CurrentSlotResponse reports the active slot, if any, for the campus
// timezone's current wall-clock time.
type CurrentSlotResponse struct {
	CurrentSlot  *models.TimeSlot `json:"current_slot"`
	CurrentTime  string           `json:"current_time"`
	CurrentDay   string           `json:"current_day"`
	IsClassHours bool             `json:"is_class_hours"`
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/classtrack-api/internal/dto"
	"github.com/campusops/classtrack-api/internal/models"
	"github.com/campusops/classtrack-api/pkg/response"
)

type timeSlotLister interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
}

type clockService interface {
	TimeOfDay() string
	WeekdayName() string
	ActiveSlot(ctx context.Context) (*models.TimeSlot, error)
}

// TimeSlotHandler serves the period table and the current-time probe.
type TimeSlotHandler struct {
	slots timeSlotLister
	clock clockService
}

// NewTimeSlotHandler constructs the handler.
func NewTimeSlotHandler(slots timeSlotLister, clock clockService) *TimeSlotHandler {
	return &TimeSlotHandler{slots: slots, clock: clock}
}

// List godoc
// @Summary List time slots
// @Tags TimeSlots
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /slots [get]
func (h *TimeSlotHandler) List(c *gin.Context) {
	slots, err := h.slots.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Current godoc
// @Summary Current slot for the campus clock
// @Description Active slot, if any, plus the campus time and weekday
// @Tags TimeSlots
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /slots/current [get]
func (h *TimeSlotHandler) Current(c *gin.Context) {
	slot, err := h.clock.ActiveSlot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CurrentSlotResponse{
		CurrentSlot:  slot,
		CurrentTime:  h.clock.TimeOfDay(),
		CurrentDay:   h.clock.WeekdayName(),
		IsClassHours: slot != nil,
	}, nil)
}

package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusops/classtrack-api/internal/models"
	"github.com/campusops/classtrack-api/internal/service"
	appErrors "github.com/campusops/classtrack-api/pkg/errors"
	"github.com/campusops/classtrack-api/pkg/response"
)

type exportService interface {
	ReservationsCSV(ctx context.Context, filter models.ReservationFilter) (*service.ExportFile, error)
	RoomSchedulePDF(ctx context.Context, roomID, day string) (*service.ExportFile, error)
}

type weekdayClock interface {
	WeekdayName() string
}

// ExportHandler streams rendered CSV and PDF documents.
type ExportHandler struct {
	service exportService
	clock   weekdayClock
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService, clock weekdayClock) *ExportHandler {
	return &ExportHandler{service: svc, clock: clock}
}

// Reservations godoc
// @Summary Download reservations as CSV
// @Tags Exports
// @Produce text/csv
// @Security BearerAuth
// @Param room_id query string false "Filter by room"
// @Param date query string false "Filter by exact date (YYYY-MM-DD)"
// @Param from query string false "Only this date and later (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /exports/reservations [get]
func (h *ExportHandler) Reservations(c *gin.Context) {
	filter := models.ReservationFilter{
		RoomID:   strings.TrimSpace(c.Query("room_id")),
		Date:     strings.TrimSpace(c.Query("date")),
		FromDate: strings.TrimSpace(c.Query("from")),
	}

	file, err := h.service.ReservationsCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// RoomSchedule godoc
// @Summary Download a room's day schedule as PDF
// @Tags Exports
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param day query string false "Weekday name. Defaults to today"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /exports/rooms/{id}/schedule [get]
func (h *ExportHandler) RoomSchedule(c *gin.Context) {
	day := strings.TrimSpace(c.Query("day"))
	if day == "" {
		if h.clock == nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day is required"))
			return
		}
		day = h.clock.WeekdayName()
	}

	file, err := h.service.RoomSchedulePDF(c.Request.Context(), c.Param("id"), day)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

func serveFile(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusops/classtrack-api/internal/dto"
	"github.com/campusops/classtrack-api/internal/models"
	appErrors "github.com/campusops/classtrack-api/pkg/errors"
	"github.com/campusops/classtrack-api/pkg/response"
)

type reservationService interface {
	List(ctx context.Context, filter models.ReservationFilter, upcoming bool) ([]models.ReservationDetail, *models.Pagination, error)
	Create(ctx context.Context, req dto.CreateReservationRequest) (*models.Reservation, *models.ConflictResult, error)
	Delete(ctx context.Context, id string) error
}

type conflictChecker interface {
	CheckConflict(ctx context.Context, roomID string, slotID int, date string) (models.ConflictResult, error)
}

// ReservationHandler exposes reservation booking endpoints.
type ReservationHandler struct {
	service  reservationService
	conflict conflictChecker
}

// NewReservationHandler constructs the handler.
func NewReservationHandler(svc reservationService, conflict conflictChecker) *ReservationHandler {
	return &ReservationHandler{service: svc, conflict: conflict}
}

// List godoc
// @Summary List reservations
// @Tags Reservations
// @Produce json
// @Param room_id query string false "Filter by room"
// @Param date query string false "Filter by exact date (YYYY-MM-DD)"
// @Param upcoming query bool false "Only today and later"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	filter := models.ReservationFilter{
		RoomID: strings.TrimSpace(c.Query("room_id")),
		Date:   strings.TrimSpace(c.Query("date")),
	}
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "page must be a positive integer"))
			return
		}
		filter.Page = page
	}
	if raw := strings.TrimSpace(c.Query("page_size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "page_size must be a positive integer"))
			return
		}
		filter.PageSize = size
	}
	upcoming := strings.EqualFold(strings.TrimSpace(c.Query("upcoming")), "true")

	rows, pagination, err := h.service.List(c.Request.Context(), filter, upcoming)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Create godoc
// @Summary Book a room
// @Description Create a reservation; a scheduling clash returns 409 with conflict details
// @Tags Reservations
// @Accept json
// @Produce json
// @Param payload body dto.CreateReservationRequest true "Reservation payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reservation payload"))
		return
	}

	created, conflict, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if conflict != nil {
		// The clash is reported as data, not as an error envelope.
		response.JSON(c, http.StatusConflict, conflict, nil)
		return
	}
	response.Created(c, created)
}

// Check godoc
// @Summary Check a booking for conflicts
// @Description Dry-run the conflict check without creating anything
// @Tags Reservations
// @Produce json
// @Param room_id query string true "Room ID"
// @Param slot_id query int true "Slot ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reservations/check [get]
func (h *ReservationHandler) Check(c *gin.Context) {
	roomID := strings.TrimSpace(c.Query("room_id"))
	if roomID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "room_id is required"))
		return
	}
	slotID, err := strconv.Atoi(strings.TrimSpace(c.Query("slot_id")))
	if err != nil || slotID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "slot_id must be a positive integer"))
		return
	}
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}

	result, err := h.conflict.CheckConflict(c.Request.Context(), roomID, slotID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Cancel a reservation
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reservations/{id} [delete]
func (h *ReservationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

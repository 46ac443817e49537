package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusops/classtrack-api/internal/dto"
	"github.com/campusops/classtrack-api/internal/middleware"
	appErrors "github.com/campusops/classtrack-api/pkg/errors"
	"github.com/campusops/classtrack-api/pkg/response"
)

type roomListingService interface {
	ListRoomsWithStatus(ctx context.Context, q dto.RoomListQuery) (*dto.RoomListResponse, bool, error)
	AvailableSlots(ctx context.Context, roomID, date string) ([]dto.SlotAvailability, error)
}

type roomDetailService interface {
	Get(ctx context.Context, roomID string) (*dto.RoomDetailResponse, error)
	SetOverride(ctx context.Context, roomID string, req dto.OverrideRequest) (*dto.OverrideResponse, error)
	ClearOverride(ctx context.Context, roomID string) error
}

// ClassroomHandler exposes the room dashboard and override console endpoints.
type ClassroomHandler struct {
	listing roomListingService
	rooms   roomDetailService
}

// NewClassroomHandler constructs the handler.
func NewClassroomHandler(listing roomListingService, rooms roomDetailService) *ClassroomHandler {
	return &ClassroomHandler{listing: listing, rooms: rooms}
}

// List godoc
// @Summary List classrooms with resolved status
// @Description Resolve every room's status for one time context and filter the result
// @Tags Classrooms
// @Produce json
// @Param slot_id query int false "Pin resolution to a slot instead of the current time"
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Param block query string false "Filter by block"
// @Param floor query int false "Filter by floor"
// @Param min_capacity query int false "Minimum seat count"
// @Param status query string false "Filter by resolved status"
// @Param search query string false "Room ID substring match"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /rooms [get]
func (h *ClassroomHandler) List(c *gin.Context) {
	var q dto.RoomListQuery

	if raw := strings.TrimSpace(c.Query("slot_id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "slot_id must be a positive integer"))
			return
		}
		q.SlotID = &id
	}
	q.Date = strings.TrimSpace(c.Query("date"))
	q.Block = strings.TrimSpace(c.Query("block"))
	if raw := strings.TrimSpace(c.Query("floor")); raw != "" {
		floor, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "floor must be an integer"))
			return
		}
		q.Floor = &floor
	}
	if raw := strings.TrimSpace(c.Query("min_capacity")); raw != "" {
		capacity, err := strconv.Atoi(raw)
		if err != nil || capacity < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "min_capacity must be a non-negative integer"))
			return
		}
		q.MinCapacity = capacity
	}
	q.Status = strings.TrimSpace(c.Query("status"))
	q.Search = strings.TrimSpace(c.Query("search"))

	res, cacheHit, err := h.listing.ListRoomsWithStatus(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, res, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get one classroom
// @Description Room record with current status, today's schedule and reservations
// @Tags Classrooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *ClassroomHandler) Get(c *gin.Context) {
	res, err := h.rooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// AvailableSlots godoc
// @Summary List slot availability for a room
// @Description Per-slot availability for one room on one date
// @Tags Classrooms
// @Produce json
// @Param id path string true "Room ID"
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rooms/{id}/slots [get]
func (h *ClassroomHandler) AvailableSlots(c *gin.Context) {
	slots, err := h.listing.AvailableSlots(c.Request.Context(), c.Param("id"), strings.TrimSpace(c.Query("date")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// SetOverride godoc
// @Summary Set a manual status override
// @Description Force a room's status; expires_in minutes, zero means until cleared
// @Tags Classrooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param payload body dto.OverrideRequest true "Override payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rooms/{id}/override [put]
func (h *ClassroomHandler) SetOverride(c *gin.Context) {
	var req dto.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid override payload"))
		return
	}

	res, err := h.rooms.SetOverride(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// ClearOverride godoc
// @Summary Clear a manual status override
// @Tags Classrooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rooms/{id}/override [delete]
func (h *ClassroomHandler) ClearOverride(c *gin.Context) {
	if err := h.rooms.ClearOverride(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

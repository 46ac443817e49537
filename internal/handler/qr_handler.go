package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/campusops/classtrack-api/internal/models"
	appErrors "github.com/campusops/classtrack-api/pkg/errors"
	"github.com/campusops/classtrack-api/pkg/response"
)

type qrRoomFinder interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
}

// QRHandler renders per-room QR codes pointing at the room status page.
// Codes are meant to be printed and stuck next to the door.
type QRHandler struct {
	rooms   qrRoomFinder
	baseURL string
}

// NewQRHandler constructs the handler.
func NewQRHandler(rooms qrRoomFinder, baseURL string) *QRHandler {
	return &QRHandler{rooms: rooms, baseURL: strings.TrimRight(baseURL, "/")}
}

// Room godoc
// @Summary QR code for a room's status page
// @Tags Classrooms
// @Produce image/png
// @Param id path string true "Room ID"
// @Param download query bool false "Set attachment disposition"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /rooms/{id}/qr [get]
func (h *QRHandler) Room(c *gin.Context) {
	roomID := c.Param("id")
	room, err := h.rooms.FindByID(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "classroom not found"))
			return
		}
		response.Error(c, err)
		return
	}

	target := fmt.Sprintf("%s/rooms/%s", h.baseURL, room.ID)
	png, err := qrcode.Encode(target, qrcode.Medium, 512)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render qr code"))
		return
	}

	if strings.EqualFold(c.Query("download"), "true") {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("room_%s_qr.png", room.ID)))
	}
	c.Data(http.StatusOK, "image/png", png)
}

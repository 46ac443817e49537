package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/classtrack-api/internal/dto"
	"github.com/campusops/classtrack-api/internal/models"
	appErrors "github.com/campusops/classtrack-api/pkg/errors"
)

type classroomAdminStore interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	SetOverride(ctx context.Context, id string, status models.RoomStatus, expiresAt *time.Time) error
	ClearOverride(ctx context.Context, id string) error
}

type roomStatusResolver interface {
	ResolveCurrent(ctx context.Context, roomID string) (*models.StatusInfo, error)
}

type scheduleLister interface {
	ListForRoomDay(ctx context.Context, roomID, day string) ([]models.TimetableEntryDetail, error)
}

type roomReservationLister interface {
	ListForRoomDate(ctx context.Context, roomID, date string) ([]models.ReservationDetail, error)
}

type timeInfoProvider interface {
	WeekdayName() string
	DateString() string
	ActiveSlot(ctx context.Context) (*models.TimeSlot, error)
}

// ClassroomService serves room detail views and the admin override console.
type ClassroomService struct {
	rooms        classroomAdminStore
	status       roomStatusResolver
	timetable    scheduleLister
	reservations roomReservationLister
	timeCtx      timeInfoProvider
	validator    *validator.Validate
	cache        *CacheService
	logger       *zap.Logger
	now          func() time.Time
}

// ClassroomServiceParams groups constructor dependencies.
type ClassroomServiceParams struct {
	Rooms        classroomAdminStore
	Status       roomStatusResolver
	Timetable    scheduleLister
	Reservations roomReservationLister
	TimeContext  timeInfoProvider
	Validator    *validator.Validate
	Cache        *CacheService
	Logger       *zap.Logger
}

// NewClassroomService constructs a ClassroomService.
func NewClassroomService(params ClassroomServiceParams) *ClassroomService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{
		rooms:        params.Rooms,
		status:       params.Status,
		timetable:    params.Timetable,
		reservations: params.Reservations,
		timeCtx:      params.TimeContext,
		validator:    validate,
		cache:        params.Cache,
		logger:       logger,
		now:          time.Now,
	}
}

// Get returns one room with its current status and today's schedule.
func (s *ClassroomService) Get(ctx context.Context, roomID string) (*dto.RoomDetailResponse, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, fmt.Errorf("load classroom %s: %w", roomID, err)
	}

	info, err := s.status.ResolveCurrent(ctx, roomID)
	if err != nil {
		return nil, err
	}

	slot, err := s.timeCtx.ActiveSlot(ctx)
	if err != nil {
		return nil, err
	}

	schedule, err := s.timetable.ListForRoomDay(ctx, roomID, s.timeCtx.WeekdayName())
	if err != nil {
		return nil, err
	}

	reservations, err := s.reservations.ListForRoomDate(ctx, roomID, s.timeCtx.DateString())
	if err != nil {
		return nil, err
	}

	return &dto.RoomDetailResponse{
		RoomWithStatus: dto.RoomWithStatus{
			Classroom:     *room,
			CurrentStatus: info.Status,
			StatusReason:  info.Reason,
			StatusDetails: *info,
		},
		CurrentSlot:       slot,
		TodaySchedule:     schedule,
		TodayReservations: reservations,
	}, nil
}

// SetOverride applies a manual status override. The status value is checked
// against the enum before any state is mutated.
func (s *ClassroomService) SetOverride(ctx context.Context, roomID string, req dto.OverrideRequest) (*dto.OverrideResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override payload")
	}

	status := models.RoomStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "status must be one of available, occupied, reserved")
	}

	var expiresAt *time.Time
	if req.ExpiresIn > 0 {
		t := s.now().UTC().Add(time.Duration(req.ExpiresIn) * time.Minute)
		expiresAt = &t
	}

	if err := s.rooms.SetOverride(ctx, roomID, status, expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, "rooms:list:*"); err != nil {
		s.logger.Warn("failed to invalidate room listing cache", zap.Error(err))
	}

	s.logger.Info("status override set",
		zap.String("room_id", roomID),
		zap.String("status", string(status)),
		zap.Timep("expires_at", expiresAt))
	return &dto.OverrideResponse{Status: status, ExpiresAt: expiresAt}, nil
}

// ClearOverride removes a room's manual override.
func (s *ClassroomService) ClearOverride(ctx context.Context, roomID string) error {
	if err := s.rooms.ClearOverride(ctx, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return err
	}

	if err := s.cache.Invalidate(ctx, "rooms:list:*"); err != nil {
		s.logger.Warn("failed to invalidate room listing cache", zap.Error(err))
	}

	s.logger.Info("status override cleared", zap.String("room_id", roomID))
	return nil
}

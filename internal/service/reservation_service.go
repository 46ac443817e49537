package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/classtrack-api/internal/dto"
	"github.com/campusops/classtrack-api/internal/models"
	appErrors "github.com/campusops/classtrack-api/pkg/errors"
)

type reservationStore interface {
	List(ctx context.Context, filter models.ReservationFilter) ([]models.ReservationDetail, int, error)
	CreateIfFree(ctx context.Context, res *models.Reservation, weekday string) (*models.ConflictResult, error)
	Delete(ctx context.Context, id string) error
}

type roomFinder interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
}

type todayProvider interface {
	DateString() string
}

// ReservationService handles the booking lifecycle: list, conflict-checked
// create, and cancel.
type ReservationService struct {
	repo      reservationStore
	rooms     roomFinder
	timeCtx   todayProvider
	validator *validator.Validate
	cache     *CacheService
	logger    *zap.Logger
}

// NewReservationService constructs a ReservationService.
func NewReservationService(repo reservationStore, rooms roomFinder, timeCtx todayProvider, validate *validator.Validate, cache *CacheService, logger *zap.Logger) *ReservationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{repo: repo, rooms: rooms, timeCtx: timeCtx, validator: validate, cache: cache, logger: logger}
}

// List returns reservations with pagination metadata. With upcoming set, only
// bookings from today onward are returned.
func (s *ReservationService) List(ctx context.Context, filter models.ReservationFilter, upcoming bool) ([]models.ReservationDetail, *models.Pagination, error) {
	if upcoming {
		filter.FromDate = s.timeCtx.DateString()
	}
	reservations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	return reservations, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create books a room after the transactional conflict check passes. A
// returned conflict result means nothing was inserted; it is a data outcome,
// not an error.
func (s *ReservationService) Create(ctx context.Context, req dto.CreateReservationRequest) (*models.Reservation, *models.ConflictResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reservation payload")
	}

	weekday, err := WeekdayOf(req.Date)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, nil, fmt.Errorf("load classroom %s: %w", req.RoomID, err)
	}

	bookedBy := req.BookedBy
	if bookedBy == "" {
		bookedBy = "Anonymous"
	}

	res := &models.Reservation{
		RoomID:   req.RoomID,
		SlotID:   req.SlotID,
		Date:     req.Date,
		Purpose:  req.Purpose,
		BookedBy: bookedBy,
	}

	conflict, err := s.repo.CreateIfFree(ctx, res, weekday)
	if err != nil {
		return nil, nil, err
	}
	if conflict != nil {
		return nil, conflict, nil
	}

	if err := s.cache.Invalidate(ctx, "rooms:list:*"); err != nil {
		s.logger.Warn("failed to invalidate room listing cache", zap.Error(err))
	}

	s.logger.Info("reservation created",
		zap.String("room_id", res.RoomID),
		zap.Int("slot_id", res.SlotID),
		zap.String("date", res.Date))
	return res, nil, nil
}

// Delete cancels a reservation by id.
func (s *ReservationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return err
	}

	if err := s.cache.Invalidate(ctx, "rooms:list:*"); err != nil {
		s.logger.Warn("failed to invalidate room listing cache", zap.Error(err))
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusops/classtrack-api/internal/dto"
	"github.com/campusops/classtrack-api/internal/models"
	appErrors "github.com/campusops/classtrack-api/pkg/errors"
)

type classroomStore interface {
	List(ctx context.Context) ([]models.Classroom, error)
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	ClearOverrideIfExpired(ctx context.Context, id string, now time.Time) (bool, error)
}

type timetableFinder interface {
	FindFirst(ctx context.Context, roomID string, slotID int, day string) (*models.TimetableEntry, error)
}

type reservationFinder interface {
	FindFirst(ctx context.Context, roomID string, slotID int, date string) (*models.Reservation, error)
}

type slotStore interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id int) (*models.TimeSlot, error)
}

type contextResolver interface {
	Resolve(ctx context.Context, slotID *int, date string) (models.TimeContext, error)
}

// StatusServiceParams groups constructor dependencies.
type StatusServiceParams struct {
	Rooms        classroomStore
	Timetable    timetableFinder
	Reservations reservationFinder
	Slots        slotStore
	TimeContext  contextResolver
	Cache        *CacheService
	Logger       *zap.Logger
	CacheTTL     time.Duration
}

// StatusService applies the precedence rule that decides a room's effective
// status: override dominates reservation, which dominates the timetable,
// which dominates the available default.
type StatusService struct {
	rooms        classroomStore
	timetable    timetableFinder
	reservations reservationFinder
	slots        slotStore
	timeCtx      contextResolver
	cache        *CacheService
	logger       *zap.Logger
	now          func() time.Time
	cacheTTL     time.Duration
}

// NewStatusService constructs a StatusService with sane defaults.
func NewStatusService(params StatusServiceParams) *StatusService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatusService{
		rooms:        params.Rooms,
		timetable:    params.Timetable,
		reservations: params.Reservations,
		slots:        params.Slots,
		timeCtx:      params.TimeContext,
		cache:        params.Cache,
		logger:       logger,
		now:          time.Now,
		cacheTTL:     ttl,
	}
}

// Resolve computes the effective status of one room for the given context.
func (s *StatusService) Resolve(ctx context.Context, roomID string, tc models.TimeContext) (*models.StatusInfo, error) {
	// Overrides deliberately do not apply outside class hours: the lookup
	// order below mirrors the precedence contract.
	if tc.SlotID == nil {
		return &models.StatusInfo{Status: models.StatusAvailable, Reason: models.ReasonOutsideClassHours}, nil
	}

	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, fmt.Errorf("load classroom %s: %w", roomID, err)
	}

	return s.resolveLoaded(ctx, room, tc)
}

// ResolveCurrent resolves a room's status against "now".
func (s *StatusService) ResolveCurrent(ctx context.Context, roomID string) (*models.StatusInfo, error) {
	tc, err := s.timeCtx.Resolve(ctx, nil, "")
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, roomID, tc)
}

func (s *StatusService) resolveLoaded(ctx context.Context, room *models.Classroom, tc models.TimeContext) (*models.StatusInfo, error) {
	if tc.SlotID == nil {
		return &models.StatusInfo{Status: models.StatusAvailable, Reason: models.ReasonOutsideClassHours}, nil
	}

	if ov := room.Override(); ov != nil {
		if ov.ActiveAt(s.now()) {
			return &models.StatusInfo{Status: ov.Status, Reason: models.ReasonManualOverride}, nil
		}
		// Lazy expiry: the guard inside the UPDATE keeps this safe against a
		// concurrent override write.
		if _, err := s.rooms.ClearOverrideIfExpired(ctx, room.ID, s.now()); err != nil {
			s.logger.Warn("failed to clear expired override", zap.String("room_id", room.ID), zap.Error(err))
		}
	}

	res, err := s.reservations.FindFirst(ctx, room.ID, *tc.SlotID, tc.Date)
	if err != nil {
		return nil, err
	}
	if res != nil {
		reason := res.Purpose
		if reason == "" {
			reason = models.DefaultReservationLabel
		}
		return &models.StatusInfo{Status: models.StatusReserved, Reason: reason, BookedBy: res.BookedBy}, nil
	}

	entry, err := s.timetable.FindFirst(ctx, room.ID, *tc.SlotID, tc.Weekday)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return &models.StatusInfo{Status: models.StatusOccupied, Reason: entry.Subject, Faculty: entry.Faculty}, nil
	}

	return &models.StatusInfo{Status: models.StatusAvailable, Reason: models.ReasonNoScheduledClass}, nil
}

// ListRoomsWithStatus resolves the time context once, applies the resolver
// to every room, then filters and aggregates for the dashboard. The boolean
// reports whether the resolved set came from cache.
func (s *StatusService) ListRoomsWithStatus(ctx context.Context, q dto.RoomListQuery) (*dto.RoomListResponse, bool, error) {
	tc, err := s.timeCtx.Resolve(ctx, q.SlotID, q.Date)
	if err != nil {
		return nil, false, err
	}

	resolved, cacheHit, err := s.resolveAll(ctx, tc)
	if err != nil {
		return nil, false, err
	}

	rooms := filterRooms(resolved, q)

	stats := dto.RoomStats{Total: len(rooms)}
	for _, room := range rooms {
		switch room.CurrentStatus {
		case models.StatusAvailable:
			stats.Available++
		case models.StatusOccupied:
			stats.Occupied++
		case models.StatusReserved:
			stats.Reserved++
		}
	}

	var slot *models.TimeSlot
	if tc.SlotID != nil {
		slot, err = s.slots.FindByID(ctx, *tc.SlotID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("load slot %d: %w", *tc.SlotID, err)
		}
	}

	return &dto.RoomListResponse{
		Rooms:   rooms,
		Stats:   stats,
		Slot:    slot,
		Weekday: tc.Weekday,
		Date:    tc.Date,
	}, cacheHit, nil
}

func (s *StatusService) resolveAll(ctx context.Context, tc models.TimeContext) ([]dto.RoomWithStatus, bool, error) {
	key := roomListCacheKey(tc)
	var cached []dto.RoomWithStatus
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, true, nil
	}

	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, false, err
	}

	out := make([]dto.RoomWithStatus, 0, len(rooms))
	for i := range rooms {
		info, err := s.resolveLoaded(ctx, &rooms[i], tc)
		if err != nil {
			return nil, false, err
		}
		out = append(out, dto.RoomWithStatus{
			Classroom:     rooms[i],
			CurrentStatus: info.Status,
			StatusReason:  info.Reason,
			StatusDetails: *info,
		})
	}

	if err := s.cache.Set(ctx, key, out, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache room listing", zap.Error(err))
	}
	return out, false, nil
}

// AvailableSlots resolves every slot for one room/date, marking which are
// bookable.
func (s *StatusService) AvailableSlots(ctx context.Context, roomID, date string) ([]dto.SlotAvailability, error) {
	weekday, err := WeekdayOf(date)
	if err != nil {
		return nil, err
	}

	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, fmt.Errorf("load classroom %s: %w", roomID, err)
	}

	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		slotID := slot.ID
		info, err := s.resolveLoaded(ctx, room, models.TimeContext{SlotID: &slotID, Weekday: weekday, Date: date})
		if err != nil {
			return nil, err
		}
		out = append(out, dto.SlotAvailability{
			TimeSlot:      slot,
			IsAvailable:   info.Status == models.StatusAvailable,
			StatusDetails: *info,
		})
	}
	return out, nil
}

// CheckConflict reports whether a timetable entry or reservation already
// occupies (room, slot, date). It is advisory: the reservation insert re-runs
// the same checks transactionally.
func (s *StatusService) CheckConflict(ctx context.Context, roomID string, slotID int, date string) (models.ConflictResult, error) {
	weekday, err := WeekdayOf(date)
	if err != nil {
		return models.ConflictResult{}, err
	}

	entry, err := s.timetable.FindFirst(ctx, roomID, slotID, weekday)
	if err != nil {
		return models.ConflictResult{}, err
	}
	if entry != nil {
		return models.NewTimetableConflict(*entry), nil
	}

	res, err := s.reservations.FindFirst(ctx, roomID, slotID, date)
	if err != nil {
		return models.ConflictResult{}, err
	}
	if res != nil {
		return models.NewReservationConflict(*res), nil
	}

	return models.ConflictResult{}, nil
}

func roomListCacheKey(tc models.TimeContext) string {
	slot := "none"
	if tc.SlotID != nil {
		slot = strconv.Itoa(*tc.SlotID)
	}
	return fmt.Sprintf("rooms:list:%s:%s", slot, tc.Date)
}

func filterRooms(rooms []dto.RoomWithStatus, q dto.RoomListQuery) []dto.RoomWithStatus {
	out := make([]dto.RoomWithStatus, 0, len(rooms))
	search := strings.ToLower(q.Search)
	for _, room := range rooms {
		if q.Block != "" && room.Block != q.Block {
			continue
		}
		if q.Floor != nil && room.Floor != *q.Floor {
			continue
		}
		if q.MinCapacity > 0 && room.Capacity < q.MinCapacity {
			continue
		}
		if q.Status != "" && string(room.CurrentStatus) != q.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(room.ID), search) {
			continue
		}
		out = append(out, room)
	}
	return out
}

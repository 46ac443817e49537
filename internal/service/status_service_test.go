package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusops/classtrack-api/internal/dto"
	"github.com/campusops/classtrack-api/internal/models"
)

type fakeRoomStore struct {
	rooms        map[string]*models.Classroom
	clearedLazy  []string
	clearErr     error
	listOverride []models.Classroom
}

func (f *fakeRoomStore) List(context.Context) ([]models.Classroom, error) {
	if f.listOverride != nil {
		return f.listOverride, nil
	}
	out := make([]models.Classroom, 0, len(f.rooms))
	for _, r := range f.rooms {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRoomStore) FindByID(_ context.Context, id string) (*models.Classroom, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *room
	return &clone, nil
}

func (f *fakeRoomStore) ClearOverrideIfExpired(_ context.Context, id string, _ time.Time) (bool, error) {
	if f.clearErr != nil {
		return false, f.clearErr
	}
	f.clearedLazy = append(f.clearedLazy, id)
	if room, ok := f.rooms[id]; ok {
		room.OverrideStatus = nil
		room.OverrideExpires = nil
	}
	return true, nil
}

type fakeTimetable struct {
	entries map[string]*models.TimetableEntry
}

func timetableKey(roomID string, slotID int, day string) string {
	return fmt.Sprintf("%s|%s|%d", roomID, day, slotID)
}

func (f *fakeTimetable) FindFirst(_ context.Context, roomID string, slotID int, day string) (*models.TimetableEntry, error) {
	return f.entries[timetableKey(roomID, slotID, day)], nil
}

type fakeReservations struct {
	reservations map[string]*models.Reservation
}

func reservationKey(roomID string, slotID int, date string) string {
	return fmt.Sprintf("%s|%s|%d", roomID, date, slotID)
}

func (f *fakeReservations) FindFirst(_ context.Context, roomID string, slotID int, date string) (*models.Reservation, error) {
	return f.reservations[reservationKey(roomID, slotID, date)], nil
}

type fakeSlotStore struct {
	slots []models.TimeSlot
}

func (f *fakeSlotStore) List(context.Context) ([]models.TimeSlot, error) {
	return f.slots, nil
}

func (f *fakeSlotStore) FindByID(_ context.Context, id int) (*models.TimeSlot, error) {
	for i := range f.slots {
		if f.slots[i].ID == id {
			return &f.slots[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeResolver struct {
	tc models.TimeContext
}

func (f *fakeResolver) Resolve(context.Context, *int, string) (models.TimeContext, error) {
	return f.tc, nil
}

func intPtr(v int) *int { return &v }

func statusPtr(s models.RoomStatus) *models.RoomStatus { return &s }

func defaultSlots() []models.TimeSlot {
	return []models.TimeSlot{
		{ID: 5, StartTime: "13:00", EndTime: "14:00", Label: "Period 5"},
		{ID: 6, StartTime: "14:00", EndTime: "15:00", Label: "Period 6"},
	}
}

func newStatusFixture(rooms *fakeRoomStore, tt *fakeTimetable, res *fakeReservations, tc models.TimeContext) *StatusService {
	if tt == nil {
		tt = &fakeTimetable{entries: map[string]*models.TimetableEntry{}}
	}
	if res == nil {
		res = &fakeReservations{reservations: map[string]*models.Reservation{}}
	}
	svc := NewStatusService(StatusServiceParams{
		Rooms:        rooms,
		Timetable:    tt,
		Reservations: res,
		Slots:        &fakeSlotStore{slots: defaultSlots()},
		TimeContext:  &fakeResolver{tc: tc},
		Logger:       zap.NewNop(),
	})
	svc.now = func() time.Time {
		return time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC) // Monday, inside slot 6
	}
	return svc
}

func TestStatusResolvePrecedence(t *testing.T) {
	tc := models.TimeContext{SlotID: intPtr(6), Weekday: "Monday", Date: "2025-03-10"}
	farFuture := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	rooms := &fakeRoomStore{rooms: map[string]*models.Classroom{
		"A101": {ID: "A101", Block: "A", Floor: 1, Capacity: 50,
			OverrideStatus: statusPtr(models.StatusOccupied), OverrideExpires: &farFuture},
	}}
	tt := &fakeTimetable{entries: map[string]*models.TimetableEntry{
		timetableKey("A101", 6, "Monday"): {RoomID: "A101", SlotID: 6, Day: "Monday", Subject: "Physics", Faculty: "Dr. Smith"},
	}}
	res := &fakeReservations{reservations: map[string]*models.Reservation{
		reservationKey("A101", 6, "2025-03-10"): {RoomID: "A101", SlotID: 6, Date: "2025-03-10", Purpose: "Faculty Meeting", BookedBy: "Admin Office"},
	}}

	svc := newStatusFixture(rooms, tt, res, tc)
	ctx := context.Background()

	// All three layers present: the override wins.
	info, err := svc.Resolve(ctx, "A101", tc)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOccupied, info.Status)
	assert.Equal(t, models.ReasonManualOverride, info.Reason)

	// Remove the override: the reservation wins over the timetable.
	rooms.rooms["A101"].OverrideStatus = nil
	rooms.rooms["A101"].OverrideExpires = nil
	info, err = svc.Resolve(ctx, "A101", tc)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReserved, info.Status)
	assert.Equal(t, "Faculty Meeting", info.Reason)
	assert.Equal(t, "Admin Office", info.BookedBy)

	// Remove the reservation: the timetable entry holds.
	delete(res.reservations, reservationKey("A101", 6, "2025-03-10"))
	info, err = svc.Resolve(ctx, "A101", tc)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOccupied, info.Status)
	assert.Equal(t, "Physics", info.Reason)
	assert.Equal(t, "Dr. Smith", info.Faculty)

	// Nothing left: available by default.
	delete(tt.entries, timetableKey("A101", 6, "Monday"))
	info, err = svc.Resolve(ctx, "A101", tc)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, info.Status)
	assert.Equal(t, models.ReasonNoScheduledClass, info.Reason)
}

func TestStatusResolveOutsideClassHoursIgnoresOverride(t *testing.T) {
	farFuture := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	rooms := &fakeRoomStore{rooms: map[string]*models.Classroom{
		"B202": {ID: "B202", Block: "B", Floor: 2,
			OverrideStatus: statusPtr(models.StatusReserved), OverrideExpires: &farFuture},
	}}
	tc := models.TimeContext{SlotID: nil, Weekday: "Monday", Date: "2025-03-10"}
	svc := newStatusFixture(rooms, nil, nil, tc)

	info, err := svc.Resolve(context.Background(), "B202", tc)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, info.Status)
	assert.Equal(t, models.ReasonOutsideClassHours, info.Reason)
}

func TestStatusResolveExpiredOverrideFallsThrough(t *testing.T) {
	expired := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC) // before the fixed clock
	rooms := &fakeRoomStore{rooms: map[string]*models.Classroom{
		"C101": {ID: "C101", Block: "C", Floor: 1,
			OverrideStatus: statusPtr(models.StatusOccupied), OverrideExpires: &expired},
	}}
	tc := models.TimeContext{SlotID: intPtr(6), Weekday: "Monday", Date: "2025-03-10"}
	svc := newStatusFixture(rooms, nil, nil, tc)

	info, err := svc.Resolve(context.Background(), "C101", tc)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, info.Status)
	assert.Equal(t, models.ReasonNoScheduledClass, info.Reason)
	assert.Equal(t, []string{"C101"}, rooms.clearedLazy, "expired override should be lazily cleared")
}

func TestStatusResolveOverrideExpiryIsExactInstant(t *testing.T) {
	// Expiry equal to "now" means the override is already gone.
	exact := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	rooms := &fakeRoomStore{rooms: map[string]*models.Classroom{
		"C102": {ID: "C102", Block: "C", Floor: 1,
			OverrideStatus: statusPtr(models.StatusReserved), OverrideExpires: &exact},
	}}
	tc := models.TimeContext{SlotID: intPtr(6), Weekday: "Monday", Date: "2025-03-10"}
	svc := newStatusFixture(rooms, nil, nil, tc)

	info, err := svc.Resolve(context.Background(), "C102", tc)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, info.Status)
}

func TestStatusResolveReservationWithoutPurpose(t *testing.T) {
	rooms := &fakeRoomStore{rooms: map[string]*models.Classroom{
		"D001": {ID: "D001", Block: "D", Floor: 0},
	}}
	res := &fakeReservations{reservations: map[string]*models.Reservation{
		reservationKey("D001", 6, "2025-03-10"): {RoomID: "D001", SlotID: 6, Date: "2025-03-10", BookedBy: "Dr. Smith"},
	}}
	tc := models.TimeContext{SlotID: intPtr(6), Weekday: "Monday", Date: "2025-03-10"}
	svc := newStatusFixture(rooms, nil, res, tc)

	info, err := svc.Resolve(context.Background(), "D001", tc)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReserved, info.Status)
	assert.Equal(t, models.DefaultReservationLabel, info.Reason)
}

func TestStatusResolveUnknownRoom(t *testing.T) {
	rooms := &fakeRoomStore{rooms: map[string]*models.Classroom{}}
	tc := models.TimeContext{SlotID: intPtr(6), Weekday: "Monday", Date: "2025-03-10"}
	svc := newStatusFixture(rooms, nil, nil, tc)

	_, err := svc.Resolve(context.Background(), "Z999", tc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classroom not found")
}

func TestCheckConflictMatchesResolver(t *testing.T) {
	tc := models.TimeContext{SlotID: intPtr(6), Weekday: "Monday", Date: "2025-03-10"}
	rooms := &fakeRoomStore{rooms: map[string]*models.Classroom{
		"A101": {ID: "A101", Block: "A", Floor: 1},
	}}
	tt := &fakeTimetable{entries: map[string]*models.TimetableEntry{
		timetableKey("A101", 6, "Monday"): {RoomID: "A101", SlotID: 6, Day: "Monday", Subject: "Physics", Faculty: "Dr. Smith"},
	}}
	svc := newStatusFixture(rooms, tt, nil, tc)
	ctx := context.Background()

	result, err := svc.CheckConflict(ctx, "A101", 6, "2025-03-10")
	require.NoError(t, err)
	assert.True(t, result.HasConflict)
	assert.Equal(t, models.ConflictTimetable, result.Type)
	assert.Equal(t, "Regular class: Physics by Dr. Smith", result.Details)

	// The resolver must agree that the room is not available.
	info, err := svc.Resolve(ctx, "A101", tc)
	require.NoError(t, err)
	assert.NotEqual(t, models.StatusAvailable, info.Status)

	// Free slot: no conflict, and the resolver reports available.
	result, err = svc.CheckConflict(ctx, "A101", 5, "2025-03-10")
	require.NoError(t, err)
	assert.False(t, result.HasConflict)

	tc5 := models.TimeContext{SlotID: intPtr(5), Weekday: "Monday", Date: "2025-03-10"}
	info, err = svc.Resolve(ctx, "A101", tc5)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, info.Status)
}

func TestCheckConflictReservationDetails(t *testing.T) {
	tc := models.TimeContext{SlotID: intPtr(6), Weekday: "Monday", Date: "2025-03-10"}
	rooms := &fakeRoomStore{rooms: map[string]*models.Classroom{"A101": {ID: "A101"}}}
	res := &fakeReservations{reservations: map[string]*models.Reservation{
		reservationKey("A101", 6, "2025-03-10"): {RoomID: "A101", SlotID: 6, Date: "2025-03-10", Purpose: "Faculty Meeting", BookedBy: "Admin Office"},
	}}
	svc := newStatusFixture(rooms, nil, res, tc)

	result, err := svc.CheckConflict(context.Background(), "A101", 6, "2025-03-10")
	require.NoError(t, err)
	assert.True(t, result.HasConflict)
	assert.Equal(t, models.ConflictReservation, result.Type)
	assert.Equal(t, "Already reserved: Faculty Meeting by Admin Office", result.Details)
}

func TestCheckConflictInvalidDate(t *testing.T) {
	tc := models.TimeContext{SlotID: intPtr(6), Weekday: "Monday", Date: "2025-03-10"}
	svc := newStatusFixture(&fakeRoomStore{rooms: map[string]*models.Classroom{}}, nil, nil, tc)

	_, err := svc.CheckConflict(context.Background(), "A101", 6, "10-03-2025")
	require.Error(t, err)
}

func TestListRoomsWithStatusFiltersAndStats(t *testing.T) {
	tc := models.TimeContext{SlotID: intPtr(6), Weekday: "Monday", Date: "2025-03-10"}
	rooms := &fakeRoomStore{
		listOverride: []models.Classroom{
			{ID: "A101", Block: "A", Floor: 1, Capacity: 50},
			{ID: "A102", Block: "A", Floor: 1, Capacity: 30},
			{ID: "B201", Block: "B", Floor: 2, Capacity: 70},
		},
		rooms: map[string]*models.Classroom{},
	}
	tt := &fakeTimetable{entries: map[string]*models.TimetableEntry{
		timetableKey("A102", 6, "Monday"): {RoomID: "A102", SlotID: 6, Day: "Monday", Subject: "Networks", Faculty: "Prof. Moore"},
	}}
	svc := newStatusFixture(rooms, tt, nil, tc)
	ctx := context.Background()

	res, cacheHit, err := svc.ListRoomsWithStatus(ctx, dto.RoomListQuery{})
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 3, res.Stats.Total)
	assert.Equal(t, 2, res.Stats.Available)
	assert.Equal(t, 1, res.Stats.Occupied)
	assert.Equal(t, "Monday", res.Weekday)
	assert.Equal(t, "2025-03-10", res.Date)
	require.NotNil(t, res.Slot)
	assert.Equal(t, 6, res.Slot.ID)

	// Block filter.
	res, _, err = svc.ListRoomsWithStatus(ctx, dto.RoomListQuery{Block: "B"})
	require.NoError(t, err)
	require.Len(t, res.Rooms, 1)
	assert.Equal(t, "B201", res.Rooms[0].ID)

	// Capacity and status filters compose.
	res, _, err = svc.ListRoomsWithStatus(ctx, dto.RoomListQuery{MinCapacity: 40, Status: "available"})
	require.NoError(t, err)
	require.Len(t, res.Rooms, 2)

	// Case-insensitive search on the room id.
	res, _, err = svc.ListRoomsWithStatus(ctx, dto.RoomListQuery{Search: "a10"})
	require.NoError(t, err)
	assert.Len(t, res.Rooms, 2)
}

func TestAvailableSlots(t *testing.T) {
	tc := models.TimeContext{SlotID: intPtr(6), Weekday: "Monday", Date: "2025-03-10"}
	rooms := &fakeRoomStore{rooms: map[string]*models.Classroom{
		"A101": {ID: "A101", Block: "A", Floor: 1},
	}}
	tt := &fakeTimetable{entries: map[string]*models.TimetableEntry{
		timetableKey("A101", 5, "Monday"): {RoomID: "A101", SlotID: 5, Day: "Monday", Subject: "Algorithms", Faculty: "Dr. Davis"},
	}}
	svc := newStatusFixture(rooms, tt, nil, tc)

	slots, err := svc.AvailableSlots(context.Background(), "A101", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.False(t, slots[0].IsAvailable)
	assert.Equal(t, models.StatusOccupied, slots[0].StatusDetails.Status)
	assert.True(t, slots[1].IsAvailable)
}

func TestAvailableSlotsUnknownRoom(t *testing.T) {
	tc := models.TimeContext{SlotID: intPtr(6), Weekday: "Monday", Date: "2025-03-10"}
	svc := newStatusFixture(&fakeRoomStore{rooms: map[string]*models.Classroom{}}, nil, nil, tc)

	_, err := svc.AvailableSlots(context.Background(), "Z999", "2025-03-10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classroom not found")
}

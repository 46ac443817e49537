package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusops/classtrack-api/internal/dto"
	"github.com/campusops/classtrack-api/internal/models"
	appErrors "github.com/campusops/classtrack-api/pkg/errors"
)

type fakeReservationStore struct {
	listed      []models.ReservationDetail
	total       int
	gotFilter   models.ReservationFilter
	conflict    *models.ConflictResult
	created     *models.Reservation
	gotWeekday  string
	deleteErr   error
	deletedID   string
	createErr   error
	listErr     error
}

func (f *fakeReservationStore) List(_ context.Context, filter models.ReservationFilter) ([]models.ReservationDetail, int, error) {
	f.gotFilter = filter
	return f.listed, f.total, f.listErr
}

func (f *fakeReservationStore) CreateIfFree(_ context.Context, res *models.Reservation, weekday string) (*models.ConflictResult, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.conflict != nil {
		return f.conflict, nil
	}
	f.created = res
	f.gotWeekday = weekday
	return nil, nil
}

func (f *fakeReservationStore) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

type fakeRoomFinder struct {
	known map[string]bool
}

func (f *fakeRoomFinder) FindByID(_ context.Context, id string) (*models.Classroom, error) {
	if !f.known[id] {
		return nil, sql.ErrNoRows
	}
	return &models.Classroom{ID: id}, nil
}

type fixedToday struct{ date string }

func (f fixedToday) DateString() string { return f.date }

func newReservationFixture(store *fakeReservationStore, rooms *fakeRoomFinder) *ReservationService {
	if rooms == nil {
		rooms = &fakeRoomFinder{known: map[string]bool{"A101": true}}
	}
	return NewReservationService(store, rooms, fixedToday{date: "2025-03-10"}, nil, nil, zap.NewNop())
}

func TestReservationCreateHappyPath(t *testing.T) {
	store := &fakeReservationStore{}
	svc := newReservationFixture(store, nil)

	created, conflict, err := svc.Create(context.Background(), dto.CreateReservationRequest{
		RoomID:   "A101",
		SlotID:   6,
		Date:     "2025-03-10",
		Purpose:  "Faculty Meeting",
		BookedBy: "Admin Office",
	})
	require.NoError(t, err)
	assert.Nil(t, conflict)
	require.NotNil(t, created)
	assert.Equal(t, "A101", created.RoomID)
	assert.Equal(t, "Monday", store.gotWeekday)
	assert.Equal(t, "Admin Office", created.BookedBy)
}

func TestReservationCreateDefaultsBookedBy(t *testing.T) {
	store := &fakeReservationStore{}
	svc := newReservationFixture(store, nil)

	created, _, err := svc.Create(context.Background(), dto.CreateReservationRequest{
		RoomID: "A101",
		SlotID: 6,
		Date:   "2025-03-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", created.BookedBy)
}

func TestReservationCreateConflictIsDataNotError(t *testing.T) {
	store := &fakeReservationStore{conflict: &models.ConflictResult{
		HasConflict: true,
		Type:        models.ConflictTimetable,
		Details:     "Regular class: Physics by Dr. Smith",
	}}
	svc := newReservationFixture(store, nil)

	created, conflict, err := svc.Create(context.Background(), dto.CreateReservationRequest{
		RoomID: "A101",
		SlotID: 6,
		Date:   "2025-03-10",
	})
	require.NoError(t, err)
	assert.Nil(t, created)
	require.NotNil(t, conflict)
	assert.True(t, conflict.HasConflict)
	assert.Nil(t, store.created, "nothing may be inserted on conflict")
}

func TestReservationCreateValidation(t *testing.T) {
	svc := newReservationFixture(&fakeReservationStore{}, nil)

	cases := []dto.CreateReservationRequest{
		{SlotID: 6, Date: "2025-03-10"},                      // missing room
		{RoomID: "A101", Date: "2025-03-10"},                 // missing slot
		{RoomID: "A101", SlotID: 6},                          // missing date
		{RoomID: "A101", SlotID: 6, Date: "10-03-2025"},      // wrong date format
		{RoomID: "A101", SlotID: -1, Date: "2025-03-10"},     // negative slot
	}
	for _, req := range cases {
		_, _, err := svc.Create(context.Background(), req)
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	}
}

func TestReservationCreateUnknownRoom(t *testing.T) {
	svc := newReservationFixture(&fakeReservationStore{}, &fakeRoomFinder{known: map[string]bool{}})

	_, _, err := svc.Create(context.Background(), dto.CreateReservationRequest{
		RoomID: "Z999",
		SlotID: 6,
		Date:   "2025-03-10",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestReservationListUpcoming(t *testing.T) {
	store := &fakeReservationStore{total: 7}
	svc := newReservationFixture(store, nil)

	_, pagination, err := svc.List(context.Background(), models.ReservationFilter{Page: 2, PageSize: 5}, true)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", store.gotFilter.FromDate)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 5, pagination.PageSize)
	assert.Equal(t, 7, pagination.TotalCount)
}

func TestReservationDeleteNotFound(t *testing.T) {
	store := &fakeReservationStore{deleteErr: sql.ErrNoRows}
	svc := newReservationFixture(store, nil)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "reservation not found", appErr.Message)
}

func TestReservationDelete(t *testing.T) {
	store := &fakeReservationStore{}
	svc := newReservationFixture(store, nil)

	require.NoError(t, svc.Delete(context.Background(), "res-1"))
	assert.Equal(t, "res-1", store.deletedID)
}

package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/classtrack-api/internal/models"
)

func newClassroomRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestClassroomRepositoryList(t *testing.T) {
	db, mock, cleanup := newClassroomRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	rows := sqlmock.NewRows([]string{"id", "block", "floor", "capacity", "amenities", "status_override", "override_expires"}).
		AddRow("A101", "A", 1, 70, "{projector,ac}", nil, nil).
		AddRow("B202", "B", 2, 50, "{projector}", "occupied", time.Now().Add(time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, block, floor, capacity, amenities, status_override, override_expires FROM classrooms ORDER BY block, floor, id")).
		WillReturnRows(rows)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A101", list[0].ID)
	assert.Equal(t, []string{"projector", "ac"}, []string(list[0].Amenities))
	assert.Nil(t, list[0].OverrideStatus)
	require.NotNil(t, list[1].OverrideStatus)
	assert.Equal(t, models.StatusOccupied, *list[1].OverrideStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newClassroomRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, block, floor, capacity, amenities, status_override, override_expires FROM classrooms WHERE id = $1")).
		WithArgs("A101").
		WillReturnRows(sqlmock.NewRows([]string{"id", "block", "floor", "capacity", "amenities", "status_override", "override_expires"}).
			AddRow("A101", "A", 1, 70, "{projector}", nil, nil))

	room, err := repo.FindByID(context.Background(), "A101")
	require.NoError(t, err)
	assert.Equal(t, "A", room.Block)
	assert.Equal(t, 1, room.Floor)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, block, floor, capacity, amenities, status_override, override_expires FROM classrooms WHERE id = $1")).
		WithArgs("Z999").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByID(context.Background(), "Z999")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositorySetOverride(t *testing.T) {
	db, mock, cleanup := newClassroomRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	expires := time.Date(2025, 3, 10, 15, 15, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE classrooms SET status_override = $1, override_expires = $2 WHERE id = $3")).
		WithArgs(models.StatusOccupied, expires, "A101").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetOverride(context.Background(), "A101", models.StatusOccupied, &expires))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classrooms SET status_override = $1, override_expires = $2 WHERE id = $3")).
		WithArgs(models.StatusReserved, nil, "Z999").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetOverride(context.Background(), "Z999", models.StatusReserved, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryClearOverride(t *testing.T) {
	db, mock, cleanup := newClassroomRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classrooms SET status_override = NULL, override_expires = NULL WHERE id = $1")).
		WithArgs("A101").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ClearOverride(context.Background(), "A101"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classrooms SET status_override = NULL, override_expires = NULL WHERE id = $1")).
		WithArgs("Z999").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.ClearOverride(context.Background(), "Z999"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryClearOverrideIfExpired(t *testing.T) {
	db, mock, cleanup := newClassroomRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	guarded := `UPDATE classrooms SET status_override = NULL, override_expires = NULL\s+WHERE id = \$1 AND override_expires IS NOT NULL AND override_expires < \$2`

	mock.ExpectExec(guarded).
		WithArgs("A101", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cleared, err := repo.ClearOverrideIfExpired(context.Background(), "A101", now)
	require.NoError(t, err)
	assert.True(t, cleared)

	// A still-valid or absent override leaves the row untouched.
	mock.ExpectExec(guarded).
		WithArgs("B202", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	cleared, err = repo.ClearOverrideIfExpired(context.Background(), "B202", now)
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryClearAllExpired(t *testing.T) {
	db, mock, cleanup := newClassroomRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE classrooms SET status_override = NULL, override_expires = NULL\s+WHERE override_expires IS NOT NULL AND override_expires < \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	cleared, err := repo.ClearAllExpired(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, cleared)
	assert.NoError(t, mock.ExpectationsWereMet())
}

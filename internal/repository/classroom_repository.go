package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusops/classtrack-api/internal/models"
)

// ClassroomRepository provides persistence for classrooms and their
// override columns.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository creates a new classroom repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

const classroomColumns = "id, block, floor, capacity, amenities, status_override, override_expires"

// List returns every classroom in stable dashboard order.
func (r *ClassroomRepository) List(ctx context.Context) ([]models.Classroom, error) {
	query := fmt.Sprintf("SELECT %s FROM classrooms ORDER BY block, floor, id", classroomColumns)
	var rooms []models.Classroom
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return rooms, nil
}

// FindByID loads a classroom by id. sql.ErrNoRows propagates to the caller.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	query := fmt.Sprintf("SELECT %s FROM classrooms WHERE id = $1", classroomColumns)
	var room models.Classroom
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// SetOverride writes the manual override columns. A nil expiresAt keeps the
// override active until explicitly cleared.
func (r *ClassroomRepository) SetOverride(ctx context.Context, id string, status models.RoomStatus, expiresAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE classrooms SET status_override = $1, override_expires = $2 WHERE id = $3`,
		status, expiresAt, id)
	if err != nil {
		return fmt.Errorf("set classroom override: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set classroom override: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ClearOverride removes any override on the room.
func (r *ClassroomRepository) ClearOverride(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE classrooms SET status_override = NULL, override_expires = NULL WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clear classroom override: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("clear classroom override: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ClearOverrideIfExpired clears the override only when its expiry has passed
// the given instant. The expiry comparison happens inside the UPDATE so a
// concurrent override write cannot be lost to a stale read.
func (r *ClassroomRepository) ClearOverrideIfExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE classrooms SET status_override = NULL, override_expires = NULL
		 WHERE id = $1 AND override_expires IS NOT NULL AND override_expires < $2`,
		id, now)
	if err != nil {
		return false, fmt.Errorf("clear expired override: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("clear expired override: %w", err)
	}
	return affected > 0, nil
}

// ClearAllExpired is the batch counterpart used by the sweeper. It returns
// how many rooms had their override cleared.
func (r *ClassroomRepository) ClearAllExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE classrooms SET status_override = NULL, override_expires = NULL
		 WHERE override_expires IS NOT NULL AND override_expires < $1`,
		now)
	if err != nil {
		return 0, fmt.Errorf("clear all expired overrides: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear all expired overrides: %w", err)
	}
	return affected, nil
}

// Create stores a new classroom record. Used by the seeder.
func (r *ClassroomRepository) Create(ctx context.Context, room *models.Classroom) error {
	const query = `INSERT INTO classrooms (id, block, floor, capacity, amenities)
		VALUES (:id, :block, :floor, :capacity, :amenities)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create classroom: %w", err)
	}
	return nil
}

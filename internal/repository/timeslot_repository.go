package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusops/classtrack-api/internal/models"
)

// TimeSlotRepository reads the static slot table.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// List returns all time slots ordered by id.
func (r *TimeSlotRepository) List(ctx context.Context) ([]models.TimeSlot, error) {
	const query = `SELECT id, start_time, end_time, label FROM time_slots ORDER BY id`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// FindByID loads a slot by id. sql.ErrNoRows propagates to the caller.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id int) (*models.TimeSlot, error) {
	const query = `SELECT id, start_time, end_time, label FROM time_slots WHERE id = $1`
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create inserts a slot row. Used by the seeder; slots are static
// configuration at runtime.
func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	const query = `INSERT INTO time_slots (id, start_time, end_time, label) VALUES (:id, :start_time, :end_time, :label)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

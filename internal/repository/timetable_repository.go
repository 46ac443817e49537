package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/classtrack-api/internal/models"
)

// TimetableRepository provides persistence for recurring weekly classes.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// FindFirst returns the first timetable entry matching (room, slot, day), or
// nil when none exists. Order is deterministic because uniqueness of the key
// is not enforced at write time.
func (r *TimetableRepository) FindFirst(ctx context.Context, roomID string, slotID int, day string) (*models.TimetableEntry, error) {
	const query = `SELECT id, room_id, slot_id, day, subject, faculty, created_at
		FROM timetable WHERE room_id = $1 AND slot_id = $2 AND day = $3
		ORDER BY created_at, id LIMIT 1`
	var entry models.TimetableEntry
	if err := r.db.GetContext(ctx, &entry, query, roomID, slotID, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find timetable entry: %w", err)
	}
	return &entry, nil
}

// ListForRoomDay returns a room's recurring classes for one weekday, joined
// with slot times and ordered by period.
func (r *TimetableRepository) ListForRoomDay(ctx context.Context, roomID, day string) ([]models.TimetableEntryDetail, error) {
	const query = `SELECT t.id, t.room_id, t.slot_id, t.day, t.subject, t.faculty, t.created_at,
			ts.start_time, ts.end_time, ts.label AS slot_label
		FROM timetable t
		JOIN time_slots ts ON ts.id = t.slot_id
		WHERE t.room_id = $1 AND t.day = $2
		ORDER BY ts.id`
	var entries []models.TimetableEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, roomID, day); err != nil {
		return nil, fmt.Errorf("list timetable for room day: %w", err)
	}
	return entries, nil
}

// Create stores a new timetable entry.
func (r *TimetableRepository) Create(ctx context.Context, entry *models.TimetableEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO timetable (id, room_id, slot_id, day, subject, faculty, created_at)
		VALUES (:id, :room_id, :slot_id, :day, :subject, :faculty, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create timetable entry: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusops/classtrack-api/internal/models"
)

// ReservationRepository provides persistence for one-off bookings.
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository creates a new reservation repository.
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationDetailColumns = `r.id, r.room_id, r.slot_id, r.date, r.purpose, r.booked_by, r.created_at,
	ts.start_time, ts.end_time, ts.label AS slot_label,
	c.block, c.floor, c.capacity`

func reservationFilterClause(filter models.ReservationFilter) (string, []interface{}) {
	base := `FROM reservations r
	JOIN time_slots ts ON ts.id = r.slot_id
	JOIN classrooms c ON c.id = r.room_id
	WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("r.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("r.date = $%d", len(args)+1))
		args = append(args, filter.Date)
	}
	if filter.FromDate != "" {
		conditions = append(conditions, fmt.Sprintf("r.date >= $%d", len(args)+1))
		args = append(args, filter.FromDate)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	return base, args
}

// List returns reservations with optional filtering and pagination, joined
// with slot and room columns for display.
func (r *ReservationRepository) List(ctx context.Context, filter models.ReservationFilter) ([]models.ReservationDetail, int, error) {
	base, args := reservationFilterClause(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY r.date, ts.id LIMIT %d OFFSET %d",
		reservationDetailColumns, base, size, offset)
	var reservations []models.ReservationDetail
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}

	return reservations, total, nil
}

// ListAll returns every reservation matching the filter without pagination.
// Exports use this so a large match is not cut to one page.
func (r *ReservationRepository) ListAll(ctx context.Context, filter models.ReservationFilter) ([]models.ReservationDetail, error) {
	base, args := reservationFilterClause(filter)

	query := fmt.Sprintf("SELECT %s %s ORDER BY r.date, ts.id", reservationDetailColumns, base)
	var reservations []models.ReservationDetail
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, fmt.Errorf("list all reservations: %w", err)
	}
	return reservations, nil
}

// FindFirst returns the first reservation matching (room, slot, date), or
// nil when none exists.
func (r *ReservationRepository) FindFirst(ctx context.Context, roomID string, slotID int, date string) (*models.Reservation, error) {
	const query = `SELECT id, room_id, slot_id, date, purpose, booked_by, created_at
		FROM reservations WHERE room_id = $1 AND slot_id = $2 AND date = $3
		ORDER BY created_at, id LIMIT 1`
	var res models.Reservation
	if err := r.db.GetContext(ctx, &res, query, roomID, slotID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return &res, nil
}

// ListForRoomDate returns a room's bookings for one date ordered by period.
func (r *ReservationRepository) ListForRoomDate(ctx context.Context, roomID, date string) ([]models.ReservationDetail, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM reservations r
		JOIN time_slots ts ON ts.id = r.slot_id
		JOIN classrooms c ON c.id = r.room_id
		WHERE r.room_id = $1 AND r.date = $2
		ORDER BY ts.id`, reservationDetailColumns)
	var reservations []models.ReservationDetail
	if err := r.db.SelectContext(ctx, &reservations, query, roomID, date); err != nil {
		return nil, fmt.Errorf("list reservations for room date: %w", err)
	}
	return reservations, nil
}

// CreateIfFree re-runs the conflict check and inserts the reservation inside
// one transaction. The checks alone do not close the race between two
// concurrent bookings at READ COMMITTED; the unique index on
// (room_id, slot_id, date) does, and a violation from the loser is reported
// as a reservation conflict. A non-nil conflict result means nothing was
// inserted.
func (r *ReservationRepository) CreateIfFree(ctx context.Context, res *models.Reservation, weekday string) (*models.ConflictResult, error) {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create reservation: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var entry models.TimetableEntry
	err = tx.GetContext(ctx, &entry,
		`SELECT id, room_id, slot_id, day, subject, faculty, created_at
		 FROM timetable WHERE room_id = $1 AND slot_id = $2 AND day = $3
		 ORDER BY created_at, id LIMIT 1`,
		res.RoomID, res.SlotID, weekday)
	if err == nil {
		_ = tx.Rollback()
		conflict := models.NewTimetableConflict(entry)
		return &conflict, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check timetable conflict: %w", err)
	}
	err = nil

	var existing models.Reservation
	err = tx.GetContext(ctx, &existing,
		`SELECT id, room_id, slot_id, date, purpose, booked_by, created_at
		 FROM reservations WHERE room_id = $1 AND slot_id = $2 AND date = $3
		 ORDER BY created_at, id LIMIT 1`,
		res.RoomID, res.SlotID, res.Date)
	if err == nil {
		_ = tx.Rollback()
		conflict := models.NewReservationConflict(existing)
		return &conflict, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check reservation conflict: %w", err)
	}
	err = nil

	if _, err = tx.NamedExecContext(ctx,
		`INSERT INTO reservations (id, room_id, slot_id, date, purpose, booked_by, created_at)
		 VALUES (:id, :room_id, :slot_id, :date, :purpose, :booked_by, :created_at)`, res); err != nil {
		if isUniqueViolation(err) {
			_ = tx.Rollback()
			err = nil
			winner, findErr := r.FindFirst(ctx, res.RoomID, res.SlotID, res.Date)
			if findErr != nil {
				return nil, findErr
			}
			if winner == nil {
				// The winning booking was deleted in between; let the caller retry.
				return nil, fmt.Errorf("insert reservation: concurrent booking for %s slot %d on %s", res.RoomID, res.SlotID, res.Date)
			}
			conflict := models.NewReservationConflict(*winner)
			return &conflict, nil
		}
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create reservation: %w", err)
	}
	return nil, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Delete removes a reservation by id. sql.ErrNoRows is returned when the id
// does not exist.
func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

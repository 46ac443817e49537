package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusops/classtrack-api/internal/models"
	"github.com/campusops/classtrack-api/internal/repository"
	"github.com/campusops/classtrack-api/internal/service"
	"github.com/campusops/classtrack-api/pkg/config"
	"github.com/campusops/classtrack-api/pkg/database"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS classrooms (
		id TEXT PRIMARY KEY,
		block TEXT NOT NULL,
		floor INTEGER NOT NULL,
		capacity INTEGER NOT NULL,
		amenities TEXT[],
		status_override TEXT,
		override_expires TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS time_slots (
		id INTEGER PRIMARY KEY,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS timetable (
		id UUID PRIMARY KEY,
		room_id TEXT NOT NULL REFERENCES classrooms(id),
		slot_id INTEGER NOT NULL REFERENCES time_slots(id),
		day TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		faculty TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_timetable_lookup ON timetable (room_id, slot_id, day)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id UUID PRIMARY KEY,
		room_id TEXT NOT NULL REFERENCES classrooms(id),
		slot_id INTEGER NOT NULL REFERENCES time_slots(id),
		date TEXT NOT NULL,
		purpose TEXT NOT NULL DEFAULT '',
		booked_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_lookup ON reservations (room_id, slot_id, date)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_login_at TIMESTAMPTZ
	)`,
}

func main() {
	var (
		wipe          bool
		adminPassword string
	)
	flag.BoolVar(&wipe, "wipe", false, "delete existing rows before seeding")
	flag.StringVar(&adminPassword, "admin-password", "changeme", "password for the seeded admin account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("failed to apply schema: %v", err)
		}
	}
	log.Println("schema applied")

	if wipe {
		if err := wipeData(ctx, db); err != nil {
			log.Fatalf("failed to wipe data: %v", err)
		}
		log.Println("existing rows removed")
	}

	if err := seed(ctx, db, cfg.Campus.Timezone, adminPassword); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("seeding complete")
}

func wipeData(ctx context.Context, db *sqlx.DB) error {
	for _, table := range []string{"reservations", "timetable", "classrooms", "time_slots", "users"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func seed(ctx context.Context, db *sqlx.DB, timezone, adminPassword string) error {
	slotRepo := repository.NewTimeSlotRepository(db)
	roomRepo := repository.NewClassroomRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	userRepo := repository.NewUserRepository(db)

	slots := []models.TimeSlot{
		{ID: 1, StartTime: "08:00", EndTime: "09:00", Label: "Period 1"},
		{ID: 2, StartTime: "09:00", EndTime: "10:00", Label: "Period 2"},
		{ID: 3, StartTime: "10:15", EndTime: "11:15", Label: "Period 3"},
		{ID: 4, StartTime: "11:15", EndTime: "12:15", Label: "Period 4"},
		{ID: 5, StartTime: "13:00", EndTime: "14:00", Label: "Period 5"},
		{ID: 6, StartTime: "14:00", EndTime: "15:00", Label: "Period 6"},
		{ID: 7, StartTime: "15:15", EndTime: "16:15", Label: "Period 7"},
		{ID: 8, StartTime: "16:15", EndTime: "17:15", Label: "Period 8"},
		{ID: 9, StartTime: "17:15", EndTime: "19:30", Label: "Period 9 (Evening)"},
	}
	for i := range slots {
		if err := slotRepo.Create(ctx, &slots[i]); err != nil {
			return err
		}
	}
	log.Printf("created %d time slots", len(slots))

	amenitiesByBlock := map[string]pq.StringArray{
		"A": {"projector", "ac", "whiteboard"},
		"B": {"projector", "ac", "whiteboard", "smart_board"},
		"C": {"projector", "whiteboard"},
		"D": {"ac", "whiteboard", "lab_equipment"},
	}

	var rooms []models.Classroom
	for _, block := range []string{"A", "B", "C", "D"} {
		roomsPerFloor := 2
		if block == "A" || block == "B" {
			roomsPerFloor = 3
		}
		for floor := 0; floor <= 2; floor++ {
			for n := 1; n <= roomsPerFloor; n++ {
				room := models.Classroom{
					ID:        fmt.Sprintf("%s%d0%d", block, floor, n),
					Block:     block,
					Floor:     floor,
					Capacity:  30 + ((floor+n)%5)*20,
					Amenities: amenitiesByBlock[block],
				}
				if err := roomRepo.Create(ctx, &room); err != nil {
					return err
				}
				rooms = append(rooms, room)
			}
		}
	}
	log.Printf("created %d classrooms", len(rooms))

	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	subjects := []string{
		"Mathematics", "Physics", "Chemistry", "Computer Science",
		"Electronics", "Data Structures", "Machine Learning", "Networks",
		"Database Systems", "Operating Systems", "Software Engineering", "Algorithms",
	}
	faculty := []string{
		"Dr. Smith", "Prof. Johnson", "Dr. Williams", "Prof. Brown",
		"Dr. Davis", "Prof. Miller", "Dr. Wilson", "Prof. Moore",
	}

	// Deterministic timetable: each room gets four classes per day, the slot
	// spread staggered by room and day so not every period is filled.
	entries := 0
	for dayIdx, day := range days {
		for roomIdx, room := range rooms {
			for k := 0; k < 4; k++ {
				slotID := ((roomIdx+dayIdx+k*2)%len(slots) + 1)
				entry := models.TimetableEntry{
					RoomID:  room.ID,
					SlotID:  slotID,
					Day:     day,
					Subject: subjects[(roomIdx+dayIdx+k)%len(subjects)],
					Faculty: faculty[(roomIdx+k)%len(faculty)],
				}
				if err := timetableRepo.Create(ctx, &entry); err != nil {
					return err
				}
				entries++
			}
		}
	}
	log.Printf("created %d timetable entries", entries)

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("load campus timezone: %w", err)
	}
	today := time.Now().In(loc).Format("2006-01-02")
	weekday, err := service.WeekdayOf(today)
	if err != nil {
		return err
	}

	sample := []models.Reservation{
		{RoomID: "A101", SlotID: 6, Purpose: "Faculty Meeting", BookedBy: "Admin Office"},
		{RoomID: "B202", SlotID: 7, Purpose: "Workshop", BookedBy: "Prof. Johnson"},
		{RoomID: "C101", SlotID: 5, Purpose: "Guest Lecture", BookedBy: "HOD Office"},
		{RoomID: "D001", SlotID: 9, Purpose: "Evening Lab", BookedBy: "Dr. Smith"},
		{RoomID: "A201", SlotID: 9, Purpose: "Study Group", BookedBy: "Students Union"},
	}
	booked := 0
	for i := range sample {
		sample[i].Date = today
		conflict, err := reservationRepo.CreateIfFree(ctx, &sample[i], weekday)
		if err != nil {
			return err
		}
		if conflict != nil {
			log.Printf("skipped reservation for %s slot %d: %s", sample[i].RoomID, sample[i].SlotID, conflict.Details)
			continue
		}
		booked++
	}
	log.Printf("created %d sample reservations", booked)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := userRepo.Create(ctx, &admin); err != nil {
		return err
	}
	log.Println("created admin user")

	return nil
}

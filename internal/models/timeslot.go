package models

// TimeSlot is a fixed daily period shared across all days. Slot ids are
// stable configuration referenced by timetable entries and reservations.
type TimeSlot struct {
	ID        int    `db:"id" json:"id"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	Label     string `db:"label" json:"label"`
}

// Contains reports whether the zero-padded "HH:MM" time of day falls inside
// the slot's half-open [start, end) interval. Lexicographic comparison is
// correct because both operands are zero-padded.
func (t TimeSlot) Contains(timeOfDay string) bool {
	return t.StartTime <= timeOfDay && timeOfDay < t.EndTime
}

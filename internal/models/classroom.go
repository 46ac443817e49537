package models

import (
	"time"

	"github.com/lib/pq"
)

// RoomStatus enumerates the effective states a classroom can be in.
type RoomStatus string

const (
	StatusAvailable RoomStatus = "available"
	StatusOccupied  RoomStatus = "occupied"
	StatusReserved  RoomStatus = "reserved"
)

// Valid reports whether the value is a member of the status enum.
func (s RoomStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusReserved:
		return true
	}
	return false
}

// StatusOverride is an admin-set status that takes precedence over any
// computed status until it expires or is cleared. A nil ExpiresAt means the
// override holds until explicitly removed.
type StatusOverride struct {
	Status    RoomStatus `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ActiveAt reports whether the override is still in force at the given
// instant. An override whose expiry has passed must be treated as absent.
func (o *StatusOverride) ActiveAt(t time.Time) bool {
	if o == nil {
		return false
	}
	if o.ExpiresAt == nil {
		return true
	}
	return o.ExpiresAt.After(t)
}

// Classroom is a bookable room on campus.
type Classroom struct {
	ID              string         `db:"id" json:"id"`
	Block           string         `db:"block" json:"block"`
	Floor           int            `db:"floor" json:"floor"`
	Capacity        int            `db:"capacity" json:"capacity"`
	Amenities       pq.StringArray `db:"amenities" json:"amenities"`
	OverrideStatus  *RoomStatus    `db:"status_override" json:"status_override,omitempty"`
	OverrideExpires *time.Time     `db:"override_expires" json:"override_expires,omitempty"`
}

// Override assembles the override value type from the persisted columns.
// It returns nil when no override is set.
func (c *Classroom) Override() *StatusOverride {
	if c == nil || c.OverrideStatus == nil {
		return nil
	}
	return &StatusOverride{Status: *c.OverrideStatus, ExpiresAt: c.OverrideExpires}
}

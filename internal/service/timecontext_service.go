package service

import (
	"context"
	"fmt"
	"time"

	"github.com/campusops/classtrack-api/internal/models"
	appErrors "github.com/campusops/classtrack-api/pkg/errors"
)

const (
	timeOfDayLayout = "15:04"
	dateLayout      = "2006-01-02"
)

type slotLister interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
}

// TimeContextService resolves "now" in the campus reference timezone and
// derives the active time slot from the slot table. All scheduling decisions
// go through this service so they never depend on the host's local timezone.
type TimeContextService struct {
	slots slotLister
	loc   *time.Location
	now   func() time.Time
}

// NewTimeContextService constructs the provider for the given IANA timezone.
func NewTimeContextService(slots slotLister, timezone string) (*TimeContextService, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load campus timezone %q: %w", timezone, err)
	}
	return &TimeContextService{slots: slots, loc: loc, now: time.Now}, nil
}

// Now returns the current instant in the campus timezone.
func (s *TimeContextService) Now() time.Time {
	return s.now().In(s.loc)
}

// TimeOfDay returns the current zero-padded "HH:MM" string.
func (s *TimeContextService) TimeOfDay() string {
	return s.Now().Format(timeOfDayLayout)
}

// WeekdayName returns the current weekday name, e.g. "Monday".
func (s *TimeContextService) WeekdayName() string {
	return s.Now().Weekday().String()
}

// DateString returns the current calendar date as "YYYY-MM-DD".
func (s *TimeContextService) DateString() string {
	return s.Now().Format(dateLayout)
}

// ActiveSlot returns the slot whose [start, end) interval contains the
// current time of day, or nil when no slot matches. Gaps between periods are
// a valid "outside class hours" state, not an error.
func (s *TimeContextService) ActiveSlot(ctx context.Context) (*models.TimeSlot, error) {
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, err
	}
	tod := s.TimeOfDay()
	for i := range slots {
		if slots[i].Contains(tod) {
			return &slots[i], nil
		}
	}
	return nil, nil
}

// WeekdayOf derives the weekday name from a "YYYY-MM-DD" date.
func WeekdayOf(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
	}
	return t.Weekday().String(), nil
}

// Resolve builds the (slot, weekday, date) triple for one logical request.
// With neither slotID nor date supplied, everything comes from "now". When
// either is explicit, the weekday is derived from the date and the slot is
// taken as given, nil included: an explicit date with no slot resolves as
// outside class hours rather than guessing a period.
func (s *TimeContextService) Resolve(ctx context.Context, slotID *int, date string) (models.TimeContext, error) {
	if slotID == nil && date == "" {
		slot, err := s.ActiveSlot(ctx)
		if err != nil {
			return models.TimeContext{}, err
		}
		var sid *int
		if slot != nil {
			id := slot.ID
			sid = &id
		}
		return models.TimeContext{SlotID: sid, Weekday: s.WeekdayName(), Date: s.DateString()}, nil
	}

	d := date
	if d == "" {
		d = s.DateString()
	}
	weekday, err := WeekdayOf(d)
	if err != nil {
		return models.TimeContext{}, err
	}
	return models.TimeContext{SlotID: slotID, Weekday: weekday, Date: d}, nil
}

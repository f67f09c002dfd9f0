package service

import (
	"time"

	"roomdisplay/modules/room/entity"
)

// Interval is a half-open [Start, End) busy range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints do not conflict, so back-to-back bookings are allowed.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// FindConflict returns the first appointment overlapping the candidate
// interval. excludeID skips the appointment being extended so it cannot
// conflict with itself.
func FindConflict(candidate Interval, busy []entity.Appointment, excludeID string) *entity.Appointment {
	for i := range busy {
		if excludeID != "" && busy[i].ID == excludeID {
			continue
		}
		if Overlaps(candidate, Interval{Start: busy[i].Start, End: busy[i].End}) {
			return &busy[i]
		}
	}
	return nil
}

// CrossesEndOfDay reports whether newEnd leaves the calendar day containing
// originalStart, bounded at 23:59:59.999 local to that day.
func CrossesEndOfDay(originalStart, newEnd time.Time) bool {
	return newEnd.After(EndOfDay(originalStart))
}

func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

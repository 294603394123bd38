// Package schedule holds the appointment slot conflict logic. Intervals are
// half-open: [start, end) — a slot ending at 10:00 does not conflict with
// one starting at 10:00.
package schedule

import (
	"errors"
	"time"

	"backoffice-api/internal/model"
)

var ErrInvalidInterval = errors.New("end must be after start")

// ValidateInterval rejects empty or inverted intervals.
func ValidateInterval(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidInterval
	}
	return nil
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// Available checks a candidate slot against a fetched snapshot of one
// owner's appointments. excludeID skips the appointment being edited so it
// does not conflict with itself. Every appointment is considered regardless
// of status — cancelled ones still block the slot.
func Available(appts []model.Appointment, start, end time.Time, excludeID string) bool {
	for i := range appts {
		if appts[i].ID == excludeID {
			continue
		}
		if Overlaps(appts[i].StartTime, appts[i].EndTime, start, end) {
			return false
		}
	}
	return true
}

package schedule

import (
	"testing"
	"time"

	"backoffice-api/internal/model"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
		{"partial overlap", at(9, 0), at(10, 0), at(9, 30), at(10, 30), true},
		{"containment", at(9, 0), at(12, 0), at(10, 0), at(11, 0), true},
		{"touching end to start", at(9, 0), at(10, 0), at(10, 0), at(11, 0), false},
		{"touching start to end", at(10, 0), at(11, 0), at(9, 0), at(10, 0), false},
		{"disjoint", at(9, 0), at(10, 0), at(14, 0), at(15, 0), false},
		{"one minute overlap", at(9, 0), at(10, 1), at(10, 0), at(11, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			// overlap is symmetric
			if got := Overlaps(tt.s2, tt.e2, tt.s1, tt.e1); got != tt.want {
				t.Errorf("Overlaps (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateInterval(t *testing.T) {
	if err := ValidateInterval(at(9, 0), at(10, 0)); err != nil {
		t.Fatalf("valid interval rejected: %v", err)
	}
	if err := ValidateInterval(at(10, 0), at(10, 0)); err == nil {
		t.Fatal("zero-length interval accepted")
	}
	if err := ValidateInterval(at(10, 0), at(9, 0)); err == nil {
		t.Fatal("inverted interval accepted")
	}
}

func TestAvailable(t *testing.T) {
	appts := []model.Appointment{
		{ID: "a1", StartTime: at(9, 0), EndTime: at(10, 0), Status: model.AppointmentConfirmed},
		{ID: "a2", StartTime: at(13, 0), EndTime: at(14, 0), Status: model.AppointmentCancelled},
	}

	if !Available(appts, at(10, 0), at(11, 0), "") {
		t.Error("adjacent slot reported unavailable")
	}
	if Available(appts, at(9, 30), at(10, 30), "") {
		t.Error("overlapping slot reported available")
	}
	// cancelled appointments still block the slot
	if Available(appts, at(13, 30), at(14, 30), "") {
		t.Error("slot over a cancelled appointment reported available")
	}
	// editing a1 may keep (or extend) its own time
	if !Available(appts, at(9, 0), at(10, 30), "a1") {
		t.Error("self-overlap not excluded on edit")
	}
	if Available(appts, at(9, 0), at(13, 30), "a1") {
		t.Error("edit overlapping another appointment reported available")
	}
}

package calendar

import (
	"testing"
	"time"

	"github.com/shiftforge/reflow/internal/model"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func mondayTuesdayShifts() []model.Shift {
	return []model.Shift{
		{DayOfWeek: time.Monday, StartHour: 8, EndHour: 17},
		{DayOfWeek: time.Tuesday, StartHour: 8, EndHour: 17},
	}
}

func TestIsTimeInShift_AsStart(t *testing.T) {
	shifts := mondayTuesdayShifts()
	// 2026-02-09 is a Monday.
	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"at start hour", mustParse(t, "2026-02-09T08:00:00Z"), true},
		{"at end hour", mustParse(t, "2026-02-09T17:00:00Z"), false},
		{"mid shift", mustParse(t, "2026-02-09T12:00:00Z"), true},
		{"before shift", mustParse(t, "2026-02-09T07:59:00Z"), false},
		{"wrong weekday", mustParse(t, "2026-02-11T12:00:00Z"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsTimeInShift(c.t, shifts, AsStart); got != c.want {
				t.Errorf("IsTimeInShift(%v, AsStart) = %v, want %v", c.t, got, c.want)
			}
		})
	}
}

func TestIsTimeInShift_AsEnd(t *testing.T) {
	shifts := mondayTuesdayShifts()
	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"at end hour", mustParse(t, "2026-02-09T17:00:00Z"), true},
		{"at start hour", mustParse(t, "2026-02-09T08:00:00Z"), false},
		{"mid shift", mustParse(t, "2026-02-09T12:00:00Z"), true},
		{"after shift", mustParse(t, "2026-02-09T17:01:00Z"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsTimeInShift(c.t, shifts, AsEnd); got != c.want {
				t.Errorf("IsTimeInShift(%v, AsEnd) = %v, want %v", c.t, got, c.want)
			}
		})
	}
}

func TestIsTimeInShift_BackToBackHandoff(t *testing.T) {
	// Two adjacent shifts on the same day must not double-count or
	// reject the hand-off instant.
	shifts := []model.Shift{
		{DayOfWeek: time.Monday, StartHour: 0, EndHour: 8},
		{DayOfWeek: time.Monday, StartHour: 8, EndHour: 16},
	}
	handoff := mustParse(t, "2026-02-09T08:00:00Z")
	if !IsTimeInShift(handoff, shifts, AsStart) {
		t.Error("handoff instant must be legal as a start of the second shift")
	}
	if !IsTimeInShift(handoff, shifts, AsEnd) {
		t.Error("handoff instant must be legal as an end of the first shift")
	}
}

func TestWorkingMinutes_SimpleWithinShift(t *testing.T) {
	wc := model.WorkCenter{Shifts: mondayTuesdayShifts()}
	start := mustParse(t, "2026-02-09T08:00:00Z")
	end := mustParse(t, "2026-02-09T09:00:00Z")
	if got := WorkingMinutes(start, end, wc); got != 60 {
		t.Errorf("WorkingMinutes = %d, want 60", got)
	}
}

func TestWorkingMinutes_SubtractsMaintenanceWindow(t *testing.T) {
	wc := model.WorkCenter{
		Shifts: mondayTuesdayShifts(),
		MaintenanceWindows: []model.MaintenanceWindow{
			{Start: mustParse(t, "2026-02-09T08:30:00Z"), End: mustParse(t, "2026-02-09T08:45:00Z")},
		},
	}
	start := mustParse(t, "2026-02-09T08:00:00Z")
	end := mustParse(t, "2026-02-09T09:00:00Z")
	if got := WorkingMinutes(start, end, wc); got != 45 {
		t.Errorf("WorkingMinutes = %d, want 45", got)
	}
}

func TestWorkingMinutes_OutsideShiftIsZero(t *testing.T) {
	wc := model.WorkCenter{Shifts: mondayTuesdayShifts()}
	start := mustParse(t, "2026-02-09T18:00:00Z")
	end := mustParse(t, "2026-02-09T19:00:00Z")
	if got := WorkingMinutes(start, end, wc); got != 0 {
		t.Errorf("WorkingMinutes = %d, want 0", got)
	}
}

func TestWorkingMinutes_SpansMultipleDays(t *testing.T) {
	wc := model.WorkCenter{Shifts: mondayTuesdayShifts()}
	start := mustParse(t, "2026-02-09T16:00:00Z") // Monday
	end := mustParse(t, "2026-02-10T09:00:00Z")    // Tuesday
	// Monday: 16:00-17:00 = 60; Tuesday: 08:00-09:00 = 60.
	if got := WorkingMinutes(start, end, wc); got != 120 {
		t.Errorf("WorkingMinutes = %d, want 120", got)
	}
}

func TestWorkingMinutes_DegenerateInputIsZero(t *testing.T) {
	wc := model.WorkCenter{Shifts: mondayTuesdayShifts()}
	same := mustParse(t, "2026-02-09T08:00:00Z")
	if got := WorkingMinutes(same, same, wc); got != 0 {
		t.Errorf("WorkingMinutes(start==end) = %d, want 0", got)
	}
	if got := WorkingMinutes(same.Add(time.Hour), same, wc); got != 0 {
		t.Errorf("WorkingMinutes(start>end) = %d, want 0", got)
	}
}

func TestOverlaps(t *testing.T) {
	a1 := mustParse(t, "2026-02-09T08:00:00Z")
	a2 := mustParse(t, "2026-02-09T09:00:00Z")
	b1 := mustParse(t, "2026-02-09T08:30:00Z")
	b2 := mustParse(t, "2026-02-09T09:30:00Z")
	if !Overlaps(a1, a2, b1, b2) {
		t.Error("expected overlap")
	}
	if Overlaps(a1, a2, a2, a2.Add(time.Hour)) {
		t.Error("adjacent half-open intervals must not overlap")
	}
}

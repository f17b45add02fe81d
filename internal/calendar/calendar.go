// Package calendar implements shift-aware working-minute accounting over
// UTC timestamps: shift membership, interval overlap, and the net
// on-shift, outside-maintenance minutes between two instants.
package calendar

import (
	"math"
	"time"

	"github.com/shiftforge/reflow/internal/model"
)

// ShiftMode selects which half-open membership rule applies when testing
// whether a timestamp lies inside a shift.
type ShiftMode int

const (
	// AsStart: t in [shiftStart, shiftEnd). A start at exactly StartHour is
	// legal; a start at exactly EndHour is not.
	AsStart ShiftMode = iota
	// AsEnd: t in (shiftStart, shiftEnd]. An end at exactly EndHour is
	// legal; an end at exactly StartHour is not.
	AsEnd
)

// shiftBounds returns the concrete [start, end) instants of a shift on the
// same calendar date as t, in UTC.
func shiftBounds(t time.Time, s model.Shift) (time.Time, time.Time) {
	t = t.UTC()
	year, month, day := t.Date()
	start := time.Date(year, month, day, s.StartHour, 0, 0, 0, time.UTC)
	end := time.Date(year, month, day, s.EndHour, 0, 0, 0, time.UTC)
	return start, end
}

// IsTimeInShift reports whether t falls within one of shifts on its own
// weekday, per the half-open rule selected by mode. Sunday is weekday 0.
func IsTimeInShift(t time.Time, shifts []model.Shift, mode ShiftMode) bool {
	t = t.UTC()
	weekday := t.Weekday()
	for _, s := range shifts {
		if s.DayOfWeek != weekday {
			continue
		}
		start, end := shiftBounds(t, s)
		switch mode {
		case AsStart:
			if !t.Before(start) && t.Before(end) {
				return true
			}
		case AsEnd:
			if t.After(start) && !t.After(end) {
				return true
			}
		}
	}
	return false
}

// overlap returns the intersection of [aStart,aEnd) and [bStart,bEnd), or
// (zero, zero, false) if they don't overlap.
func overlap(aStart, aEnd, bStart, bEnd time.Time) (time.Time, time.Time, bool) {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	_, _, ok := overlap(aStart, aEnd, bStart, bEnd)
	return ok
}

// WorkingMinutes returns the net on-shift, outside-maintenance minutes
// between start and end on wc. Degenerate inputs (start >= end) yield 0.
func WorkingMinutes(start, end time.Time, wc model.WorkCenter) int {
	start, end = start.UTC(), end.UTC()
	if !start.Before(end) {
		return 0
	}

	dayCursor := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	lastDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var totalMinutes float64
	for !dayCursor.After(lastDay) {
		weekday := dayCursor.Weekday()
		for _, shift := range wc.Shifts {
			if shift.DayOfWeek != weekday {
				continue
			}
			shiftStart, shiftEnd := shiftBounds(dayCursor, shift)
			slotStart, slotEnd, ok := overlap(start, end, shiftStart, shiftEnd)
			if !ok {
				continue
			}
			minutes := slotEnd.Sub(slotStart).Minutes()
			for _, win := range wc.MaintenanceWindows {
				mStart, mEnd, mOk := overlap(slotStart, slotEnd, win.Start, win.End)
				if mOk {
					minutes -= mEnd.Sub(mStart).Minutes()
				}
			}
			if minutes > 0 {
				totalMinutes += minutes
			}
		}
		dayCursor = dayCursor.AddDate(0, 0, 1)
	}

	return int(math.Round(totalMinutes))
}

// Package reflow implements the Reflow Engine: it walks each work
// center's preserved sequence, places each work order at the earliest
// shift-valid, maintenance-free, predecessor-safe slot, propagates
// cascades, and records the root cause of every move.
package reflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/shiftforge/reflow/internal/calendar"
	"github.com/shiftforge/reflow/internal/constants"
	"github.com/shiftforge/reflow/internal/constraints"
	"github.com/shiftforge/reflow/internal/model"
	"github.com/shiftforge/reflow/internal/sequence"
)

// ErrNotFixable is the sentinel the reflow engine wraps when a schedule
// contains a fatal violation (a dependency cycle or a fixed-vs-fixed
// overlap) that no amount of repair can resolve.
var ErrNotFixable = errors.New("schedule is not fixable")

// NotFixableError carries the fatal violations that caused the refusal.
type NotFixableError struct {
	Violations []model.Violation
}

func (e *NotFixableError) Error() string {
	return fmt.Sprintf("%v: %d fatal violation(s)", ErrNotFixable, len(e.Violations))
}

func (e *NotFixableError) Unwrap() error {
	return ErrNotFixable
}

// Reflow verifies orders against centers; on fatal violations it refuses
// with a *NotFixableError, on no violations it returns the input
// unchanged, and otherwise repairs the schedule and returns the result.
// Reflow never mutates its arguments.
func Reflow(orders []model.WorkOrder, centers []model.WorkCenter) (model.ReflowResult, error) {
	violations := constraints.Verify(orders, centers, nil)
	if len(violations) == 0 {
		return model.ReflowResult{UpdatedWorkOrders: orders}, nil
	}

	var fatal []model.Violation
	for _, v := range violations {
		if v.IsFatal {
			fatal = append(fatal, v)
		}
	}
	if len(fatal) > 0 {
		return model.ReflowResult{}, &NotFixableError{Violations: fatal}
	}

	return reschedule(orders, centers, violations)
}

// firstViolationByOrder indexes violations by order id, keeping the first
// occurrence per id (the checker's pass order is the tie-break).
func firstViolationByOrder(violations []model.Violation) map[string]model.Violation {
	out := make(map[string]model.Violation, len(violations))
	for _, v := range violations {
		if _, ok := out[v.OrderID]; !ok {
			out[v.OrderID] = v
		}
	}
	return out
}

func reschedule(orders []model.WorkOrder, centers []model.WorkCenter, originalViolations []model.Violation) (model.ReflowResult, error) {
	allOrders := model.CloneWorkOrders(orders)
	indexByID := make(map[string]int, len(allOrders))
	for i, o := range allOrders {
		indexByID[o.ID] = i
	}

	origByID := firstViolationByOrder(originalViolations)

	var changes []model.Change
	var explanations []string

	for _, wc := range centers {
		var thisCenter []model.WorkOrder
		for _, o := range allOrders {
			if o.WorkCenterID == wc.ID && !o.IsMaintenance {
				thisCenter = append(thisCenter, o)
			}
		}
		if len(thisCenter) == 0 {
			continue
		}

		processingOrder := sequence.Prepare(thisCenter)
		updated := rescheduleByCenter(processingOrder, wc, allOrders, origByID, &changes, &explanations)

		for _, u := range updated {
			allOrders[indexByID[u.ID]] = u
		}
	}

	return model.ReflowResult{
		UpdatedWorkOrders: allOrders,
		Changes:           changes,
		Explanations:      explanations,
	}, nil
}

// rescheduleByCenter walks processingOrder (this work center's orders,
// already dependency/chronology ordered) placing each at the first valid
// slot, tracking cascades, and appending to changes/explanations.
func rescheduleByCenter(
	processingOrder []model.WorkOrder,
	wc model.WorkCenter,
	allOrders []model.WorkOrder,
	origByID map[string]model.Violation,
	changes *[]model.Change,
	explanations *[]string,
) []model.WorkOrder {
	scheduled := make([]model.WorkOrder, 0, len(processingOrder))
	cascade := false

	shift := func(curr model.WorkOrder, target time.Time, reason string) model.WorkOrder {
		newStart := findNextAvailableStart(target, wc, allOrders)
		newEnd := findEndDate(newStart, curr.DurationMinutes, wc, allOrders)
		*changes = append(*changes, model.Change{
			OrderID:  curr.ID,
			OldStart: curr.Start,
			OldEnd:   curr.End,
			NewStart: newStart,
			NewEnd:   newEnd,
		})
		*explanations = append(*explanations, reason)
		curr.Start = newStart
		curr.End = newEnd
		return curr
	}

	for _, curr := range processingOrder {
		var prev *model.WorkOrder
		if len(scheduled) > 0 {
			prev = &scheduled[len(scheduled)-1]
		}
		ok := prev == nil || !curr.Start.Before(prev.End)
		orig, hasOrig := origByID[curr.ID]

		switch {
		case cascade && ok && hasOrig:
			curr = shift(curr, curr.Start, fmt.Sprintf("Original violation: %s", orig.Type))
		case cascade && ok && !hasOrig:
			// Clearing the cascade on an in-place fit assumes safety from
			// obstacles; defensively re-check this order against the same
			// obstacle set the cursor functions use before trusting it.
			if hasObstacleOverlap(curr, wc, allOrders) {
				curr = shift(curr, curr.Start, "Cascading shift changes due to earlier violations")
			} else {
				cascade = false
			}
		case cascade && !ok:
			curr = shift(curr, prev.End, "Cascading shift changes due to earlier violations")
		case !cascade && ok && hasOrig:
			curr = shift(curr, curr.Start, fmt.Sprintf("Original violation: %s", orig.Type))
			cascade = true
		case !cascade && ok && !hasOrig:
			// Fits in place with no original violation: nothing to do.
		case !cascade && !ok:
			target := curr.Start
			reason := fmt.Sprintf("Collision with previous order %s", prev.Number)
			if hasOrig {
				reason = fmt.Sprintf("Original violation: %s", orig.Type)
			}
			if prev != nil {
				target = prev.End
			}
			curr = shift(curr, target, reason)
			cascade = true
		}

		scheduled = append(scheduled, curr)
	}

	return scheduled
}

// hasObstacleOverlap reports whether curr's current [Start,End) intersects
// any maintenance window or fixed maintenance work order on wc.
func hasObstacleOverlap(curr model.WorkOrder, wc model.WorkCenter, allOrders []model.WorkOrder) bool {
	for _, win := range wc.MaintenanceWindows {
		if calendar.Overlaps(curr.Start, curr.End, win.Start, win.End) {
			return true
		}
	}
	for _, o := range allOrders {
		if o.WorkCenterID != wc.ID || !o.IsMaintenance {
			continue
		}
		if calendar.Overlaps(curr.Start, curr.End, o.Start, o.End) {
			return true
		}
	}
	return false
}

func nextMidnight(t time.Time) time.Time {
	t = t.UTC()
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

func shiftOnWeekday(wc model.WorkCenter, weekday time.Weekday) (model.Shift, bool) {
	for _, s := range wc.Shifts {
		if s.DayOfWeek == weekday {
			return s, true
		}
	}
	return model.Shift{}, false
}

// maintenanceObstacleContaining returns the fixed maintenance work order on
// wc whose interval contains t, if any.
func maintenanceObstacleContaining(t time.Time, wc model.WorkCenter, allOrders []model.WorkOrder) (model.WorkOrder, bool) {
	for _, o := range allOrders {
		if o.WorkCenterID != wc.ID || !o.IsMaintenance {
			continue
		}
		if !t.Before(o.Start) && t.Before(o.End) {
			return o, true
		}
	}
	return model.WorkOrder{}, false
}

// maintenanceWindowContaining returns the maintenance window on wc whose
// interval contains t, if any.
func maintenanceWindowContaining(t time.Time, wc model.WorkCenter) (model.MaintenanceWindow, bool) {
	for _, w := range wc.MaintenanceWindows {
		if !t.Before(w.Start) && t.Before(w.End) {
			return w, true
		}
	}
	return model.MaintenanceWindow{}, false
}

// findNextAvailableStart returns the earliest t' >= t that lies inside a
// shift and is not covered by any maintenance window or fixed maintenance
// work order on wc.
func findNextAvailableStart(t time.Time, wc model.WorkCenter, allOrders []model.WorkOrder) time.Time {
	current := t.UTC()

	for i := 0; i < constants.MaxCursorIterations; i++ {
		weekday := current.Weekday()
		s, ok := shiftOnWeekday(wc, weekday)
		if !ok {
			current = nextMidnight(current)
			continue
		}
		year, month, day := current.Date()
		shiftStart := time.Date(year, month, day, s.StartHour, 0, 0, 0, time.UTC)
		shiftEnd := time.Date(year, month, day, s.EndHour, 0, 0, 0, time.UTC)

		if current.Before(shiftStart) {
			current = shiftStart
			continue
		}
		if !current.Before(shiftEnd) {
			current = nextMidnight(current)
			continue
		}
		if obstacle, found := maintenanceObstacleContaining(current, wc, allOrders); found {
			current = obstacle.End
			continue
		}
		if win, found := maintenanceWindowContaining(current, wc); found {
			current = win.End
			continue
		}
		return current
	}

	return current
}

// findEndDate consumes durationMinutes net working minutes from start,
// stepping around shift boundaries and obstacles, and returns the instant
// at which the work order completes.
func findEndDate(start time.Time, durationMinutes int, wc model.WorkCenter, allOrders []model.WorkOrder) time.Time {
	current := start.UTC()
	remaining := time.Duration(durationMinutes) * time.Minute

	for i := 0; i < constants.MaxCursorIterations; i++ {
		if remaining <= 0 {
			return current
		}

		weekday := current.Weekday()
		s, ok := shiftOnWeekday(wc, weekday)
		if !ok {
			current = nextMidnight(current)
			current = findNextAvailableStart(current, wc, allOrders)
			continue
		}
		year, month, day := current.Date()
		shiftEnd := time.Date(year, month, day, s.EndHour, 0, 0, 0, time.UTC)

		deadline := shiftEnd
		var obstacleEnd time.Time
		hasObstacleDeadline := false

		if obstacle, found := maintenanceObstacleContaining(current, wc, allOrders); found {
			deadline = obstacle.Start
			obstacleEnd = obstacle.End
			hasObstacleDeadline = true
			if !current.Before(obstacle.Start) {
				deadline = current
			}
		} else if win, found := maintenanceWindowContaining(current, wc); found {
			deadline = win.Start
			obstacleEnd = win.End
			hasObstacleDeadline = true
			if !current.Before(win.Start) {
				deadline = current
			}
		} else {
			// Find the earliest obstacle starting within [current, shiftEnd).
			earliestStart := shiftEnd
			earliestEnd := shiftEnd
			found := false
			for _, o := range allOrders {
				if o.WorkCenterID != wc.ID || !o.IsMaintenance {
					continue
				}
				if !o.Start.Before(current) && o.Start.Before(earliestStart) {
					earliestStart, earliestEnd, found = o.Start, o.End, true
				}
			}
			for _, w := range wc.MaintenanceWindows {
				if !w.Start.Before(current) && w.Start.Before(earliestStart) {
					earliestStart, earliestEnd, found = w.Start, w.End, true
				}
			}
			if found {
				deadline = earliestStart
				obstacleEnd = earliestEnd
				hasObstacleDeadline = true
			}
		}

		available := deadline.Sub(current)
		if available >= remaining {
			return current.Add(remaining)
		}

		remaining -= available
		if available <= 0 {
			// Already sitting inside (or at) the obstacle: jump past it.
			if hasObstacleDeadline && !obstacleEnd.IsZero() {
				current = obstacleEnd
				continue
			}
			current = nextMidnight(current)
			current = findNextAvailableStart(current, wc, allOrders)
			continue
		}

		current = deadline
		if hasObstacleDeadline && current.Equal(deadline) && !obstacleEnd.IsZero() {
			current = obstacleEnd
			continue
		}
		// Hit shift end with no obstacle: jump to the next available shift.
		current = nextMidnight(current)
		current = findNextAvailableStart(current, wc, allOrders)
	}

	return current
}

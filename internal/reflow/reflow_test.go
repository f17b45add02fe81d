package reflow

import (
	"errors"
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

// weekdayShifts returns one 08:00-17:00 shift for each of Monday-Friday, so
// test timestamps anchored on the 2026-02-09 Monday week stay on-shift.
func weekdayShifts() []model.Shift {
	var shifts []model.Shift
	for d := time.Monday; d <= time.Friday; d++ {
		shifts = append(shifts, model.Shift{DayOfWeek: d, StartHour: 8, EndHour: 17})
	}
	return shifts
}

func wc(id string, maint ...model.MaintenanceWindow) model.WorkCenter {
	return model.WorkCenter{ID: id, Name: id, Shifts: weekdayShifts(), MaintenanceWindows: maint}
}

func order(id, centerID string, start, end time.Time, deps ...string) model.WorkOrder {
	return model.WorkOrder{
		ID:              id,
		Number:          id,
		WorkCenterID:    centerID,
		Start:           start,
		End:             end,
		DurationMinutes: int(end.Sub(start).Minutes()),
		DependsOn:       deps,
	}
}

func TestReflow_CleanScheduleIsUnchanged(t *testing.T) {
	centers := []model.WorkCenter{wc("C1")}
	orders := []model.WorkOrder{
		order("O1", "C1", mustParse(t, "2026-02-09T08:00:00Z"), mustParse(t, "2026-02-09T09:00:00Z")),
		order("O2", "C1", mustParse(t, "2026-02-09T09:00:00Z"), mustParse(t, "2026-02-09T10:00:00Z")),
	}

	result, err := Reflow(orders, centers)
	if err != nil {
		t.Fatalf("Reflow returned error on clean schedule: %v", err)
	}
	if len(result.Changes) != 0 {
		t.Errorf("expected no changes, got %d", len(result.Changes))
	}
	if len(result.UpdatedWorkOrders) != 2 {
		t.Errorf("expected 2 work orders back, got %d", len(result.UpdatedWorkOrders))
	}
}

func TestReflow_DoesNotMutateInput(t *testing.T) {
	centers := []model.WorkCenter{wc("C1")}
	orders := []model.WorkOrder{
		order("O1", "C1", mustParse(t, "2026-02-09T08:00:00Z"), mustParse(t, "2026-02-09T09:00:00Z")),
		order("O2", "C1", mustParse(t, "2026-02-09T08:30:00Z"), mustParse(t, "2026-02-09T09:30:00Z")),
	}
	origStart := orders[1].Start

	if _, err := Reflow(orders, centers); err != nil {
		t.Fatalf("Reflow error: %v", err)
	}
	if !orders[1].Start.Equal(origStart) {
		t.Error("Reflow must not mutate its input slice")
	}
}

func TestReflow_CircularDependencyIsNotFixable(t *testing.T) {
	centers := []model.WorkCenter{wc("C1")}
	start := mustParse(t, "2026-02-09T08:00:00Z")
	end := mustParse(t, "2026-02-09T09:00:00Z")
	orders := []model.WorkOrder{
		order("O1", "C1", start, end, "O2"),
		order("O2", "C1", start, end, "O1"),
	}

	_, err := Reflow(orders, centers)
	if err == nil {
		t.Fatal("expected NotFixableError for circular dependency")
	}
	var nf *NotFixableError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFixableError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrNotFixable) {
		t.Error("errors.Is(err, ErrNotFixable) must hold")
	}
	if len(nf.Violations) == 0 {
		t.Error("expected at least one fatal violation recorded")
	}
}

func TestReflow_FixedVsFixedOverlapIsNotFixable(t *testing.T) {
	centers := []model.WorkCenter{wc("C1")}
	o1 := order("M1", "C1", mustParse(t, "2026-02-09T08:00:00Z"), mustParse(t, "2026-02-09T10:00:00Z"))
	o1.IsMaintenance = true
	o2 := order("M2", "C1", mustParse(t, "2026-02-09T09:00:00Z"), mustParse(t, "2026-02-09T11:00:00Z"))
	o2.IsMaintenance = true

	_, err := Reflow([]model.WorkOrder{o1, o2}, centers)
	var nf *NotFixableError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFixableError, got %T: %v", err, err)
	}
}

func TestReflow_MaintenanceSandwichShiftsAround(t *testing.T) {
	maint := model.MaintenanceWindow{
		Start: mustParse(t, "2026-02-09T10:00:00Z"),
		End:   mustParse(t, "2026-02-09T11:00:00Z"),
	}
	centers := []model.WorkCenter{wc("C1", maint)}
	orders := []model.WorkOrder{
		order("O1", "C1", mustParse(t, "2026-02-09T10:30:00Z"), mustParse(t, "2026-02-09T11:30:00Z")),
	}

	result, err := Reflow(orders, centers)
	if err != nil {
		t.Fatalf("Reflow error: %v", err)
	}
	if len(result.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(result.Changes))
	}
	updated := result.UpdatedWorkOrders[0]
	if updated.Start.Before(maint.End) {
		t.Errorf("repaired order must start at/after the maintenance window ends, got %v", updated.Start)
	}
	if calOverlap(updated.Start, updated.End, maint.Start, maint.End) {
		t.Error("repaired order must not overlap the maintenance window")
	}
}

func TestReflow_InvalidStartOutsideShiftIsShifted(t *testing.T) {
	centers := []model.WorkCenter{wc("C1")}
	// Saturday: no shift at all on C1.
	orders := []model.WorkOrder{
		order("O1", "C1", mustParse(t, "2026-02-14T08:00:00Z"), mustParse(t, "2026-02-14T09:00:00Z")),
	}

	result, err := Reflow(orders, centers)
	if err != nil {
		t.Fatalf("Reflow error: %v", err)
	}
	if len(result.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(result.Changes))
	}
	updated := result.UpdatedWorkOrders[0]
	if updated.Start.Weekday() == time.Saturday || updated.Start.Weekday() == time.Sunday {
		t.Errorf("repaired order must land on a shift weekday, got %v (%v)", updated.Start, updated.Start.Weekday())
	}
}

func TestReflow_CascadePushesSubsequentOrders(t *testing.T) {
	centers := []model.WorkCenter{wc("C1")}
	orders := []model.WorkOrder{
		order("O1", "C1", mustParse(t, "2026-02-09T08:00:00Z"), mustParse(t, "2026-02-09T10:00:00Z")),
		// O2 starts before O1 ends, forcing a collision; moving O2 then
		// pushes O3, which originally started right after O2's old slot.
		order("O2", "C1", mustParse(t, "2026-02-09T09:00:00Z"), mustParse(t, "2026-02-09T11:00:00Z")),
		order("O3", "C1", mustParse(t, "2026-02-09T11:00:00Z"), mustParse(t, "2026-02-09T12:00:00Z")),
	}

	result, err := Reflow(orders, centers)
	if err != nil {
		t.Fatalf("Reflow error: %v", err)
	}
	if len(result.Changes) == 0 {
		t.Fatal("expected cascading changes")
	}

	byID := make(map[string]model.WorkOrder, len(result.UpdatedWorkOrders))
	for _, o := range result.UpdatedWorkOrders {
		byID[o.ID] = o
	}
	if byID["O2"].Start.Before(byID["O1"].End) {
		t.Error("O2 must start at or after O1 ends")
	}
	if byID["O3"].Start.Before(byID["O2"].End) {
		t.Error("O3 must start at or after O2 ends")
	}
}

func TestReflow_MultiParentConvergence(t *testing.T) {
	centers := []model.WorkCenter{wc("C1")}
	p1 := order("P1", "C1", mustParse(t, "2026-02-09T08:00:00Z"), mustParse(t, "2026-02-09T09:00:00Z"))
	p2 := order("P2", "C1", mustParse(t, "2026-02-09T09:00:00Z"), mustParse(t, "2026-02-09T11:00:00Z"))
	child := order("Child", "C1", mustParse(t, "2026-02-09T09:30:00Z"), mustParse(t, "2026-02-09T10:30:00Z"), "P1", "P2")

	result, err := Reflow([]model.WorkOrder{p1, p2, child}, centers)
	if err != nil {
		t.Fatalf("Reflow error: %v", err)
	}

	byID := make(map[string]model.WorkOrder, len(result.UpdatedWorkOrders))
	for _, o := range result.UpdatedWorkOrders {
		byID[o.ID] = o
	}
	if byID["Child"].Start.Before(byID["P1"].End) {
		t.Error("Child must start at or after P1 ends")
	}
	if byID["Child"].Start.Before(byID["P2"].End) {
		t.Error("Child must start at or after P2 ends")
	}
}

func calOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	return start.Before(end)
}

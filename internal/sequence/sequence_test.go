package sequence

import (
	"testing"
	"time"

	"github.com/shiftforge/reflow/internal/model"
)

func t_(s string) time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return ts
}

func ids(orders []model.WorkOrder) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}

func TestPrepare_IndependentOrdersPreserveChronology(t *testing.T) {
	orders := []model.WorkOrder{
		{ID: "b", Start: t_("2026-02-09T10:00:00Z")},
		{ID: "a", Start: t_("2026-02-09T08:00:00Z")},
		{ID: "c", Start: t_("2026-02-09T09:00:00Z")},
	}
	got := ids(Prepare(orders))
	want := []string{"a", "c", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestPrepare_DependencyGroupEmittedAtomicallyInTopoOrder(t *testing.T) {
	// child depends on parent; parent starts later than an independent
	// order scheduled between them chronologically but the whole group
	// must still surface atomically, parent before child.
	orders := []model.WorkOrder{
		{ID: "parent", Start: t_("2026-02-09T09:00:00Z")},
		{ID: "child", Start: t_("2026-02-09T08:00:00Z"), DependsOn: []string{"parent"}},
		{ID: "solo", Start: t_("2026-02-09T08:30:00Z")},
	}
	order := ids(Prepare(orders))
	if indexOf(order, "parent") >= indexOf(order, "child") {
		t.Fatalf("expected parent before child, got %v", order)
	}
	// The group (parent, child) is keyed by the earliest member's
	// chronological position (child at 08:00), so it surfaces before solo.
	if indexOf(order, "solo") < indexOf(order, "child") {
		t.Fatalf("expected group before solo, got %v", order)
	}
}

func TestPrepare_MultiParentGroupOrdering(t *testing.T) {
	orders := []model.WorkOrder{
		{ID: "a", Start: t_("2026-02-09T08:00:00Z")},
		{ID: "b", Start: t_("2026-02-09T08:30:00Z")},
		{ID: "c", Start: t_("2026-02-09T08:00:00Z"), DependsOn: []string{"a", "b"}},
	}
	order := ids(Prepare(orders))
	if indexOf(order, "a") >= indexOf(order, "c") || indexOf(order, "b") >= indexOf(order, "c") {
		t.Fatalf("expected both parents before c, got %v", order)
	}
}

func TestPrepare_UnresolvedDependencyDoesNotCluster(t *testing.T) {
	orders := []model.WorkOrder{
		{ID: "a", Start: t_("2026-02-09T08:00:00Z"), DependsOn: []string{"ghost"}},
		{ID: "b", Start: t_("2026-02-09T09:00:00Z")},
	}
	order := ids(Prepare(orders))
	want := []string{"a", "b"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestPrepare_AllOrdersPreservedExactlyOnce(t *testing.T) {
	orders := []model.WorkOrder{
		{ID: "a", Start: t_("2026-02-09T08:00:00Z"), DependsOn: []string{"b"}},
		{ID: "b", Start: t_("2026-02-09T09:00:00Z")},
		{ID: "c", Start: t_("2026-02-09T10:00:00Z")},
	}
	order := Prepare(orders)
	if len(order) != len(orders) {
		t.Fatalf("expected %d orders, got %d", len(orders), len(order))
	}
	seen := make(map[string]bool)
	for _, o := range order {
		if seen[o.ID] {
			t.Fatalf("id %s emitted twice", o.ID)
		}
		seen[o.ID] = true
	}
}

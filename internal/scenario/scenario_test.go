package scenario

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shiftforge/reflow/internal/model"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.json")

	want := Scenario{
		Name: "line-3-monday",
		WorkCenters: []model.WorkCenter{
			{ID: "wc-1", Name: "Press 1", Shifts: []model.Shift{{DayOfWeek: time.Monday, StartHour: 8, EndHour: 17}}},
		},
		WorkOrders: []model.WorkOrder{
			{ID: "wo-1", Number: "WO-1", WorkCenterID: "wc-1", DurationMinutes: 60},
		},
	}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != want.Name {
		t.Errorf("got name %q, want %q", got.Name, want.Name)
	}
	if len(got.WorkCenters) != 1 || got.WorkCenters[0].ID != "wc-1" {
		t.Errorf("work centers did not round-trip: %+v", got.WorkCenters)
	}
	if len(got.WorkOrders) != 1 || got.WorkOrders[0].ID != "wo-1" {
		t.Errorf("work orders did not round-trip: %+v", got.WorkOrders)
	}
}

func TestLoadMissingNameIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.json")
	if err := Save(path, Scenario{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a scenario missing a name")
	}
}

func TestLoadMissingFileIsError(t *testing.T) {
	if _, err := Load("/nonexistent/path/scenario.json"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

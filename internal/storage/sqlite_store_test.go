package storage

import (
	"path/filepath"
	"testing"

	"github.com/shiftforge/reflow/internal/scenario"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reflow.db")
	s := NewSQLiteStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_SaveAndGetScenario(t *testing.T) {
	s := newTestStore(t)
	sc := scenario.Scenario{Name: "line-3"}

	if err := s.SaveScenario(sc); err != nil {
		t.Fatalf("SaveScenario: %v", err)
	}
	got, err := s.GetScenario("line-3")
	if err != nil {
		t.Fatalf("GetScenario: %v", err)
	}
	if got.Name != "line-3" {
		t.Errorf("got name %q, want line-3", got.Name)
	}
}

func TestSQLiteStore_SaveScenarioUpserts(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveScenario(scenario.Scenario{Name: "a", GeneratedAt: "1"}); err != nil {
		t.Fatalf("SaveScenario: %v", err)
	}
	if err := s.SaveScenario(scenario.Scenario{Name: "a", GeneratedAt: "2"}); err != nil {
		t.Fatalf("SaveScenario (update): %v", err)
	}
	got, err := s.GetScenario("a")
	if err != nil {
		t.Fatalf("GetScenario: %v", err)
	}
	if got.GeneratedAt != "2" {
		t.Errorf("expected upsert to replace data, got %q", got.GeneratedAt)
	}
}

func TestSQLiteStore_GetMissingScenarioIsError(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetScenario("nope"); err == nil {
		t.Fatal("expected an error for a missing scenario")
	}
}

func TestSQLiteStore_ListAndDeleteScenario(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"b", "a", "c"} {
		if err := s.SaveScenario(scenario.Scenario{Name: name}); err != nil {
			t.Fatalf("SaveScenario: %v", err)
		}
	}
	names, err := s.ListScenarios()
	if err != nil {
		t.Fatalf("ListScenarios: %v", err)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}

	if err := s.DeleteScenario("b"); err != nil {
		t.Fatalf("DeleteScenario: %v", err)
	}
	names, err = s.ListScenarios()
	if err != nil {
		t.Fatalf("ListScenarios: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 scenarios after delete, got %v", names)
	}
}

func TestSQLiteStore_RecordAndGetRunHistory(t *testing.T) {
	s := newTestStore(t)
	if err := s.RecordRun(RunRecord{
		ScenarioName: "line-3",
		Status:       "repaired",
		ChangeCount:  2,
		Explanations: []string{"Original violation: OVERLAP", "Cascading shift changes due to earlier violations"},
	}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	history, err := s.GetRunHistory("line-3")
	if err != nil {
		t.Fatalf("GetRunHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 run, got %d", len(history))
	}
	if history[0].ChangeCount != 2 || len(history[0].Explanations) != 2 {
		t.Errorf("run record did not round-trip: %+v", history[0])
	}
}

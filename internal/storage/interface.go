// Package storage persists scenarios and reflow run history behind a
// Provider interface, backed by either an embedded SQLite file or a
// Postgres database.
package storage

import "github.com/shiftforge/reflow/internal/scenario"

// RunRecord is one row of reflow run history for a scenario.
type RunRecord struct {
	ID           string
	ScenarioName string
	Status       string
	ChangeCount  int
	Explanations []string
	RanAt        string
}

// Provider is the storage backend contract shared by SQLite and Postgres.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Scenarios
	SaveScenario(scenario.Scenario) error
	GetScenario(name string) (scenario.Scenario, error)
	ListScenarios() ([]string, error)
	DeleteScenario(name string) error

	// Reflow run history
	RecordRun(RunRecord) error
	GetRunHistory(scenarioName string) ([]RunRecord, error)

	// Utils
	GetConfigPath() string
}

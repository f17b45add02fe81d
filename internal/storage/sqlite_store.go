package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/shiftforge/reflow/internal/migration"
	"github.com/shiftforge/reflow/internal/migrations"
	"github.com/shiftforge/reflow/internal/scenario"
)

// SQLiteStore is the default, file-based storage backend.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	runner := migration.NewRunner(s.db, migrations.FS)
	if _, err := runner.ApplyMigrations(nil); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'reflow init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	runner := migration.NewRunner(s.db, migrations.FS)
	current, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	latest, err := latestMigrationVersion(runner)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("storage schema is out of date (version %d, need %d), run 'reflow migrate'", current, latest)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func (s *SQLiteStore) SaveScenario(sc scenario.Scenario) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO scenarios (name, data, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, sc.Name, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetScenario(name string) (scenario.Scenario, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM scenarios WHERE name = $1", name).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return scenario.Scenario{}, fmt.Errorf("scenario %q not found", name)
		}
		return scenario.Scenario{}, fmt.Errorf("failed to get scenario: %w", err)
	}
	var sc scenario.Scenario
	if err := json.Unmarshal([]byte(data), &sc); err != nil {
		return scenario.Scenario{}, fmt.Errorf("failed to unmarshal scenario: %w", err)
	}
	return sc, nil
}

func (s *SQLiteStore) ListScenarios() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM scenarios ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) DeleteScenario(name string) error {
	_, err := s.db.Exec("DELETE FROM scenarios WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordRun(r RunRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.RanAt == "" {
		r.RanAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(`
		INSERT INTO reflow_runs (id, scenario_name, status, change_count, explanations, ran_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.ID, r.ScenarioName, r.Status, r.ChangeCount, strings.Join(r.Explanations, "\n"), r.RanAt)
	if err != nil {
		return fmt.Errorf("failed to record reflow run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRunHistory(scenarioName string) ([]RunRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, scenario_name, status, change_count, explanations, ran_at
		FROM reflow_runs WHERE scenario_name = $1 ORDER BY ran_at DESC
	`, scenarioName)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var explanations string
		if err := rows.Scan(&r.ID, &r.ScenarioName, &r.Status, &r.ChangeCount, &explanations, &r.RanAt); err != nil {
			return nil, err
		}
		if explanations != "" {
			r.Explanations = strings.Split(explanations, "\n")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func latestMigrationVersion(runner *migration.Runner) (int, error) {
	all, err := runner.ReadMigrationFiles()
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations: %w", err)
	}
	if len(all) == 0 {
		return 0, nil
	}
	return all[len(all)-1].Version, nil
}

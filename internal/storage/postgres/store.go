// Package postgres implements the storage.Provider contract against a
// Postgres database, for shops that already run one.
package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/shiftforge/reflow/internal/constants"
	"github.com/shiftforge/reflow/internal/logger"
	"github.com/shiftforge/reflow/internal/migration"
	"github.com/shiftforge/reflow/internal/migrations"
	"github.com/shiftforge/reflow/internal/scenario"
	"github.com/shiftforge/reflow/internal/storage"

	"github.com/google/uuid"
)

// Store is the Postgres-backed storage.Provider implementation.
type Store struct {
	connStr string
	db      *sql.DB
}

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

func New(connStr string) *Store {
	s := &Store{connStr: connStr}
	s.ensureSearchPath()
	return s
}

func (s *Store) ensureSearchPath() {
	if strings.HasPrefix(s.connStr, "postgres://") || strings.HasPrefix(s.connStr, "postgresql://") {
		u, err := url.Parse(s.connStr)
		if err != nil {
			logger.Warn("failed to parse Postgres connection string", "error", err)
			return
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
			s.connStr = u.String()
		}
	} else if !hasSearchPathParam(s.connStr) {
		s.connStr = strings.TrimSpace(s.connStr) + " search_path=" + constants.AppName
	}
}

func hasSearchPathParam(connStr string) bool {
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "search_path") {
			return true
		}
	}
	return false
}

func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "sslmode") {
			return true
		}
	}
	return false
}

// ValidateConnString checks that connStr parses as a Postgres connection
// string and carries no embedded password.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		parsed, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if _, isSet := parsed.User.Password(); isSet {
			return false, ErrEmbeddedCredentials
		}
	} else {
		for _, pair := range strings.Fields(connStr) {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), "password") {
				return false, ErrEmbeddedCredentials
			}
		}
	}

	return true, nil
}

func (s *Store) Init() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}
	s.db = db

	if err := s.db.Ping(); err != nil {
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	runner := migration.NewRunner(s.db, migrations.FS)
	if _, err := runner.ApplyMigrations(func(msg string) { logger.Debug(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	s.db = db

	if err := s.db.Ping(); err != nil {
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	runner := migration.NewRunner(s.db, migrations.FS)
	current, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	all, err := runner.ReadMigrationFiles()
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	if len(all) > 0 && current < all[len(all)-1].Version {
		return fmt.Errorf("storage schema is out of date (version %d, need %d), run 'reflow migrate'", current, all[len(all)-1].Version)
	}

	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.connStr
}

func (s *Store) SaveScenario(sc scenario.Scenario) error {
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

func (s *Store) GetScenario(name string) (scenario.Scenario, error) {
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

func (s *Store) ListScenarios() ([]string, error) {
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

func (s *Store) DeleteScenario(name string) error {
	if _, err := s.db.Exec("DELETE FROM scenarios WHERE name = $1", name); err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	return nil
}

func (s *Store) RecordRun(r storage.RunRecord) error {
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

func (s *Store) GetRunHistory(scenarioName string) ([]storage.RunRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, scenario_name, status, change_count, explanations, ran_at
		FROM reflow_runs WHERE scenario_name = $1 ORDER BY ran_at DESC
	`, scenarioName)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var out []storage.RunRecord
	for rows.Next() {
		var r storage.RunRecord
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

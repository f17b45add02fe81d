// Package scenario handles reading and writing the JSON documents that
// describe a schedule to be reflowed: a named set of work centers and
// work orders.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shiftforge/reflow/internal/model"
)

// Scenario is the unit of input/output for a reflow run: a named
// snapshot of work centers and their work orders.
type Scenario struct {
	Name        string             `json:"name"`
	WorkCenters []model.WorkCenter `json:"work_centers"`
	WorkOrders  []model.WorkOrder  `json:"work_orders"`
	GeneratedAt string             `json:"generated_at,omitempty"`
}

// Load reads and parses a scenario document from path.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if s.Name == "" {
		return Scenario{}, fmt.Errorf("scenario file %s is missing a name", path)
	}
	return s, nil
}

// Save writes s to path as indented JSON, creating or truncating the file.
func Save(path string, s Scenario) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}
	return nil
}

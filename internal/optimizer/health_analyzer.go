// Package optimizer looks at a scenario's reflow run history and
// suggests where the schedule itself, not just one run's repair, needs
// attention.
package optimizer

import (
	"fmt"
	"strings"

	"github.com/shiftforge/reflow/internal/constants"
	"github.com/shiftforge/reflow/internal/storage"
)

// FindingType categorizes a health finding.
type FindingType string

const (
	// FindingChronicRepair fires when most recent runs needed repair,
	// suggesting the scenario's baseline schedule is routinely unrealistic.
	FindingChronicRepair FindingType = "chronic_repair"
	// FindingRecurringNotFixable fires when recent runs have hit fatal
	// violations, suggesting a structural problem (a cycle or a pair of
	// fixed orders that can never both fit).
	FindingRecurringNotFixable FindingType = "recurring_not_fixable"
	// FindingHeavyCascade fires when repaired runs moved an unusually
	// large number of work orders, suggesting the work center is
	// over-committed for its available shift time.
	FindingHeavyCascade FindingType = "heavy_cascade"
)

// Finding is a single suggestion surfaced by the analyzer.
type Finding struct {
	Type   FindingType `json:"type"`
	Reason string      `json:"reason"`
}

// HealthAnalyzer analyzes reflow run history for a scenario.
type HealthAnalyzer struct {
	store storage.Provider
}

func NewHealthAnalyzer(store storage.Provider) *HealthAnalyzer {
	return &HealthAnalyzer{store: store}
}

// Analyze inspects up to runLimit of the most recent runs recorded for
// scenarioName and returns zero or more findings.
func (h *HealthAnalyzer) Analyze(scenarioName string, runLimit int) ([]Finding, error) {
	if runLimit <= 0 {
		return nil, fmt.Errorf("runLimit must be positive, got %d", runLimit)
	}

	history, err := h.store.GetRunHistory(scenarioName)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	if len(history) == 0 {
		return nil, nil
	}
	if len(history) > runLimit {
		history = history[:runLimit]
	}

	total := len(history)
	repaired, notFixable := 0, 0
	maxChanges := 0
	for _, r := range history {
		switch r.Status {
		case constants.RunStatusRepaired:
			repaired++
		case constants.RunStatusNotFixable:
			notFixable++
		}
		if r.ChangeCount > maxChanges {
			maxChanges = r.ChangeCount
		}
	}

	var findings []Finding

	repairedPercent := float64(repaired) / float64(total) * 100
	if repairedPercent > 50 {
		findings = append(findings, Finding{
			Type:   FindingChronicRepair,
			Reason: fmt.Sprintf("%.0f%% of the last %d run(s) needed repair before the schedule was valid", repairedPercent, total),
		})
	}

	if notFixable > 0 {
		findings = append(findings, Finding{
			Type:   FindingRecurringNotFixable,
			Reason: fmt.Sprintf("%d of the last %d run(s) hit a fatal violation (a dependency cycle or two fixed orders overlapping)", notFixable, total),
		})
	}

	if maxChanges >= 5 {
		findings = append(findings, Finding{
			Type:   FindingHeavyCascade,
			Reason: fmt.Sprintf("a single run moved %d work orders in one cascade; the work center may be over-committed for its shift hours", maxChanges),
		})
	}

	return findings, nil
}

// Summarize renders findings as short, operator-facing lines.
func Summarize(findings []Finding) string {
	if len(findings) == 0 {
		return "no health concerns found"
	}
	var lines []string
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("[%s] %s", f.Type, f.Reason))
	}
	return strings.Join(lines, "\n")
}

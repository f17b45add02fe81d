package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shiftforge/reflow/internal/constants"
	"github.com/shiftforge/reflow/internal/notifier"
	"github.com/shiftforge/reflow/internal/reflow"
	"github.com/shiftforge/reflow/internal/storage"
)

// RunCmd reflows a stored scenario: it repairs every fixable violation,
// persists the repaired schedule, records the outcome in run history, and
// notifies the shop-floor agent if one is listening.
type RunCmd struct {
	Name     string `arg:"" help:"Scenario name."`
	NoNotify bool   `help:"Skip notifying the shop-floor agent."`
	NoBackup bool   `help:"Skip the automatic pre-run backup."`
	DryRun   bool   `help:"Reflow in memory without saving the result."`
}

func (c *RunCmd) Run(ctx *Context) error {
	sc, err := ctx.Store.GetScenario(c.Name)
	if err != nil {
		return err
	}

	if !c.NoBackup {
		ctx.PerformAutomaticBackup()
	}

	result, reflowErr := reflow.Reflow(sc.WorkOrders, sc.WorkCenters)

	var notFixable *reflow.NotFixableError
	switch {
	case errors.As(reflowErr, &notFixable):
		return c.recordAndNotify(ctx, sc.Name, storage.RunRecord{
			ScenarioName: sc.Name,
			Status:       constants.RunStatusNotFixable,
			ChangeCount:  0,
			Explanations: explanationsFor(notFixable),
		})

	case reflowErr != nil:
		return reflowErr

	case len(result.Changes) == 0:
		fmt.Printf("Scenario %q is already clean: no changes needed.\n", sc.Name)
		return c.recordAndNotify(ctx, sc.Name, storage.RunRecord{
			ScenarioName: sc.Name,
			Status:       constants.RunStatusClean,
			ChangeCount:  0,
		})
	}

	fmt.Printf("Reflowed scenario %q: %d work order(s) repositioned.\n", sc.Name, len(result.Changes))
	for _, exp := range result.Explanations {
		fmt.Printf("  - %s\n", exp)
	}

	if !c.DryRun {
		sc.WorkOrders = result.UpdatedWorkOrders
		if err := ctx.Store.SaveScenario(sc); err != nil {
			return fmt.Errorf("reflow succeeded but saving the scenario failed: %w", err)
		}
	}

	return c.recordAndNotify(ctx, sc.Name, storage.RunRecord{
		ScenarioName: sc.Name,
		Status:       constants.RunStatusRepaired,
		ChangeCount:  len(result.Changes),
		Explanations: result.Explanations,
	})
}

func (c *RunCmd) recordAndNotify(ctx *Context, scenarioName string, record storage.RunRecord) error {
	if err := ctx.Store.RecordRun(record); err != nil {
		fmt.Printf("Warning: failed to record run history: %v\n", err)
	}

	if record.Status == constants.RunStatusNotFixable {
		fmt.Printf("Scenario %q is not fixable:\n", scenarioName)
		for _, exp := range record.Explanations {
			fmt.Printf("  - %s\n", exp)
		}
	}

	if c.NoNotify {
		return nil
	}

	payload := notifier.Payload{
		ScenarioName: scenarioName,
		Status:       record.Status,
		ChangeCount:  record.ChangeCount,
		Summary:      strings.Join(record.Explanations, "; "),
	}
	if err := notifier.New().Notify(payload); err != nil {
		fmt.Printf("Note: could not notify shop-floor agent: %v\n", err)
	}

	if record.Status == constants.RunStatusNotFixable {
		return fmt.Errorf("scenario %q is not fixable", scenarioName)
	}
	return nil
}

func explanationsFor(e *reflow.NotFixableError) []string {
	explanations := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		explanations = append(explanations, fmt.Sprintf("%s: %s", v.OrderID, v.Message))
	}
	return explanations
}

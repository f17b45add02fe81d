package cli

import (
	"fmt"
	"time"

	"github.com/shiftforge/reflow/internal/calendar"
	"github.com/shiftforge/reflow/internal/model"
)

// WorkOrderAddCmd adds a work order to a stored scenario. DurationMinutes
// is derived from Start/End against the owning work center's shifts, the
// same net-working-minutes accounting the constraint checker uses.
type WorkOrderAddCmd struct {
	Scenario     string   `arg:"" help:"Scenario name."`
	ID           string   `arg:"" help:"Work order id."`
	Number       string   `arg:"" help:"Human-readable work order number."`
	WorkCenterID string   `arg:"" help:"Owning work center id."`
	Start        string   `arg:"" help:"Start timestamp, RFC3339 UTC."`
	End          string   `arg:"" help:"End timestamp, RFC3339 UTC."`
	Maintenance  bool     `help:"Mark this as a fixed maintenance work order."`
	DependsOn    []string `help:"Ids of work orders this one depends on." sep:","`
}

func (c *WorkOrderAddCmd) Run(ctx *Context) error {
	sc, err := ctx.Store.GetScenario(c.Scenario)
	if err != nil {
		return err
	}

	var wc model.WorkCenter
	found := false
	for _, candidate := range sc.WorkCenters {
		if candidate.ID == c.WorkCenterID {
			wc, found = candidate, true
			break
		}
	}
	if !found {
		return fmt.Errorf("work center %q not found in scenario %q", c.WorkCenterID, c.Scenario)
	}

	for _, o := range sc.WorkOrders {
		if o.ID == c.ID {
			return fmt.Errorf("work order %q already exists in scenario %q", c.ID, c.Scenario)
		}
	}

	start, err := time.Parse(time.RFC3339, c.Start)
	if err != nil {
		return fmt.Errorf("invalid start timestamp: %w", err)
	}
	end, err := time.Parse(time.RFC3339, c.End)
	if err != nil {
		return fmt.Errorf("invalid end timestamp: %w", err)
	}
	if !start.Before(end) {
		return fmt.Errorf("start %s must be before end %s", c.Start, c.End)
	}

	sc.WorkOrders = append(sc.WorkOrders, model.WorkOrder{
		ID:              c.ID,
		Number:          c.Number,
		WorkCenterID:    c.WorkCenterID,
		Start:           start,
		End:             end,
		DurationMinutes: calendar.WorkingMinutes(start, end, wc),
		IsMaintenance:   c.Maintenance,
		DependsOn:       c.DependsOn,
	})
	if err := ctx.Store.SaveScenario(sc); err != nil {
		return err
	}
	fmt.Printf("Added work order %q to scenario %q\n", c.ID, c.Scenario)
	return nil
}

// WorkOrderListCmd lists a scenario's work orders, optionally filtered to
// a single work center.
type WorkOrderListCmd struct {
	Scenario     string `arg:"" help:"Scenario name."`
	WorkCenterID string `help:"Filter to a single work center."`
}

func (c *WorkOrderListCmd) Run(ctx *Context) error {
	sc, err := ctx.Store.GetScenario(c.Scenario)
	if err != nil {
		return err
	}

	count := 0
	for _, o := range sc.WorkOrders {
		if c.WorkCenterID != "" && o.WorkCenterID != c.WorkCenterID {
			continue
		}
		count++
		tag := ""
		if o.IsMaintenance {
			tag = " [maintenance]"
		}
		fmt.Printf("%-12s %-12s %s %s -> %s%s\n", o.ID, o.WorkCenterID, o.Number, o.Start.Format(time.RFC3339), o.End.Format(time.RFC3339), tag)
	}
	if count == 0 {
		fmt.Printf("Scenario %q has no matching work orders.\n", c.Scenario)
	}
	return nil
}

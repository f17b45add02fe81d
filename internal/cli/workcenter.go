package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shiftforge/reflow/internal/model"
)

var weekdayAbbrev = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// parseShift parses a "day:start-end" token, e.g. "mon:8-17", into a Shift.
func parseShift(token string) (model.Shift, error) {
	dayPart, hoursPart, ok := strings.Cut(token, ":")
	if !ok {
		return model.Shift{}, fmt.Errorf("shift %q must be day:start-end, e.g. mon:8-17", token)
	}
	day, ok := weekdayAbbrev[strings.ToLower(dayPart)]
	if !ok {
		return model.Shift{}, fmt.Errorf("shift %q has an unknown day %q (want sun..sat)", token, dayPart)
	}
	startStr, endStr, ok := strings.Cut(hoursPart, "-")
	if !ok {
		return model.Shift{}, fmt.Errorf("shift %q must give hours as start-end, e.g. 8-17", token)
	}
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return model.Shift{}, fmt.Errorf("shift %q has a non-numeric start hour: %w", token, err)
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return model.Shift{}, fmt.Errorf("shift %q has a non-numeric end hour: %w", token, err)
	}
	if start < 0 || end > 24 || start >= end {
		return model.Shift{}, fmt.Errorf("shift %q must satisfy 0 <= start < end <= 24", token)
	}
	return model.Shift{DayOfWeek: day, StartHour: start, EndHour: end}, nil
}

// WorkCenterAddCmd adds a work center to a stored scenario.
type WorkCenterAddCmd struct {
	Scenario string   `arg:"" help:"Scenario name."`
	ID       string   `arg:"" help:"Work center id."`
	Name     string   `arg:"" help:"Work center name."`
	Shifts   []string `help:"Shift windows as day:start-end (e.g. mon:8-17), repeatable." sep:","`
}

func (c *WorkCenterAddCmd) Run(ctx *Context) error {
	sc, err := ctx.Store.GetScenario(c.Scenario)
	if err != nil {
		return err
	}
	for _, wc := range sc.WorkCenters {
		if wc.ID == c.ID {
			return fmt.Errorf("work center %q already exists in scenario %q", c.ID, c.Scenario)
		}
	}

	shifts := make([]model.Shift, 0, len(c.Shifts))
	for _, token := range c.Shifts {
		shift, err := parseShift(token)
		if err != nil {
			return err
		}
		shifts = append(shifts, shift)
	}

	sc.WorkCenters = append(sc.WorkCenters, model.WorkCenter{ID: c.ID, Name: c.Name, Shifts: shifts})
	if err := ctx.Store.SaveScenario(sc); err != nil {
		return err
	}
	fmt.Printf("Added work center %q to scenario %q\n", c.ID, c.Scenario)
	return nil
}

// WorkCenterListCmd lists a scenario's work centers.
type WorkCenterListCmd struct {
	Scenario string `arg:"" help:"Scenario name."`
}

func (c *WorkCenterListCmd) Run(ctx *Context) error {
	sc, err := ctx.Store.GetScenario(c.Scenario)
	if err != nil {
		return err
	}
	if len(sc.WorkCenters) == 0 {
		fmt.Printf("Scenario %q has no work centers.\n", c.Scenario)
		return nil
	}
	for _, wc := range sc.WorkCenters {
		fmt.Printf("%-12s %-24s %d shift(s), %d maintenance window(s)\n", wc.ID, wc.Name, len(wc.Shifts), len(wc.MaintenanceWindows))
	}
	return nil
}

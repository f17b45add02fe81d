package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shiftforge/reflow/internal/constraints"
	"github.com/shiftforge/reflow/internal/tui"
)

// TuiCmd launches the read-only schedule dashboard for a scenario.
type TuiCmd struct {
	Name string `arg:"" help:"Scenario name."`
}

func (c *TuiCmd) Run(ctx *Context) error {
	sc, err := ctx.Store.GetScenario(c.Name)
	if err != nil {
		return err
	}

	violations := constraints.Verify(sc.WorkOrders, sc.WorkCenters, nil)
	model := tui.New(sc, violations)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard exited with an error: %w", err)
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/shiftforge/reflow/internal/scenario"
)

// ScenarioLoadCmd imports a scenario JSON file into the store.
type ScenarioLoadCmd struct {
	Path string `arg:"" help:"Path to the scenario JSON file." type:"existingfile"`
}

func (c *ScenarioLoadCmd) Run(ctx *Context) error {
	sc, err := scenario.Load(c.Path)
	if err != nil {
		return err
	}
	if err := ctx.Store.SaveScenario(sc); err != nil {
		return err
	}
	fmt.Printf("Loaded scenario %q (%d work centers, %d work orders)\n", sc.Name, len(sc.WorkCenters), len(sc.WorkOrders))
	return nil
}

// ScenarioSaveCmd exports a stored scenario to a JSON file.
type ScenarioSaveCmd struct {
	Name string `arg:"" help:"Scenario name."`
	Path string `arg:"" help:"Destination JSON file path."`
}

func (c *ScenarioSaveCmd) Run(ctx *Context) error {
	sc, err := ctx.Store.GetScenario(c.Name)
	if err != nil {
		return err
	}
	if err := scenario.Save(c.Path, sc); err != nil {
		return err
	}
	fmt.Printf("Saved scenario %q to %s\n", sc.Name, c.Path)
	return nil
}

// ScenarioListCmd lists scenarios in the store.
type ScenarioListCmd struct{}

func (c *ScenarioListCmd) Run(ctx *Context) error {
	names, err := ctx.Store.ListScenarios()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No scenarios stored.")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

// ScenarioDeleteCmd removes a scenario from the store.
type ScenarioDeleteCmd struct {
	Name string `arg:"" help:"Scenario name."`
}

func (c *ScenarioDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.DeleteScenario(c.Name); err != nil {
		return err
	}
	fmt.Printf("Deleted scenario %q\n", c.Name)
	return nil
}

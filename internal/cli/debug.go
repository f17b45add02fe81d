package cli

import (
	"encoding/json"
	"fmt"
)

// DebugDumpCmd prints a stored scenario's full JSON representation to
// stdout, for troubleshooting what the store actually holds.
type DebugDumpCmd struct {
	Scenario string `arg:"" help:"Scenario name."`
}

func (c *DebugDumpCmd) Run(ctx *Context) error {
	sc, err := ctx.Store.GetScenario(c.Scenario)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

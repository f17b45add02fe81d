package cli

import (
	"fmt"

	"github.com/shiftforge/reflow/internal/optimizer"
)

// OptimizeCmd analyzes a scenario's reflow run history for chronic or
// structural scheduling problems.
type OptimizeCmd struct {
	Name     string `arg:"" help:"Scenario name."`
	RunLimit int    `help:"Number of most recent runs to analyze." default:"20"`
}

func (c *OptimizeCmd) Run(ctx *Context) error {
	analyzer := optimizer.NewHealthAnalyzer(ctx.Store)
	findings, err := analyzer.Analyze(c.Name, c.RunLimit)
	if err != nil {
		return err
	}
	if len(findings) == 0 {
		fmt.Printf("No health findings for scenario %q over the last %d run(s).\n", c.Name, c.RunLimit)
		return nil
	}

	fmt.Println(optimizer.Summarize(findings))
	return nil
}

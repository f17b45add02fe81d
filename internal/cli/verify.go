package cli

import (
	"fmt"

	"github.com/shiftforge/reflow/internal/constraints"
)

// VerifyCmd checks a stored scenario against the production-schedule
// invariants without modifying it.
type VerifyCmd struct {
	Name string `arg:"" help:"Scenario name."`
}

func (c *VerifyCmd) Run(ctx *Context) error {
	sc, err := ctx.Store.GetScenario(c.Name)
	if err != nil {
		return err
	}

	violations := constraints.Verify(sc.WorkOrders, sc.WorkCenters, nil)
	if len(violations) == 0 {
		fmt.Printf("Scenario %q is clean: no violations.\n", sc.Name)
		return nil
	}

	fmt.Printf("Scenario %q has %d violation(s):\n", sc.Name, len(violations))
	for _, v := range violations {
		fatal := ""
		if v.IsFatal {
			fatal = " [fatal]"
		}
		fmt.Printf("  - %s (%s)%s: %s\n", v.OrderID, v.Type, fatal, v.Message)
	}
	return nil
}

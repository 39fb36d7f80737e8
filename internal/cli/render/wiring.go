package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// WiringRenderer renders wiring execution results
type WiringRenderer struct {
	out io.Writer
}

// NewWiringRenderer creates a new wiring renderer
func NewWiringRenderer(out io.Writer) *WiringRenderer {
	return &WiringRenderer{out: out}
}

// Render renders the wiring result. Partial results from a failed run
// still list the calls that confirmed.
func (r *WiringRenderer) Render(result *usecase.WireComponentsResult) error {
	if len(result.Submitted) == 0 && len(result.Skipped) == 0 {
		fmt.Fprintf(r.out, "Plan %s has no pending wiring calls\n", result.Plan.Graph)
		return nil
	}

	for _, w := range result.Submitted {
		fmt.Fprintf(r.out, "%s %s\n", color.New(color.FgGreen).Sprint("✓ submitted"), w.Key())
	}
	for _, w := range result.Skipped {
		fmt.Fprintf(r.out, "%s %s\n", color.New(color.Faint).Sprint("- already confirmed"), w.Key())
	}

	fmt.Fprintf(r.out, "\n%d call(s) submitted, %d skipped\n", len(result.Submitted), len(result.Skipped))
	return nil
}

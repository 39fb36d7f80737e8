package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// PlanRenderer renders plan validation and prediction output
type PlanRenderer struct {
	out io.Writer
}

// NewPlanRenderer creates a new plan renderer
func NewPlanRenderer(out io.Writer) *PlanRenderer {
	return &PlanRenderer{out: out}
}

// RenderValidation renders the outcome of a validation pass
func (r *PlanRenderer) RenderValidation(result *usecase.ValidatePlanResult) error {
	plan := result.Plan

	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Plan: %s\n", plan.Graph)
	if plan.Description != "" {
		fmt.Fprintf(r.out, "%s\n", plan.Description)
	}
	fmt.Fprintf(r.out, "Components: %d  Oracles: %d  Wiring: %d  Auxiliary: %d\n",
		len(plan.Components), len(plan.Oracles), len(plan.Wiring), len(plan.Auxiliary))
	fmt.Fprintln(r.out)

	if len(result.ForwardRefs) > 0 {
		fmt.Fprintln(r.out, "Forward references (resolved by address prediction):")
		names := make([]string, 0, len(result.ForwardRefs))
		for name := range result.ForwardRefs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(r.out, "  ↻ %s → %s\n", name, strings.Join(result.ForwardRefs[name], ", "))
		}
		fmt.Fprintln(r.out)
	}

	if result.Valid() {
		color.New(color.FgGreen).Fprintf(r.out, "✅ Plan %s is valid\n", plan.Graph)
		return nil
	}

	color.New(color.FgRed).Fprintf(r.out, "❌ Plan %s has %d problem(s):\n", plan.Graph, len(result.Problems))
	for _, problem := range result.Problems {
		fmt.Fprintf(r.out, "  • %s\n", problem)
	}
	return nil
}

// RenderPredictions renders the address table
func (r *PlanRenderer) RenderPredictions(result *usecase.PredictAddressesResult) error {
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Address table for %s\n", result.Plan.Graph)
	fmt.Fprintf(r.out, "Deployer: %s\n", result.Deployer.Hex())
	fmt.Fprintf(r.out, "Chain: %d  Start nonce: %d\n", result.ChainID, result.StartNonce)
	fmt.Fprintln(r.out)

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Component", "Nonce", "Address"})
	for _, p := range result.Predictions {
		t.AppendRow(table.Row{p.Index + 1, p.Name, p.Nonce, p.Address.Hex()})
	}
	t.Render()

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "The table holds only while the deployer submits nothing else.")
	return nil
}

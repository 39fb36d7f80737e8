package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// RunRenderer renders the summary of a full deployment run
type RunRenderer struct {
	out io.Writer
}

// NewRunRenderer creates a new run renderer
func NewRunRenderer(out io.Writer) *RunRenderer {
	return &RunRenderer{out: out}
}

// Render renders the run result. It is called for failed runs too, with
// whatever the run completed before stopping.
func (r *RunRenderer) Render(result *usecase.RunDeploymentResult) error {
	fmt.Fprintln(r.out)
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Run: %s", result.Plan.Graph)
	if result.DryRun {
		color.New(color.FgYellow).Fprint(r.out, "  (dry run)")
	}
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "Chain: %d  Deployer: %s  Start nonce: %d\n",
		result.ChainID, result.Deployer.Hex(), result.StartNonce)

	if len(result.Oracles) > 0 {
		fmt.Fprintln(r.out, "\nFeeds:")
		for _, feed := range result.Oracles {
			origin := "adopted"
			if feed.Deployed {
				origin = "deployed"
			}
			fmt.Fprintf(r.out, "  %s %s at %s, %d round(s), last price %s\n",
				color.New(color.FgMagenta).Sprint(feed.Name), origin,
				feed.Address.Hex(), feed.Rounds, feed.Last.Price)
		}
	}

	if len(result.Predictions) > 0 {
		fmt.Fprintln(r.out, "\nComponents:")
		created := recordByName(result)
		for _, p := range result.Predictions {
			if addr, ok := created[p.Name]; ok {
				fmt.Fprintf(r.out, "  %s %s at %s (nonce %d)\n",
					color.New(color.FgGreen).Sprint("✓"),
					color.New(color.FgGreen, color.Bold).Sprint(p.Name),
					addr, p.Nonce)
			} else {
				fmt.Fprintf(r.out, "  %s %s predicted %s (nonce %d)\n",
					color.New(color.Faint).Sprint("○"),
					p.Name, p.Address.Hex(), p.Nonce)
			}
		}
	}

	if len(result.Wired) > 0 {
		fmt.Fprintln(r.out, "\nWiring:")
		for _, w := range result.Wired {
			fmt.Fprintf(r.out, "  %s %s\n", color.New(color.FgGreen).Sprint("✓"), w.Key())
		}
	}

	if h := result.Handover; h != nil {
		fmt.Fprintln(r.out, "\nHandover:")
		fmt.Fprintf(r.out, "  %s on %s: %s", h.Authority, h.Address, handoverStateLabel(h.State))
		fmt.Fprintln(r.out)
		if h.State == domain.HandoverCommitted {
			fmt.Fprintf(r.out, "  Pending owner %s, accept after %s\n",
				h.PendingOwner, h.ReadyAt().Format("2006-01-02 15:04:05"))
		}
	}

	for _, warning := range result.Warnings {
		color.New(color.FgYellow).Fprintf(r.out, "\n⚠️  %s\n", warning)
	}

	fmt.Fprintln(r.out)
	return nil
}

// recordByName indexes this run's record addresses for the prediction report
func recordByName(result *usecase.RunDeploymentResult) map[string]string {
	out := make(map[string]string, len(result.Records))
	for _, rec := range result.Records {
		out[rec.Name] = rec.Address
	}
	return out
}

package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// WarmupRenderer renders oracle warm-up results
type WarmupRenderer struct {
	out io.Writer
}

// NewWarmupRenderer creates a new warmup renderer
func NewWarmupRenderer(out io.Writer) *WarmupRenderer {
	return &WarmupRenderer{out: out}
}

// Render renders the warm-up result. Partial results from a failed run
// still list the feeds that finished.
func (r *WarmupRenderer) Render(result *usecase.WarmupOraclesResult) error {
	if len(result.Feeds) == 0 {
		fmt.Fprintf(r.out, "Plan %s declares no oracles\n", result.Plan.Graph)
		return nil
	}

	fmt.Fprintln(r.out)
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Warmed %d feed(s) for %s\n", len(result.Feeds), result.Plan.Graph)

	for _, feed := range result.Feeds {
		origin := "adopted"
		if feed.Deployed {
			origin = color.New(color.FgGreen).Sprint("deployed")
		}
		fmt.Fprintf(r.out, "  %s %s (%s)\n",
			color.New(color.FgMagenta, color.Bold).Sprint(feed.Name), feed.Address.Hex(), origin)
		fmt.Fprintf(r.out, "    rounds: %d  latest: round %d, price %s at %s\n",
			feed.Rounds, feed.Last.RoundID, feed.Last.Price,
			feed.Last.UpdatedAt.Format("2006-01-02 15:04:05"))
		if feed.Warning != "" {
			color.New(color.FgYellow).Fprintf(r.out, "    ⚠️  %s\n", feed.Warning)
		}
	}

	for _, warning := range result.Warnings {
		color.New(color.FgYellow).Fprintf(r.out, "⚠️  %s\n", warning)
	}

	return nil
}

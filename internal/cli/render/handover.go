package render

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// HandoverRenderer renders ownership handover results
type HandoverRenderer struct {
	out io.Writer
}

// NewHandoverRenderer creates a new handover renderer
func NewHandoverRenderer(out io.Writer) *HandoverRenderer {
	return &HandoverRenderer{out: out}
}

// Render renders the handover result
func (r *HandoverRenderer) Render(result *usecase.HandoverResult) error {
	switch result.Action {
	case usecase.HandoverCommit:
		return r.renderCommit(result)
	case usecase.HandoverAccept:
		return r.renderAccept(result)
	case usecase.HandoverStatus:
		return r.renderStatus(result)
	default:
		return fmt.Errorf("unknown handover action: %s", result.Action)
	}
}

// renderCommit renders the commit result
func (r *HandoverRenderer) renderCommit(result *usecase.HandoverResult) error {
	t := result.Transfer
	color.New(color.FgGreen).Fprintf(r.out, "✅ Committed transfer of %s (%s)\n", result.Authority, result.Address)
	if result.Replaced != "" {
		color.New(color.FgYellow).Fprintf(r.out, "⚠️  Replaced pending owner %s; the delay starts over\n", result.Replaced)
	}
	fmt.Fprintf(r.out, "Pending owner: %s\n", t.PendingOwner)
	fmt.Fprintf(r.out, "Accept after:  %s (delay %s)\n", t.ReadyAt().Format("2006-01-02 15:04:05"), t.MinDelay)
	if result.TxHash != "" {
		fmt.Fprintf(r.out, "Tx: %s\n", result.TxHash)
	}
	return nil
}

// renderAccept renders the accept result
func (r *HandoverRenderer) renderAccept(result *usecase.HandoverResult) error {
	t := result.Transfer
	color.New(color.FgGreen).Fprintf(r.out, "✅ Transfer of %s complete\n", result.Authority)
	fmt.Fprintf(r.out, "New owner: %s\n", t.CurrentOwner)
	if result.TxHash != "" {
		fmt.Fprintf(r.out, "Tx: %s\n", result.TxHash)
	}
	return nil
}

// renderStatus renders the status result
func (r *HandoverRenderer) renderStatus(result *usecase.HandoverResult) error {
	t := result.Transfer
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Handover status for %s (%s):\n", result.Authority, result.Address)

	if t == nil {
		fmt.Fprintln(r.out, "State: uncommitted (nothing recorded)")
		return nil
	}

	fmt.Fprintf(r.out, "State: %s\n", handoverStateLabel(t.State))
	fmt.Fprintf(r.out, "Current owner: %s\n", t.CurrentOwner)

	switch t.State {
	case domain.HandoverCommitted:
		fmt.Fprintf(r.out, "Pending owner: %s\n", t.PendingOwner)
		fmt.Fprintf(r.out, "Committed at:  %s\n", t.CommittedAt.Format("2006-01-02 15:04:05"))
		ready := t.ReadyAt()
		if result.Now.Before(ready) {
			color.New(color.FgYellow).Fprintf(r.out, "⏳ Accept possible in %s (at %s)\n",
				ready.Sub(result.Now).Round(time.Second), ready.Format("2006-01-02 15:04:05"))
		} else {
			color.New(color.FgGreen).Fprintf(r.out, "✅ Delay elapsed, accept is possible\n")
		}
	case domain.HandoverAccepted:
		fmt.Fprintf(r.out, "Accepted at:   %s\n", t.AcceptedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// RecordRenderer renders detailed information about a single record
type RecordRenderer struct {
	out io.Writer
}

// NewRecordRenderer creates a new record renderer
func NewRecordRenderer(out io.Writer) *RecordRenderer {
	return &RecordRenderer{out: out}
}

// Render renders detailed record information
func (r *RecordRenderer) Render(result *usecase.ShowRecordResult) error {
	rec := result.Record

	// Header
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Record: %s\n", rec.ID())
	fmt.Fprintln(r.out, strings.Repeat("=", 80))

	// Basic Info
	fmt.Fprintln(r.out, "\nBasic Information:")
	fmt.Fprintf(r.out, "  Name: %s\n", color.New(color.FgYellow).Sprint(rec.DisplayName()))
	fmt.Fprintf(r.out, "  Kind: %s\n", cases.Title(language.English).String(string(rec.Kind)))
	fmt.Fprintf(r.out, "  Graph: %s\n", rec.Graph)
	fmt.Fprintf(r.out, "  Namespace: %s\n", rec.Namespace)
	if rec.Network != "" {
		fmt.Fprintf(r.out, "  Network: %s (chain %d)\n", rec.Network, rec.ChainID)
	} else {
		fmt.Fprintf(r.out, "  Network: %d\n", rec.ChainID)
	}
	if rec.Artifact != "" {
		fmt.Fprintf(r.out, "  Artifact: %s\n", rec.Artifact)
	}

	// Creation
	fmt.Fprintln(r.out, "\nCreation:")
	fmt.Fprintf(r.out, "  Address: %s\n", rec.Address)
	if rec.Predicted != "" {
		match := color.New(color.FgGreen).Sprint("✓ matched")
		if !strings.EqualFold(rec.Predicted, rec.Address) {
			match = color.New(color.FgRed).Sprintf("✗ predicted %s", rec.Predicted)
		}
		fmt.Fprintf(r.out, "  Prediction: %s\n", match)
	}
	fmt.Fprintf(r.out, "  Deployer: %s\n", rec.Deployer)
	fmt.Fprintf(r.out, "  Nonce: %d\n", rec.Nonce)
	if len(rec.ForwardRefs) > 0 {
		fmt.Fprintf(r.out, "  Forward refs: %s\n",
			color.New(color.FgMagenta).Sprint(strings.Join(rec.ForwardRefs, ", ")))
	}
	fmt.Fprintf(r.out, "  Created At: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))

	// Transaction Information
	if tx := result.Transaction; tx != nil {
		fmt.Fprintln(r.out, "\nTransaction Information:")
		fmt.Fprintf(r.out, "  Hash: %s\n", tx.Hash)
		fmt.Fprintf(r.out, "  Status: %s\n", tx.Status)
		fmt.Fprintf(r.out, "  Sender: %s\n", tx.Sender)
		if tx.BlockNumber > 0 {
			fmt.Fprintf(r.out, "  Block: %d\n", tx.BlockNumber)
		}
	}

	// Handover, when this record is the graph's authority
	if h := result.Handover; h != nil {
		fmt.Fprintln(r.out, "\nOwnership Handover:")
		fmt.Fprintf(r.out, "  State: %s\n", handoverStateLabel(h.State))
		fmt.Fprintf(r.out, "  Current Owner: %s\n", h.CurrentOwner)
		if h.PendingOwner != "" {
			fmt.Fprintf(r.out, "  Pending Owner: %s\n", h.PendingOwner)
		}
		if h.State == domain.HandoverCommitted {
			fmt.Fprintf(r.out, "  Accept After: %s\n", h.ReadyAt().Format("2006-01-02 15:04:05"))
		}
	}

	fmt.Fprintln(r.out)
	return nil
}

// handoverStateLabel colors a handover state for display
func handoverStateLabel(state domain.HandoverState) string {
	switch state {
	case domain.HandoverAccepted:
		return color.New(color.FgGreen).Sprint("accepted")
	case domain.HandoverCommitted:
		return color.New(color.FgYellow).Sprint("committed (delay running)")
	default:
		return color.New(color.Faint).Sprint(string(state))
	}
}

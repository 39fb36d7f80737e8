package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"

	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// Selector resolves ambiguous record lookups with a fuzzy-searchable prompt.
type Selector struct {
	cfg *config.RuntimeConfig
}

func NewSelector(cfg *config.RuntimeConfig) *Selector {
	return &Selector{cfg: cfg}
}

// SelectRecord asks the operator to pick one of the matching records.
// Search input is matched against plain text; color only decorates the
// displayed labels.
func (s *Selector) SelectRecord(ctx context.Context, records []*models.Record, prompt string) (*models.Record, error) {
	if s.cfg.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	switch len(records) {
	case 0:
		return nil, fmt.Errorf("no records provided for selection")
	case 1:
		return records[0], nil
	}

	labels := make([]string, len(records))
	keys := make([]string, len(records))
	for i, rec := range records {
		labels[i] = recordLabel(rec)
		keys[i] = strings.ToLower(fmt.Sprintf("%s %s/%d %s", rec.Name, rec.Namespace, rec.ChainID, rec.Address))
	}

	sel := promptui.Select{
		Label: prompt,
		Items: labels,
		Size:  10,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "▸ {{ . | cyan }}",
			Inactive: "  {{ . | faint }}",
			Selected: "✓ {{ . | green }}",
			Help:     color.YellowString("Type to filter, arrows to move, Enter to pick"),
		},
		StartInSearchMode: true,
		Searcher: func(input string, index int) bool {
			if input == "" {
				return true
			}
			needle := strings.ToLower(input)
			if strings.Contains(keys[index], needle) {
				return true
			}
			return len(fuzzy.Find(needle, keys[index:index+1])) > 0
		},
	}

	index, _, err := sel.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}
	return records[index], nil
}

// recordLabel renders one selectable row: name, kind when not a plain
// component, namespace/chain, address.
func recordLabel(rec *models.Record) string {
	var b strings.Builder
	b.WriteString(color.New(color.FgWhite, color.Bold).Sprint(rec.Name))
	if rec.Kind != models.KindComponent {
		b.WriteByte(' ')
		b.WriteString(color.New(color.FgYellow).Sprintf("[%s]", rec.Kind))
	}
	fmt.Fprintf(&b, " (%s) %s",
		color.New(color.FgBlue).Sprintf("%s/%d", rec.Namespace, rec.ChainID),
		color.New(color.FgHiBlack).Sprint(rec.Address))
	return b.String()
}

var _ usecase.RecordSelector = (*Selector)(nil)

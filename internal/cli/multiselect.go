package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"

	"github.com/gantry-org/gantry-cli/internal/domain"
)

// wiringPicker is the bubbletea model behind `wire --select`: the plan's
// wiring table with every call preselected, since resuming a partial run
// usually wants everything still pending.
type wiringPicker struct {
	specs  []*domain.WiringSpec
	chosen []bool
	cursor int
	accept bool
	closed bool
}

func newWiringPicker(specs []*domain.WiringSpec) wiringPicker {
	chosen := make([]bool, len(specs))
	for i := range chosen {
		chosen[i] = true
	}
	return wiringPicker{specs: specs, chosen: chosen}
}

func (m wiringPicker) Init() tea.Cmd {
	return nil
}

func (m wiringPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.closed = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.specs)-1 {
			m.cursor++
		}
	case " ":
		m.chosen[m.cursor] = !m.chosen[m.cursor]
	case "a":
		all := m.allChosen()
		for i := range m.chosen {
			m.chosen[i] = !all
		}
	case "enter":
		m.accept = true
		m.closed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m wiringPicker) allChosen() bool {
	for _, c := range m.chosen {
		if !c {
			return false
		}
	}
	return true
}

func (m wiringPicker) View() string {
	if m.closed {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", color.New(color.FgCyan, color.Bold).Sprint("Wiring calls to submit"))

	for i, spec := range m.specs {
		marker := "  "
		if i == m.cursor {
			marker = color.New(color.FgCyan).Sprint("▸ ")
		}
		box := color.New(color.Faint).Sprint("[ ]")
		if m.chosen[i] {
			box = color.New(color.FgGreen).Sprint("[x]")
		}
		fmt.Fprintf(&b, "%s%s %s", marker, box, spec.Key())
		if n := len(spec.Args); n > 0 {
			fmt.Fprintf(&b, " %s", color.New(color.Faint).Sprintf("%d arg(s)", n))
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\n%s\n", color.New(color.FgYellow).Sprint("space toggle, a all/none, enter submit, q abort"))
	return b.String()
}

// selectWiringCalls runs the picker and returns the chosen call keys.
func selectWiringCalls(specs []*domain.WiringSpec) ([]string, error) {
	final, err := tea.NewProgram(newWiringPicker(specs)).Run()
	if err != nil {
		return nil, fmt.Errorf("wiring selection failed: %w", err)
	}

	picker := final.(wiringPicker)
	if !picker.accept {
		return nil, fmt.Errorf("wiring selection aborted")
	}

	var keys []string
	for i, spec := range picker.specs {
		if picker.chosen[i] {
			keys = append(keys, spec.Key())
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no wiring calls chosen")
	}
	return keys, nil
}

package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/intentgraph/pkg/core/reorg"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// opHelp is the one-line explanation shown next to each operation.
var opHelp = map[reorg.Operation]string{
	reorg.Merge:          "combine both nodes; children move to the target",
	reorg.DemoteAsChild:  "make the source a sub-intent of the target",
	reorg.Attach:         "re-parent the source under the target",
	reorg.DemoteAndMerge: "dissolve the source into the target",
}

// =============================================================================
// OperationPickerModel - Interactive operation selection
// =============================================================================

// OperationPickerModel lets the user choose among the operations a drop
// allows.
type OperationPickerModel struct {
	Source, Target string
	Operations     []reorg.Operation
	Cursor         int
	Selected       reorg.Operation
}

// NewOperationPickerModel creates a picker for p. Labels name the source and
// target in the prompt.
func NewOperationPickerModel(p *reorg.Pending, source, target string) OperationPickerModel {
	return OperationPickerModel{Source: source, Target: target, Operations: p.Allowed}
}

func (m OperationPickerModel) Init() tea.Cmd {
	return nil
}

func (m OperationPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Operations)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Operations[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m OperationPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Drop %q onto %q", m.Source, m.Target)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q cancel"))
	b.WriteString("\n\n")

	for i, op := range m.Operations {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-18s", cursor, op)))
		b.WriteString(" ")
		b.WriteString(listDimStyle.Render(opHelp[op]))
		b.WriteString("\n")
	}
	return b.String()
}

// pickOperation runs the picker and returns the chosen operation, or "" if
// the user cancelled.
func pickOperation(p *reorg.Pending, source, target string) (reorg.Operation, error) {
	final, err := tea.NewProgram(NewOperationPickerModel(p, source, target)).Run()
	if err != nil {
		return "", fmt.Errorf("operation picker: %w", err)
	}
	return final.(OperationPickerModel).Selected, nil
}

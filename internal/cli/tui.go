package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/aurorus/pkg/source"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PickModel - Interactive search result selection
// =============================================================================

// PickModel is the bubbletea model for choosing one search result.
type PickModel struct {
	Results  []source.Result
	Cursor   int
	Selected *source.Result
	Height   int
	Offset   int
}

// NewPickModel creates a new pick model.
func NewPickModel(results []source.Result) PickModel {
	return PickModel{Results: results, Height: 15}
}

func (m PickModel) Init() tea.Cmd {
	return nil
}

func (m PickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Results)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Results) == 0 {
				return m, tea.Quit
			}
			r := m.Results[m.Cursor]
			m.Selected = &r
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m PickModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Package"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ install  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Results))
	for i := m.Offset; i < end; i++ {
		r := m.Results[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-32s %-16s", cursor, truncate(r.Name, 32), truncate(r.Version, 16))
		origin := originStyle(string(r.Origin)).Render(fmt.Sprintf("%-5s", r.Origin))

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case r.Installed:
			b.WriteString(StyleSuccess.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString(" " + origin + " " + listDimStyle.Render(truncate(r.Description, 50)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Results)), len(m.Results))))

	return b.String()
}

// pick runs the picker and returns the chosen result, or nil if the user
// quit without choosing.
func pick(results []source.Result) (*source.Result, error) {
	final, err := tea.NewProgram(NewPickModel(results)).Run()
	if err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}
	return final.(PickModel).Selected, nil
}

package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/casegraph/casegraph/pkg/casefile"
)

// List styles
var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// CaseListModel - Interactive case selection
// =============================================================================

// CaseListModel is the bubbletea model for interactive case selection.
type CaseListModel struct {
	Cases    []casefile.Case
	Cursor   int
	Selected *casefile.Case
	Height   int
	Offset   int
}

// NewCaseListModel creates a new case list model.
func NewCaseListModel(cases []casefile.Case) CaseListModel {
	return CaseListModel{
		Cases:  cases,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m CaseListModel) Init() tea.Cmd {
	return nil
}

func (m CaseListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Cases)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			selected := m.Cases[m.Cursor]
			m.Selected = &selected
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m CaseListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Case"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Cases) {
		end = len(m.Cases)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cs := m.Cases[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		number := cs.Number
		if number == "" {
			number = cs.ID
		}
		title := cs.Title
		if title == "" {
			title = "—"
		}

		rows = append(rows, []string{cursor, number, title, cs.Status, cs.Priority})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Case", "Title", "Status", "Priority").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Cases) {
				return lipgloss.NewStyle()
			}
			cs := m.Cases[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col == 4 {
				base = priorityStyle(cs.Priority)
			} else if col == 3 {
				base = base.Foreground(colorGray)
			}

			if isCurrent {
				if col <= 2 {
					return base.Foreground(colorCyan).Bold(true)
				}
				return base.Bold(true)
			}
			if col <= 2 {
				return base.Foreground(colorWhite)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Cases))))

	return b.String()
}

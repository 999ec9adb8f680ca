package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listChosenStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	resultStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorGreen).Padding(1, 2)
	resultErrStyle    = lipgloss.NewStyle().Foreground(colorRed).Padding(1, 2)
)

// =============================================================================
// ExploreModel - Interactive relation picker
// =============================================================================

// ResolveFunc answers a relation query with the sentence to display.
type ResolveFunc func(from, to string) (string, error)

// exploreStage is the step of the picker.
type exploreStage int

const (
	pickFrom exploreStage = iota
	pickTo
	resolving
	showResult
)

// resultMsg carries the answer of a ResolveFunc back into Update.
type resultMsg struct {
	sentence string
	err      error
}

// ExploreModel is the bubbletea model of `kinship explore`: pick a person,
// pick another one, read how the first is related to the second.
type ExploreModel struct {
	Names  []string
	Cursor int
	Height int
	Offset int

	From   string
	To     string
	Result string
	Err    error

	stage   exploreStage
	resolve ResolveFunc
}

// NewExploreModel creates a picker over names.
func NewExploreModel(names []string, resolve ResolveFunc) ExploreModel {
	return ExploreModel{
		Names:   names,
		Height:  15,
		resolve: resolve,
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case resultMsg:
		m.Result, m.Err = msg.sentence, msg.err
		m.stage = showResult
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.scroll()
	}
	return m, nil
}

func (m ExploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	}

	switch m.stage {
	case showResult:
		switch msg.String() {
		case "r", "enter":
			m.reset()
		case "s":
			// Swap the question around.
			m.From, m.To = m.To, m.From
			m.stage = resolving
			return m, m.resolveCmd()
		}
	case pickFrom, pickTo:
		switch msg.String() {
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.scroll()
			}
		case "down", "j":
			if m.Cursor < len(m.Names)-1 {
				m.Cursor++
				m.scroll()
			}
		case "backspace":
			if m.stage == pickTo {
				m.From = ""
				m.stage = pickFrom
			}
		case "enter":
			if len(m.Names) == 0 {
				return m, nil
			}
			if m.stage == pickFrom {
				m.From = m.Names[m.Cursor]
				m.stage = pickTo
				return m, nil
			}
			m.To = m.Names[m.Cursor]
			m.stage = resolving
			return m, m.resolveCmd()
		}
	}
	return m, nil
}

func (m ExploreModel) resolveCmd() tea.Cmd {
	from, to, resolve := m.From, m.To, m.resolve
	return func() tea.Msg {
		sentence, err := resolve(from, to)
		return resultMsg{sentence: sentence, err: err}
	}
}

func (m *ExploreModel) reset() {
	m.From, m.To, m.Result, m.Err = "", "", "", nil
	m.stage = pickFrom
}

func (m *ExploreModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m ExploreModel) View() string {
	var b strings.Builder

	switch m.stage {
	case pickFrom:
		b.WriteString(StyleTitle.Render("Who?"))
	case pickTo:
		b.WriteString(StyleTitle.Render(fmt.Sprintf("How is %s related to...", m.From)))
	default:
		b.WriteString(StyleTitle.Render(fmt.Sprintf("%s and %s", m.From, m.To)))
	}
	b.WriteString("\n")

	switch m.stage {
	case resolving:
		b.WriteString(listDimStyle.Render("resolving..."))
		b.WriteString("\n")
		return b.String()
	case showResult:
		if m.Err != nil {
			b.WriteString(resultErrStyle.Render(m.Err.Error()))
		} else {
			b.WriteString(resultStyle.Render(m.Result))
		}
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("s swap  r again  q quit"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  ⌫ back  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Names))
	for i := m.Offset; i < end; i++ {
		name := m.Names[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := cursor + name
		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case name == m.From:
			b.WriteString(listChosenStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Names))))

	return b.String()
}

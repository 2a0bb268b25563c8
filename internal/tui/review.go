// Package tui implements the interactive review screen of "zkit split
// --review": the user walks the split sections, previews each one, and
// chooses which become notes.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned by Review when the user quits without confirming.
var ErrCancelled = errors.New("review cancelled")

const (
	defaultWidth  = 100
	defaultHeight = 24
	listRatio     = 3 // list takes 1/listRatio of the width
	chromeHeight  = 4 // title, help and borders
)

// Section is one candidate note.
type Section struct {
	Title   string
	Name    string
	Content string
}

// Model is the bubbletea model of the review screen.
type Model struct {
	sections []Section
	selected []bool
	cursor   int
	offset   int

	viewport viewport.Model
	help     help.Model
	keys     keyMap
	styles   styles

	width  int
	height int

	confirmed bool
	cancelled bool
}

type styles struct {
	title    lipgloss.Style
	cursor   lipgloss.Style
	checked  lipgloss.Style
	dim      lipgloss.Style
	list     lipgloss.Style
	preview  lipgloss.Style
	selected lipgloss.Style
}

func defaultStyles() styles {
	border := lipgloss.Color("240")
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
		checked:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		list:     lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(border),
		preview:  lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		selected: lipgloss.NewStyle().Bold(true),
	}
}

// NewModel returns a review model with every section selected.
func NewModel(sections []Section) Model {
	selected := make([]bool, len(sections))
	for i := range selected {
		selected[i] = true
	}

	m := Model{
		sections: sections,
		selected: selected,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		keys:     defaultKeyMap(),
		styles:   defaultStyles(),
	}
	m.resize(defaultWidth, defaultHeight)
	m.showPreview()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.showPreview()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Confirm):
			m.confirmed = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Toggle):
			if len(m.selected) > 0 {
				m.selected[m.cursor] = !m.selected[m.cursor]
			}
		case key.Matches(msg, m.keys.All):
			m.toggleAll()
		case key.Matches(msg, m.keys.PageUp):
			m.viewport.PageUp()
		case key.Matches(msg, m.keys.PageDown):
			m.viewport.PageDown()
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if len(m.sections) == 0 {
		return m.styles.dim.Render("Nothing to review.") + "\n"
	}

	title := m.styles.title.Render(fmt.Sprintf("Review split: %d of %d selected", m.SelectedCount(), len(m.sections)))

	listWidth := m.listWidth()
	list := m.styles.list.Width(listWidth).Height(m.bodyHeight()).Render(m.renderList(listWidth))
	preview := m.styles.preview.Render(m.viewport.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, list, preview),
		m.help.View(m.keys),
	)
}

func (m Model) renderList(width int) string {
	rows := m.bodyHeight()
	end := min(len(m.sections), m.offset+rows)

	var b strings.Builder
	for i := m.offset; i < end; i++ {
		box := "[ ]"
		if m.selected[i] {
			box = m.styles.checked.Render("[x]")
		}
		label := m.sections[i].Title
		if label == "" {
			label = m.sections[i].Name
		}
		// Box, space and a margin of one.
		if maxLen := width - 5; maxLen > 3 && len(label) > maxLen {
			label = label[:maxLen-3] + "..."
		}
		if i == m.cursor {
			label = m.styles.cursor.Render(label)
		}
		b.WriteString(box + " " + label)
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Confirmed reports whether the user accepted the selection.
func (m Model) Confirmed() bool { return m.confirmed }

// Cancelled reports whether the user quit without confirming.
func (m Model) Cancelled() bool { return m.cancelled }

// Cursor returns the index of the highlighted section.
func (m Model) Cursor() int { return m.cursor }

// Selected returns the indices of the selected sections in order.
func (m Model) Selected() []int {
	out := make([]int, 0, len(m.selected))
	for i, ok := range m.selected {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// SelectedCount returns how many sections are selected.
func (m Model) SelectedCount() int {
	n := 0
	for _, ok := range m.selected {
		if ok {
			n++
		}
	}
	return n
}

func (m *Model) move(delta int) {
	if len(m.sections) == 0 {
		return
	}
	m.cursor = max(0, min(len(m.sections)-1, m.cursor+delta))

	rows := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.showPreview()
}

func (m *Model) toggleAll() {
	all := m.SelectedCount() == len(m.selected)
	for i := range m.selected {
		m.selected[i] = !all
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	frame := m.styles.preview.GetHorizontalFrameSize()
	m.viewport.Width = max(10, width-m.listWidth()-frame-2)
	m.viewport.Height = m.bodyHeight()
}

func (m *Model) showPreview() {
	if len(m.sections) == 0 {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.sections[m.cursor].Content)
	m.viewport.GotoTop()
}

func (m Model) listWidth() int {
	return max(20, m.width/listRatio)
}

func (m Model) bodyHeight() int {
	return max(3, m.height-chromeHeight)
}

// Review shows the review screen and returns the indices of the sections the
// user selected. It returns ErrCancelled when the user quits.
func Review(sections []Section, opts ...tea.ProgramOption) ([]int, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(NewModel(sections), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("run review: %w", err)
	}

	m, ok := final.(Model)
	if !ok || !m.Confirmed() {
		return nil, ErrCancelled
	}
	return m.Selected(), nil
}

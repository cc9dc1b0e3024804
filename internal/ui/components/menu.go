package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuItem is one entry of a Menu
type MenuItem struct {
	Label  string
	Danger bool
}

// MenuSelectMsg reports the chosen entry index
type MenuSelectMsg struct {
	Index int
}

// MenuCloseMsg is sent when the menu is dismissed without a choice
type MenuCloseMsg struct{}

// Menu is a small vertical popup menu, used for row actions
type Menu struct {
	Title  string
	items  []MenuItem
	cursor int
	open   bool

	up     key.Binding
	down   key.Binding
	choose key.Binding
	cancel key.Binding
}

// NewMenu creates a closed menu
func NewMenu() Menu {
	return Menu{
		up:     key.NewBinding(key.WithKeys("up", "k")),
		down:   key.NewBinding(key.WithKeys("down", "j")),
		choose: key.NewBinding(key.WithKeys("enter")),
		cancel: key.NewBinding(key.WithKeys("esc", "q")),
	}
}

// Open shows the menu with the cursor on the first item
func (m *Menu) Open(title string, items []MenuItem) {
	m.Title = title
	m.items = items
	m.cursor = 0
	m.open = len(items) > 0
}

// IsOpen reports whether the menu is visible
func (m Menu) IsOpen() bool {
	return m.open
}

// Items returns the entries of the menu
func (m Menu) Items() []MenuItem {
	return m.items
}

// Update moves the cursor or closes the menu with a choice
func (m *Menu) Update(msg tea.Msg) tea.Cmd {
	if !m.open {
		return nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(keyMsg, m.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.choose):
		m.open = false
		index := m.cursor
		return func() tea.Msg { return MenuSelectMsg{Index: index} }
	case key.Matches(keyMsg, m.cancel):
		m.open = false
		return func() tea.Msg { return MenuCloseMsg{} }
	}

	return nil
}

// View renders the menu card, or "" when closed
func (m Menu) View() string {
	if !m.open {
		return ""
	}

	lines := []string{lipgloss.NewStyle().Bold(true).Render(m.Title)}
	for i, item := range m.items {
		style := lipgloss.NewStyle()
		if item.Danger {
			style = style.Foreground(lipgloss.Color("196"))
		}

		prefix := "  "
		if i == m.cursor {
			prefix = "> "
			style = style.Bold(true)
		}
		lines = append(lines, prefix+style.Render(item.Label))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

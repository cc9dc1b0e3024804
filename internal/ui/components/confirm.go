package components

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmSubmitMsg is sent when the user accepts the dialog
type ConfirmSubmitMsg[T any] struct {
	Payload T
}

// ConfirmCancelMsg is sent when the user dismisses the dialog
type ConfirmCancelMsg[T any] struct {
	Payload T
}

// Confirm is a yes/no modal carrying a typed payload between open and submit
type Confirm[T any] struct {
	Title   string
	Content string
	payload T
	open    bool

	yes key.Binding
	no  key.Binding
}

// NewConfirm creates a closed dialog
func NewConfirm[T any]() Confirm[T] {
	return Confirm[T]{
		yes: key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y", "confirm")),
		no:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "cancel")),
	}
}

// Open shows the dialog with the given prompt and payload
func (c *Confirm[T]) Open(title, content string, payload T) {
	c.Title = title
	c.Content = content
	c.payload = payload
	c.open = true
}

// IsOpen reports whether the dialog is visible
func (c Confirm[T]) IsOpen() bool {
	return c.open
}

// Payload returns the payload of the open dialog
func (c Confirm[T]) Payload() T {
	return c.payload
}

// Update handles keys while the dialog is open. It closes on submit or cancel.
func (c *Confirm[T]) Update(msg tea.Msg) tea.Cmd {
	if !c.open {
		return nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	payload := c.payload
	switch {
	case key.Matches(keyMsg, c.yes):
		c.close()
		return func() tea.Msg { return ConfirmSubmitMsg[T]{Payload: payload} }
	case key.Matches(keyMsg, c.no):
		c.close()
		return func() tea.Msg { return ConfirmCancelMsg[T]{Payload: payload} }
	}

	return nil
}

func (c *Confirm[T]) close() {
	var zero T
	c.open = false
	c.payload = zero
}

// View renders the dialog card, or "" when closed
func (c Confirm[T]) View() string {
	if !c.open {
		return ""
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196")).
		Render(c.Title)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render("y confirm · n cancel")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", c.Content, "", hint))
}

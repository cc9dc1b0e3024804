package components

import (
	"fmt"
	"subsctl/internal/models"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FiltersChangedMsg asks the owner of the filters to apply a new set
type FiltersChangedMsg struct {
	Filters models.Filters
}

// StatusChoices is the cycle order of the status filter; "" means all
var StatusChoices = []models.Status{
	"",
	models.StatusActive,
	models.StatusExpired,
	models.StatusPending,
	models.StatusCancelled,
	models.StatusDeleted,
}

// FilterBar edits the search and status filters above the table
type FilterBar struct {
	input    textinput.Model
	current  models.Filters
	disabled bool
}

// NewFilterBar creates a blurred filter bar showing the given filters
func NewFilterBar(filters models.Filters) FilterBar {
	input := textinput.New()
	input.Placeholder = "search member, package or service"
	input.Prompt = "/ "
	input.CharLimit = 120
	input.Width = 40

	b := FilterBar{input: input}
	b.Sync(filters)
	return b
}

// Sync updates the bar to reflect filters applied by its owner
func (b *FilterBar) Sync(filters models.Filters) {
	b.current = filters
	if !b.input.Focused() {
		b.input.SetValue(filters.Search)
	}
}

// SetDisabled disables editing while a fetch is running
func (b *FilterBar) SetDisabled(disabled bool) {
	b.disabled = disabled
}

// Focus starts editing the search text
func (b *FilterBar) Focus() tea.Cmd {
	if b.disabled {
		return nil
	}
	return b.input.Focus()
}

// Focused reports whether the search input has the keyboard
func (b FilterBar) Focused() bool {
	return b.input.Focused()
}

// CycleStatus moves to the next status filter and resets to the first page
func (b *FilterBar) CycleStatus() tea.Cmd {
	if b.disabled {
		return nil
	}

	next := 0
	for i, status := range StatusChoices {
		if status == b.current.Status {
			next = (i + 1) % len(StatusChoices)
			break
		}
	}

	filters := b.current
	filters.Status = StatusChoices[next]
	filters.Page = 1
	return changed(filters)
}

// Update handles keys while the search input is focused
func (b *FilterBar) Update(msg tea.Msg) tea.Cmd {
	if !b.input.Focused() {
		return nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			b.input.Blur()
			filters := b.current
			filters.Search = b.input.Value()
			filters.Page = 1
			if filters.Equal(b.current) {
				return nil
			}
			return changed(filters)
		case tea.KeyEsc:
			b.input.Blur()
			b.input.SetValue(b.current.Search)
			return nil
		}
	}

	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return cmd
}

// View renders the search input and the active status filter
func (b FilterBar) View() string {
	status := string(b.current.Status)
	if status == "" {
		status = "all"
	}

	statusView := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render(fmt.Sprintf("status: %s (s)", status))

	inputView := b.input.View()
	if b.disabled {
		inputView = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(inputView)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, inputView, "  ", statusView)
}

func changed(filters models.Filters) tea.Cmd {
	return func() tea.Msg { return FiltersChangedMsg{Filters: filters} }
}

package ui

import (
	"context"
	"fmt"
	"subsctl/internal/api"
	"subsctl/internal/models"
	"subsctl/internal/ui/components"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// DataSource is the subscriptions API as seen by the list screen
type DataSource interface {
	ListSubscriptions(ctx context.Context, filters models.Filters) (*models.SubscriptionPage, error)
	DeleteSubscription(ctx context.Context, id int64) error
}

// Notifier surfaces transient messages to the user
type Notifier interface {
	Notify(kind components.NotificationKind, text string) tea.Cmd
}

// LoadState is the data currently shown by the list screen
type LoadState struct {
	Items     []models.Subscription
	Meta      models.PageMeta
	IsLoading bool
}

const (
	deleteTitle  = "Delete"
	deletePrompt = "Are you sure want to delete item?"
)

// lines used by the filter bar, loader and pagination around the table
const listChromeHeight = 5

// Messages
type subscriptionsLoadedMsg struct {
	seq  uint64
	page *models.SubscriptionPage
}

type subscriptionsFailedMsg struct {
	seq uint64
	err error
}

type submitFinishedMsg struct {
	payload DialogPayload
	err     error
}

// ListScreen lists subscriptions with filtering, pagination, row actions and
// a delete confirmation. Filters are owned by the caller: the screen asks for
// changes with components.FiltersChangedMsg and applies them in SetFilters.
type ListScreen struct {
	source   DataSource
	notifier Notifier
	format   Format
	keys     keyMap

	filters models.Filters
	state   LoadState

	// ctx lives as long as the screen; every fetch derives its own child
	ctx         context.Context
	stop        context.CancelFunc
	cancelFetch context.CancelFunc
	seq         uint64
	active      bool

	table       table.Model
	spinner     spinner.Model
	paginator   paginator.Model
	filterBar   components.FilterBar
	menu        components.Menu
	menuRow     models.Subscription
	menuActions []Action
	confirm     components.Confirm[DialogPayload]

	width  int
	height int
}

// NewListScreen creates an active list screen; Init performs the first fetch
func NewListScreen(parent context.Context, source DataSource, notifier Notifier, format Format, filters models.Filters) *ListScreen {
	ctx, stop := context.WithCancel(parent)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	t := table.New(
		table.WithColumns(Columns(100)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	p := paginator.New()
	p.Type = paginator.Arabic
	p.ArabicFormat = "Page %d of %d"

	return &ListScreen{
		source:    source,
		notifier:  notifier,
		format:    format,
		keys:      defaultKeyMap(),
		filters:   filters,
		ctx:       ctx,
		stop:      stop,
		active:    true,
		table:     t,
		spinner:   s,
		paginator: p,
		filterBar: components.NewFilterBar(filters),
		menu:      components.NewMenu(),
		confirm:   components.NewConfirm[DialogPayload](),
		width:     100,
		height:    20,
	}
}

// Init performs the fetch for the initial filters
func (s *ListScreen) Init() tea.Cmd {
	return s.load()
}

// Filters returns the filters the screen currently shows
func (s *ListScreen) Filters() models.Filters {
	return s.filters
}

// State returns the current load state
func (s *ListScreen) State() LoadState {
	return s.state
}

// Active reports whether the screen has not been closed
func (s *ListScreen) Active() bool {
	return s.active
}

// CapturesInput reports whether a dialog, menu or the search input has the keyboard
func (s *ListScreen) CapturesInput() bool {
	return s.confirm.IsOpen() || s.menu.IsOpen() || s.filterBar.Focused()
}

// SetFilters applies filters chosen by the owner and re-fetches when they changed
func (s *ListScreen) SetFilters(filters models.Filters) tea.Cmd {
	if filters.Equal(s.filters) {
		return nil
	}
	s.filters = filters
	s.filterBar.Sync(filters)
	return s.load()
}

// Reload fetches the current filters again
func (s *ListScreen) Reload() tea.Cmd {
	return s.load()
}

// Close tears the screen down. In-flight requests are cancelled and late
// results are ignored.
func (s *ListScreen) Close() {
	s.active = false
	s.cancelFetch = nil
	s.stop()
}

// SetSize lays the table out for the given terminal area
func (s *ListScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.table.SetColumns(Columns(width))
	s.table.SetWidth(width)
	s.table.SetHeight(lo.Max([]int{height - listChromeHeight, 3}))
}

// load starts a fetch for the current filters. Any fetch still in flight is
// cancelled and its result will not be applied.
func (s *ListScreen) load() tea.Cmd {
	if !s.active {
		return nil
	}

	if s.cancelFetch != nil {
		s.cancelFetch()
	}

	s.seq++
	seq := s.seq
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelFetch = cancel

	s.state.IsLoading = true
	s.filterBar.SetDisabled(true)

	source := s.source
	filters := s.filters
	fetch := func() tea.Msg {
		page, err := source.ListSubscriptions(ctx, filters)
		if err != nil {
			return subscriptionsFailedMsg{seq: seq, err: err}
		}
		if page == nil {
			page = &models.SubscriptionPage{}
		}
		return subscriptionsLoadedMsg{seq: seq, page: page}
	}

	return tea.Batch(s.spinner.Tick, fetch)
}

func (s *ListScreen) finishFetch() {
	if s.cancelFetch != nil {
		s.cancelFetch()
		s.cancelFetch = nil
	}
	s.state.IsLoading = false
	s.filterBar.SetDisabled(false)
}

// Update handles screen messages. Nothing changes once the screen is closed.
func (s *ListScreen) Update(msg tea.Msg) tea.Cmd {
	if !s.active {
		return nil
	}

	switch msg := msg.(type) {
	case subscriptionsLoadedMsg:
		if msg.seq != s.seq {
			return nil
		}
		s.finishFetch()
		s.state.Items = msg.page.Items
		s.state.Meta = msg.page.Meta
		s.syncTable()
		s.syncPaginator()
		return nil

	case subscriptionsFailedMsg:
		if msg.seq != s.seq {
			return nil
		}
		s.finishFetch()
		return s.notifier.Notify(components.NotifyError, api.ErrorMessage(msg.err))

	case components.MenuSelectMsg:
		if msg.Index < 0 || msg.Index >= len(s.menuActions) {
			return nil
		}
		return s.runAction(s.menuActions[msg.Index], s.menuRow)

	case components.MenuCloseMsg:
		s.menuActions = nil
		return nil

	case components.ConfirmSubmitMsg[DialogPayload]:
		return s.submit(msg.Payload)

	case components.ConfirmCancelMsg[DialogPayload]:
		return nil

	case submitFinishedMsg:
		var cmds []tea.Cmd
		switch {
		case msg.err != nil:
			cmds = append(cmds, s.notifier.Notify(components.NotifyError, api.ErrorMessage(msg.err)))
		case msg.payload.Kind == ActionDelete:
			cmds = append(cmds, s.notifier.Notify(components.NotifySuccess, fmt.Sprintf("Subscription #%d deleted", msg.payload.ID)))
		}
		// The list reloads after every submit, whatever its outcome
		cmds = append(cmds, s.load())
		return tea.Batch(cmds...)

	case spinner.TickMsg:
		if !s.state.IsLoading {
			return nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s.filterBar.Update(msg)
}

func (s *ListScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case s.confirm.IsOpen():
		return s.confirm.Update(msg)
	case s.menu.IsOpen():
		return s.menu.Update(msg)
	case s.filterBar.Focused():
		return s.filterBar.Update(msg)
	}

	switch {
	case key.Matches(msg, s.keys.Actions):
		s.openMenu()
		return nil
	case key.Matches(msg, s.keys.View):
		return s.shortcut(ActionView)
	case key.Matches(msg, s.keys.Edit):
		return s.shortcut(ActionEdit)
	case key.Matches(msg, s.keys.Delete):
		return s.shortcut(ActionDelete)
	case key.Matches(msg, s.keys.PrevPage):
		if s.state.IsLoading || !s.state.Meta.HasPrev() {
			return nil
		}
		return filtersChanged(s.filters.WithPage(s.state.Meta.Page() - 1))
	case key.Matches(msg, s.keys.NextPage):
		if s.state.IsLoading || !s.state.Meta.HasNext() {
			return nil
		}
		return filtersChanged(s.filters.WithPage(s.state.Meta.Page() + 1))
	case key.Matches(msg, s.keys.Search):
		return s.filterBar.Focus()
	case key.Matches(msg, s.keys.Status):
		return s.filterBar.CycleStatus()
	case key.Matches(msg, s.keys.Reload):
		return s.load()
	}

	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	return cmd
}

// selected returns the subscription under the table cursor
func (s *ListScreen) selected() (models.Subscription, bool) {
	idx := s.table.Cursor()
	if idx < 0 || idx >= len(s.state.Items) {
		return models.Subscription{}, false
	}
	return s.state.Items[idx], true
}

func (s *ListScreen) openMenu() {
	row, ok := s.selected()
	if !ok {
		return
	}

	s.menuRow = row
	s.menuActions = RowActions(row)
	items := lo.Map(s.menuActions, func(a Action, _ int) components.MenuItem {
		return components.MenuItem{Label: a.Label, Danger: a.Danger}
	})
	s.menu.Open(fmt.Sprintf("Subscription #%d", row.ID), items)
}

// shortcut runs a row action directly, only if the row offers it
func (s *ListScreen) shortcut(kind ActionKind) tea.Cmd {
	row, ok := s.selected()
	if !ok {
		return nil
	}

	action, ok := findAction(RowActions(row), kind)
	if !ok {
		return nil
	}
	return s.runAction(action, row)
}

// runAction dispatches a chosen row action
func (s *ListScreen) runAction(action Action, row models.Subscription) tea.Cmd {
	s.menuActions = nil

	switch action.Kind {
	case ActionEdit, ActionView:
		return navigate(action.Href)
	case ActionDelete:
		s.confirm.Open(deleteTitle, deletePrompt, DialogPayload{ID: row.ID, Kind: ActionDelete})
		return nil
	default:
		return nil
	}
}

// submit performs the confirmed payload; the result triggers the reload
func (s *ListScreen) submit(payload DialogPayload) tea.Cmd {
	source := s.source
	ctx := s.ctx

	return func() tea.Msg {
		var err error
		switch payload.Kind {
		case ActionDelete:
			err = source.DeleteSubscription(ctx, payload.ID)
		case ActionEdit, ActionView:
			// Nothing to submit for navigation actions
		}
		return submitFinishedMsg{payload: payload, err: err}
	}
}

func (s *ListScreen) syncTable() {
	rows := s.format.Rows(s.state.Items)
	s.table.SetRows(rows)
	if s.table.Cursor() >= len(rows) || s.table.Cursor() < 0 {
		s.table.SetCursor(lo.Max([]int{len(rows) - 1, 0}))
	}
}

func (s *ListScreen) syncPaginator() {
	s.paginator.TotalPages = s.state.Meta.Pages()
	s.paginator.Page = lo.Min([]int{s.state.Meta.Page(), s.paginator.TotalPages}) - 1
}

// PaginationView renders "Page 2 of 2 · 30 subscriptions", or "" while loading
func (s *ListScreen) PaginationView() string {
	if s.state.IsLoading {
		return ""
	}
	return fmt.Sprintf("%s · %d subscriptions", s.paginator.View(), s.state.Meta.Total)
}

// View renders the filter bar, table, loader and any open overlay
func (s *ListScreen) View() string {
	body := s.table.View()
	if len(s.state.Items) == 0 && !s.state.IsLoading {
		body = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(1, 1).
			Render("No subscriptions found.")
	}

	switch {
	case s.confirm.IsOpen():
		body = lipgloss.Place(s.width, s.table.Height()+2, lipgloss.Center, lipgloss.Center, s.confirm.View())
	case s.menu.IsOpen():
		body = lipgloss.Place(s.width, s.table.Height()+2, lipgloss.Center, lipgloss.Center, s.menu.View())
	}

	loader := ""
	if s.state.IsLoading {
		loader = fmt.Sprintf("%s Loading subscriptions...", s.spinner.View())
	}

	pagination := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1).
		Render(s.PaginationView())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.filterBar.View(),
		loader,
		body,
		pagination,
	)
}

func filtersChanged(filters models.Filters) tea.Cmd {
	return func() tea.Msg { return components.FiltersChangedMsg{Filters: filters} }
}

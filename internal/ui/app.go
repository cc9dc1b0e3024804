package ui

import (
	"context"
	"fmt"
	"log/slog"
	"subsctl/internal/logging"
	"subsctl/internal/models"
	"subsctl/internal/ui/components"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Client is everything the subscriptions screens need from the API
type Client interface {
	DataSource
	SubscriptionGetter
}

// Options configure the root model
type Options struct {
	Server          string
	PanelURL        string
	Format          Format
	Filters         models.Filters
	NotificationTTL time.Duration
	Logger          *slog.Logger
	// Clipboard receives edit links; defaults to the system clipboard
	Clipboard func(text string) error
}

// App is the root model. It owns the filters, routes between the list and
// detail screens and renders the shared chrome.
type App struct {
	ctx    context.Context
	client Client
	opts   Options
	logger *slog.Logger

	filters  models.Filters
	list     *ListScreen
	detail   *DetailScreen
	notifier *components.Notifier
	help     help.Model
	keys     keyMap

	width  int
	height int
	ready  bool
}

// NewApp creates the root model. The list screen is mounted immediately.
func NewApp(ctx context.Context, client Client, opts Options) *App {
	if opts.NotificationTTL <= 0 {
		opts.NotificationTTL = 4 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	a := &App{
		ctx:      ctx,
		client:   client,
		opts:     opts,
		logger:   opts.Logger,
		filters:  opts.Filters,
		notifier: components.NewNotifier(opts.NotificationTTL),
		help:     help.New(),
		keys:     defaultKeyMap(),
	}
	a.list = NewListScreen(ctx, client, a.notifier, opts.Format, opts.Filters)
	return a
}

// Init mounts the list screen
func (a *App) Init() tea.Cmd {
	return a.list.Init()
}

// Filters returns the filters owned by the app
func (a *App) Filters() models.Filters {
	return a.filters
}

// List returns the list screen
func (a *App) List() *ListScreen {
	return a.list
}

// Detail returns the open detail screen, if any
func (a *App) Detail() *DetailScreen {
	return a.detail
}

// Notifications returns the visible notifications
func (a *App) Notifications() []components.Notification {
	return a.notifier.Items()
}

// Close tears down every screen
func (a *App) Close() {
	a.closeDetail()
	a.list.Close()
}

// Update handles UI updates
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.help.Width = msg.Width
		// title, notifications and help
		a.list.SetSize(msg.Width, msg.Height-6)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || (key.Matches(msg, a.keys.Quit) && !a.capturesInput()) {
			a.Close()
			return a, tea.Quit
		}
		if a.detail != nil {
			return a, a.detail.Update(msg)
		}
		return a, a.list.Update(msg)

	case components.FiltersChangedMsg:
		a.filters = msg.Filters
		a.logger.Debug("filters changed", "query", msg.Filters.Encode())
		return a, a.list.SetFilters(msg.Filters)

	case NavigateMsg:
		return a, a.navigate(msg.Path)

	case NavigateBackMsg:
		a.closeDetail()
		return a, nil

	case components.NotificationExpiredMsg:
		a.notifier.Update(msg)
		return a, nil
	}

	cmds := []tea.Cmd{a.list.Update(msg)}
	if a.detail != nil {
		cmds = append(cmds, a.detail.Update(msg))
	}
	return a, tea.Batch(cmds...)
}

func (a *App) capturesInput() bool {
	return a.detail == nil && a.list.CapturesInput()
}

func (a *App) closeDetail() {
	if a.detail != nil {
		a.detail.Close()
		a.detail = nil
	}
}

// navigate opens a path produced by a row action
func (a *App) navigate(path string) tea.Cmd {
	route, err := ParseRoute(path)
	if err != nil {
		a.logger.Warn("navigation failed", "path", path, "error", err)
		return a.notifier.Notify(components.NotifyWarning, err.Error())
	}

	a.logger.Debug("navigate", "path", path)

	switch route.Kind {
	case RouteView:
		a.closeDetail()
		a.detail = NewDetailScreen(a.ctx, route.ID, a.client, a.notifier, a.opts.Format)
		return a.detail.Init()
	case RouteEdit:
		link := a.opts.PanelURL + path
		if err := a.opts.Clipboard(link); err != nil {
			a.logger.Warn("clipboard unavailable", "error", err)
			return a.notifier.Notify(components.NotifyWarning, fmt.Sprintf("Open %s to edit", link))
		}
		return a.notifier.Notify(components.NotifyInfo, fmt.Sprintf("Edit link copied: %s", link))
	default:
		return nil
	}
}

// View renders the UI
func (a *App) View() string {
	if !a.ready {
		return "Initializing..."
	}

	titleBar := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		Padding(0, 1).
		Render(fmt.Sprintf("Manage Subscriptions - %s", a.opts.Server))

	var body, helpView string
	if a.detail != nil {
		body = a.detail.View()
	} else {
		body = a.list.View()
		helpView = lipgloss.NewStyle().Padding(0, 1).Render(a.help.View(a.keys))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleBar,
		body,
		a.notifier.View(),
		helpView,
	)
}

// Run starts the interactive program and blocks until it exits
func Run(ctx context.Context, app *App) error {
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running UI: %w", err)
	}
	return nil
}

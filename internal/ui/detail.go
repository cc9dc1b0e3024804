package ui

import (
	"context"
	"fmt"
	"strings"
	"subsctl/internal/api"
	"subsctl/internal/models"
	"subsctl/internal/ui/components"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SubscriptionGetter loads a single subscription
type SubscriptionGetter interface {
	GetSubscription(ctx context.Context, id int64) (*models.Subscription, error)
}

type subscriptionLoadedMsg struct {
	seq uint64
	sub *models.Subscription
}

type subscriptionFailedMsg struct {
	seq uint64
	err error
}

// DetailScreen shows one subscription
type DetailScreen struct {
	id       int64
	source   SubscriptionGetter
	notifier Notifier
	format   Format
	keys     keyMap

	ctx    context.Context
	stop   context.CancelFunc
	seq    uint64
	active bool

	sub       *models.Subscription
	isLoading bool
	spinner   spinner.Model
}

// NewDetailScreen creates a detail screen for the subscription with the given ID
func NewDetailScreen(parent context.Context, id int64, source SubscriptionGetter, notifier Notifier, format Format) *DetailScreen {
	ctx, stop := context.WithCancel(parent)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &DetailScreen{
		id:       id,
		source:   source,
		notifier: notifier,
		format:   format,
		keys:     defaultKeyMap(),
		ctx:      ctx,
		stop:     stop,
		active:   true,
		spinner:  s,
	}
}

// Init loads the subscription
func (d *DetailScreen) Init() tea.Cmd {
	return d.load()
}

// ID returns the subscription shown by the screen
func (d *DetailScreen) ID() int64 {
	return d.id
}

// Subscription returns the loaded subscription, nil until loaded
func (d *DetailScreen) Subscription() *models.Subscription {
	return d.sub
}

// Close cancels any pending request
func (d *DetailScreen) Close() {
	d.active = false
	d.stop()
}

func (d *DetailScreen) load() tea.Cmd {
	if !d.active {
		return nil
	}

	d.seq++
	seq := d.seq
	d.isLoading = true

	ctx := d.ctx
	source := d.source
	id := d.id
	fetch := func() tea.Msg {
		sub, err := source.GetSubscription(ctx, id)
		if err != nil {
			return subscriptionFailedMsg{seq: seq, err: err}
		}
		return subscriptionLoadedMsg{seq: seq, sub: sub}
	}

	return tea.Batch(d.spinner.Tick, fetch)
}

// Update handles detail screen messages
func (d *DetailScreen) Update(msg tea.Msg) tea.Cmd {
	if !d.active {
		return nil
	}

	switch msg := msg.(type) {
	case subscriptionLoadedMsg:
		if msg.seq != d.seq {
			return nil
		}
		d.isLoading = false
		d.sub = msg.sub
		return nil

	case subscriptionFailedMsg:
		if msg.seq != d.seq {
			return nil
		}
		d.isLoading = false
		return d.notifier.Notify(components.NotifyError, api.ErrorMessage(msg.err))

	case spinner.TickMsg:
		if !d.isLoading {
			return nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, d.keys.Back):
			return func() tea.Msg { return NavigateBackMsg{} }
		case key.Matches(msg, d.keys.Edit):
			return navigate(EditSubscriptionPath(d.id))
		case key.Matches(msg, d.keys.Reload):
			return d.load()
		}
	}

	return nil
}

// View renders the subscription as a labelled card
func (d *DetailScreen) View() string {
	if d.sub == nil {
		if d.isLoading {
			return fmt.Sprintf("%s Loading subscription #%d...", d.spinner.View(), d.id)
		}
		return fmt.Sprintf("Subscription #%d could not be loaded. Press r to retry, esc to go back.", d.id)
	}

	label := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(12)
	sub := d.sub

	fields := [][2]string{
		{"ID", fmt.Sprintf("%d", sub.ID)},
		{"Member", MemberCell(sub.Member)},
		{"Package", d.format.PackageLabel(*sub)},
		{"Service", sub.Service.Name},
		{"Status", StatusBadge(sub.Status)},
		{"Expiration", d.format.Date(sub.ExpiresAt)},
	}

	var b strings.Builder
	for _, f := range fields {
		b.WriteString(label.Render(f[0]))
		b.WriteString(f[1])
		b.WriteString("\n")
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("39")).
		Padding(0, 1).
		Render(strings.TrimRight(b.String(), "\n"))

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1).
		Render("esc back · e edit · r reload")

	return lipgloss.JoinVertical(lipgloss.Left, card, help)
}

package components

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// NotificationKind selects the color of a notification
type NotificationKind int

const (
	NotifyInfo NotificationKind = iota
	NotifySuccess
	NotifyWarning
	NotifyError
)

// String returns the lowercase name of the kind
func (k NotificationKind) String() string {
	switch k {
	case NotifySuccess:
		return "success"
	case NotifyWarning:
		return "warning"
	case NotifyError:
		return "error"
	default:
		return "info"
	}
}

// Notification is one transient message shown to the user
type Notification struct {
	ID   int
	Kind NotificationKind
	Text string
}

// NotificationExpiredMsg removes a notification once its TTL passes
type NotificationExpiredMsg struct {
	ID int
}

// maxVisible is how many notifications are rendered at once
const maxVisible = 3

// Notifier keeps a queue of transient notifications
type Notifier struct {
	TTL    time.Duration
	items  []Notification
	nextID int
}

// NewNotifier creates a notifier whose messages expire after ttl
func NewNotifier(ttl time.Duration) *Notifier {
	return &Notifier{TTL: ttl}
}

// Notify queues a notification and returns the command that expires it
func (n *Notifier) Notify(kind NotificationKind, text string) tea.Cmd {
	n.nextID++
	id := n.nextID
	n.items = append(n.items, Notification{ID: id, Kind: kind, Text: text})

	return tea.Tick(n.TTL, func(time.Time) tea.Msg {
		return NotificationExpiredMsg{ID: id}
	})
}

// Update drops expired notifications and reports whether msg was handled
func (n *Notifier) Update(msg tea.Msg) bool {
	expired, ok := msg.(NotificationExpiredMsg)
	if !ok {
		return false
	}

	for i, item := range n.items {
		if item.ID == expired.ID {
			n.items = append(n.items[:i], n.items[i+1:]...)
			break
		}
	}
	return true
}

// Items returns the queued notifications, oldest first
func (n *Notifier) Items() []Notification {
	return n.items
}

// View renders the newest notifications, one per line
func (n *Notifier) View() string {
	items := n.items
	if len(items) > maxVisible {
		items = items[len(items)-maxVisible:]
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, notificationStyle(item.Kind).Render(item.Text))
	}
	return strings.Join(lines, "\n")
}

func notificationStyle(kind NotificationKind) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch kind {
	case NotifySuccess:
		return style.Foreground(lipgloss.Color("10"))
	case NotifyWarning:
		return style.Foreground(lipgloss.Color("11"))
	case NotifyError:
		return style.Foreground(lipgloss.Color("196"))
	default:
		return style.Foreground(lipgloss.Color("39"))
	}
}

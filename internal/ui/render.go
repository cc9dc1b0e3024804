package ui

import (
	"fmt"
	"strings"
	"subsctl/internal/models"
	"subsctl/internal/util"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// Headers is the fixed, ordered header of the subscriptions table
var Headers = []string{
	"ID",
	"Member",
	"Package",
	"Service",
	"Status",
	"Expiration",
	"Actions",
}

// columnWeights splits the available width between the columns above
var columnWeights = []int{6, 20, 24, 14, 10, 16, 18}

// Format holds the display settings for amounts and dates
type Format struct {
	Currency   string
	DateLayout string
	Location   *time.Location
}

// DefaultFormat matches the config defaults
func DefaultFormat() Format {
	return Format{Currency: "$", DateLayout: "2006-01-02 15:04", Location: time.Local}
}

// Amount formats a package amount with the configured currency symbol
func (f Format) Amount(amount models.Amount) string {
	return util.FormatAmount(f.Currency, string(amount))
}

// Date formats an expiration timestamp
func (f Format) Date(t *time.Time) string {
	return util.FormatDate(t, f.DateLayout, f.Location)
}

// MemberLabel is the display name of a member, falling back to the email
func MemberLabel(m models.Member) string {
	switch {
	case m.Name != "":
		return m.Name
	case m.Email != "":
		return m.Email
	default:
		return "-"
	}
}

// MemberCell is the member label followed by the email, e.g. "Ann Lee <ann@example.com>"
func MemberCell(m models.Member) string {
	label := MemberLabel(m)
	if m.Email == "" || m.Email == label {
		return label
	}
	return fmt.Sprintf("%s <%s>", label, m.Email)
}

// PackageLabel renders "Gold $19.99 monthly"
func (f Format) PackageLabel(sub models.Subscription) string {
	label := fmt.Sprintf("%s %s", sub.Package.Name, f.Amount(sub.Package.Amount))
	if sub.Cycle.Name != "" {
		label += " " + strings.ToLower(sub.Cycle.Name)
	}
	return strings.TrimSpace(label)
}

// RowCells projects a subscription onto the table columns
func (f Format) RowCells(sub models.Subscription) []string {
	actions := lo.Map(RowActions(sub), func(a Action, _ int) string {
		return a.Kind.String()
	})

	return []string{
		fmt.Sprintf("%d", sub.ID),
		MemberCell(sub.Member),
		f.PackageLabel(sub),
		sub.Service.Name,
		sub.Status.String(),
		f.Date(sub.ExpiresAt),
		strings.Join(actions, " "),
	}
}

// Rows projects a page of subscriptions onto table rows
func (f Format) Rows(items []models.Subscription) []table.Row {
	return lo.Map(items, func(sub models.Subscription, _ int) table.Row {
		return table.Row(f.RowCells(sub))
	})
}

// Columns sizes the table columns for the given terminal width
func Columns(width int) []table.Column {
	total := lo.Sum(columnWeights)
	// Each cell carries one column of padding on either side
	available := width - 2*len(Headers)
	if available < total {
		available = total
	}

	columns := make([]table.Column, len(Headers))
	for i, title := range Headers {
		columns[i] = table.Column{Title: title, Width: available * columnWeights[i] / total}
	}
	return columns
}

// StatusBadge renders a colored status label
func StatusBadge(status models.Status) string {
	return statusStyle(status).Render(" " + status.String() + " ")
}

func statusStyle(status models.Status) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0"))
	switch status {
	case models.StatusActive:
		return style.Background(lipgloss.Color("10"))
	case models.StatusDeleted:
		return style.Background(lipgloss.Color("196"))
	case models.StatusExpired, models.StatusCancelled:
		return style.Background(lipgloss.Color("11"))
	default:
		return style.Background(lipgloss.Color("245"))
	}
}

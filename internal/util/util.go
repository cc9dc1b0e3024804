package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatAmount formats an amount with a currency symbol, e.g. "$19.99".
// Amounts that don't parse as numbers are printed as given.
func FormatAmount(symbol, amount string) string {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return symbol + "0.00"
	}

	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return symbol + amount
	}

	if value < 0 {
		return fmt.Sprintf("-%s%.2f", symbol, -value)
	}
	return fmt.Sprintf("%s%.2f", symbol, value)
}

// FormatDate formats a timestamp in the given location, or "-" when unset
func FormatDate(t *time.Time, layout string, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	if layout == "" {
		layout = time.RFC3339
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(layout)
}

// ParseID parses a positive numeric id such as a subscription id
func ParseID(str string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Truncate shortens s to at most width runes, marking the cut with "…"
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

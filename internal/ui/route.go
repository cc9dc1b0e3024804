package ui

import (
	"fmt"
	"strings"
	"subsctl/internal/util"

	tea "github.com/charmbracelet/bubbletea"
)

// RouteKind identifies a screen reachable by path
type RouteKind int

const (
	RouteView RouteKind = iota + 1
	RouteEdit
)

// Route is a parsed navigation target
type Route struct {
	Kind RouteKind
	ID   int64
}

// NavigateMsg asks the app to open a path such as /subscriptions/7
type NavigateMsg struct {
	Path string
}

// NavigateBackMsg closes the current screen and returns to the list
type NavigateBackMsg struct{}

// ParseRoute resolves /subscriptions/{id} and /subscriptions/{id}/edit
func ParseRoute(path string) (Route, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "subscriptions" {
		return Route{}, fmt.Errorf("no route for %s", path)
	}

	id, ok := util.ParseID(parts[1])
	if !ok {
		return Route{}, fmt.Errorf("no route for %s", path)
	}

	if len(parts) == 2 {
		return Route{Kind: RouteView, ID: id}, nil
	}
	if parts[2] == "edit" {
		return Route{Kind: RouteEdit, ID: id}, nil
	}

	return Route{}, fmt.Errorf("no route for %s", path)
}

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

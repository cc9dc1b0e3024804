package ui

import (
	"fmt"
	"subsctl/internal/models"
)

// ActionKind is the closed set of row actions and dialog payload kinds
type ActionKind int

const (
	ActionEdit ActionKind = iota + 1
	ActionView
	ActionDelete
)

// String returns the lowercase name of the action kind
func (k ActionKind) String() string {
	switch k {
	case ActionEdit:
		return "edit"
	case ActionView:
		return "view"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", int(k))
	}
}

// Action is one entry of a row's action menu
type Action struct {
	Kind   ActionKind
	Label  string
	Href   string
	Danger bool
}

// DialogPayload is what the confirmation dialog carries from open to submit
type DialogPayload struct {
	ID   int64
	Kind ActionKind
}

// SubscriptionPath is the route of a subscription's detail view
func SubscriptionPath(id int64) string {
	return fmt.Sprintf("/subscriptions/%d", id)
}

// EditSubscriptionPath is the route of a subscription's edit form
func EditSubscriptionPath(id int64) string {
	return fmt.Sprintf("/subscriptions/%d/edit", id)
}

// RowActions returns Edit, View and, unless already deleted, Delete
func RowActions(sub models.Subscription) []Action {
	actions := []Action{
		{Kind: ActionEdit, Label: "Edit", Href: EditSubscriptionPath(sub.ID)},
		{Kind: ActionView, Label: "View Subscription", Href: SubscriptionPath(sub.ID)},
	}

	if !sub.Status.IsDeleted() {
		actions = append(actions, Action{Kind: ActionDelete, Label: "Delete", Danger: true})
	}

	return actions
}

// findAction returns the row action of the given kind, if offered
func findAction(actions []Action, kind ActionKind) (Action, bool) {
	for _, action := range actions {
		if action.Kind == kind {
			return action, true
		}
	}
	return Action{}, false
}

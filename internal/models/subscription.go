package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Status represents the lifecycle state of a subscription
type Status string

const (
	StatusActive    Status = "active"    // Subscription is billing and usable
	StatusDeleted   Status = "deleted"   // Subscription was removed by an admin
	StatusExpired   Status = "expired"   // Subscription ran past its expiration
	StatusPending   Status = "pending"   // Subscription awaits its first payment
	StatusCancelled Status = "cancelled" // Subscription will not renew
)

// Statuses lists every status the server knows about
var Statuses = []Status{StatusActive, StatusPending, StatusExpired, StatusCancelled, StatusDeleted}

// IsDeleted reports whether the subscription has already been deleted
func (s Status) IsDeleted() bool {
	return s == StatusDeleted
}

// String returns the status as sent by the server
func (s Status) String() string {
	return string(s)
}

// Amount is a money amount that may arrive as a JSON number or string
type Amount string

// UnmarshalJSON accepts 19.99, "19.99" and null
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid amount %s: %w", string(data), err)
	}
	*a = Amount(n.String())
	return nil
}

// MarshalJSON writes the amount as a JSON number when it parses as one
func (a Amount) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(string(a), 64); err == nil && json.Valid([]byte(a)) {
		return []byte(a), nil
	}
	return json.Marshal(string(a))
}

// Float returns the amount as a float64
func (a Amount) Float() (float64, error) {
	return strconv.ParseFloat(string(a), 64)
}

// Member holds the display fields of the subscribed user
type Member struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Package is the purchasable plan a subscription belongs to
type Package struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Amount Amount `json:"amount"`
}

// Cycle is the billing cycle of a subscription, e.g. "Monthly"
type Cycle struct {
	Name string `json:"name"`
}

// Service is the service a subscription grants access to
type Service struct {
	Name string `json:"name"`
}

// Subscription represents a subscription record as returned by the API
type Subscription struct {
	ID        int64      `json:"id"`
	Member    Member     `json:"user"`
	Package   Package    `json:"package"`
	Cycle     Cycle      `json:"cycle"`
	Service   Service    `json:"service"`
	Status    Status     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// SubscriptionPage is one page of subscriptions with its pagination metadata
type SubscriptionPage struct {
	Items []Subscription `json:"data"`
	Meta  PageMeta       `json:"meta"`
}

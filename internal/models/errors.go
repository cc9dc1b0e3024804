package models

import (
	"errors"
)

// Subscription-related errors
var (
	// ErrSubscriptionNotFound is returned when a subscription does not exist
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrInvalidSubscriptionID is returned when an id argument is not a positive integer
	ErrInvalidSubscriptionID = errors.New("invalid subscription id")
)

// Session-related errors
var (
	// ErrUnauthorized is returned when the server rejects the stored token
	ErrUnauthorized = errors.New("not authorized, run 'subsctl login'")

	// ErrNotLoggedIn is returned when no token is stored locally
	ErrNotLoggedIn = errors.New("not logged in")
)

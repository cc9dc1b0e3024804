package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"subsctl/internal/models"
)

// ListSubscriptions retrieves one page of subscriptions matching the filters
func (c *Client) ListSubscriptions(ctx context.Context, filters models.Filters) (*models.SubscriptionPage, error) {
	var page models.SubscriptionPage
	if err := c.do(ctx, http.MethodGet, "subscriptions", filters.Values(), nil, &page); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	if page.Items == nil {
		page.Items = []models.Subscription{}
	}

	return &page, nil
}

// GetSubscription retrieves a subscription by ID
func (c *Client) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	var response struct {
		Data models.Subscription `json:"data"`
	}

	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("subscriptions/%d", id), nil, nil, &response); err != nil {
		return nil, subscriptionError("failed to get subscription", id, err)
	}

	return &response.Data, nil
}

// DeleteSubscription deletes a subscription by ID
func (c *Client) DeleteSubscription(ctx context.Context, id int64) error {
	if _, err := c.send(ctx, http.MethodDelete, fmt.Sprintf("subscriptions/%d", id), nil, nil); err != nil {
		return subscriptionError("subscription deletion failed", id, err)
	}

	return nil
}

// subscriptionError turns a 404 into models.ErrSubscriptionNotFound and wraps everything else
func subscriptionError(action string, id int64, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %d", models.ErrSubscriptionNotFound, id)
	}
	return fmt.Errorf("%s %d: %w", action, id, err)
}

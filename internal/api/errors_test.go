package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"subsctl/internal/models"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDecodeAPIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		fields  int
	}{
		{name: "message", status: 400, body: `{"message": "Bad filter"}`, message: "Bad filter"},
		{name: "error key", status: 403, body: `{"error": "Forbidden for role"}`, message: "Forbidden for role"},
		{name: "field arrays", status: 422, body: `{"errors": {"page": ["Must be positive", "Too big"], "status": "Invalid"}}`, message: "Must be positive", fields: 3},
		{name: "message wins over fields", status: 422, body: `{"message": "Invalid data", "errors": {"page": ["x"]}}`, message: "Invalid data", fields: 1},
		{name: "plain text", status: 502, body: "upstream timeout\n", message: "upstream timeout"},
		{name: "empty body", status: 503, body: "", message: "Service Unavailable (503)"},
		{name: "non string message", status: 500, body: `{"message": {"nested": true}}`, message: "Internal Server Error (500)"},
		{name: "unknown status", status: 599, body: "", message: "Unexpected response (599)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := decodeAPIError(tt.status, []byte(tt.body))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.UserMessage())
			assert.Len(t, apiErr.Fields, tt.fields)
		})
	}
}

func TestErrorMessageIsNeverEmpty(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: fmt.Errorf("wrap: %w", &APIError{StatusCode: http.StatusNotFound}), want: "Not Found (404)"},
		{err: fmt.Errorf("%w: breaker", ErrServiceUnavailable), want: "Service unavailable, try again later"},
		{err: fmt.Errorf("get: %w", context.DeadlineExceeded), want: "Request timed out"},
		{err: models.ErrNotLoggedIn, want: "Not logged in, run 'subsctl login'"},
		{err: errors.New("dial tcp: connection refused"), want: "dial tcp: connection refused"},
		{err: errors.New("  "), want: "Unexpected error"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorMessage(tt.err))
	}
	assert.Equal(t, "", ErrorMessage(nil))
}

func TestDecodeAPIErrorTruncatesPlainBodiesByRune(t *testing.T) {
	body := strings.Repeat("é", 150) + strings.Repeat("ж", 150)

	apiErr := decodeAPIError(http.StatusBadGateway, []byte(body))

	assert.True(t, utf8.ValidString(apiErr.Message))
	assert.Equal(t, 200, utf8.RuneCountInString(apiErr.Message))
	assert.True(t, strings.HasSuffix(apiErr.Message, "…"))
	assert.True(t, strings.HasPrefix(apiErr.Message, strings.Repeat("é", 150)))
}

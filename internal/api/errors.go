package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"subsctl/internal/models"
	"subsctl/internal/util"

	"github.com/go-faster/jx"
)

// ErrServiceUnavailable is returned while the circuit breaker is open
var ErrServiceUnavailable = errors.New("subscriptions API unavailable")

// FieldError is one validation message reported by the server
type FieldError struct {
	Field   string
	Message string
}

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
	Fields     []FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.UserMessage())
}

// Unwrap maps well-known statuses onto model errors
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return models.ErrUnauthorized
	}
	return nil
}

// UserMessage returns the most useful human readable message in the error
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		return e.Fields[0].Message
	}
	text := http.StatusText(e.StatusCode)
	if text == "" {
		text = "Unexpected response"
	}
	return fmt.Sprintf("%s (%d)", text, e.StatusCode)
}

// decodeAPIError reads {"message": "...", "errors": {"field": ["..."]}} bodies.
// Bodies that aren't JSON objects become the message verbatim.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		apiErr.Message = plainMessage(body)
		return apiErr
	}

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "message", "error":
			if d.Next() != jx.String {
				return d.Skip()
			}
			s, err := d.Str()
			if err != nil {
				return err
			}
			if apiErr.Message == "" {
				apiErr.Message = strings.TrimSpace(s)
			}
			return nil
		case "errors":
			if d.Next() != jx.Object {
				return d.Skip()
			}
			return d.Obj(func(d *jx.Decoder, field string) error {
				return decodeFieldMessages(d, field, apiErr)
			})
		default:
			return d.Skip()
		}
	})
	if err != nil && apiErr.Message == "" && len(apiErr.Fields) == 0 {
		apiErr.Message = plainMessage(body)
	}

	return apiErr
}

func decodeFieldMessages(d *jx.Decoder, field string, apiErr *APIError) error {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		apiErr.Fields = append(apiErr.Fields, FieldError{Field: field, Message: s})
		return nil
	case jx.Array:
		return d.Arr(func(d *jx.Decoder) error {
			if d.Next() != jx.String {
				return d.Skip()
			}
			s, err := d.Str()
			if err != nil {
				return err
			}
			apiErr.Fields = append(apiErr.Fields, FieldError{Field: field, Message: s})
			return nil
		})
	default:
		return d.Skip()
	}
}

// maxPlainMessage caps non-JSON error bodies shown to the user, in runes
const maxPlainMessage = 200

func plainMessage(body []byte) string {
	return util.Truncate(strings.ToValidUTF8(strings.TrimSpace(string(body)), "\uFFFD"), maxPlainMessage)
}

// ErrorMessage derives a non-empty notification text from any client error
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.UserMessage()
	case errors.Is(err, ErrServiceUnavailable):
		return "Service unavailable, try again later"
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	case errors.Is(err, models.ErrNotLoggedIn):
		return "Not logged in, run 'subsctl login'"
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return "Unexpected error"
}

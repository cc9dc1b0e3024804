package models

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Filters are the query criteria that select a page of subscriptions
type Filters struct {
	Page    int    `json:"page,omitempty"`
	PerPage int    `json:"per_page,omitempty"`
	Search  string `json:"search,omitempty"`
	Status  Status `json:"status,omitempty"`
	Service string `json:"service,omitempty"`
}

// ParseFilters parses a query string such as "page=2&status=active".
// A leading "?" is ignored and unknown keys are skipped.
func ParseFilters(raw string) (Filters, error) {
	var f Filters

	values, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(raw), "?"))
	if err != nil {
		return f, fmt.Errorf("invalid query %q: %w", raw, err)
	}

	if v := values.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			return f, fmt.Errorf("invalid page %q", v)
		}
		f.Page = page
	}

	if v := values.Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 0 {
			return f, fmt.Errorf("invalid per_page %q", v)
		}
		f.PerPage = perPage
	}

	f.Search = values.Get("search")
	f.Status = Status(values.Get("status"))
	f.Service = values.Get("service")

	return f, nil
}

// Values encodes the filters as query parameters, omitting zero values
func (f Filters) Values() url.Values {
	values := url.Values{}
	if f.Page > 0 {
		values.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(f.PerPage))
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if f.Status != "" {
		values.Set("status", string(f.Status))
	}
	if f.Service != "" {
		values.Set("service", f.Service)
	}
	return values
}

// Encode returns the filters as a sorted query string
func (f Filters) Encode() string {
	return f.Values().Encode()
}

// Equal reports whether two filters select the same page
func (f Filters) Equal(other Filters) bool {
	return f.Encode() == other.Encode()
}

// Merge overlays the non-zero fields of other onto f
func (f Filters) Merge(other Filters) Filters {
	if other.Page > 0 {
		f.Page = other.Page
	}
	if other.PerPage > 0 {
		f.PerPage = other.PerPage
	}
	if other.Search != "" {
		f.Search = other.Search
	}
	if other.Status != "" {
		f.Status = other.Status
	}
	if other.Service != "" {
		f.Service = other.Service
	}
	return f
}

// WithPage returns a copy of the filters pointing at the given page
func (f Filters) WithPage(page int) Filters {
	if page < 1 {
		page = 1
	}
	f.Page = page
	return f
}

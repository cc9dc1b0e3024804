package models

// PageMeta contains the pagination descriptors returned with a page of results
type PageMeta struct {
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	From        int `json:"from"`
	To          int `json:"to"`
}

// Pages returns the number of pages, never less than one
func (m PageMeta) Pages() int {
	pages := m.LastPage
	if m.PerPage > 0 {
		if computed := (m.Total + m.PerPage - 1) / m.PerPage; computed > pages {
			pages = computed
		}
	}
	if pages < 1 {
		return 1
	}
	return pages
}

// Page returns the current page, never less than one
func (m PageMeta) Page() int {
	if m.CurrentPage < 1 {
		return 1
	}
	return m.CurrentPage
}

// HasPrev reports whether a previous page exists
func (m PageMeta) HasPrev() bool {
	return m.Page() > 1
}

// HasNext reports whether a next page exists
func (m PageMeta) HasNext() bool {
	return m.Page() < m.Pages()
}

package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params are the normalized paging inputs for list endpoints.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// FromQuery reads page/per_page from query params, clamping out-of-range
// values to sane defaults instead of erroring.
func FromQuery(query url.Values) Params {
	p := Params{Page: DefaultPage, PerPage: DefaultPerPage}

	if raw := query.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			p.Page = page
		}
	}
	if raw := query.Get("per_page"); raw != "" {
		if perPage, err := strconv.Atoi(raw); err == nil && perPage > 0 {
			p.PerPage = perPage
		}
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}

	return p
}

// Offset converts the page number into a row offset.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Limit returns the row limit for the page.
func (p Params) Limit() int {
	return p.PerPage
}

// Meta is the paging envelope returned alongside list payloads.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta builds the paging envelope for a total row count.
func NewMeta(p Params, total int64) Meta {
	pages := int(total) / p.PerPage
	if int(total)%p.PerPage != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return Meta{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      total,
		TotalPages: pages,
	}
}

// Package listutil parses paging and search query parameters for list endpoints
// and computes the page metadata returned alongside the rows.
package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPerPage is the page size used when per_page is absent or invalid.
const DefaultPerPage = 50

// MaxPerPage caps per_page.
const MaxPerPage = 500

// Query carries the list parameters parsed from a request.
type Query struct {
	Page    int // 1-indexed
	PerPage int
	Search  string
	Filters map[string]string // only keys the endpoint allows
}

// PageInfo is the paging metadata returned with a list.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ParseQuery extracts page, per_page, q and the allowed filters from q.
// PRE: filterKeys lists the accepted filter parameter names
// POST: Page >= 1; 1 <= PerPage <= MaxPerPage; Filters holds only non-empty allowed keys
func ParseQuery(q url.Values, filterKeys ...string) Query {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(q.Get("per_page"))
	switch {
	case err != nil || perPage < 1:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}

	query := Query{
		Page:    page,
		PerPage: perPage,
		Search:  strings.TrimSpace(q.Get("q")),
		Filters: make(map[string]string),
	}
	for _, key := range filterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			query.Filters[key] = v
		}
	}
	return query
}

// Offset returns the SQL OFFSET for the requested page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// Filter returns a pointer to the named filter value, or nil when absent.
func (q Query) Filter(key string) *string {
	v, ok := q.Filters[key]
	if !ok {
		return nil
	}
	return &v
}

// NewPageInfo computes page metadata.
// PRE: total >= 0
// POST: TotalPages >= 1; Page is clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	page = min(max(page, 1), totalPages)
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

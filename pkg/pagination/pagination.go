// Package pagination holds the shared list contract of the identity provider
// API: search/pagination/sort request options and the paginated response
// envelope.
package pagination

import (
	"net/url"
	"strconv"
)

// Sort directions accepted by the server.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Page selects a window of results. Page numbers start at 1. A zero field is
// unset and left to the server default; any other value is sent as is.
type Page struct {
	Page  int `json:"page" yaml:"page"`
	Limit int `json:"limit" yaml:"limit"`
}

// Sort orders results by a column.
type Sort struct {
	Column    string `json:"column" yaml:"column"`
	Direction string `json:"direction" yaml:"direction"`
}

// Request carries optional list options. A nil or zero Request means
// "server defaults".
type Request struct {
	Search     string `json:"search,omitempty" yaml:"search,omitempty"`
	Pagination *Page  `json:"pagination,omitempty" yaml:"pagination,omitempty"`
	Sort       *Sort  `json:"sort,omitempty" yaml:"sort,omitempty"`
}

// Query encodes the options with the bracket notation the server parses
// (pagination[page], sort[column], ...). Unset (zero) fields are omitted, so an
// empty Request encodes to an empty query. Values are not range checked.
func (r *Request) Query() url.Values {
	q := url.Values{}
	if r == nil {
		return q
	}
	if r.Search != "" {
		q.Set("search", r.Search)
	}
	if r.Pagination != nil {
		if r.Pagination.Page != 0 {
			q.Set("pagination[page]", strconv.Itoa(r.Pagination.Page))
		}
		if r.Pagination.Limit != 0 {
			q.Set("pagination[limit]", strconv.Itoa(r.Pagination.Limit))
		}
	}
	if r.Sort != nil {
		if r.Sort.Column != "" {
			q.Set("sort[column]", r.Sort.Column)
		}
		if r.Sort.Direction != "" {
			q.Set("sort[direction]", r.Sort.Direction)
		}
	}
	return q
}

// Info is the pagination metadata returned alongside a page.
type Info struct {
	TotalPages   int `json:"totalPages" yaml:"totalPages"`
	TotalItems   int `json:"totalItems" yaml:"totalItems"`
	CurrentPage  int `json:"currentPage" yaml:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage" yaml:"itemsPerPage"`
}

// Paginated is an ordered page of T plus its metadata.
type Paginated[T any] struct {
	Data       []T  `json:"data" yaml:"data"`
	Pagination Info `json:"pagination" yaml:"pagination"`
}

// HasNext reports whether the server advertised a page after this one.
func (p *Paginated[T]) HasNext() bool {
	return p.Pagination.CurrentPage < p.Pagination.TotalPages
}

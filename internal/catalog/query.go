// Package catalog implements the image catalog: the filtered, paginated,
// optionally text-searched query layer and the validated, authorization-gated
// mutations on top of it.
package catalog

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20

	// DefaultRelatedLimit caps the related-images sample.
	DefaultRelatedLimit = 8

	// minQueryLen is the central minimum-length gate: shorter queries are
	// treated as absent and the request degrades to a plain filtered listing.
	minQueryLen = 3
)

// ListParams are the optional knobs of a catalog read. An empty Query selects
// the plain listing; a non-empty Query switches to text search. Both paths
// share the filter and pagination semantics.
type ListParams struct {
	Query      string
	CategoryID *uint
	Year       *int
	Department string
	Location   string
	Page       int
	Limit      int
}

// Normalize applies pagination defaults and the minimum query length.
// Degenerate page/limit values fall back to the defaults rather than
// producing an empty or unbounded query.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	q := strings.TrimSpace(p.Query)
	if utf8.RuneCountInString(q) < minQueryLen {
		q = ""
	}
	p.Query = q
	return p
}

func (p ListParams) offset() int { return (p.Page - 1) * p.Limit }

// ParseListParams reads ListParams from URL query values. Non-numeric values
// are ignored; Normalize supplies the defaults.
func ParseListParams(values url.Values) ListParams {
	p := ListParams{
		Query:      values.Get("q"),
		Department: values.Get("department"),
		Location:   values.Get("location"),
	}
	if v, err := strconv.Atoi(values.Get("page")); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(values.Get("limit")); err == nil {
		p.Limit = v
	}
	if v, err := strconv.ParseUint(values.Get("category_id"), 10, 32); err == nil {
		id := uint(v)
		p.CategoryID = &id
	}
	if v, err := strconv.Atoi(values.Get("year")); err == nil {
		p.Year = &v
	}
	return p.Normalize()
}

// Page is one slice of the catalog plus the pagination metadata computed from
// the total under the same predicate.
type Page struct {
	Items []ImageRow `json:"items"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Pages int        `json:"pages"`
}

func pageCount(total int64, limit int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

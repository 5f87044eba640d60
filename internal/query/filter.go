// Package query builds the SQL for content listings from a structured
// filter. All caller-supplied values travel as bound arguments; SQL text is
// assembled only from package constants.
package query

import (
	"strings"
)

// Sort selects one of the fixed listing orders.
type Sort string

// Sort orders.
const (
	SortLatest  Sort = "latest"
	SortOldest  Sort = "oldest"
	SortPopular Sort = "popular"
)

// StatusAll disables the status predicate entirely.
const StatusAll = "all"

// DefaultStatus is applied when Filter.Status is empty.
const DefaultStatus = "published"

// ParseSort maps a user string onto a Sort. Unknown and empty values fall
// back to SortLatest.
func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortOldest:
		return SortOldest
	case SortPopular:
		return SortPopular
	default:
		return SortLatest
	}
}

// Filter describes a content listing.
type Filter struct {
	// Search is free text resolved to candidate IDs by the search index.
	// Blank means no search constraint.
	Search string `json:"search" validate:"max=256"`

	// Status: empty lists published items only, StatusAll lists every
	// status, anything else is an exact match.
	Status string `json:"status" validate:"omitempty,slug,max=32"`

	// Type is an exact match on content type when set.
	Type string `json:"type" validate:"omitempty,slug,max=64"`

	// Tags are tag slugs. Content must carry every listed tag.
	Tags []string `json:"tags" validate:"max=20,dive,required,max=96"`

	Sort Sort `json:"sort"`

	// Limit bounds the page size when set.
	Limit *int `json:"limit" validate:"omitempty,gte=1"`

	// Offset only applies together with Limit. An offset without a limit
	// is ignored.
	Offset *int `json:"offset" validate:"omitempty,gte=0"`
}

// WithPage returns a copy of f with limit and offset set.
func (f Filter) WithPage(limit, offset int) Filter {
	f.Limit = &limit
	f.Offset = &offset
	return f
}

// HasSearch reports whether the filter carries a non-blank search query.
func (f Filter) HasSearch() bool {
	return strings.TrimSpace(f.Search) != ""
}

// Int returns a pointer to v, for building filters inline.
func Int(v int) *int { return &v }

package store

// Page is one page of listing results plus the unpaginated total.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit,omitempty"`  // 0 when the listing was unbounded
	Offset int `json:"offset,omitempty"` // 0 when no offset applied
}

// HasMore reports whether items exist past this page.
func (p *Page[T]) HasMore() bool {
	if p.Limit == 0 {
		return false
	}
	return p.Offset+len(p.Items) < p.Total
}

// NextOffset returns the offset of the following page.
func (p *Page[T]) NextOffset() int {
	return p.Offset + len(p.Items)
}

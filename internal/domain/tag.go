package domain

import "time"

// Tag is a global label attached to content.
// Slug is the identity used by filters and never changes once created;
// Name and Color are display fields.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch(now time.Time) {
	t.UpdatedAt = now
}

// TagSlugs returns the slugs of tags in order.
func TagSlugs(tags []*Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Slug)
	}
	return out
}

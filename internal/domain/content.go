package domain

import (
	"slices"
	"time"
)

// ContentType classifies a content item.
type ContentType string

// Content types.
const (
	ContentTypeArticle    ContentType = "article"
	ContentTypeRecipe     ContentType = "recipe"
	ContentTypeComponent  ContentType = "component"
	ContentTypeTemplate   ContentType = "template"
	ContentTypeVideo      ContentType = "video"
	ContentTypeCollection ContentType = "collection"
)

// ContentTypes lists every known type in display order.
var ContentTypes = []ContentType{
	ContentTypeArticle,
	ContentTypeRecipe,
	ContentTypeComponent,
	ContentTypeTemplate,
	ContentTypeVideo,
	ContentTypeCollection,
}

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return slices.Contains(ContentTypes, t)
}

// ContentStatus is the publication state of a content item.
type ContentStatus string

// Content statuses.
const (
	StatusDraft     ContentStatus = "draft"
	StatusPublished ContentStatus = "published"
	StatusArchived  ContentStatus = "archived"
)

// Valid reports whether s is a storable status.
func (s ContentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Content is a persisted content row.
//
// PublishedAt is non-nil if and only if Status is StatusPublished.
// Children is only meaningful for collections and holds child content IDs
// in curated order.
type Content struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Slug         string         `json:"slug"` // unique within Type
	Description  string         `json:"description"`
	Type         ContentType    `json:"type"`
	Status       ContentStatus  `json:"status"`
	Body         string         `json:"body"`
	RenderedBody string         `json:"rendered_body"`
	Metadata     map[string]any `json:"metadata"`
	Children     []string       `json:"children"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	PublishedAt  *time.Time     `json:"published_at"`
	Likes        int            `json:"likes"`
	Saves        int            `json:"saves"`
}

// IsCollection reports whether the item curates child content.
func (c *Content) IsCollection() bool {
	return c.Type == ContentTypeCollection
}

// IsPublished reports whether the item is publicly visible.
func (c *Content) IsPublished() bool {
	return c.Status == StatusPublished
}

// Touch updates the UpdatedAt timestamp.
func (c *Content) Touch(now time.Time) {
	c.UpdatedAt = now
}

// PublishedAt returns the published_at value after a status transition.
//
// Becoming published stamps now, leaving published clears the value, and a
// transition that does not cross the published boundary keeps prev. A nil
// prev with both statuses published (legacy rows) is repaired to now.
func PublishedAt(prevStatus ContentStatus, prev *time.Time, next ContentStatus, now time.Time) *time.Time {
	switch {
	case next != StatusPublished:
		return nil
	case prevStatus != StatusPublished || prev == nil:
		t := now.UTC()
		return &t
	default:
		t := *prev
		return &t
	}
}

// UniqueChildren returns child IDs with duplicates removed, keeping the
// first occurrence of each.
func (c *Content) UniqueChildren() []string {
	if len(c.Children) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(c.Children))
	out := make([]string, 0, len(c.Children))
	for _, id := range c.Children {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

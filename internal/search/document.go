// Package search provides full-text search over content using Bleve.
// It resolves free-text queries to ranked content IDs for the listing
// query builder and keeps a badger checkpoint for incremental syncs.
package search

import (
	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
)

// Document is the indexed form of a content item.
//
// Body holds the plain text of the markdown body; markup, link targets and
// code fences are not searchable.
type Document struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Status      string   `json:"status"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Body        string   `json:"body,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	UpdatedAt   int64    `json:"updated_at"` // Unix millis
}

// NewDocument builds the document for agg. plainBody is the already
// extracted plain text of agg.Body.
func NewDocument(agg *domain.ContentAggregate, plainBody string) *Document {
	tags := domain.TagSlugs(agg.Tags)
	if len(tags) == 0 {
		tags = nil
	}
	return &Document{
		ID:          agg.ID,
		Type:        string(agg.Type),
		Status:      string(agg.Status),
		Title:       agg.Title,
		Description: agg.Description,
		Body:        plainBody,
		Tags:        tags,
		UpdatedAt:   agg.UpdatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       d.Type,
		"status":     d.Status,
		"title":      d.Title,
		"updated_at": d.UpdatedAt,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Body != "" {
		m["body"] = d.Body
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}

// Package store defines the persistence contracts for content, tags and
// interactions. The SQLite implementation lives in store/sqlite.
package store

import (
	"context"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
)

// SearchIndexer is notified after content mutations commit.
// Store uses this to keep search in sync without depending on the search
// implementation. Failures are logged by the store and never undo a commit.
type SearchIndexer interface {
	IndexContent(ctx context.Context, agg *domain.ContentAggregate) error
	DeleteContent(ctx context.Context, contentID string) error
}

// NoopSearchIndexer is a no-op implementation for tests and for running
// with search disabled.
type NoopSearchIndexer struct{}

// IndexContent is a no-op.
func (NoopSearchIndexer) IndexContent(context.Context, *domain.ContentAggregate) error { return nil }

// DeleteContent is a no-op.
func (NoopSearchIndexer) DeleteContent(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

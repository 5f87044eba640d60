package store

import (
	"context"
	"time"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	"github.com/itsmingjie/sveltesociety.dev/internal/query"
)

// TagStore looks up and maintains tags.
type TagStore interface {
	CreateTag(ctx context.Context, t *domain.Tag) error
	UpdateTag(ctx context.Context, t *domain.Tag) error
	DeleteTag(ctx context.Context, tagID string) error
	GetTagByID(ctx context.Context, tagID string) (*domain.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	FindOrCreateTagBySlug(ctx context.Context, name string) (*domain.Tag, error)
	GetTagsForContent(ctx context.Context, contentID string) ([]*domain.Tag, error)
	GetTagsForContentIDs(ctx context.Context, contentIDs []string) (map[string][]*domain.Tag, error)
}

// ContentReader assembles and lists content.
type ContentReader interface {
	ResolveContent(ctx context.Context, id string) (*domain.ContentAggregate, error)
	ResolveContentBySlug(ctx context.Context, contentType domain.ContentType, slug string) (*domain.ContentAggregate, error)
	ListContent(ctx context.Context, stmt query.Statement) ([]*domain.ContentPreview, error)
	CountContent(ctx context.Context, stmt query.Statement) (int, error)
	ListContentPage(ctx context.Context, stmts query.PageStatements) ([]*domain.ContentPreview, int, error)
	ListAllContent(ctx context.Context) ([]*domain.ContentAggregate, error)
	ListContentUpdatedSince(ctx context.Context, since time.Time) ([]*domain.ContentAggregate, error)
}

// ContentWriter persists content rows and their tag associations.
type ContentWriter interface {
	CreateContent(ctx context.Context, c *domain.Content, tagIDs []string) error
	UpdateContent(ctx context.Context, c *domain.Content, tagIDs []string) error
	DeleteContent(ctx context.Context, id string) error
}

// InteractionStore records and answers per-user like/save existence.
type InteractionStore interface {
	HasInteraction(ctx context.Context, kind domain.InteractionKind, userID, contentID string) (bool, error)
	SetInteraction(ctx context.Context, kind domain.InteractionKind, userID, contentID string, on bool) (bool, error)
}

// Store is the full persistence surface used by services.
type Store interface {
	TagStore
	ContentReader
	ContentWriter
	InteractionStore

	SetSearchIndexer(indexer SearchIndexer)
	Close() error
}

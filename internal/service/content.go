package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
	"github.com/itsmingjie/sveltesociety.dev/internal/id"
	"github.com/itsmingjie/sveltesociety.dev/internal/query"
	"github.com/itsmingjie/sveltesociety.dev/internal/render"
	"github.com/itsmingjie/sveltesociety.dev/internal/store"
	"github.com/itsmingjie/sveltesociety.dev/internal/util"
	"github.com/itsmingjie/sveltesociety.dev/internal/validation"
)

// ContentService orchestrates content reads and writes.
type ContentService struct {
	store     store.Store
	builder   *query.Builder
	annotator *Annotator
	validator *validation.Validator
	markdown  *render.Markdown
	logger    *slog.Logger
	now       func() time.Time
}

// NewContentService creates a new content service.
func NewContentService(
	store store.Store,
	builder *query.Builder,
	annotator *Annotator,
	validator *validation.Validator,
	markdown *render.Markdown,
	logger *slog.Logger,
) *ContentService {
	return &ContentService{
		store:     store,
		builder:   builder,
		annotator: annotator,
		validator: validator,
		markdown:  markdown,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create validates in and stores a new content item with its tags.
// Returns the new content ID.
func (s *ContentService) Create(ctx context.Context, in domain.ContentInput) (string, error) {
	// 1. Validate and normalize
	c, err := s.contentFromInput(in)
	if err != nil {
		return "", err
	}

	// 2. Identity and timestamps
	c.ID, err = id.NewContentID()
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "generate content id")
	}
	now := s.now()
	c.CreatedAt = now
	c.UpdatedAt = now

	// 3. Persist
	if err := s.store.CreateContent(ctx, c, in.TagIDs); err != nil {
		s.logWriteError("create content failed", err, "slug", c.Slug, "type", c.Type)
		return "", err
	}

	s.logger.Info("content created",
		"content_id", c.ID,
		"type", c.Type,
		"slug", c.Slug,
		"status", c.Status,
		"tags", len(in.TagIDs),
	)
	return c.ID, nil
}

// Update replaces the mutable fields and the tag set of an existing item.
func (s *ContentService) Update(ctx context.Context, contentID string, in domain.ContentInput) error {
	c, err := s.contentFromInput(in)
	if err != nil {
		return err
	}
	c.ID = contentID
	c.Touch(s.now())

	if err := s.store.UpdateContent(ctx, c, in.TagIDs); err != nil {
		s.logWriteError("update content failed", err, "content_id", contentID)
		return err
	}

	s.logger.Info("content updated",
		"content_id", contentID,
		"status", c.Status,
		"published", c.IsPublished(),
	)
	return nil
}

// Delete removes a content item with its tag associations and interactions.
func (s *ContentService) Delete(ctx context.Context, contentID string) error {
	if err := s.store.DeleteContent(ctx, contentID); err != nil {
		s.logWriteError("delete content failed", err, "content_id", contentID)
		return err
	}
	s.logger.Info("content deleted", "content_id", contentID)
	return nil
}

// Get returns the aggregate for contentID annotated for userID.
// An empty userID skips annotation.
func (s *ContentService) Get(ctx context.Context, userID, contentID string) (*domain.ContentAggregate, error) {
	agg, err := s.store.ResolveContent(ctx, contentID)
	if err != nil {
		s.logReadError("resolve content failed", err, "content_id", contentID)
		return nil, err
	}
	if err := s.annotator.annotateAggregate(ctx, userID, agg); err != nil {
		return nil, err
	}
	return agg, nil
}

// GetBySlug is Get keyed by type and slug.
func (s *ContentService) GetBySlug(ctx context.Context, userID string, contentType domain.ContentType, slug string) (*domain.ContentAggregate, error) {
	agg, err := s.store.ResolveContentBySlug(ctx, contentType, slug)
	if err != nil {
		s.logReadError("resolve content by slug failed", err, "type", contentType, "slug", slug)
		return nil, err
	}
	if err := s.annotator.annotateAggregate(ctx, userID, agg); err != nil {
		return nil, err
	}
	return agg, nil
}

// List returns one page of previews matching f, with tags attached and
// annotated for userID, plus the total number of matches.
func (s *ContentService) List(ctx context.Context, userID string, f query.Filter) (*store.Page[*domain.ContentPreview], error) {
	// 1. Statements, planned once so search runs a single query
	stmts, err := s.builder.BuildPage(ctx, f)
	if err != nil {
		s.logReadError("build content listing failed", err, "search", f.Search)
		return nil, err
	}

	// 2. Rows with tags and the total, from one snapshot
	items, total, err := s.store.ListContentPage(ctx, stmts)
	if err != nil {
		s.logReadError("list content failed", err)
		return nil, err
	}

	// 3. Per-user flags
	if err := Annotate(ctx, s.annotator, userID, items); err != nil {
		return nil, err
	}

	page := &store.Page[*domain.ContentPreview]{Items: items, Total: total}
	if f.Limit != nil {
		page.Limit = *f.Limit
		if f.Offset != nil {
			page.Offset = *f.Offset
		}
	}
	return page, nil
}

// Like marks contentID as liked by userID. Returns whether the state changed.
func (s *ContentService) Like(ctx context.Context, userID, contentID string) (bool, error) {
	return s.setInteraction(ctx, domain.InteractionLike, userID, contentID, true)
}

// Unlike removes a like. Returns whether the state changed.
func (s *ContentService) Unlike(ctx context.Context, userID, contentID string) (bool, error) {
	return s.setInteraction(ctx, domain.InteractionLike, userID, contentID, false)
}

// Save bookmarks contentID for userID. Returns whether the state changed.
func (s *ContentService) Save(ctx context.Context, userID, contentID string) (bool, error) {
	return s.setInteraction(ctx, domain.InteractionSave, userID, contentID, true)
}

// Unsave removes a bookmark. Returns whether the state changed.
func (s *ContentService) Unsave(ctx context.Context, userID, contentID string) (bool, error) {
	return s.setInteraction(ctx, domain.InteractionSave, userID, contentID, false)
}

func (s *ContentService) setInteraction(ctx context.Context, kind domain.InteractionKind, userID, contentID string, on bool) (bool, error) {
	changed, err := s.store.SetInteraction(ctx, kind, userID, contentID, on)
	if err != nil {
		s.logWriteError("set interaction failed", err,
			"kind", kind,
			"user_id", userID,
			"content_id", contentID,
		)
		return false, err
	}
	if changed {
		s.logger.Debug("interaction changed",
			"kind", kind,
			"user_id", userID,
			"content_id", contentID,
			"on", on,
		)
	}
	return changed, nil
}

// contentFromInput validates in and builds the row it describes. The slug
// falls back to the title and the body is rendered. Only collections keep
// their children.
func (s *ContentService) contentFromInput(in domain.ContentInput) (*domain.Content, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	slug := in.Slug
	if slug == "" {
		slug = util.Slugify(in.Title)
		if slug == "" {
			return nil, domainerrors.ValidationWithDetails("validation failed",
				map[string]string{"slug": "cannot be derived from title"})
		}
	}

	rendered, err := s.markdown.HTML(in.Body)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "render body")
	}

	c := &domain.Content{
		Title:        in.Title,
		Slug:         slug,
		Description:  in.Description,
		Type:         in.Type,
		Status:       in.Status,
		Body:         in.Body,
		RenderedBody: rendered,
		Metadata:     in.Metadata,
	}
	if c.IsCollection() {
		c.Children = in.Children
		c.Children = c.UniqueChildren()
	}
	return c, nil
}

// logReadError logs err unless it reports an expected outcome.
func (s *ContentService) logReadError(msg string, err error, args ...any) {
	switch domainerrors.CodeOf(err) {
	case domainerrors.CodeNotFound, domainerrors.CodeValidation:
		s.logger.Debug(msg, append(args, "error", err)...)
	default:
		s.logger.Error(msg, append(args, "error", err)...)
	}
}

// logWriteError logs err at a level matching its code.
func (s *ContentService) logWriteError(msg string, err error, args ...any) {
	switch domainerrors.CodeOf(err) {
	case domainerrors.CodeNotFound, domainerrors.CodeValidation,
		domainerrors.CodeAlreadyExists, domainerrors.CodeConflict:
		s.logger.Info(msg, append(args, "error", err)...)
	default:
		s.logger.Error(msg, append(args, "error", err)...)
	}
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
	"github.com/itsmingjie/sveltesociety.dev/internal/id"
	"github.com/itsmingjie/sveltesociety.dev/internal/store"
	"github.com/itsmingjie/sveltesociety.dev/internal/util"
	"github.com/itsmingjie/sveltesociety.dev/internal/validation"
)

// TagService orchestrates global tag operations.
// Tags have no owner; their slug is fixed at creation.
type TagService struct {
	store     store.TagStore
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.TagStore, validator *validation.Validator, logger *slog.Logger) *TagService {
	return &TagService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// Create stores a new tag. The slug is derived from the name when the
// input leaves it empty.
func (s *TagService) Create(ctx context.Context, in domain.TagInput) (*domain.Tag, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	slug := in.Slug
	if slug == "" {
		slug = util.Slugify(in.Name)
	}
	if slug == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"slug": "cannot be derived from name"})
	}

	tagID, err := id.NewTagID()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate tag id")
	}
	now := time.Now().UTC()
	t := &domain.Tag{
		ID:        tagID,
		Name:      in.Name,
		Slug:      slug,
		Color:     in.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateTag(ctx, t); err != nil {
		s.logger.Info("create tag failed", "slug", slug, "error", err)
		return nil, err
	}

	s.logger.Info("tag created", "tag_id", t.ID, "slug", t.Slug)
	return t, nil
}

// FindOrCreate returns the tag for name, creating it when needed.
func (s *TagService) FindOrCreate(ctx context.Context, name string) (*domain.Tag, error) {
	if err := s.validator.Var("name", name, "required,max=64"); err != nil {
		return nil, err
	}
	return s.store.FindOrCreateTagBySlug(ctx, name)
}

// Get returns a tag by ID.
func (s *TagService) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	return s.store.GetTagByID(ctx, tagID)
}

// GetBySlug returns a tag by its slug. The input is normalized first, so
// "Server Side" finds "server-side".
func (s *TagService) GetBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	normalized := util.Slugify(slug)
	if normalized == "" {
		return nil, domainerrors.NotFoundf("tag %q not found", slug)
	}
	return s.store.GetTagBySlug(ctx, normalized)
}

// List returns all tags ordered by slug.
func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		s.logger.Error("list tags failed", "error", err)
		return nil, err
	}
	return tags, nil
}

// Update changes the display name and color of a tag.
func (s *TagService) Update(ctx context.Context, tagID string, in domain.TagInput) (*domain.Tag, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	t, err := s.store.GetTagByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if in.Slug != "" && in.Slug != t.Slug {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"slug": "cannot be changed"})
	}

	t.Name = in.Name
	t.Color = in.Color
	t.Touch(time.Now().UTC())
	if err := s.store.UpdateTag(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("tag updated", "tag_id", t.ID, "slug", t.Slug)
	return t, nil
}

// Delete removes a tag that is no longer attached to any content.
func (s *TagService) Delete(ctx context.Context, tagID string) error {
	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		s.logger.Info("delete tag failed", "tag_id", tagID, "error", err)
		return err
	}
	s.logger.Info("tag deleted", "tag_id", tagID)
	return nil
}

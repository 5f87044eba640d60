package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
	"github.com/itsmingjie/sveltesociety.dev/internal/id"
	"github.com/itsmingjie/sveltesociety.dev/internal/store"
	"github.com/itsmingjie/sveltesociety.dev/internal/util"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `t.id, t.name, t.slug, t.color, t.created_at, t.updated_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
// extra receives any columns selected after tagColumns.
func scanTag(scanner interface{ Scan(dest ...any) error }, extra ...any) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
		updatedAt string
	)

	dest := append([]any{
		&t.ID,
		&t.Name,
		&t.Slug,
		&t.Color,
		&createdAt,
		&updatedAt,
	}, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTag inserts a new tag.
// Returns store.ErrAlreadyExists on duplicate slug.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	if !util.IsSlug(t.Slug) {
		return domainerrors.Validationf("invalid tag slug %q", t.Slug)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, name, slug, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Name,
		t.Slug,
		t.Color,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return domainerrors.AlreadyExistsf("tag %q already exists", t.Slug)
		}
		return domainerrors.WriteFailure(err, "create tag")
	}
	return nil
}

// UpdateTag rewrites the display fields of a tag. The slug never changes.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tags SET name = ?, color = ?, updated_at = ?
		WHERE id = ?`,
		t.Name,
		t.Color,
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return domainerrors.WriteFailure(err, "update tag")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domainerrors.WriteFailure(err, "update tag")
	}
	if n == 0 {
		return domainerrors.NotFoundf("tag %s not found", t.ID)
	}
	return nil
}

// DeleteTag removes a tag. A tag still attached to content cannot be
// deleted and yields store.ErrConflict.
func (s *Store) DeleteTag(ctx context.Context, tagID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, tagID)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return domainerrors.Conflictf("tag %s is still attached to content", tagID)
		}
		return domainerrors.WriteFailure(err, "delete tag")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domainerrors.WriteFailure(err, "delete tag")
	}
	if n == 0 {
		return domainerrors.NotFoundf("tag %s not found", tagID)
	}
	return nil
}

// GetTagByID retrieves a tag by its ID.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagByID(ctx context.Context, tagID string) (*domain.Tag, error) {
	return s.getTag(ctx, s.db, `t.id = ?`, tagID)
}

// GetTagBySlug retrieves a tag by its slug.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	return s.getTag(ctx, s.db, `t.slug = ?`, slug)
}

func (s *Store) getTag(ctx context.Context, q querier, where string, arg string) (*domain.Tag, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags t WHERE `+where, arg)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("tag %s not found", arg)
	}
	if err != nil {
		return nil, domainerrors.ReadFailure(err, "get tag")
	}
	return t, nil
}

// ListTags returns all tags ordered by slug.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags t ORDER BY t.slug ASC`)
	if err != nil {
		return nil, domainerrors.ReadFailure(err, "list tags")
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, domainerrors.ReadFailure(err, "scan tag")
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.ReadFailure(err, "list tags")
	}
	return tags, nil
}

// FindOrCreateTagBySlug returns the tag whose slug matches name, creating
// it with name as its display name when it does not exist yet.
func (s *Store) FindOrCreateTagBySlug(ctx context.Context, name string) (*domain.Tag, error) {
	slug := util.Slugify(name)
	if slug == "" {
		return nil, domainerrors.Validationf("tag name %q has no usable slug", name)
	}

	existing, err := s.GetTagBySlug(ctx, slug)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	tagID, err := id.NewTagID()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate tag id")
	}

	now := time.Now().UTC()
	t := &domain.Tag{
		ID:        tagID,
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateTag(ctx, t); err != nil {
		// Lost a race with a concurrent creator.
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.GetTagBySlug(ctx, slug)
		}
		return nil, err
	}
	return t, nil
}

// GetTagsForContent returns the tags attached to a content item in
// association order.
func (s *Store) GetTagsForContent(ctx context.Context, contentID string) ([]*domain.Tag, error) {
	tags, err := s.tagsForContent(ctx, s.db, contentID)
	if err != nil {
		return nil, domainerrors.ReadFailure(err, "get tags for content")
	}
	return tags, nil
}

// GetTagsForContentIDs returns tags for many content items at once, keyed
// by content ID. Items without tags are absent from the map.
func (s *Store) GetTagsForContentIDs(ctx context.Context, contentIDs []string) (map[string][]*domain.Tag, error) {
	out, err := s.tagsForContentIDs(ctx, s.db, contentIDs)
	if err != nil {
		return nil, domainerrors.ReadFailure(err, "get tags for content ids")
	}
	return out, nil
}

func (s *Store) tagsForContent(ctx context.Context, q querier, contentID string) ([]*domain.Tag, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+tagColumns+`
		FROM tags t
		JOIN content_to_tags ct ON ct.tag_id = t.id
		WHERE ct.content_id = ?
		ORDER BY ct.position ASC, t.slug ASC`, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Store) tagsForContentIDs(ctx context.Context, q querier, contentIDs []string) (map[string][]*domain.Tag, error) {
	out := make(map[string][]*domain.Tag, len(contentIDs))
	for _, chunk := range chunks(contentIDs) {
		rows, err := q.QueryContext(ctx, `
			SELECT `+tagColumns+`, ct.content_id
			FROM tags t
			JOIN content_to_tags ct ON ct.tag_id = t.id
			WHERE ct.content_id IN (`+placeholders(len(chunk))+`)
			ORDER BY ct.content_id, ct.position ASC, t.slug ASC`,
			stringArgs(chunk)...)
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			var contentID string
			t, err := scanTag(rows, &contentID)
			if err != nil {
				rows.Close()
				return nil, err
			}
			out[contentID] = append(out[contentID], t)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
	"github.com/itsmingjie/sveltesociety.dev/internal/store"
)

// contentColumns is the ordered list of columns selected in full content
// queries. Must match the scan order in scanContent.
const contentColumns = `c.id, c.title, c.slug, c.description, c.type, c.status,
	c.body, c.rendered_body, c.metadata, c.children,
	c.created_at, c.updated_at, c.published_at, c.likes, c.saves`

// scanContent scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Content.
func scanContent(scanner interface{ Scan(dest ...any) error }) (*domain.Content, error) {
	var (
		c           domain.Content
		metadata    string
		children    string
		createdAt   string
		updatedAt   string
		publishedAt sql.NullString
	)

	err := scanner.Scan(
		&c.ID,
		&c.Title,
		&c.Slug,
		&c.Description,
		&c.Type,
		&c.Status,
		&c.Body,
		&c.RenderedBody,
		&metadata,
		&children,
		&createdAt,
		&updatedAt,
		&publishedAt,
		&c.Likes,
		&c.Saves,
	)
	if err != nil {
		return nil, err
	}

	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &c.Metadata); err != nil {
			return nil, &rowDecodeError{id: c.ID, column: "metadata", err: err}
		}
	}
	if children != "" {
		if err := json.Unmarshal([]byte(children), &c.Children); err != nil {
			return nil, &rowDecodeError{id: c.ID, column: "children", err: err}
		}
	}

	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, &rowDecodeError{id: c.ID, column: "created_at", err: err}
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, &rowDecodeError{id: c.ID, column: "updated_at", err: err}
	}
	if c.PublishedAt, err = parseNullableTime(publishedAt); err != nil {
		return nil, &rowDecodeError{id: c.ID, column: "published_at", err: err}
	}
	return &c, nil
}

// rowDecodeError reports a content row that was read but whose columns
// could not be decoded.
type rowDecodeError struct {
	id     string
	column string
	err    error
}

func (e *rowDecodeError) Error() string {
	return fmt.Sprintf("content %s: %s: %v", e.id, e.column, e.err)
}

func (e *rowDecodeError) Unwrap() error { return e.err }

// encodeDocuments serializes the JSON-typed columns of c.
func encodeDocuments(c *domain.Content) (metadata, children string, err error) {
	m := c.Metadata
	if m == nil {
		m = map[string]any{}
	}
	mb, err := json.Marshal(m)
	if err != nil {
		return "", "", fmt.Errorf("encode metadata: %w", err)
	}

	ch := c.UniqueChildren()
	if ch == nil {
		ch = []string{}
	}
	cb, err := json.Marshal(ch)
	if err != nil {
		return "", "", fmt.Errorf("encode children: %w", err)
	}
	return string(mb), string(cb), nil
}

// writeError converts a driver error raised during a write sequence into a
// coded error. Errors that already carry a code pass through.
func writeError(err error, op string) error {
	switch {
	case domainerrors.Passthrough(err,
		domainerrors.CodeNotFound,
		domainerrors.CodeAlreadyExists,
		domainerrors.CodeValidation,
		domainerrors.CodeConflict):
		return err
	case store.IsUniqueViolation(err):
		return domainerrors.Wrap(err, domainerrors.CodeAlreadyExists, "content already exists")
	case store.IsForeignKeyViolation(err):
		return domainerrors.Wrap(err, domainerrors.CodeValidation, "unknown tag")
	default:
		return domainerrors.WriteFailure(err, op)
	}
}

// CreateContent inserts c and attaches tagIDs in one transaction.
// PublishedAt is derived from the status; CreatedAt and UpdatedAt must be set.
func (s *Store) CreateContent(ctx context.Context, c *domain.Content, tagIDs []string) error {
	metadata, children, err := encodeDocuments(c)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeValidation, "encode content")
	}
	c.PublishedAt = domain.PublishedAt("", nil, c.Status, c.CreatedAt)

	err = s.withTx(ctx, "create content", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO content (
				id, title, slug, description, type, status,
				body, rendered_body, metadata, children,
				created_at, updated_at, published_at, likes, saves
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0)`,
			c.ID,
			c.Title,
			c.Slug,
			c.Description,
			c.Type,
			c.Status,
			c.Body,
			c.RenderedBody,
			metadata,
			children,
			formatTime(c.CreatedAt),
			formatTime(c.UpdatedAt),
			nullTimeString(c.PublishedAt),
		)
		if err != nil {
			return err
		}
		return s.insertContentTags(ctx, tx, c.ID, orderedSet(tagIDs), nil, c.CreatedAt)
	})
	if err != nil {
		return writeError(err, "create content")
	}

	c.Likes, c.Saves = 0, 0
	s.notifyIndexed(ctx, c.ID)
	return nil
}

// UpdateContent rewrites the mutable fields of c and reconciles its tag
// associations in one transaction. c.UpdatedAt is the transition time used
// for published_at. Returns store.ErrNotFound if the row does not exist.
//
// Tag associations are diffed: pairs that are no longer wanted are deleted,
// new pairs are inserted, and pairs present on both sides stay in place.
// Readers never observe the item without its surviving tags.
func (s *Store) UpdateContent(ctx context.Context, c *domain.Content, tagIDs []string) error {
	metadata, children, err := encodeDocuments(c)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeValidation, "encode content")
	}

	err = s.withTx(ctx, "update content", func(tx *sql.Tx) error {
		// 1. Previous publication state
		var (
			prevStatus      domain.ContentStatus
			prevPublishedAt sql.NullString
			createdAt       string
			likes, saves    int
		)
		err := tx.QueryRowContext(ctx,
			`SELECT status, published_at, created_at, likes, saves FROM content WHERE id = ?`, c.ID,
		).Scan(&prevStatus, &prevPublishedAt, &createdAt, &likes, &saves)
		if errors.Is(err, sql.ErrNoRows) {
			return domainerrors.NotFoundf("content %s not found", c.ID)
		}
		if err != nil {
			return err
		}
		prev, err := parseNullableTime(prevPublishedAt)
		if err != nil {
			return err
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		c.PublishedAt = domain.PublishedAt(prevStatus, prev, c.Status, c.UpdatedAt)
		c.Likes, c.Saves = likes, saves

		// 2. Row
		_, err = tx.ExecContext(ctx, `
			UPDATE content SET
				title = ?, slug = ?, description = ?, type = ?, status = ?,
				body = ?, rendered_body = ?, metadata = ?, children = ?,
				updated_at = ?, published_at = ?
			WHERE id = ?`,
			c.Title,
			c.Slug,
			c.Description,
			c.Type,
			c.Status,
			c.Body,
			c.RenderedBody,
			metadata,
			children,
			formatTime(c.UpdatedAt),
			nullTimeString(c.PublishedAt),
			c.ID,
		)
		if err != nil {
			return err
		}

		// 3. Tags
		return s.reconcileContentTags(ctx, tx, c, orderedSet(tagIDs))
	})
	if err != nil {
		return writeError(err, "update content")
	}

	s.notifyIndexed(ctx, c.ID)
	return nil
}

// DeleteContent removes a content item with its tag associations and
// interactions. Returns store.ErrNotFound if no row was removed.
func (s *Store) DeleteContent(ctx context.Context, contentID string) error {
	err := s.withTx(ctx, "delete content", func(tx *sql.Tx) error {
		for _, q := range []string{
			`DELETE FROM content_to_tags WHERE content_id = ?`,
			`DELETE FROM likes WHERE target_id = ?`,
			`DELETE FROM saves WHERE target_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, contentID); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM content WHERE id = ?`, contentID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domainerrors.NotFoundf("content %s not found", contentID)
		}
		return nil
	})
	if err != nil {
		return writeError(err, "delete content")
	}

	if err := s.indexer().DeleteContent(ctx, contentID); err != nil {
		s.logger.Warn("failed to remove content from search index", "content_id", contentID, "error", err)
	}
	return nil
}

// reconcileContentTags applies the difference between the stored tag set
// of c and want.
func (s *Store) reconcileContentTags(ctx context.Context, tx *sql.Tx, c *domain.Content, want []string) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT tag_id, position FROM content_to_tags WHERE content_id = ?`, c.ID)
	if err != nil {
		return err
	}
	current := make(map[string]int)
	for rows.Next() {
		var (
			tagID    string
			position int
		)
		if err := rows.Scan(&tagID, &position); err != nil {
			rows.Close()
			return err
		}
		current[tagID] = position
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return err
	}

	have := mapset.NewThreadUnsafeSetWithSize[string](len(current))
	for tagID := range current {
		have.Add(tagID)
	}
	next := mapset.NewThreadUnsafeSet(want...)

	for _, tagID := range have.Difference(next).ToSlice() {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM content_to_tags WHERE content_id = ? AND tag_id = ?`, c.ID, tagID); err != nil {
			return err
		}
	}

	// Pairs on both sides keep their row; only a moved position is rewritten.
	for pos, tagID := range want {
		old, ok := current[tagID]
		if !ok || old == pos {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE content_to_tags SET position = ? WHERE content_id = ? AND tag_id = ?`,
			pos, c.ID, tagID); err != nil {
			return err
		}
	}

	return s.insertContentTags(ctx, tx, c.ID, want, have, c.UpdatedAt)
}

// insertContentTags inserts the tagIDs not already in skip, recording each
// tag's index in tagIDs as its position.
func (s *Store) insertContentTags(ctx context.Context, tx *sql.Tx, contentID string, tagIDs []string, skip mapset.Set[string], now time.Time) error {
	createdAt := formatTime(now)
	for pos, tagID := range tagIDs {
		if skip != nil && skip.Contains(tagID) {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO content_to_tags (content_id, tag_id, position, created_at)
			VALUES (?, ?, ?, ?)`,
			contentID, tagID, pos, createdAt); err != nil {
			return err
		}
	}
	return nil
}

// notifyIndexed hands the committed aggregate to the search indexer.
// Failures are logged and never undo the commit.
func (s *Store) notifyIndexed(ctx context.Context, contentID string) {
	idx := s.indexer()
	if _, ok := idx.(store.NoopSearchIndexer); ok {
		return
	}
	agg, err := s.ResolveContent(ctx, contentID)
	if err != nil {
		s.logger.Warn("failed to load content for search index", "content_id", contentID, "error", err)
		return
	}
	if err := idx.IndexContent(ctx, agg); err != nil {
		s.logger.Warn("failed to index content", "content_id", contentID, "error", err)
	}
}

// orderedSet drops empty and repeated IDs, keeping first occurrences.
func orderedSet(ids []string) []string {
	seen := mapset.NewThreadUnsafeSetWithSize[string](len(ids))
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != "" && seen.Add(v) {
			out = append(out, v)
		}
	}
	return out
}

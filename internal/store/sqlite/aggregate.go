package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
)

// ResolveContent assembles the aggregate for the content item with the
// given ID: the row, its tags and, for collections, one level of children.
//
// The whole read runs in one transaction so the aggregate reflects a single
// snapshot. Returns store.ErrNotFound if the item does not exist. Any other
// failure is reported as a read failure.
func (s *Store) ResolveContent(ctx context.Context, contentID string) (*domain.ContentAggregate, error) {
	return s.resolve(ctx, "c.id = ?", contentID)
}

// ResolveContentBySlug is ResolveContent keyed by the (type, slug) pair.
func (s *Store) ResolveContentBySlug(ctx context.Context, contentType domain.ContentType, slug string) (*domain.ContentAggregate, error) {
	return s.resolve(ctx, "c.type = ? AND c.slug = ?", string(contentType), slug)
}

func (s *Store) resolve(ctx context.Context, where string, args ...any) (*domain.ContentAggregate, error) {
	var agg *domain.ContentAggregate

	err := s.withTx(ctx, "resolve content", func(tx *sql.Tx) error {
		// 1. Row
		row := tx.QueryRowContext(ctx,
			`SELECT `+contentColumns+` FROM content c WHERE `+where, args...)
		c, err := scanContent(row)
		if errors.Is(err, sql.ErrNoRows) {
			return domainerrors.NotFound("content not found")
		}
		if err != nil {
			return err
		}

		// 2. Tags
		tags, err := s.tagsForContent(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		agg = &domain.ContentAggregate{
			Content:  *c,
			Tags:     tags,
			Children: []*domain.ContentAggregate{},
		}

		// 3. Children, one level deep
		if c.IsCollection() {
			agg.Children, err = s.resolveChildren(ctx, tx, c.UniqueChildren())
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if domainerrors.Passthrough(err, domainerrors.CodeNotFound) {
			return nil, err
		}
		return nil, domainerrors.ReadFailure(err, "resolve content")
	}
	return agg, nil
}

// resolveChildren loads the listed children with their tags. IDs that no
// longer resolve, or whose rows cannot be decoded, are dropped; the
// survivors keep the order of ids. Every returned child has an empty
// Children slice. Only statement failures are returned as errors.
func (s *Store) resolveChildren(ctx context.Context, q querier, ids []string) ([]*domain.ContentAggregate, error) {
	out := []*domain.ContentAggregate{}
	if len(ids) == 0 {
		return out, nil
	}

	found := make(map[string]*domain.Content, len(ids))
	for _, chunk := range chunks(ids) {
		rows, err := q.QueryContext(ctx,
			`SELECT `+contentColumns+` FROM content c WHERE c.id IN (`+placeholders(len(chunk))+`)`,
			stringArgs(chunk)...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			c, err := scanContent(rows)
			if err != nil {
				// An unreadable child is dropped like a missing one.
				s.logUnreadableChild(err)
				continue
			}
			found[c.ID] = c
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	if len(found) == 0 {
		return out, nil
	}

	present := make([]string, 0, len(found))
	for _, id := range ids {
		if _, ok := found[id]; ok {
			present = append(present, id)
		}
	}
	tags, err := s.tagsForContentIDs(ctx, q, present)
	if err != nil {
		return nil, err
	}

	for _, id := range present {
		childTags := tags[id]
		if childTags == nil {
			childTags = []*domain.Tag{}
		}
		out = append(out, &domain.ContentAggregate{
			Content:  *found[id],
			Tags:     childTags,
			Children: []*domain.ContentAggregate{},
		})
	}
	return out, nil
}

func (s *Store) logUnreadableChild(err error) {
	var decodeErr *rowDecodeError
	if errors.As(err, &decodeErr) {
		s.logger.Warn("dropping unreadable collection child",
			"child_id", decodeErr.id,
			"column", decodeErr.column,
			"error", decodeErr.err,
		)
		return
	}
	s.logger.Warn("dropping unreadable collection child", "error", err)
}

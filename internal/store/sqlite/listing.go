package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
	"github.com/itsmingjie/sveltesociety.dev/internal/query"
)

// scanPreview reads one row selected with query.PreviewColumns.
func scanPreview(scanner interface{ Scan(dest ...any) error }) (*domain.ContentPreview, error) {
	var (
		p           domain.ContentPreview
		createdAt   string
		updatedAt   string
		publishedAt sql.NullString
	)

	err := scanner.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Description,
		&p.Type,
		&p.Status,
		&createdAt,
		&updatedAt,
		&publishedAt,
		&p.Likes,
		&p.Saves,
	)
	if err != nil {
		return nil, err
	}

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if p.PublishedAt, err = parseNullableTime(publishedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListContent executes a list statement built by query.Builder and attaches
// tags to every preview. The preview rows and their tags are read in one
// transaction. An Empty statement yields no rows without touching the
// database.
func (s *Store) ListContent(ctx context.Context, stmt query.Statement) ([]*domain.ContentPreview, error) {
	previews := []*domain.ContentPreview{}
	if stmt.Empty {
		return previews, nil
	}

	err := s.withTx(ctx, "list content", func(tx *sql.Tx) error {
		var err error
		previews, err = s.listPreviews(ctx, tx, stmt)
		return err
	})
	if err != nil {
		return nil, domainerrors.ReadFailure(err, "list content")
	}
	return previews, nil
}

// CountContent executes a count statement built by query.Builder.
func (s *Store) CountContent(ctx context.Context, stmt query.Statement) (int, error) {
	if stmt.Empty {
		return 0, nil
	}
	n, err := countRows(ctx, s.db, stmt)
	if err != nil {
		return 0, domainerrors.ReadFailure(err, "count content")
	}
	return n, nil
}

// ListContentPage executes both statements of one page in a single
// transaction, so the total agrees with the listed items.
func (s *Store) ListContentPage(ctx context.Context, stmts query.PageStatements) ([]*domain.ContentPreview, int, error) {
	previews := []*domain.ContentPreview{}
	if stmts.List.Empty && stmts.Count.Empty {
		return previews, 0, nil
	}

	var total int
	err := s.withTx(ctx, "list content page", func(tx *sql.Tx) error {
		var err error
		if !stmts.List.Empty {
			if previews, err = s.listPreviews(ctx, tx, stmts.List); err != nil {
				return err
			}
		}
		if !stmts.Count.Empty {
			if total, err = countRows(ctx, tx, stmts.Count); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, domainerrors.ReadFailure(err, "list content page")
	}
	return previews, total, nil
}

func (s *Store) listPreviews(ctx context.Context, tx *sql.Tx, stmt query.Statement) ([]*domain.ContentPreview, error) {
	previews := []*domain.ContentPreview{}

	rows, err := tx.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		p, err := scanPreview(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		previews = append(previews, p)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(previews))
	for i, p := range previews {
		ids[i] = p.ID
	}
	tags, err := s.tagsForContentIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range previews {
		p.Tags = tags[p.ID]
		if p.Tags == nil {
			p.Tags = []*domain.Tag{}
		}
	}
	return previews, nil
}

func countRows(ctx context.Context, q querier, stmt query.Statement) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListAllContent returns every content item as an aggregate without
// children, ordered by ID. Used to rebuild the search index.
func (s *Store) ListAllContent(ctx context.Context) ([]*domain.ContentAggregate, error) {
	return s.listAggregates(ctx, "list all content",
		`SELECT `+contentColumns+` FROM content c ORDER BY c.id ASC`)
}

// ListContentUpdatedSince returns content whose updated_at is strictly
// after since, oldest change first.
func (s *Store) ListContentUpdatedSince(ctx context.Context, since time.Time) ([]*domain.ContentAggregate, error) {
	return s.listAggregates(ctx, "list updated content",
		`SELECT `+contentColumns+` FROM content c WHERE c.updated_at > ? ORDER BY c.updated_at ASC, c.id ASC`,
		formatTime(since))
}

func (s *Store) listAggregates(ctx context.Context, op, q string, args ...any) ([]*domain.ContentAggregate, error) {
	out := []*domain.ContentAggregate{}

	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, q, args...)
		if err != nil {
			return err
		}
		for rows.Next() {
			c, err := scanContent(rows)
			if err != nil {
				rows.Close()
				return err
			}
			out = append(out, &domain.ContentAggregate{
				Content:  *c,
				Children: []*domain.ContentAggregate{},
			})
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}

		ids := make([]string, len(out))
		for i, a := range out {
			ids[i] = a.ID
		}
		tags, err := s.tagsForContentIDs(ctx, tx, ids)
		if err != nil {
			return err
		}
		for _, a := range out {
			a.Tags = tags[a.ID]
			if a.Tags == nil {
				a.Tags = []*domain.Tag{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, domainerrors.ReadFailure(err, op)
	}
	return out, nil
}

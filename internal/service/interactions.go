package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
)

// InteractionChecker answers whether a user has interacted with content.
type InteractionChecker interface {
	HasInteraction(ctx context.Context, kind domain.InteractionKind, userID, contentID string) (bool, error)
}

// DefaultAnnotateConcurrency bounds concurrent checks when unset.
const DefaultAnnotateConcurrency = 4

// Annotator decorates rows with the per-user liked and saved flags.
type Annotator struct {
	checker InteractionChecker
	limit   int
	logger  *slog.Logger
}

// NewAnnotator creates an annotator running at most concurrency rows at
// a time.
func NewAnnotator(checker InteractionChecker, concurrency int, logger *slog.Logger) *Annotator {
	if concurrency <= 0 {
		concurrency = DefaultAnnotateConcurrency
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Annotator{checker: checker, limit: concurrency, logger: logger}
}

type interactionFlags struct {
	liked bool
	saved bool
}

// Annotate sets Liked and Saved on every row for userID. Rows are checked
// concurrently but each result is written back to its own row, so the
// order of rows never changes. An empty userID leaves every row untouched.
//
// If any check fails no row is modified and a read failure is returned.
func Annotate[T domain.Interactable](ctx context.Context, a *Annotator, userID string, rows []T) error {
	if userID == "" || len(rows) == 0 {
		return nil
	}

	flags := make([]interactionFlags, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit)
	for i, row := range rows {
		contentID := row.InteractionID()
		g.Go(func() error {
			liked, err := a.checker.HasInteraction(gctx, domain.InteractionLike, userID, contentID)
			if err != nil {
				return err
			}
			saved, err := a.checker.HasInteraction(gctx, domain.InteractionSave, userID, contentID)
			if err != nil {
				return err
			}
			flags[i] = interactionFlags{liked: liked, saved: saved}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.logger.Error("interaction annotation failed", "user_id", userID, "rows", len(rows), "error", err)
		if domainerrors.Passthrough(err, domainerrors.CodeReadFailure) {
			return err
		}
		return domainerrors.ReadFailure(err, "annotate interactions")
	}

	for i, row := range rows {
		row.SetInteraction(flags[i].liked, flags[i].saved)
	}
	return nil
}

// annotateAggregate annotates agg and its resolved children.
func (a *Annotator) annotateAggregate(ctx context.Context, userID string, agg *domain.ContentAggregate) error {
	rows := make([]*domain.ContentAggregate, 0, len(agg.Children)+1)
	rows = append(rows, agg)
	rows = append(rows, agg.Children...)
	return Annotate(ctx, a, userID, rows)
}

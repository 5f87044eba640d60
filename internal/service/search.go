package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
	"github.com/itsmingjie/sveltesociety.dev/internal/search"
	"github.com/itsmingjie/sveltesociety.dev/internal/store"
)

// SearchService bridges the search index with the content store. It is the
// store's post-commit indexer and the query builder's candidate source.
type SearchService struct {
	index       *search.Index
	checkpoints *search.Checkpoints
	store       store.ContentReader
	logger      *slog.Logger
}

var _ store.SearchIndexer = (*SearchService)(nil)

// NewSearchService creates a new search service. checkpoints may be nil
// when incremental sync is not used.
func NewSearchService(index *search.Index, checkpoints *search.Checkpoints, store store.ContentReader, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:       index,
		checkpoints: checkpoints,
		store:       store,
		logger:      logger,
	}
}

// Search returns content IDs matching q, best match first.
func (s *SearchService) Search(ctx context.Context, q string) ([]string, error) {
	ids, err := s.index.Search(ctx, q)
	if err != nil {
		s.logger.Error("search failed", "query", q, "error", err)
		return nil, err
	}
	s.logger.Debug("search", "query", q, "candidates", len(ids))
	return ids, nil
}

// IndexContent indexes a single content item.
// Called after the item is created or updated.
func (s *SearchService) IndexContent(ctx context.Context, agg *domain.ContentAggregate) error {
	if err := s.index.IndexContent(ctx, agg); err != nil {
		return fmt.Errorf("index content: %w", err)
	}
	s.logger.Debug("indexed content", "id", agg.ID, "title", agg.Title)
	return nil
}

// DeleteContent removes a content item from the index.
func (s *SearchService) DeleteContent(ctx context.Context, contentID string) error {
	if err := s.index.DeleteContent(ctx, contentID); err != nil {
		return fmt.Errorf("delete content from index: %w", err)
	}
	s.logger.Debug("removed content from index", "id", contentID)
	return nil
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// SyncResult reports one index pass.
type SyncResult struct {
	Since      time.Time `json:"since"`
	Indexed    int       `json:"indexed"`
	Checkpoint time.Time `json:"checkpoint"`
}

// ReindexAll drops the index and rebuilds it from every stored item, then
// moves the sync checkpoint to the newest indexed change.
func (s *SearchService) ReindexAll(ctx context.Context) (*SyncResult, error) {
	start := time.Now()
	s.logger.Info("starting full search reindex")

	// 1. Load everything first so a store failure leaves the index intact
	all, err := s.store.ListAllContent(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Rebuild and fill
	if err := s.index.Rebuild(); err != nil {
		return nil, domainerrors.WriteFailure(err, "rebuild search index")
	}
	if err := s.index.IndexContents(ctx, all); err != nil {
		return nil, domainerrors.WriteFailure(err, "index content")
	}

	// 3. Checkpoint
	res := &SyncResult{Indexed: len(all), Checkpoint: newestUpdate(all)}
	if err := s.saveCheckpoint(ctx, res.Checkpoint); err != nil {
		return nil, err
	}

	s.logger.Info("search reindex complete",
		"indexed", res.Indexed,
		"duration", time.Since(start),
	)
	return res, nil
}

// Sync indexes every item changed since the stored checkpoint and advances
// it. Deletions reach the index through DeleteContent, not through Sync.
func (s *SearchService) Sync(ctx context.Context) (*SyncResult, error) {
	if s.checkpoints == nil {
		return nil, domainerrors.Internalf("search sync has no checkpoint store")
	}

	// 1. Watermark
	since, err := s.checkpoints.LastSynced(ctx)
	if err != nil {
		return nil, domainerrors.ReadFailure(err, "read sync checkpoint")
	}

	// 2. Changed items
	changed, err := s.store.ListContentUpdatedSince(ctx, since)
	if err != nil {
		return nil, err
	}
	res := &SyncResult{Since: since, Indexed: len(changed), Checkpoint: since}
	if len(changed) == 0 {
		s.logger.Debug("search sync: nothing to do", "since", since)
		return res, nil
	}

	// 3. Index, then advance
	if err := s.index.IndexContents(ctx, changed); err != nil {
		return nil, domainerrors.WriteFailure(err, "index changed content")
	}
	res.Checkpoint = newestUpdate(changed)
	if err := s.saveCheckpoint(ctx, res.Checkpoint); err != nil {
		return nil, err
	}

	s.logger.Info("search sync complete",
		"since", since,
		"indexed", res.Indexed,
		"checkpoint", res.Checkpoint,
	)
	return res, nil
}

func (s *SearchService) saveCheckpoint(ctx context.Context, t time.Time) error {
	if s.checkpoints == nil {
		return nil
	}
	var err error
	if t.IsZero() {
		err = s.checkpoints.Reset(ctx)
	} else {
		err = s.checkpoints.SetLastSynced(ctx, t)
	}
	if err != nil {
		return domainerrors.WriteFailure(err, "save sync checkpoint")
	}
	return nil
}

func newestUpdate(aggs []*domain.ContentAggregate) time.Time {
	var latest time.Time
	for _, a := range aggs {
		if a.UpdatedAt.After(latest) {
			latest = a.UpdatedAt
		}
	}
	return latest
}

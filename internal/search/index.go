package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	"github.com/itsmingjie/sveltesociety.dev/internal/render"
)

// Index wraps a Bleve index of content documents.
//
// Thread safety: All public methods are safe for concurrent use.
// The mutex protects against index corruption during rebuild operations.
type Index struct {
	index         bleve.Index
	path          string
	logger        *slog.Logger
	markdown      *render.Markdown
	maxCandidates int
	mu            sync.RWMutex
}

// Options configures the search index.
type Options struct {
	Path          string           // Directory for index storage
	Logger        *slog.Logger     // Uses discard if nil
	Markdown      *render.Markdown // Plain text extraction for bodies
	MaxCandidates int              // Upper bound on IDs returned by Search
}

// DefaultMaxCandidates applies when Options.MaxCandidates is unset.
const DefaultMaxCandidates = 500

// batchSize bounds the documents committed per Bleve batch.
const batchSize = 500

// mappingVersion is incremented whenever the index mapping changes.
// A mismatch triggers a rebuild on open.
const mappingVersion = "1"

// NewIndex creates or opens a search index under opts.Path.
// An existing index with an outdated or missing mapping version, or one
// that fails to open, is removed and recreated empty.
func NewIndex(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Markdown == nil {
		opts.Markdown = render.NewMarkdown()
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = DefaultMaxCandidates
	}

	if err := os.MkdirAll(opts.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	indexPath := filepath.Join(opts.Path, "content.bleve")
	versionPath := filepath.Join(opts.Path, "content.version")

	var (
		index        bleve.Index
		err          error
		needsRebuild bool
	)

	_, statErr := os.Stat(indexPath)
	indexExists := statErr == nil

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, will rebuild", "new_version", mappingVersion)
			needsRebuild = true
		case string(existingVersion) != mappingVersion:
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if indexExists && !needsRebuild {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate", "path", indexPath, "error", err)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &Index{
		index:         index,
		path:          indexPath,
		logger:        logger,
		markdown:      opts.Markdown,
		maxCandidates: opts.MaxCandidates,
	}, nil
}

// Close closes the index and releases resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// document builds the indexed form of agg.
func (s *Index) document(agg *domain.ContentAggregate) *Document {
	return NewDocument(agg, s.markdown.PlainText(agg.Body))
}

// IndexContent adds or replaces the document for agg.
func (s *Index) IndexContent(_ context.Context, agg *domain.ContentAggregate) error {
	doc := s.document(agg)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.index.Index(doc.ID, doc.ToMap()); err != nil {
		return fmt.Errorf("index %s: %w", doc.ID, err)
	}
	return nil
}

// IndexContents indexes many aggregates, committing batches of at most
// batchSize documents.
func (s *Index) IndexContents(ctx context.Context, aggs []*domain.ContentAggregate) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := 0; i < len(aggs); i += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+batchSize, len(aggs))

		batch := s.index.NewBatch()
		for _, agg := range aggs[i:end] {
			doc := s.document(agg)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeleteContent removes a document from the index. Deleting an unknown ID
// is not an error.
func (s *Index) DeleteContent(_ context.Context, contentID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(contentID)
}

// DocumentCount returns the total number of indexed documents.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the existing index and creates an empty one.
//
// This acquires an exclusive lock and blocks all other operations.
func (s *Index) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}

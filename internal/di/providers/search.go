package providers

import (
	"context"
	"errors"

	"github.com/samber/do/v2"

	"github.com/itsmingjie/sveltesociety.dev/internal/config"
	"github.com/itsmingjie/sveltesociety.dev/internal/logger"
	"github.com/itsmingjie/sveltesociety.dev/internal/render"
	"github.com/itsmingjie/sveltesociety.dev/internal/search"
	"github.com/itsmingjie/sveltesociety.dev/internal/service"
)

// ErrSearchDisabled is returned by the search providers when search is
// turned off in the configuration.
var ErrSearchDisabled = errors.New("search is disabled")

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	markdown := do.MustInvoke[*render.Markdown](i)

	if !cfg.Search.Enabled {
		return nil, ErrSearchDisabled
	}

	index, err := search.NewIndex(search.Options{
		Path:          cfg.Search.IndexPath,
		Logger:        log.Component("search"),
		Markdown:      markdown,
		MaxCandidates: cfg.Search.MaxCandidates,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "path", cfg.Search.IndexPath, "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// CheckpointsHandle wraps the sync checkpoint database with shutdown capability.
type CheckpointsHandle struct {
	*search.Checkpoints
}

// Shutdown implements do.Shutdownable.
func (h *CheckpointsHandle) Shutdown() error {
	return h.Close()
}

// ProvideCheckpoints provides the Badger-backed sync checkpoint store.
func ProvideCheckpoints(i do.Injector) (*CheckpointsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.Enabled {
		return nil, ErrSearchDisabled
	}

	cp, err := search.OpenCheckpoints(cfg.Search.CheckpointPath, log.Component("checkpoints"))
	if err != nil {
		return nil, err
	}

	return &CheckpointsHandle{Checkpoints: cp}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle, err := do.Invoke[*SearchIndexHandle](i)
	if err != nil {
		return nil, err
	}
	checkpointsHandle, err := do.Invoke[*CheckpointsHandle](i)
	if err != nil {
		return nil, err
	}
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewSearchService(indexHandle.Index, checkpointsHandle.Checkpoints, storeHandle.Store, log.Component("search"))

	// Wire to store for automatic indexing
	storeHandle.SetSearchIndexer(svc)

	return svc, nil
}

// TriggerSearchReindexIfNeeded rebuilds an empty index when the store
// already holds content, e.g. after the index directory was removed.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(ctx context.Context, i do.Injector) error {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.Search.Enabled {
		return nil
	}
	searchService := do.MustInvoke[*service.SearchService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := searchService.DocumentCount()
	if docCount > 0 {
		return nil
	}

	all, err := storeHandle.ListAllContent(ctx)
	if err != nil || len(all) == 0 {
		return err
	}

	log.Info("Search index is empty but content exists, triggering reindex",
		"content_count", len(all),
	)

	res, err := searchService.ReindexAll(ctx)
	if err != nil {
		return err
	}
	log.Info("Initial search reindex completed", "documents", res.Indexed)
	return nil
}

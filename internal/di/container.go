// Package di provides dependency injection configuration for the content service.
package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/itsmingjie/sveltesociety.dev/internal/config"
	"github.com/itsmingjie/sveltesociety.dev/internal/di/providers"
	"github.com/itsmingjie/sveltesociety.dev/internal/logger"
	"github.com/itsmingjie/sveltesociety.dev/internal/query"
	"github.com/itsmingjie/sveltesociety.dev/internal/render"
	"github.com/itsmingjie/sveltesociety.dev/internal/service"
	"github.com/itsmingjie/sveltesociety.dev/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer(flags config.Flags) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, flags)
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideMarkdown)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideCheckpoints)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideQueryBuilder)
	do.Provide(injector, providers.ProvideAnnotator)
	do.Provide(injector, providers.ProvideContentService)
	do.Provide(injector, providers.ProvideTagService)

	// Workers
	do.Provide(injector, providers.ProvideSyncJob)

	return injector
}

// Bootstrap initializes the core services so configuration and storage
// errors surface before any command runs. Workers are started on demand.
func Bootstrap(ctx context.Context, injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*render.Markdown](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}

	// The builder pulls in the search service when search is enabled,
	// which hooks the index onto the store.
	if _, err := do.Invoke[*query.Builder](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*service.Annotator](injector)
	_ = do.MustInvoke[*service.ContentService](injector)
	_ = do.MustInvoke[*service.TagService](injector)

	// Rebuild the index if it was lost
	return providers.TriggerSearchReindexIfNeeded(ctx, injector)
}

package providers

import (
	"github.com/samber/do/v2"

	"github.com/itsmingjie/sveltesociety.dev/internal/config"
	"github.com/itsmingjie/sveltesociety.dev/internal/logger"
	"github.com/itsmingjie/sveltesociety.dev/internal/query"
	"github.com/itsmingjie/sveltesociety.dev/internal/render"
	"github.com/itsmingjie/sveltesociety.dev/internal/service"
	"github.com/itsmingjie/sveltesociety.dev/internal/validation"
)

// ProvideQueryBuilder provides the listing query builder. With search
// disabled it has no candidate source and rejects search filters.
func ProvideQueryBuilder(i do.Injector) (*query.Builder, error) {
	cfg := do.MustInvoke[*config.Config](i)
	validator := do.MustInvoke[*validation.Validator](i)

	opts := query.Options{MaxLimit: cfg.Content.MaxLimit, Validator: validator}
	if !cfg.Search.Enabled {
		return query.NewBuilder(nil, opts), nil
	}

	searchService, err := do.Invoke[*service.SearchService](i)
	if err != nil {
		return nil, err
	}
	return query.NewBuilder(searchService, opts), nil
}

// ProvideAnnotator provides the per-user interaction annotator.
func ProvideAnnotator(i do.Injector) (*service.Annotator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnnotator(storeHandle.Store, cfg.Content.AnnotateConcurrency, log.Component("annotator")), nil
}

// ProvideContentService provides the content service.
func ProvideContentService(i do.Injector) (*service.ContentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	builder := do.MustInvoke[*query.Builder](i)
	annotator := do.MustInvoke[*service.Annotator](i)
	validator := do.MustInvoke[*validation.Validator](i)
	markdown := do.MustInvoke[*render.Markdown](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewContentService(
		storeHandle.Store,
		builder,
		annotator,
		validator,
		markdown,
		log.Component("content"),
	), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, validator, log.Component("tags")), nil
}

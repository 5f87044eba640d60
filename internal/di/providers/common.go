package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/itsmingjie/sveltesociety.dev/internal/render"
	"github.com/itsmingjie/sveltesociety.dev/internal/validation"
)

const (
	// shutdownTimeout is the maximum time to wait for a running job on shutdown.
	shutdownTimeout = 30 * time.Second
)

// ProvideValidator provides the shared input validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideMarkdown provides the markdown renderer.
func ProvideMarkdown(i do.Injector) (*render.Markdown, error) {
	return render.NewMarkdown(), nil
}

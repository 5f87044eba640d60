package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmingjie/sveltesociety.dev/internal/config"
	"github.com/itsmingjie/sveltesociety.dev/internal/di/providers"
	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	"github.com/itsmingjie/sveltesociety.dev/internal/query"
	"github.com/itsmingjie/sveltesociety.dev/internal/service"
)

func testFlags(t *testing.T, search string) config.Flags {
	t.Helper()
	dir := t.TempDir()
	return config.Flags{
		EnvFile:       filepath.Join(dir, "missing.env"),
		Env:           "development",
		LogLevel:      "error",
		DataPath:      dir,
		SearchEnabled: search,
	}
}

func TestBootstrap_WiresSearchIntoStore(t *testing.T) {
	injector := NewContainer(testFlags(t, "true"))
	t.Cleanup(func() { _ = injector.Shutdown() })
	ctx := context.Background()

	require.NoError(t, Bootstrap(ctx, injector))

	content := do.MustInvoke[*service.ContentService](injector)
	id, err := content.Create(ctx, domain.ContentInput{
		Title:  "Wired up",
		Type:   domain.ContentTypeArticle,
		Status: domain.StatusPublished,
	})
	require.NoError(t, err)

	page, err := content.List(ctx, "", query.Filter{Search: "wired"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, id, page.Items[0].ID)
}

func TestBootstrap_SearchDisabled(t *testing.T) {
	injector := NewContainer(testFlags(t, "false"))
	t.Cleanup(func() { _ = injector.Shutdown() })
	ctx := context.Background()

	require.NoError(t, Bootstrap(ctx, injector))

	_, err := do.Invoke[*service.SearchService](injector)
	assert.Error(t, err)
	_, err = do.Invoke[*providers.SyncJobHandle](injector)
	assert.Error(t, err)

	content := do.MustInvoke[*service.ContentService](injector)
	_, err = content.List(ctx, "", query.Filter{Search: "anything"})
	assert.Error(t, err)

	page, err := content.List(ctx, "", query.Filter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

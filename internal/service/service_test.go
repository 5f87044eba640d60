package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	"github.com/itsmingjie/sveltesociety.dev/internal/query"
	"github.com/itsmingjie/sveltesociety.dev/internal/render"
	"github.com/itsmingjie/sveltesociety.dev/internal/search"
	"github.com/itsmingjie/sveltesociety.dev/internal/store/sqlite"
	"github.com/itsmingjie/sveltesociety.dev/internal/validation"
)

// testEnv wires the services against a real store, index and checkpoint
// database under a temporary directory.
type testEnv struct {
	store       *sqlite.Store
	index       *search.Index
	checkpoints *search.Checkpoints
	search      *SearchService
	content     *ContentService
	tags        *TagService
	clock       *testClock
}

type testClock struct{ now time.Time }

func (c *testClock) Next() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)
	markdown := render.NewMarkdown()
	validator := validation.New()

	st, err := sqlite.Open(filepath.Join(dir, "content.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewIndex(search.Options{
		Path:     filepath.Join(dir, "search"),
		Logger:   logger,
		Markdown: markdown,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	checkpoints, err := search.OpenCheckpoints("", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = checkpoints.Close() })

	searchSvc := NewSearchService(index, checkpoints, st, logger)
	st.SetSearchIndexer(searchSvc)

	builder := query.NewBuilder(searchSvc, query.Options{MaxLimit: 50, Validator: validator})
	annotator := NewAnnotator(st, 2, logger)

	clock := &testClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	content := NewContentService(st, builder, annotator, validator, markdown, logger)
	content.now = clock.Next

	return &testEnv{
		store:       st,
		index:       index,
		checkpoints: checkpoints,
		search:      searchSvc,
		content:     content,
		tags:        NewTagService(st, validator, logger),
		clock:       clock,
	}
}

func articleInput(title string, tagIDs ...string) domain.ContentInput {
	return domain.ContentInput{
		Title:       title,
		Description: "About " + title,
		Type:        domain.ContentTypeArticle,
		Status:      domain.StatusPublished,
		Body:        "# " + title + "\n\nSome **body** text.",
		TagIDs:      tagIDs,
	}
}

func (e *testEnv) mustCreate(t *testing.T, in domain.ContentInput) string {
	t.Helper()
	id, err := e.content.Create(context.Background(), in)
	require.NoError(t, err)
	return id
}

func (e *testEnv) mustTag(t *testing.T, name string) *domain.Tag {
	t.Helper()
	tag, err := e.tags.Create(context.Background(), domain.TagInput{Name: name})
	require.NoError(t, err)
	return tag
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
	"github.com/itsmingjie/sveltesociety.dev/internal/query"
)

func TestContentService_CreateDerivesSlugAndRenders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.mustCreate(t, articleInput("Hello World"))
	assert.Contains(t, id, "content-")

	agg, err := env.content.Get(ctx, "", id)
	require.NoError(t, err)
	assert.Equal(t, "hello-world", agg.Slug)
	assert.Contains(t, agg.RenderedBody, "<h1")
	assert.Contains(t, agg.RenderedBody, "<strong>body</strong>")
	assert.NotNil(t, agg.PublishedAt)
	assert.NotNil(t, agg.Tags)
	assert.Empty(t, agg.Children)
}

func TestContentService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := articleInput("")
	_, err := env.content.Create(ctx, in)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	in = articleInput("!!!")
	_, err = env.content.Create(ctx, in)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err), "a title without slug characters needs an explicit slug")

	in.Slug = "bang"
	_, err = env.content.Create(ctx, in)
	assert.NoError(t, err)

	in = articleInput("Typed")
	in.Type = "podcast"
	_, err = env.content.Create(ctx, in)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
}

func TestContentService_CreateDuplicateSlug(t *testing.T) {
	env := newTestEnv(t)

	env.mustCreate(t, articleInput("Same"))
	_, err := env.content.Create(context.Background(), articleInput("Same"))
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainerrors.CodeOf(err))
}

func TestContentService_NonCollectionDropsChildren(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	other := env.mustCreate(t, articleInput("Other"))
	in := articleInput("Parent")
	in.Children = []string{other}
	id := env.mustCreate(t, in)

	agg, err := env.content.Get(ctx, "", id)
	require.NoError(t, err)
	assert.Empty(t, agg.Children)
	assert.Empty(t, agg.Content.Children)
}

func TestContentService_GetCollectionAnnotatesChildren(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.mustCreate(t, articleInput("Alpha"))
	b := env.mustCreate(t, articleInput("Beta"))
	in := articleInput("Reading list")
	in.Type = domain.ContentTypeCollection
	in.Children = []string{b, a, b}
	coll := env.mustCreate(t, in)

	_, err := env.content.Like(ctx, "u1", a)
	require.NoError(t, err)
	_, err = env.content.Save(ctx, "u1", coll)
	require.NoError(t, err)

	agg, err := env.content.Get(ctx, "u1", coll)
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, agg.ChildIDs())
	assert.True(t, agg.Saved)
	assert.False(t, agg.Liked)
	assert.False(t, agg.Children[0].Liked)
	assert.True(t, agg.Children[1].Liked)

	anon, err := env.content.Get(ctx, "", coll)
	require.NoError(t, err)
	assert.False(t, anon.Saved)
	assert.False(t, anon.Children[1].Liked)
}

func TestContentService_GetNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.content.Get(ctx, "u1", "content-missing")
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))

	_, err = env.content.GetBySlug(ctx, "", domain.ContentTypeArticle, "missing")
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestContentService_GetBySlug(t *testing.T) {
	env := newTestEnv(t)

	id := env.mustCreate(t, articleInput("Runes Explained"))
	agg, err := env.content.GetBySlug(context.Background(), "", domain.ContentTypeArticle, "runes-explained")
	require.NoError(t, err)
	assert.Equal(t, id, agg.ID)
}

func TestContentService_ListSearchTagsAndAnnotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	runes := env.mustTag(t, "Runes")
	first := env.mustCreate(t, articleInput("Runes in practice", runes.ID))
	second := env.mustCreate(t, articleInput("Stores and runes"))
	env.mustCreate(t, articleInput("Transitions"))

	draft := articleInput("Runes draft", runes.ID)
	draft.Status = domain.StatusDraft
	env.mustCreate(t, draft)

	_, err := env.content.Like(ctx, "u1", second)
	require.NoError(t, err)

	page, err := env.content.List(ctx, "u1", query.Filter{Search: "runes"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.ElementsMatch(t, []string{first, second}, []string{page.Items[0].ID, page.Items[1].ID})
	for _, item := range page.Items {
		assert.Equal(t, item.ID == second, item.Liked, item.ID)
		assert.NotNil(t, item.Tags)
	}

	page, err = env.content.List(ctx, "", query.Filter{Tags: []string{"runes"}, Status: query.StatusAll})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = env.content.List(ctx, "", query.Filter{Search: "kubernetes"})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Items)
}

func TestContentService_ListPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two", "Three"} {
		env.mustCreate(t, articleInput(title))
	}

	page, err := env.content.List(ctx, "", query.Filter{}.WithPage(2, 1))
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 1, page.Offset)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "two", page.Items[0].Slug)
	assert.Equal(t, "one", page.Items[1].Slug)

	_, err = env.content.List(ctx, "", query.Filter{Limit: query.Int(500)})
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
}

func TestContentService_UpdateReplacesTagsAndStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.mustTag(t, "Alpha")
	b := env.mustTag(t, "Beta")

	in := articleInput("Evolving", a.ID)
	in.Status = domain.StatusDraft
	id := env.mustCreate(t, in)

	in.TagIDs = []string{b.ID, a.ID}
	in.Status = domain.StatusPublished
	in.Title = "Evolved"
	require.NoError(t, env.content.Update(ctx, id, in))

	agg, err := env.content.Get(ctx, "", id)
	require.NoError(t, err)
	assert.Equal(t, "Evolved", agg.Title)
	assert.Equal(t, "evolved", agg.Slug)
	assert.Equal(t, []string{"beta", "alpha"}, domain.TagSlugs(agg.Tags))
	require.NotNil(t, agg.PublishedAt)
	assert.True(t, agg.UpdatedAt.After(agg.CreatedAt))

	err = env.content.Update(ctx, "content-missing", in)
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestContentService_DeleteRemovesFromIndex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.mustCreate(t, articleInput("Ephemeral"))
	ids, err := env.search.Search(ctx, "ephemeral")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)

	require.NoError(t, env.content.Delete(ctx, id))

	ids, err = env.search.Search(ctx, "ephemeral")
	require.NoError(t, err)
	assert.Empty(t, ids)

	err = env.content.Delete(ctx, id)
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestContentService_LikeUnlike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.mustCreate(t, articleInput("Likeable"))

	changed, err := env.content.Like(ctx, "u1", id)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = env.content.Like(ctx, "u1", id)
	require.NoError(t, err)
	assert.False(t, changed, "liking twice is a no-op")

	agg, err := env.content.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Equal(t, 1, agg.Likes)
	assert.True(t, agg.Liked)

	changed, err = env.content.Unlike(ctx, "u1", id)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = env.content.Unsave(ctx, "u1", id)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = env.content.Like(ctx, "u1", "content-missing")
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))

	_, err = env.content.Like(ctx, "", id)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
}

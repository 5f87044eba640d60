package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
)

func TestTagService_CreateDerivesSlug(t *testing.T) {
	env := newTestEnv(t)

	tag := env.mustTag(t, "Server Side")
	assert.Equal(t, "server-side", tag.Slug)
	assert.Equal(t, "Server Side", tag.Name)
	assert.Contains(t, tag.ID, "tag-")

	got, err := env.tags.GetBySlug(context.Background(), "Server Side")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, got.ID)
}

func TestTagService_CreateRejectsDuplicatesAndBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.mustTag(t, "Runes")

	_, err := env.tags.Create(ctx, domain.TagInput{Name: "runes"})
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainerrors.CodeOf(err))

	_, err = env.tags.Create(ctx, domain.TagInput{Name: ""})
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	_, err = env.tags.Create(ctx, domain.TagInput{Name: "Colored", Color: "red"})
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	_, err = env.tags.Create(ctx, domain.TagInput{Name: "???"})
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
}

func TestTagService_FindOrCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.tags.FindOrCreate(ctx, "Kit")
	require.NoError(t, err)
	second, err := env.tags.FindOrCreate(ctx, "kit")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	tags, err := env.tags.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestTagService_UpdateKeepsSlug(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tag := env.mustTag(t, "Forms")

	updated, err := env.tags.Update(ctx, tag.ID, domain.TagInput{Name: "Forms & Inputs", Color: "#ff3e00"})
	require.NoError(t, err)
	assert.Equal(t, "forms", updated.Slug)
	assert.Equal(t, "#ff3e00", updated.Color)
	assert.False(t, updated.UpdatedAt.Before(tag.UpdatedAt))

	_, err = env.tags.Update(ctx, tag.ID, domain.TagInput{Name: "Forms", Slug: "inputs"})
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	_, err = env.tags.Update(ctx, "tag-missing", domain.TagInput{Name: "Nope"})
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestTagService_DeleteAttachedTagConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tag := env.mustTag(t, "Attached")
	id := env.mustCreate(t, articleInput("Tagged", tag.ID))

	err := env.tags.Delete(ctx, tag.ID)
	assert.Equal(t, domainerrors.CodeConflict, domainerrors.CodeOf(err))

	require.NoError(t, env.content.Delete(ctx, id))
	require.NoError(t, env.tags.Delete(ctx, tag.ID))

	_, err = env.tags.Get(ctx, tag.ID)
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

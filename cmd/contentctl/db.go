package main

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/itsmingjie/sveltesociety.dev/internal/config"
	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
	"github.com/itsmingjie/sveltesociety.dev/internal/service"
	"github.com/itsmingjie/sveltesociety.dev/internal/util"
)

func (a *app) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database and apply the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Bootstrap already opened the store, which applies the schema.
			cfg := do.MustInvoke[*config.Config](a.injector)
			return writeJSON(cmd.OutOrStdout(), map[string]string{
				"database": cfg.Database.Path,
				"status":   "migrated",
			})
		},
	}
}

// seedItem is one demo content item. Children and tags refer to other
// seed items and tags by slug.
type seedItem struct {
	input    domain.ContentInput
	tags     []string
	children []string
}

var seedTags = []domain.TagInput{
	{Name: "Runes", Color: "#ff3e00"},
	{Name: "Stores", Color: "#40b3ff"},
	{Name: "Animation", Color: "#676778"},
	{Name: "SvelteKit", Color: "#ff5d01"},
	{Name: "Forms"},
}

var seedContent = []seedItem{
	{
		input: domain.ContentInput{
			Title:       "Understanding runes",
			Description: "A tour of $state, $derived and $effect.",
			Type:        domain.ContentTypeArticle,
			Status:      domain.StatusPublished,
			Body:        "# Runes\n\nRunes are compiler instructions.\n\n```js\nlet count = $state(0);\n```",
		},
		tags: []string{"runes"},
	},
	{
		input: domain.ContentInput{
			Title:       "Writable stores in depth",
			Description: "When a store still beats a rune.",
			Type:        domain.ContentTypeArticle,
			Status:      domain.StatusPublished,
			Body:        "Stores remain the simplest way to share state across components.",
		},
		tags: []string{"stores", "runes"},
	},
	{
		input: domain.ContentInput{
			Title:       "Crossfade page transitions",
			Description: "Animate between routes with crossfade.",
			Type:        domain.ContentTypeRecipe,
			Status:      domain.StatusPublished,
			Body:        "Use `crossfade` from `svelte/transition` and key the page.",
		},
		tags: []string{"animation", "sveltekit"},
	},
	{
		input: domain.ContentInput{
			Title:       "Superforms",
			Description: "Form validation for SvelteKit.",
			Type:        domain.ContentTypeComponent,
			Status:      domain.StatusPublished,
			Metadata:    map[string]any{"npm": "sveltekit-superforms", "url": "https://superforms.rocks"},
		},
		tags: []string{"forms", "sveltekit"},
	},
	{
		input: domain.ContentInput{
			Title:       "Form actions draft",
			Description: "Progressive enhancement notes.",
			Type:        domain.ContentTypeArticle,
			Status:      domain.StatusDraft,
			Body:        "Work in progress.",
		},
		tags: []string{"forms", "sveltekit"},
	},
	{
		input: domain.ContentInput{
			Title:       "Getting started with state",
			Description: "Read these in order.",
			Type:        domain.ContentTypeCollection,
			Status:      domain.StatusPublished,
		},
		tags:     []string{"runes"},
		children: []string{"understanding-runes", "writable-stores-in-depth", "form-actions-draft"},
	},
}

func (a *app) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo tags and content",
		Long:  "Insert demo tags and content, including a collection. Items that already exist are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tags := do.MustInvoke[*service.TagService](a.injector)
			content := do.MustInvoke[*service.ContentService](a.injector)

			ids, err := seed(cmd.Context(), tags, content)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"tags":    len(seedTags),
				"content": ids,
			})
		},
	}
}

// seed creates the demo data and returns content IDs keyed by slug.
func seed(ctx context.Context, tags *service.TagService, content *service.ContentService) (map[string]string, error) {
	tagIDs := make(map[string]string, len(seedTags))
	for _, in := range seedTags {
		t, err := tags.FindOrCreate(ctx, in.Name)
		if err != nil {
			return nil, fmt.Errorf("seed tag %q: %w", in.Name, err)
		}
		if in.Color != "" && t.Color != in.Color {
			if t, err = tags.Update(ctx, t.ID, in); err != nil {
				return nil, fmt.Errorf("seed tag %q: %w", in.Name, err)
			}
		}
		tagIDs[t.Slug] = t.ID
	}

	contentIDs := make(map[string]string, len(seedContent))
	for _, item := range seedContent {
		in := item.input
		for _, slug := range item.tags {
			in.TagIDs = append(in.TagIDs, tagIDs[slug])
		}
		for _, slug := range item.children {
			in.Children = append(in.Children, contentIDs[slug])
		}

		id, err := content.Create(ctx, in)
		if domainerrors.CodeOf(err) == domainerrors.CodeAlreadyExists {
			existing, getErr := content.GetBySlug(ctx, "", in.Type, slugOf(in))
			if getErr != nil {
				return nil, getErr
			}
			id, err = existing.ID, nil
		}
		if err != nil {
			return nil, fmt.Errorf("seed content %q: %w", in.Title, err)
		}
		contentIDs[slugOf(in)] = id
	}
	return contentIDs, nil
}

func slugOf(in domain.ContentInput) string {
	if in.Slug != "" {
		return in.Slug
	}
	return util.Slugify(in.Title)
}

package main

import (
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/itsmingjie/sveltesociety.dev/internal/config"
	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	"github.com/itsmingjie/sveltesociety.dev/internal/query"
	"github.com/itsmingjie/sveltesociety.dev/internal/service"
)

func (a *app) listCommand() *cobra.Command {
	var (
		f      query.Filter
		sort   string
		limit  int
		offset int
		userID string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content",
		Long: `List content matching a filter. Without --status only published items
are listed; --status all lists every status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := do.MustInvoke[*config.Config](a.injector)
			content := do.MustInvoke[*service.ContentService](a.injector)

			f.Sort = query.ParseSort(sort)
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Content.DefaultLimit
			}
			f = f.WithPage(limit, offset)

			page, err := content.List(cmd.Context(), userID, f)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), page)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.Search, "search", "", "full-text search query")
	fl.StringVar(&f.Status, "status", "", "status filter (published, draft, archived or all)")
	fl.StringVar(&f.Type, "type", "", "content type filter")
	fl.StringSliceVar(&f.Tags, "tag", nil, "tag slug; repeat to require several tags")
	fl.StringVar(&sort, "sort", string(query.SortLatest), "sort order: latest, oldest or popular")
	fl.IntVar(&limit, "limit", 0, "page size (default from CONTENT_DEFAULT_LIMIT)")
	fl.IntVar(&offset, "offset", 0, "number of items to skip")
	fl.StringVar(&userID, "user", "", "annotate liked and saved flags for this user")

	return cmd
}

func (a *app) getCommand() *cobra.Command {
	var (
		userID      string
		contentType string
	)

	cmd := &cobra.Command{
		Use:   "get <id|slug>",
		Short: "Show one content item",
		Long: `Show one content item with its tags and, for collections, its children.
With --type the argument is looked up as a slug within that type.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := do.MustInvoke[*service.ContentService](a.injector)
			key := strings.TrimSpace(args[0])

			var (
				agg *domain.ContentAggregate
				err error
			)
			if contentType != "" {
				agg, err = content.GetBySlug(cmd.Context(), userID, domain.ContentType(contentType), key)
			} else {
				agg, err = content.Get(cmd.Context(), userID, key)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), agg)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "annotate liked and saved flags for this user")
	cmd.Flags().StringVar(&contentType, "type", "", "look the argument up as a slug of this type")

	return cmd
}

func (a *app) tagsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tags := do.MustInvoke[*service.TagService](a.injector)
			list, err := tags.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), list)
		},
	}

	var color string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag; the slug is derived from the name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags := do.MustInvoke[*service.TagService](a.injector)
			t, err := tags.Create(cmd.Context(), domain.TagInput{Name: args[0], Color: color})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), t)
		},
	}
	create.Flags().StringVar(&color, "color", "", "hex color, e.g. #ff3e00")

	cmd.AddCommand(create)
	return cmd
}

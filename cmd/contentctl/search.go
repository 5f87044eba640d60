package main

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/itsmingjie/sveltesociety.dev/internal/di/providers"
	"github.com/itsmingjie/sveltesociety.dev/internal/logger"
	"github.com/itsmingjie/sveltesociety.dev/internal/service"
)

func (a *app) reindexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			searchService, err := do.Invoke[*service.SearchService](a.injector)
			if err != nil {
				return err
			}
			res, err := searchService.ReindexAll(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}

func (a *app) syncCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Index content changed since the last sync",
		Long: `Index content changed since the last sync and advance the checkpoint.
With --watch the sync repeats on the schedule until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !watch {
				searchService, err := do.Invoke[*service.SearchService](a.injector)
				if err != nil {
					return err
				}
				res, err := searchService.Sync(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			}

			// The job starts on first invoke and stops on container shutdown.
			if _, err := do.Invoke[*providers.SyncJobHandle](a.injector); err != nil {
				return err
			}
			log := do.MustInvoke[*logger.Logger](a.injector)

			<-cmd.Context().Done()
			log.Info("Stopping search sync")
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and sync on a schedule")
	cmd.Flags().StringVar(&a.flags.SyncSchedule, "schedule", "", `cron schedule for --watch (default "@every 5m")`)

	return cmd
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/itsmingjie/sveltesociety.dev/internal/config"
	"github.com/itsmingjie/sveltesociety.dev/internal/di"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
	"github.com/itsmingjie/sveltesociety.dev/internal/logger"
)

// app holds the state shared by every command: the parsed global flags
// and the container built from them.
type app struct {
	flags    config.Flags
	injector *do.RootScope
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "contentctl",
		Short:         "content store operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `contentctl migrate
contentctl seed
contentctl list --search runes --tag sveltekit --sort popular --limit 10
contentctl get content-abc123 --user u1
contentctl get runes-explained --type article
contentctl reindex
contentctl sync --watch --schedule "@every 1m"
contentctl tags`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.injector = di.NewContainer(a.flags)
			return di.Bootstrap(cmd.Context(), a.injector)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.EnvFile, "env-file", "", "path to a .env file (default .env)")
	pf.StringVar(&a.flags.Env, "env", "", "environment: development, staging or production")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.flags.DataPath, "data", "", "data directory (default ~/.sveltesociety)")
	pf.StringVar(&a.flags.DatabasePath, "db", "", "database file (default {data}/content.db)")
	pf.StringVar(&a.flags.SearchEnabled, "search", "", "enable full-text search (true or false)")

	root.AddCommand(
		a.migrateCommand(),
		a.seedCommand(),
		a.reindexCommand(),
		a.syncCommand(),
		a.listCommand(),
		a.getCommand(),
		a.tagsCommand(),
	)
	root.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	root.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false

	return root
}

// shutdown closes everything the container opened.
func (a *app) shutdown() {
	if a.injector == nil {
		return
	}
	log, logErr := do.Invoke[*logger.Logger](a.injector)
	if err := a.injector.Shutdown(); err != nil && logErr == nil {
		log.Error("Shutdown error", "error", err)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeError prints err as JSON. Coded errors keep their code and details.
func writeError(w io.Writer, err error) {
	var de *domainerrors.Error
	if errors.As(err, &de) {
		_ = writeJSON(w, map[string]any{"error": de})
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

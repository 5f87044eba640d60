// Package main provides contentctl, the operator CLI for the content store.
//
// Usage:
//
//	contentctl migrate
//	contentctl seed
//	contentctl list --search runes --tag sveltekit --sort popular --limit 10
//	contentctl get content-abc123 --user u1
//	contentctl sync --watch --schedule "@every 1m"
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	a := &app{}
	err := a.rootCommand().ExecuteContext(ctx)
	a.shutdown()
	stop()

	if err != nil {
		writeError(os.Stderr, err)
		os.Exit(domainerrors.CodeOf(err).ExitCode())
	}
}

package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/do/v2"

	"github.com/itsmingjie/sveltesociety.dev/internal/config"
	"github.com/itsmingjie/sveltesociety.dev/internal/logger"
	"github.com/itsmingjie/sveltesociety.dev/internal/service"
)

// SyncJobHandle runs the incremental search sync on the configured schedule.
type SyncJobHandle struct {
	cron   *cron.Cron
	cancel context.CancelFunc
	log    *slog.Logger
}

// Shutdown implements do.Shutdownable. It waits for a running pass to
// finish, up to shutdownTimeout.
func (h *SyncJobHandle) Shutdown() error {
	h.cancel()
	done := h.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(shutdownTimeout):
		h.log.Warn("Search sync still running at shutdown")
	}
	return nil
}

// ProvideSyncJob provides the scheduled search sync job and starts it.
func ProvideSyncJob(i do.Injector) (*SyncJobHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	searchService, err := do.Invoke[*service.SearchService](i)
	if err != nil {
		return nil, err
	}

	jobLog := log.Component("sync")
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{jobLog}),
		cron.SkipIfStillRunning(cronLogger{jobLog}),
	))

	ctx, cancel := context.WithCancel(context.Background())
	run := func() {
		if _, err := searchService.Sync(ctx); err != nil && ctx.Err() == nil {
			jobLog.Warn("Search sync failed", "error", err)
		}
	}

	if _, err := c.AddFunc(cfg.Sync.Schedule, run); err != nil {
		cancel()
		return nil, err
	}

	// Initial pass on startup
	run()
	c.Start()

	jobLog.Info("Search sync job started", "schedule", cfg.Sync.Schedule)

	return &SyncJobHandle{cron: c, cancel: cancel, log: jobLog}, nil
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}

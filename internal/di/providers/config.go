// Package providers contains dependency injection providers for the content service.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/itsmingjie/sveltesociety.dev/internal/config"
	"github.com/itsmingjie/sveltesociety.dev/internal/logger"
)

// ProvideConfig provides the application configuration. Command-line
// overrides are registered in the container as a config.Flags value.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	flags, err := do.Invoke[config.Flags](i)
	if err != nil {
		flags = config.Flags{}
	}
	return config.LoadConfig(flags)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Debug("Configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.App.DataPath,
		"database_path", cfg.Database.Path,
		"search_enabled", cfg.Search.Enabled,
	)

	return log, nil
}

package cmd

import (
	"fmt"

	"catalog-sync/core/config"
	"catalog-sync/core/logger"
	"catalog-sync/core/workspace"
	"catalog-sync/feature/catalog"

	"go.uber.org/zap"
)

// app bundles what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	ws     *workspace.Workspace
}

func loadApp() (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ws, err := workspace.New(cfg.Workspace.Dir)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: l, ws: ws}, nil
}

func (a *app) reader() (*catalog.Reader, error) {
	return catalog.NewReader(a.ws, a.cfg.Catalog, a.cfg.Library.RootFolder, a.logger)
}

func (a *app) close() {
	_ = a.logger.Sync()
}

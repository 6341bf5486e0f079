package main

import (
	"context"
	"fmt"

	"commentarchive/internal/catalog"
	"commentarchive/internal/config"
	"commentarchive/internal/convert"
	"commentarchive/internal/ingest"
	"commentarchive/internal/logger"
)

type globalOptions struct {
	configPath string
	logLevel   string
}

// app is the configuration and shared services every subcommand starts from.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	converter convert.Converter
}

func newApp(opts *globalOptions) (*app, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	log := logger.NewLogger(level)

	conv, err := convert.New(cfg.Search.Converter)
	if err != nil {
		return nil, fmt.Errorf("create converter: %w", err)
	}

	log.Debug("Configuration loaded", "config", cfg.String())

	return &app{cfg: cfg, log: log, converter: conv}, nil
}

func (a *app) source() *ingest.Source {
	return ingest.NewSource(a.cfg.Archive.DataDir, a.cfg.Archive.FixedDir, a.cfg.Archive.Pattern)
}

// load runs the ingest pipeline over the configured data directory.
func (a *app) load(ctx context.Context) (*catalog.Catalog, ingest.Report, error) {
	cat, report, err := ingest.NewPipeline(a.source(), a.cfg.Features.StrictIngest, a.log).Run(ctx)
	if err != nil {
		return nil, report, fmt.Errorf("ingest: %w", err)
	}

	return cat, report, nil
}

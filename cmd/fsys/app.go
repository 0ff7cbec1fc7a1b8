package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/config"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/console"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/events"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/logging"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/prompt"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/search"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/shell"
)

type appOptions struct {
	configDir  string
	configFile string
	setupArgs  []string
	// askFilters prompts for the filters of rules configured without any.
	askFilters bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// app wires configuration, logging, the system, event publishing and the
// shell for one process.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	shell       *shell.Shell
	closeEvents func()
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	// 1. Load Configuration
	cfg, err := config.Load(opts.configDir, opts.configFile, opts.setupArgs)
	if err != nil {
		return nil, err
	}

	// 2. Initialize Logging
	logger, err := logging.Initialize(cfg.Logging, opts.stderr)
	if err != nil {
		return nil, err
	}

	printer := console.NewPrinter(opts.stdout)
	prompter := prompt.New(opts.stdin, printer)

	// 3. Build the formal system
	var filters config.FilterSource
	if opts.askFilters {
		filters = prompter
	}
	sys, problems := config.BuildSystem(cfg.System, filters, logger)
	if sys == nil {
		_ = logging.Shutdown()
		return nil, fmt.Errorf("invalid system: %w", errors.Join(problems...))
	}
	warn := console.NewPrinter(opts.stderr)
	for _, p := range problems {
		warn.Warning(p.Error())
	}

	// 4. Connect event publishing
	pub, closeEvents, err := events.Connect(ctx, cfg.Events, logger)
	if err != nil {
		_ = logging.Shutdown()
		return nil, err
	}

	// 5. Start the search engine and shell
	searchOpts := cfg.Search.Options()
	searchOpts.Logger = logger
	if pub != nil {
		searchOpts.Sinks = append(searchOpts.Sinks, pub)
	}
	engine, err := search.NewEngine(sys, searchOpts)
	if err != nil {
		closeEvents()
		_ = logging.Shutdown()
		return nil, err
	}
	sh, err := shell.New(engine, printer, prompter, logger)
	if err != nil {
		closeEvents()
		_ = logging.Shutdown()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, shell: sh, closeEvents: closeEvents}, nil
}

func (a *app) Close() error {
	a.closeEvents()
	return logging.Shutdown()
}

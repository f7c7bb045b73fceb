package main

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mvella/casabuild/internal/config"
	"github.com/mvella/casabuild/internal/feed"
	"github.com/mvella/casabuild/internal/listing"
	"github.com/mvella/casabuild/internal/observability"
	"github.com/mvella/casabuild/internal/pipeline"
	"github.com/mvella/casabuild/internal/publish"
	"github.com/mvella/casabuild/internal/store"
)

// pipelineOptions wires the pipeline's collaborators from a merged config.
// The returned cleanup closes whatever was opened; callers defer it even on
// error.
func pipelineOptions(ctx context.Context, cfg config.Config) (pipeline.Options, func(), error) {
	cleanup := func() {}

	runStore, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return pipeline.Options{}, cleanup, err
	}

	dialect, err := listing.DialectByName(cfg.Dialect)
	if err != nil {
		return pipeline.Options{}, cleanup, err
	}

	fetchOpts := feed.DefaultOptions()
	fetchOpts.Timeout = cfg.Timeout()

	var sink publish.Sink
	if cfg.NoPublish {
		sink = &publish.NoopSink{}
	} else {
		sink = publish.NewGitSink(cfg.SiteDir)
	}

	return pipeline.Options{
		FeedURL:       cfg.FeedURL,
		Dialect:       dialect,
		TemplatePath:  cfg.Template,
		OutputPath:    cfg.Output,
		DetailBaseURL: cfg.DetailBaseURL,
		ContactURL:    cfg.ContactURL,
		Cooldown:      cfg.Cooldown(),
		Retry: feed.RetryPolicy{
			MaxAttempts: cfg.RetryAttempts(),
			BaseDelay:   cfg.RetryDelay(),
		},
		Fetcher:      feed.NewFetcher(fetchOpts),
		Store:        runStore,
		Sink:         sink,
		PublishPaths: []string{cfg.Output, cfg.RunRecord},
		Verbose:      cfg.Verbose,
		Printer:      observability.NewPrinter(os.Stdout),
	}, cleanup, nil
}

// openStore opens the run-record store: PostgreSQL when configured and
// reachable, otherwise the JSON file next to the output. A failed database
// connection degrades to the file store with a warning rather than failing
// the build.
func openStore(ctx context.Context, cfg config.Config) (store.RunStore, func(), error) {
	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pg, err := store.ConnectPostgres(connectCtx, cfg.DatabaseURL)
		if err == nil {
			return pg, pg.Close, nil
		}
		log.Warn("could not connect to database, falling back to file store", "err", err)
	}

	fs, err := store.NewFileStore(cfg.RunRecord)
	if err != nil {
		return nil, func() {}, err
	}
	return fs, func() {}, nil
}

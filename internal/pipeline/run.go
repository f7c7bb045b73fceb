// Package pipeline provides the high-level orchestration of a site build:
// fetch, parse, extract, classify, render, assemble, diff, write, publish.
// The sequence is strictly forward and fully in memory; the output file is
// only ever written whole.
package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mvella/casabuild/internal/classify"
	"github.com/mvella/casabuild/internal/feed"
	"github.com/mvella/casabuild/internal/listing"
	"github.com/mvella/casabuild/internal/observability"
	"github.com/mvella/casabuild/internal/publish"
	"github.com/mvella/casabuild/internal/render"
	"github.com/mvella/casabuild/internal/store"
)

// DefaultCooldown is the minimum gap between two builds.
const DefaultCooldown = 5 * time.Minute

// Run-record reasons for no-op successes.
const (
	reasonNoChanges    = "no_changes"
	reasonGitNoChanges = "git_no_changes"
)

// FeedFetcher is what the orchestrator needs from the fetch layer.
type FeedFetcher interface {
	FetchWithRetry(ctx context.Context, url string, policy feed.RetryPolicy) ([]byte, error)
}

// Options configures one build run. Fetcher, Store and Sink are injected
// so the orchestrator runs the same against production collaborators and
// test doubles.
type Options struct {
	FeedURL       string
	Dialect       listing.Dialect
	TemplatePath  string
	OutputPath    string
	DetailBaseURL string
	ContactURL    string

	Cooldown time.Duration
	Retry    feed.RetryPolicy

	Fetcher FeedFetcher
	Store   store.RunStore
	Sink    publish.Sink

	// PublishPaths are the files staged into the sink, typically the
	// output document and the run-record file.
	PublishPaths []string

	Verbose bool
	Printer *observability.Printer

	// Now is the clock; nil means time.Now. Injected for cooldown tests.
	Now func() time.Time
}

// Outcome is the terminal state of a build run.
type Outcome int

const (
	// OutcomeBuilt: output written and, when a sink is configured,
	// published.
	OutcomeBuilt Outcome = iota
	// OutcomeNoChange: content identical to the previous output; nothing
	// written or published.
	OutcomeNoChange
	// OutcomeSkippedCooldown: a prior run is too recent.
	OutcomeSkippedCooldown
	// OutcomeDegraded: the run failed but a previous output file remains
	// on disk, so the site stays up on stale content.
	OutcomeDegraded
	// OutcomeFailed: the run failed and no fallback output exists.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBuilt:
		return "built"
	case OutcomeNoChange:
		return "no-change"
	case OutcomeSkippedCooldown:
		return "skipped-cooldown"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what a build run reports back to the caller.
type Result struct {
	Outcome   Outcome
	ItemCount int
	Stats     store.Stats
	Err       error
}

// ExitCode maps the outcome to the process exit code contract: only a
// failure with no fallback file is a hard failure.
func (r *Result) ExitCode() int {
	if r.Outcome == OutcomeFailed {
		return 1
	}
	return 0
}

// Run executes one build. Every terminal transition except the cooldown
// skip persists a run record; the skip leaves the prior record in place so
// repeated invocations cannot push the cooldown window forward forever.
func Run(ctx context.Context, opts Options) *Result {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	start := now()

	if skipped, remaining := cooldownActive(ctx, opts, start); skipped {
		log.Info("build skipped, cooldown active", "remaining", remaining.Round(time.Second))
		return &Result{Outcome: OutcomeSkippedCooldown}
	}

	rec := store.NewRunRecord(start)
	res := build(ctx, opts, rec)
	rec.Stats.TotalMS = time.Since(start).Milliseconds()
	res.Stats = rec.Stats

	persistRecord(ctx, opts.Store, rec)
	if opts.Verbose && opts.Printer != nil {
		opts.Printer.PrintBuildStats(rec)
	}
	log.Info("build finished", "outcome", res.Outcome, "items", res.ItemCount,
		"total", time.Duration(rec.Stats.TotalMS)*time.Millisecond)
	return res
}

// cooldownActive reads the prior run record and reports whether the
// elapsed time since it is still inside the cooldown window. The boundary
// proceeds: elapsed == window is not a skip.
func cooldownActive(ctx context.Context, opts Options, start time.Time) (bool, time.Duration) {
	if opts.Cooldown <= 0 || opts.Store == nil {
		return false, 0
	}
	last, err := opts.Store.Last(ctx)
	if err != nil {
		log.Warn("could not read prior run record, proceeding", "err", err)
		return false, 0
	}
	if last == nil {
		log.Info("first build, proceeding")
		return false, 0
	}
	elapsed := start.Sub(last.Time())
	if elapsed < opts.Cooldown {
		return true, opts.Cooldown - elapsed
	}
	return false, 0
}

// build runs the fetch→publish sequence, filling rec as it goes.
func build(ctx context.Context, opts Options, rec *store.RunRecord) *Result {
	fetchStart := time.Now()
	data, err := opts.Fetcher.FetchWithRetry(ctx, opts.FeedURL, opts.Retry)
	rec.Stats.FetchMS = time.Since(fetchStart).Milliseconds()
	if err != nil {
		return fail(opts, rec, err)
	}
	log.Info("feed downloaded", "bytes", len(data))

	parseStart := time.Now()
	listings, err := feed.ParseFeed(data, opts.Dialect)
	rec.Stats.ParseMS = time.Since(parseStart).Milliseconds()
	if err != nil {
		return fail(opts, rec, err)
	}
	if len(listings) == 0 {
		return fail(opts, rec, &EmptyFeedError{})
	}
	log.Info("feed parsed", "listings", len(listings))

	renderStart := time.Now()
	extractor := listing.NewExtractor(opts.Dialect, opts.DetailBaseURL)
	renderer := render.NewRenderer(opts.ContactURL)

	cards := make([]listing.Card, len(listings))
	results := make([]classify.Result, len(listings))
	fragments := make([]string, len(listings))
	categories := map[classify.Category]int{}
	rendered := 0

	for i, l := range listings {
		cards[i] = extractor.Card(l)
		results[i] = classify.Classify(cards[i])
		fragment, rerr := renderer.Card(cards[i], results[i])
		if rerr != nil {
			rec.Stats.RenderMS = time.Since(renderStart).Milliseconds()
			return fail(opts, rec, rerr)
		}
		fragments[i] = fragment
		if fragment != "" {
			rendered++
			categories[results[i].Category]++
		}
	}

	cardsHTML := render.JoinCards(fragments)
	dataScript, err := render.DataScript(cards, results)
	rec.Stats.RenderMS = time.Since(renderStart).Milliseconds()
	if err != nil {
		return fail(opts, rec, err)
	}
	rec.PropertiesCount = rendered
	log.Info("cards generated", "rendered", rendered, "skipped", len(listings)-rendered)
	if opts.Verbose && opts.Printer != nil {
		opts.Printer.PrintCategorySummary(categories)
	}

	// The whole document is assembled in memory before any write.
	tpl, err := os.ReadFile(opts.TemplatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fail(opts, rec, &TemplateMissingError{Path: opts.TemplatePath})
		}
		return fail(opts, rec, err)
	}
	output := render.SpliceTemplate(string(tpl), cardsHTML, dataScript)

	if !contentChanged(opts.OutputPath, output) {
		log.Info("content identical to previous build, skipping write and publish")
		rec.Success = true
		rec.Reason = reasonNoChanges
		return &Result{Outcome: OutcomeNoChange, ItemCount: rendered}
	}

	if err := os.WriteFile(opts.OutputPath, []byte(output), 0o644); err != nil {
		return fail(opts, rec, err)
	}
	log.Info("output written", "path", opts.OutputPath)

	if opts.Sink != nil {
		if res := publishOutput(ctx, opts, rec, rendered); res != nil {
			return res
		}
	}

	rec.Success = true
	return &Result{Outcome: OutcomeBuilt, ItemCount: rendered}
}

// publishOutput drives the sink. It returns a non-nil Result only when the
// run should terminate with something other than a plain success.
func publishOutput(ctx context.Context, opts Options, rec *store.RunRecord, rendered int) *Result {
	if err := opts.Sink.Setup(ctx); err != nil {
		log.Warn("publish setup failed, continuing", "err", err)
	}
	if err := opts.Sink.Stage(ctx, opts.PublishPaths...); err != nil {
		return degradedPublish(rec, rendered, &PublishError{Op: "stage", Cause: err})
	}

	changed, err := opts.Sink.HasChanges(ctx)
	if err != nil {
		return degradedPublish(rec, rendered, &PublishError{Op: "diff", Cause: err})
	}
	if !changed {
		log.Info("no staged changes, skipping commit")
		rec.Success = true
		rec.Reason = reasonGitNoChanges
		return &Result{Outcome: OutcomeBuilt, ItemCount: rendered}
	}

	if err := opts.Sink.Commit(ctx, publish.CommitMessage(rendered, rec.Time())); err != nil {
		return degradedPublish(rec, rendered, &PublishError{Op: "commit", Cause: err})
	}
	if err := opts.Sink.Push(ctx); err != nil {
		pushed := false
		rec.GitPush = &pushed
		return degradedPublish(rec, rendered, &PublishError{Op: "push", Cause: err})
	}

	pushed := true
	rec.GitPush = &pushed
	return nil
}

// degradedPublish records a publish failure. The local output file is
// already written and is never rolled back, so the run exits degraded, not
// failed.
func degradedPublish(rec *store.RunRecord, rendered int, err error) *Result {
	log.Error("publish failed, local output kept", "err", err)
	rec.Success = false
	rec.Error = err.Error()
	return &Result{Outcome: OutcomeDegraded, ItemCount: rendered, Err: err}
}

// fail finalizes a failed run. When a previous output file exists it is
// kept as a fallback and the run reports degraded; only with no fallback
// at all does the run fail hard.
func fail(opts Options, rec *store.RunRecord, err error) *Result {
	rec.Success = false
	rec.Error = err.Error()

	if _, statErr := os.Stat(opts.OutputPath); statErr == nil {
		log.Error("build failed, keeping existing output as fallback", "err", err)
		return &Result{Outcome: OutcomeDegraded, Err: err}
	}
	log.Error("build failed with no fallback output", "err", err)
	return &Result{Outcome: OutcomeFailed, Err: err}
}

// contentChanged compares the cards section of the previous output with
// the new one. A missing previous file, or one without a cards block,
// counts as changed.
func contentChanged(outputPath, newOutput string) bool {
	old, err := os.ReadFile(outputPath)
	if err != nil {
		return true
	}
	oldSection, ok := render.CardsSection(string(old))
	if !ok {
		return true
	}
	newSection, ok := render.CardsSection(newOutput)
	if !ok {
		return true
	}
	return oldSection != newSection
}

// persistRecord writes the run record, logging instead of failing: losing
// a record costs one early rebuild, never the build itself.
func persistRecord(ctx context.Context, s store.RunStore, rec *store.RunRecord) {
	if s == nil {
		return
	}
	if err := s.Put(ctx, rec); err != nil {
		log.Warn("could not persist run record", "err", err)
	}
}

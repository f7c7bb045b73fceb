package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvella/casabuild/internal/feed"
	"github.com/mvella/casabuild/internal/listing"
	"github.com/mvella/casabuild/internal/publish"
	"github.com/mvella/casabuild/internal/store"
)

type stubFetcher struct {
	data  []byte
	err   error
	calls int
}

func (s *stubFetcher) FetchWithRetry(_ context.Context, _ string, _ feed.RetryPolicy) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

const testTemplate = `<!DOCTYPE html>
<html>
<body>
<div class="properties-grid">
<!-- PROPERTIES_CARDS -->
</div>
<!-- PROPERTIES_DATA -->
</body>
</html>`

var luganoDescription = strings.TrimSpace(
	strings.Repeat("Spazioso e luminoso appartamento ai piani alti nel centro di Lugano. ", 3))

const luganoFeed = `<?xml version="1.0" encoding="UTF-8"?>
<Annunci>
  <Annuncio>
    <Titolo>Attico con vista lago</Titolo>
    <Comune>Lugano</Comune>
    <Prezzo>500000</Prezzo>
    <Valuta>CHF</Valuta>
    <Descrizione>DESCRIPTION</Descrizione>
    <Offerta>si</Offerta>
  </Annuncio>
</Annunci>`

func luganoFeedXML() []byte {
	return []byte(strings.Replace(luganoFeed, "DESCRIPTION", luganoDescription, 1))
}

// testOptions builds a full Options against a temp dir: template in place,
// file store, the given sink, no cooldown.
func testOptions(t *testing.T, fetcher FeedFetcher, sink publish.Sink) Options {
	t.Helper()
	dir := t.TempDir()

	templatePath := filepath.Join(dir, "template.html")
	require.NoError(t, os.WriteFile(templatePath, []byte(testTemplate), 0o644))

	outputPath := filepath.Join(dir, "index.html")
	recordPath := filepath.Join(dir, "last-build.json")
	st, err := store.NewFileStore(recordPath)
	require.NoError(t, err)

	return Options{
		FeedURL:       "https://feed.example.test/annunci.xml",
		Dialect:       listing.DialectMiogest,
		TemplatePath:  templatePath,
		OutputPath:    outputPath,
		DetailBaseURL: "https://example.test/proprieta",
		Fetcher:       fetcher,
		Store:         st,
		Sink:          sink,
		PublishPaths:  []string{outputPath, recordPath},
	}
}

func TestRun_BuildsAndPublishes(t *testing.T) {
	fetcher := &stubFetcher{data: luganoFeedXML()}
	sink := &publish.NoopSink{}
	opts := testOptions(t, fetcher, sink)

	res := Run(context.Background(), opts)

	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeBuilt, res.Outcome)
	assert.Equal(t, 1, res.ItemCount)
	assert.Equal(t, 0, res.ExitCode())

	out, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `data-categoria="appartamento"`)
	assert.Contains(t, html, `data-contratto="vendita"`)
	assert.Contains(t, html, `data-caratteristiche="vista,attico"`)
	assert.Contains(t, html, `data-comune="lugano"`)
	assert.Contains(t, html, `data-prezzo="500000"`)
	assert.Contains(t, html, `href="https://example.test/proprieta"`)
	assert.Contains(t, html, "propertiesData")

	assert.Equal(t, []string{opts.OutputPath, opts.PublishPaths[1]}, sink.Staged)
	require.Len(t, sink.Committed, 1)
	assert.Contains(t, sink.Committed[0], "Aggiornamento automatico: 1 immobili")
	assert.Equal(t, 1, sink.Pushed)

	rec, err := opts.Store.Last(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Success)
	assert.Equal(t, 1, rec.PropertiesCount)
	require.NotNil(t, rec.GitPush)
	assert.True(t, *rec.GitPush)
}

func TestRun_TruncatesLongDescription(t *testing.T) {
	fetcher := &stubFetcher{data: luganoFeedXML()}
	opts := testOptions(t, fetcher, &publish.NoopSink{})

	Run(context.Background(), opts)

	out, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)

	want := listing.Truncate(luganoDescription, listing.ShortDescriptionLimit)
	assert.Contains(t, string(out), want)
}

func TestRun_CooldownSkipsRecentBuild(t *testing.T) {
	fetcher := &stubFetcher{data: luganoFeedXML()}
	opts := testOptions(t, fetcher, &publish.NoopSink{})
	opts.Cooldown = DefaultCooldown

	now := time.Now()
	prior := store.NewRunRecord(now.Add(-2 * time.Minute))
	prior.Success = true
	require.NoError(t, opts.Store.Put(context.Background(), prior))
	opts.Now = func() time.Time { return now }

	res := Run(context.Background(), opts)

	assert.Equal(t, OutcomeSkippedCooldown, res.Outcome)
	assert.Equal(t, 0, res.ExitCode())
	assert.Equal(t, 0, fetcher.calls)

	// The skip must not refresh the record, or back-to-back invocations
	// would never leave the cooldown window.
	rec, err := opts.Store.Last(context.Background())
	require.NoError(t, err)
	assert.Equal(t, prior.Timestamp, rec.Timestamp)
}

func TestRun_CooldownBoundaryProceeds(t *testing.T) {
	fetcher := &stubFetcher{data: luganoFeedXML()}
	opts := testOptions(t, fetcher, &publish.NoopSink{})
	opts.Cooldown = DefaultCooldown

	now := time.Now()
	prior := store.NewRunRecord(now.Add(-DefaultCooldown))
	prior.Success = true
	require.NoError(t, opts.Store.Put(context.Background(), prior))
	opts.Now = func() time.Time { return now }

	res := Run(context.Background(), opts)

	assert.Equal(t, OutcomeBuilt, res.Outcome)
	assert.Equal(t, 1, fetcher.calls)
}

func TestRun_SecondIdenticalRunIsNoChange(t *testing.T) {
	fetcher := &stubFetcher{data: luganoFeedXML()}
	sink := &publish.NoopSink{}
	opts := testOptions(t, fetcher, sink)

	first := Run(context.Background(), opts)
	require.Equal(t, OutcomeBuilt, first.Outcome)

	second := Run(context.Background(), opts)

	assert.Equal(t, OutcomeNoChange, second.Outcome)
	assert.Equal(t, 0, second.ExitCode())
	// Only the first run published.
	assert.Len(t, sink.Committed, 1)
	assert.Equal(t, 1, sink.Pushed)

	rec, err := opts.Store.Last(context.Background())
	require.NoError(t, err)
	assert.True(t, rec.Success)
	assert.Equal(t, "no_changes", rec.Reason)
}

func TestRun_EmptyFeedFailsWithoutFallback(t *testing.T) {
	fetcher := &stubFetcher{data: []byte(`<?xml version="1.0"?><Annunci></Annunci>`)}
	opts := testOptions(t, fetcher, &publish.NoopSink{})

	res := Run(context.Background(), opts)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, 1, res.ExitCode())
	var emptyErr *EmptyFeedError
	assert.ErrorAs(t, res.Err, &emptyErr)

	rec, err := opts.Store.Last(context.Background())
	require.NoError(t, err)
	assert.False(t, rec.Success)
	assert.Equal(t, "no listings found in feed", rec.Error)
}

func TestRun_EmptyFeedDegradesWithFallback(t *testing.T) {
	fetcher := &stubFetcher{data: []byte(`<?xml version="1.0"?><Annunci></Annunci>`)}
	opts := testOptions(t, fetcher, &publish.NoopSink{})
	require.NoError(t, os.WriteFile(opts.OutputPath, []byte("<html>stale</html>"), 0o644))

	res := Run(context.Background(), opts)

	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Equal(t, 0, res.ExitCode())

	// The stale output is untouched.
	out, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "<html>stale</html>", string(out))
}

func TestRun_FetchFailureDegradesWithFallback(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	opts := testOptions(t, fetcher, &publish.NoopSink{})
	require.NoError(t, os.WriteFile(opts.OutputPath, []byte("<html>stale</html>"), 0o644))

	res := Run(context.Background(), opts)

	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Equal(t, 0, res.ExitCode())
}

func TestRun_PushFailureDegrades(t *testing.T) {
	fetcher := &stubFetcher{data: luganoFeedXML()}
	sink := &publish.NoopSink{PushErr: errors.New("remote rejected")}
	opts := testOptions(t, fetcher, sink)

	res := Run(context.Background(), opts)

	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Equal(t, 0, res.ExitCode())
	var pubErr *PublishError
	require.ErrorAs(t, res.Err, &pubErr)
	assert.Equal(t, "push", pubErr.Op)

	// The local output survives the failed publish.
	_, err := os.Stat(opts.OutputPath)
	require.NoError(t, err)

	rec, err := opts.Store.Last(context.Background())
	require.NoError(t, err)
	assert.False(t, rec.Success)
	require.NotNil(t, rec.GitPush)
	assert.False(t, *rec.GitPush)
}

func TestRun_SinkNoChangesSkipsCommit(t *testing.T) {
	fetcher := &stubFetcher{data: luganoFeedXML()}
	noChanges := false
	sink := &publish.NoopSink{Changes: &noChanges}
	opts := testOptions(t, fetcher, sink)

	res := Run(context.Background(), opts)

	assert.Equal(t, OutcomeBuilt, res.Outcome)
	assert.Empty(t, sink.Committed)
	assert.Equal(t, 0, sink.Pushed)

	rec, err := opts.Store.Last(context.Background())
	require.NoError(t, err)
	assert.True(t, rec.Success)
	assert.Equal(t, "git_no_changes", rec.Reason)
}

func TestRun_MissingTemplateFails(t *testing.T) {
	fetcher := &stubFetcher{data: luganoFeedXML()}
	opts := testOptions(t, fetcher, &publish.NoopSink{})
	opts.TemplatePath = filepath.Join(t.TempDir(), "absent.html")

	res := Run(context.Background(), opts)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	var tplErr *TemplateMissingError
	assert.ErrorAs(t, res.Err, &tplErr)
}

func TestRun_NoSinkStillBuilds(t *testing.T) {
	fetcher := &stubFetcher{data: luganoFeedXML()}
	opts := testOptions(t, fetcher, nil)

	res := Run(context.Background(), opts)

	assert.Equal(t, OutcomeBuilt, res.Outcome)
	_, err := os.Stat(opts.OutputPath)
	require.NoError(t, err)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "built", OutcomeBuilt.String())
	assert.Equal(t, "no-change", OutcomeNoChange.String())
	assert.Equal(t, "skipped-cooldown", OutcomeSkippedCooldown.String())
	assert.Equal(t, "degraded", OutcomeDegraded.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
}

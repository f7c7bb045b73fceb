package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "last-build.json"))
	require.NoError(t, err)
	return s
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now()
	rec := NewRunRecord(now)
	rec.Success = true
	rec.PropertiesCount = 12
	rec.Stats = Stats{FetchMS: 420, ParseMS: 13, RenderMS: 7, TotalMS: 440}

	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Last(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.RunID, got.RunID)
	assert.Equal(t, now.UnixMilli(), got.Timestamp)
	assert.True(t, got.Success)
	assert.Equal(t, 12, got.PropertiesCount)
	assert.Equal(t, RecordVersion, got.Version)
	assert.Equal(t, int64(420), got.Stats.FetchMS)
}

func TestFileStore_MissingFile(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Last(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got, "missing record means no prior run")
}

func TestFileStore_CorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not JSON at all", "{{{"},
		{"wrong shape", `{"timestamp": "yesterday", "success": true, "version": "2.0"}`},
		{"missing required fields", `{"timestamp": 123}`},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			require.NoError(t, os.WriteFile(s.Path(), []byte(tt.content), 0o644))

			got, err := s.Last(context.Background())
			require.NoError(t, err, "corrupt record must not fail the run")
			assert.Nil(t, got)
		})
	}
}

func TestFileStore_LatestOverwritesPrior(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := NewRunRecord(time.Now().Add(-time.Hour))
	first.Success = false
	first.Error = "boom"
	require.NoError(t, s.Put(ctx, first))

	second := NewRunRecord(time.Now())
	second.Success = true
	require.NoError(t, s.Put(ctx, second))

	got, err := s.Last(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.RunID, got.RunID)
	assert.Empty(t, got.Error)
}

func TestRunRecord_Time(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	rec := NewRunRecord(now)
	assert.True(t, rec.Time().Equal(now))
}

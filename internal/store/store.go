// Package store persists the build run record — the only durable state the
// orchestrator owns. The record written by one run is read back by the next
// to enforce the build cooldown.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordVersion identifies the run-record format.
const RecordVersion = "2.0"

// Stats holds the per-phase durations of one build run, in milliseconds.
type Stats struct {
	FetchMS  int64 `json:"xmlFetchTime"`
	ParseMS  int64 `json:"parseTime"`
	RenderMS int64 `json:"generateTime"`
	TotalMS  int64 `json:"totalTime"`
}

// RunRecord is the persisted outcome of one build invocation. Exactly one
// record exists at a time in the file store; the latest run overwrites the
// prior one.
type RunRecord struct {
	RunID     uuid.UUID `json:"run_id"`
	Timestamp int64     `json:"timestamp"` // Unix milliseconds
	Success   bool      `json:"success"`
	Date      string    `json:"date"` // RFC 3339, for operators
	Stats     Stats     `json:"stats"`
	Version   string    `json:"version"`

	PropertiesCount int    `json:"properties_count,omitempty"`
	Reason          string `json:"reason,omitempty"`
	Error           string `json:"error,omitempty"`
	GitPush         *bool  `json:"git_push,omitempty"`
}

// NewRunRecord starts a record for a run beginning at t.
func NewRunRecord(t time.Time) *RunRecord {
	return &RunRecord{
		RunID:     uuid.New(),
		Timestamp: t.UnixMilli(),
		Date:      t.UTC().Format(time.RFC3339),
		Version:   RecordVersion,
	}
}

// Time returns the record's start time.
func (r *RunRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// RunStore reads and writes run records. The orchestrator takes it as an
// injected dependency so it can run against a file, a database, or a test
// double.
type RunStore interface {
	// Last returns the most recent run record, or (nil, nil) when no
	// usable prior record exists.
	Last(ctx context.Context) (*RunRecord, error)

	// Put persists a finalized record, replacing the previous one as the
	// record returned by Last.
	Put(ctx context.Context, rec *RunRecord) error
}

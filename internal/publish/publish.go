// Package publish pushes the generated site through a pluggable sink. The
// pipeline itself has no dependency on any particular version-control tool;
// it only speaks the capability set below.
package publish

import (
	"context"
	"fmt"
	"time"
)

// Sink is the publish capability set: prepare the working copy, stage
// files, ask whether the staged diff is empty, commit, push.
type Sink interface {
	Setup(ctx context.Context) error
	Stage(ctx context.Context, paths ...string) error
	HasChanges(ctx context.Context) (bool, error)
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context) error
}

// CommitMessage formats the automated update message carried by every
// publish commit.
func CommitMessage(count int, t time.Time) string {
	return fmt.Sprintf("Aggiornamento automatico: %d immobili (%s)", count, t.Format("02/01/2006 15:04"))
}

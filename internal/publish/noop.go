package publish

import "context"

// NoopSink satisfies Sink without touching any version control. Used for
// --no-publish runs and as a test double; it records what it was asked to
// do.
type NoopSink struct {
	Staged    []string
	Committed []string
	Pushed    int

	// Changes is what HasChanges reports; defaults to true so a plain
	// NoopSink exercises the full publish path.
	Changes *bool

	// PushErr, when set, is returned by Push.
	PushErr error
}

// Setup is a no-op.
func (n *NoopSink) Setup(context.Context) error { return nil }

// Stage records the staged paths.
func (n *NoopSink) Stage(_ context.Context, paths ...string) error {
	n.Staged = append(n.Staged, paths...)
	return nil
}

// HasChanges reports the configured answer, defaulting to true.
func (n *NoopSink) HasChanges(context.Context) (bool, error) {
	if n.Changes == nil {
		return true, nil
	}
	return *n.Changes, nil
}

// Commit records the message.
func (n *NoopSink) Commit(_ context.Context, message string) error {
	n.Committed = append(n.Committed, message)
	return nil
}

// Push counts, and fails when configured to.
func (n *NoopSink) Push(context.Context) error {
	if n.PushErr != nil {
		return n.PushErr
	}
	n.Pushed++
	return nil
}

package pipeline

import "fmt"

// EmptyFeedError means the feed parsed successfully but contained zero
// listings. Publishing an empty page over a populated one is never wanted,
// so this is a build failure.
type EmptyFeedError struct{}

func (e *EmptyFeedError) Error() string {
	return "no listings found in feed"
}

// TemplateMissingError means the site template is absent from its fixed
// path.
type TemplateMissingError struct {
	Path string
}

func (e *TemplateMissingError) Error() string {
	return fmt.Sprintf("template not found: %s", e.Path)
}

// PublishError wraps a failure of one publish-sink operation.
type PublishError struct {
	Op    string
	Cause error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s failed: %v", e.Op, e.Cause)
}

func (e *PublishError) Unwrap() error {
	return e.Cause
}

package feed

import "fmt"

// NetworkError represents a connection-level failure of one fetch attempt.
type NetworkError struct {
	URL   string
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// TimeoutError represents an attempt aborted by the per-attempt timeout.
type TimeoutError struct {
	URL   string
	Cause error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout fetching %s: %v", e.URL, e.Cause)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// StatusError represents a non-2xx response. The status code terminates the
// attempt.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.Code, e.URL)
}

// RedirectError is returned when a fetch exceeds the redirect hop budget.
type RedirectError struct {
	URL  string
	Hops int
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("too many redirects (%d) fetching %s", e.Hops, e.URL)
}

// ParseError represents a malformed feed document.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed feed: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

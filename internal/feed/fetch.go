// Package feed retrieves the raw listing feed over HTTP and parses it into
// generic listing trees.
package feed

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds a single fetch attempt.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent mimics a browser; some feed hosts reject bare clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// MaxRedirects caps the redirect hops followed within one attempt.
const MaxRedirects = 5

// Options configures the fetcher.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns the headers and timeout the feed host expects.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Headers: map[string]string{
			"Accept":          "application/xml, text/xml, */*",
			"Accept-Language": "it-IT,it;q=0.9,en;q=0.8",
			"Cache-Control":   "no-cache, no-store",
			"Pragma":          "no-cache",
		},
	}
}

// Fetcher retrieves raw feed bytes. It is purely functional from the
// caller's perspective: no state beyond the HTTP client survives a call.
type Fetcher struct {
	opts   *Options
	client *http.Client
}

// NewFetcher creates a Fetcher with the given options, falling back to
// DefaultOptions when nil.
func NewFetcher(opts *Options) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Fetcher{
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
			// Redirects are followed manually so the hop budget applies.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Fetch performs one attempt: at most MaxRedirects hops, non-2xx is a
// terminal error carrying the status code, the body is read fully.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	current := rawURL
	for hop := 0; hop <= MaxRedirects; hop++ {
		body, next, err := f.fetchOnce(ctx, current)
		if err != nil {
			return nil, err
		}
		if next == "" {
			return body, nil
		}
		current = next
	}
	return nil, &RedirectError{URL: rawURL, Hops: MaxRedirects}
}

// fetchOnce performs a single request. A 3xx response with a Location
// header returns the resolved next URL instead of a body.
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (body []byte, next string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &NetworkError{URL: rawURL, Cause: err}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	for key, value := range f.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", classifyTransportError(rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		if loc := resp.Header.Get("Location"); loc != "" {
			resolved, rerr := resolveLocation(rawURL, loc)
			if rerr != nil {
				return nil, "", &NetworkError{URL: rawURL, Cause: rerr}
			}
			return nil, resolved, nil
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", classifyTransportError(rawURL, err)
	}
	return data, "", nil
}

// classifyTransportError splits timeouts from other connection failures.
func classifyTransportError(rawURL string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{URL: rawURL, Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{URL: rawURL, Cause: err}
	}
	return &NetworkError{URL: rawURL, Cause: err}
}

// resolveLocation resolves a possibly-relative Location header against the
// request URL.
func resolveLocation(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}

/*
Package fetch retrieves raw feed documents. A fetch never fails the caller: every
network, status or decoding problem is reported as a Result without data.
*/
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	DefaultTimeout = 15 * time.Second
	UserAgent      = "Mozilla/5.0 (CSOH News Bot; +https://csoh.org)"
	AcceptFeeds    = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"

	maxBodySize = 20 << 20
)

// Result is the outcome of one fetch. Body is only meaningful when OK is set.
// Err explains a miss for logging; callers must not treat it as fatal.
type Result struct {
	Body string
	OK   bool
	Err  error
}

func none(err error) Result {
	return Result{Err: err}
}

type Fetcher struct {
	client *http.Client
}

// New returns a Fetcher whose requests are bounded by timeout.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// NewWithClient uses the given client as is.
func NewWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return none(fmt.Errorf("failed to build request for %s: %w", url, err))
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", AcceptFeeds)

	resp, err := f.client.Do(req)
	if err != nil {
		return none(fmt.Errorf("failed to fetch URL %s: %w", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return none(fmt.Errorf("received non-OK status code %d from %s", resp.StatusCode, url))
	}

	// Invalid byte sequences become U+FFFD; a leading BOM is dropped.
	body := transform.NewReader(io.LimitReader(resp.Body, maxBodySize), unicode.UTF8BOM.NewDecoder())
	data, err := io.ReadAll(body)
	if err != nil {
		return none(fmt.Errorf("failed to read response body from %s: %w", url, err))
	}

	return Result{Body: string(data), OK: true}
}

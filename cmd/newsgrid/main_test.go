package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/shanehull/newsgrid/internal/fetch"
	"github.com/shanehull/newsgrid/internal/registry"
	"github.com/shanehull/newsgrid/internal/safety"
)

const page = `<html>
<script>{"dateModified": "2020-01-01T00:00:00Z"}</script>
<div class="resource-grid">
  <a href="https://example.com/old">old</a>
  <a href="https://example.com/old/">again</a>
</div>
</html>
`

const feedBody = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Cloud News</title>
<item><title>AWS IAM vulnerability disclosed</title><link>https://news.example/iam</link><pubDate>Tue, 09 Jan 2024 18:00:00 +0000</pubDate></item>
<item><title>company picnic news</title><link>https://news.example/picnic</link></item>
</channel></rss>`

// runApp runs the CLI without exiting the test binary and returns stdout and the error.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := RootApp()
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"newsgrid"}, args...))
	return out.String(), err
}

func exitCode(err error) int {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return -1
}

func TestUpdateCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedBody)
	}))
	defer srv.Close()

	dir := t.TempDir()
	news := filepath.Join(dir, "news.html")
	feeds := filepath.Join(dir, "feeds.toml")
	metricsFile := filepath.Join(dir, "newsgrid.prom")
	require.NoError(t, os.WriteFile(news, []byte(page), 0o644))
	require.NoError(t, os.WriteFile(feeds, []byte(fmt.Sprintf("[[feeds]]\nname = \"Cloud News\"\nurl = %q\n", srv.URL)), 0o644))

	out, err := runApp(t, "update",
		"--news-file", news,
		"--resources-file", filepath.Join(dir, "resources.html"),
		"--feeds", feeds,
		"--min-sources", "1",
		"--metrics-file", metricsFile,
	)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Updated %s with 1 articles from 1 sources.\n", news), out)

	data, err := os.ReadFile(news)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<h3>AWS IAM vulnerability disclosed</h3>")
	assert.Contains(t, string(data), `"dateModified": "2024-01-09T18:00:00Z"`)

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "newsgrid_last_run_success 1")
}

func TestUpdateReadsSourcesAddedByAddSource(t *testing.T) {
	var hits atomic.Int32
	added := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, feedBody)
	}))
	defer added.Close()
	existing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<rss><channel></channel></rss>")
	}))
	defer existing.Close()

	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(defaultFeedsFile, []byte(fmt.Sprintf("[[feeds]]\nname = \"Existing\"\nurl = %q\n", existing.URL)), 0o644))
	require.NoError(t, os.WriteFile("news.html", []byte(page), 0o644))

	var out bytes.Buffer
	a := newAdder(&out, &answers{}, verdict(nil, nil), fetch.Result{Body: feedBody, OK: true})
	_, err := a.run(context.Background(), "Cloud News", added.URL, defaultFeedsFile)
	require.NoError(t, err)

	got, err := runApp(t, "update", "--min-sources", "1")
	require.NoError(t, err)
	assert.Equal(t, "Updated news.html with 1 articles from 1 sources.\n", got)
	assert.EqualValues(t, 1, hits.Load())
}

func TestLoadSourcesFallsBackWhenMissing(t *testing.T) {
	def, err := registry.Default()
	require.NoError(t, err)

	sources, err := loadSources(filepath.Join(t.TempDir(), "feeds.toml"))
	require.NoError(t, err)
	assert.Equal(t, def, sources)
}

func TestUpdateCommandFailsWithoutContainer(t *testing.T) {
	dir := t.TempDir()
	news := filepath.Join(dir, "news.html")
	require.NoError(t, os.WriteFile(news, []byte("<html></html>"), 0o644))

	_, err := runApp(t, "update", "--news-file", news, "--resources-file", "")
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, err.Error(), "could not find resource-grid container")

	data, err := os.ReadFile(news)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}

func TestUpdateCommandBadLogLevel(t *testing.T) {
	_, err := runApp(t, "--log-level", "loud", "update")
	assert.Equal(t, 1, exitCode(err))
}

func TestDupesCommand(t *testing.T) {
	dir := t.TempDir()
	news := filepath.Join(dir, "news.html")
	resources := filepath.Join(dir, "resources.html")
	require.NoError(t, os.WriteFile(news, []byte(page), 0o644))
	require.NoError(t, os.WriteFile(resources, []byte(`<a href="https://example.com/old?ref=1">x</a><a href="https://example.com/r">r</a>`), 0o644))

	out, err := runApp(t, "dupes", "--news-file", news, "--resources-file", resources)
	require.NoError(t, err)

	want := fmt.Sprintf(`Duplicate URLs in %s:
  https://example.com/old (x2)

Duplicate URLs in %s:
  None

Duplicate URLs across news and resources:
  https://example.com/old
`, news, resources)
	assert.Equal(t, want, out)
}

func TestDupesCommandMissingFiles(t *testing.T) {
	dir := t.TempDir()
	out, err := runApp(t, "dupes", "--news-file", filepath.Join(dir, "a.html"), "--resources-file", filepath.Join(dir, "b.html"))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "  None"))
}

type stubFetcher struct {
	res fetch.Result
}

func (s stubFetcher) Fetch(context.Context, string) fetch.Result {
	return s.res
}

type answers struct {
	inputs   []string
	confirms []bool
	asked    []string
}

func (a *answers) ask(q string) (string, error) {
	a.asked = append(a.asked, q)
	if len(a.inputs) == 0 {
		return "", errors.New("no more input")
	}
	v := a.inputs[0]
	a.inputs = a.inputs[1:]
	return v, nil
}

func (a *answers) confirm(q string) (bool, error) {
	a.asked = append(a.asked, q)
	if len(a.confirms) == 0 {
		return false, errors.New("no more answers")
	}
	v := a.confirms[0]
	a.confirms = a.confirms[1:]
	return v, nil
}

func verdict(errs, warns []string) func(context.Context, string) safety.Verdict {
	return func(context.Context, string) safety.Verdict {
		return safety.Verdict{Safe: len(errs) == 0, Errors: errs, Warnings: warns}
	}
}

func newAdder(out *bytes.Buffer, ans *answers, check func(context.Context, string) safety.Verdict, res fetch.Result) *sourceAdder {
	return &sourceAdder{
		out:     out,
		check:   check,
		fetcher: stubFetcher{res: res},
		ask:     ans.ask,
		confirm: ans.confirm,
	}
}

func TestAddSourceAppends(t *testing.T) {
	feeds := filepath.Join(t.TempDir(), "feeds.toml")
	var out bytes.Buffer
	a := newAdder(&out, &answers{}, verdict(nil, nil), fetch.Result{Body: feedBody, OK: true})

	src, err := a.run(context.Background(), "Cloud News", "https://news.example/feed", feeds)
	require.NoError(t, err)
	assert.Equal(t, "Cloud News", src.Name)
	assert.Contains(t, out.String(), `Detected rss feed "Cloud News" with 2 items.`)

	sources, err := registry.Load(feeds)
	require.NoError(t, err)
	def, err := registry.Default()
	require.NoError(t, err)
	require.Len(t, sources, len(def)+1)
	assert.Equal(t, src, sources[len(sources)-1])
}

func TestAddSourcePromptsAndRetries(t *testing.T) {
	feeds := filepath.Join(t.TempDir(), "feeds.toml")
	var out bytes.Buffer
	ans := &answers{inputs: []string{"Cloud News", "ftp://news.example/feed", "https://news.example/feed"}}
	a := newAdder(&out, ans, verdict(nil, nil), fetch.Result{Body: feedBody, OK: true})

	src, err := a.run(context.Background(), "", "", feeds)
	require.NoError(t, err)
	assert.Equal(t, "https://news.example/feed", src.URL)
	assert.Contains(t, out.String(), "Error: URL must start with http:// or https://")
	assert.Len(t, ans.asked, 3)
}

func TestAddSourceRejectsUnsafeFlagURL(t *testing.T) {
	feeds := filepath.Join(t.TempDir(), "feeds.toml")
	var out bytes.Buffer
	a := newAdder(&out, &answers{}, verdict([]string{"address 127.0.0.1 is loopback"}, nil), fetch.Result{})

	_, err := a.run(context.Background(), "Local", "http://127.0.0.1/feed", feeds)
	assert.EqualError(t, err, "URL failed safety checks")
	assert.Contains(t, out.String(), "  - address 127.0.0.1 is loopback")
	assert.NoFileExists(t, feeds)
}

func TestAddSourceWarningsNeedConfirmation(t *testing.T) {
	feeds := filepath.Join(t.TempDir(), "feeds.toml")
	var out bytes.Buffer
	ans := &answers{confirms: []bool{false}}
	a := newAdder(&out, ans, verdict(nil, []string{"URL uses plain http; prefer https"}), fetch.Result{Body: feedBody, OK: true})

	_, err := a.run(context.Background(), "Cloud News", "http://news.example/feed", feeds)
	assert.ErrorIs(t, err, errAborted)
	assert.NoFileExists(t, feeds)

	out.Reset()
	a = newAdder(&out, &answers{}, verdict(nil, []string{"URL uses plain http; prefer https"}), fetch.Result{Body: "<html>nope</html>", OK: true})
	a.yes = true
	_, err = a.run(context.Background(), "Cloud News", "http://news.example/feed", feeds)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Warning: Feed does not look like RSS or Atom.")
}

func TestAddSourceRejectsDuplicates(t *testing.T) {
	def, err := registry.Default()
	require.NoError(t, err)

	feeds := filepath.Join(t.TempDir(), "feeds.toml")
	var out bytes.Buffer
	a := newAdder(&out, &answers{}, verdict(nil, nil), fetch.Result{Body: feedBody, OK: true})

	_, err = a.run(context.Background(), strings.ToUpper(def[0].Name), "https://unique.example/feed", feeds)
	assert.ErrorIs(t, err, registry.ErrDuplicateName)

	u := def[0].URL
	host := strings.Index(u, "://") + len("://")
	_, err = a.run(context.Background(), "Brand New", u[:host]+strings.ToUpper(u[host:]), feeds)
	assert.ErrorIs(t, err, registry.ErrDuplicateURL)
	assert.NoFileExists(t, feeds)
}

/*
Package pipeline runs one news update: every registered feed is fetched, parsed,
filtered and deduplicated, the newest entries are selected and rendered, and the
result is spliced into the target document, which is written exactly once.
*/
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shanehull/newsgrid/internal/classify"
	"github.com/shanehull/newsgrid/internal/feed"
	"github.com/shanehull/newsgrid/internal/fetch"
	"github.com/shanehull/newsgrid/internal/links"
	"github.com/shanehull/newsgrid/internal/metrics"
	"github.com/shanehull/newsgrid/internal/render"
	"github.com/shanehull/newsgrid/internal/selector"
	"github.com/shanehull/newsgrid/internal/splice"
	"github.com/shanehull/newsgrid/internal/types"
)

var (
	ErrNoCandidates  = selector.ErrNoCandidates
	ErrTargetMissing = errors.New("target document not found")
)

// Fetcher is satisfied by *fetch.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Result
}

type Config struct {
	Sources []types.FeedSource

	// NewsFile is both the document rewritten and a source of existing links.
	NewsFile      string
	ResourcesFile string

	MaxArticles int
	MinSources  int

	// Workers bounds concurrent fetches. 1 processes sources one at a time.
	Workers int

	// DedupeWithinRun also drops entries whose link was already collected from an
	// earlier source in the same run.
	DedupeWithinRun bool

	DryRun bool
}

func (c Config) Validate() error {
	switch {
	case c.NewsFile == "":
		return errors.New("news file path is required")
	case len(c.Sources) == 0:
		return errors.New("feed registry is empty")
	case c.MaxArticles < 1:
		return fmt.Errorf("max articles must be at least 1, got %d", c.MaxArticles)
	case c.MinSources < 0:
		return fmt.Errorf("min sources must not be negative, got %d", c.MinSources)
	}
	return nil
}

type Pipeline struct {
	cfg        Config
	fetcher    Fetcher
	classifier *classify.Classifier
	renderer   *render.Renderer
	metrics    *metrics.Run
	log        *log.Logger
	now        func() time.Time
}

type Option func(*Pipeline)

func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

func WithMetrics(m *metrics.Run) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock replaces time.Now for undated entries and the metadata fallback.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(cfg Config, fetcher Fetcher, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	p := &Pipeline{
		cfg:        cfg,
		fetcher:    fetcher,
		classifier: classify.New(),
		metrics:    metrics.New(),
		log:        log.StandardLogger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.renderer = &render.Renderer{Indent: render.DefaultIndent, Now: p.now}
	return p, nil
}

// Result describes a completed run.
type Result struct {
	Selection types.Selection
	Newest    time.Time
	Document  string
	Written   bool

	// DateModified is false when the document had no dateModified field.
	DateModified bool
}

// Run performs one update. On any error the target document is left untouched.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res, err := p.run(ctx)
	if err != nil {
		p.metrics.LastRunSuccess.Set(0)
		return nil, err
	}
	p.metrics.LastRunSuccess.Set(1)
	p.metrics.LastRunTimestamp.Set(float64(p.now().Unix()))
	return res, nil
}

func (p *Pipeline) run(ctx context.Context) (*Result, error) {
	data, err := os.ReadFile(p.cfg.NewsFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTargetMissing, p.cfg.NewsFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.cfg.NewsFile, err)
	}
	doc := string(data)

	// Fail before any network traffic when the document cannot be spliced.
	if _, _, err := splice.ContentBounds(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", p.cfg.NewsFile, err)
	}

	existing, missing, err := links.LoadSet(p.cfg.NewsFile, p.cfg.ResourcesFile)
	if err != nil {
		return nil, err
	}
	for _, path := range missing {
		p.log.WithField("file", path).Warn("Existing-link document not found; skipping it")
	}

	candidates, err := p.collect(ctx, existing)
	if err != nil {
		return nil, err
	}
	p.metrics.Stage(metrics.StageCandidate, len(candidates))

	sel, err := selector.Select(candidates, p.cfg.MaxArticles, p.cfg.MinSources)
	if err != nil {
		return nil, err
	}
	if sel.LowDiversity() {
		p.log.Warnf("Only %d sources available; expected at least %d.", sel.DistinctSources, sel.MinSources)
	}
	p.metrics.SelectedArticles.Set(float64(len(sel.Entries)))
	p.metrics.DistinctSources.Set(float64(sel.DistinctSources))

	newest := selector.Newest(sel, p.now())

	out, err := splice.ReplaceGrid(doc, p.renderer.Fragment(sel.Entries))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.cfg.NewsFile, err)
	}
	out, updated := splice.UpdateDateModified(out, newest)
	if !updated {
		p.log.WithField("file", p.cfg.NewsFile).Warn("No dateModified field found; metadata left unchanged")
	}

	res := &Result{Selection: sel, Newest: newest, Document: out, DateModified: updated}
	if p.cfg.DryRun {
		return res, nil
	}

	if err := writeFileAtomic(p.cfg.NewsFile, []byte(out)); err != nil {
		return nil, err
	}
	res.Written = true
	return res, nil
}

// collect processes every source and returns the surviving entries in registry
// order, whatever the number of workers.
func (p *Pipeline) collect(ctx context.Context, existing *links.Set) ([]types.Entry, error) {
	perSource := make([][]types.Entry, len(p.cfg.Sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, src := range p.cfg.Sources {
		g.Go(func() error {
			perSource[i] = p.processSource(gctx, src, existing)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	var candidates []types.Entry
	seen := make(map[string]struct{})
	for _, entries := range perSource {
		for _, e := range entries {
			if p.cfg.DedupeWithinRun {
				if _, dup := seen[e.Link]; dup {
					p.metrics.Stage(metrics.StageDuplicate, 1)
					continue
				}
				seen[e.Link] = struct{}{}
			}
			candidates = append(candidates, e)
		}
	}
	return candidates, nil
}

func (p *Pipeline) processSource(ctx context.Context, src types.FeedSource, existing *links.Set) []types.Entry {
	logger := p.log.WithField("source", src.Name)

	res := p.fetcher.Fetch(ctx, src.URL)
	p.metrics.Fetched(res.OK && res.Body != "")
	if !res.OK || res.Body == "" {
		logger.WithError(res.Err).Debug("No data from feed")
		return nil
	}

	parsed := feed.Parse(res.Body, src.Name)
	p.metrics.Stage(metrics.StageParsed, len(parsed.Entries))
	if parsed.Dialect == feed.Malformed {
		logger.Debug("Feed is not well-formed; skipping")
		return nil
	}

	var entries []types.Entry
	var relevant, dupes int
	for _, raw := range parsed.Entries {
		if raw.Title == "" || raw.Link == "" {
			continue
		}
		if !p.classifier.Relevant(raw.Title + " " + raw.Summary) {
			continue
		}
		relevant++

		link := links.Normalize(raw.Link)
		if existing.Contains(link) {
			dupes++
			continue
		}
		entries = append(entries, p.classify(raw, link))
	}

	p.metrics.Stage(metrics.StageRelevant, relevant)
	p.metrics.Stage(metrics.StageDuplicate, dupes)
	logger.WithFields(log.Fields{
		"dialect":  parsed.Dialect.String(),
		"parsed":   len(parsed.Entries),
		"entries":  len(entries),
		"existing": dupes,
	}).Debug("Processed feed")
	return entries
}

func (p *Pipeline) classify(raw types.RawEntry, link string) types.Entry {
	summary := render.Summary(raw.Summary)

	e := types.Entry{RawEntry: raw}
	e.Link = link
	e.Summary = summary
	e.PublishedAt = selector.ParseDate(raw.Published)
	e.Category = p.classifier.Category(raw.Title + " " + summary)
	e.Tags = p.classifier.Tags(raw.Title + " " + summary + " " + raw.Source)
	return e
}

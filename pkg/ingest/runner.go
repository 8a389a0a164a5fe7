package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pydigger/pkg/integrations/pypi"
	"github.com/matzehuels/pydigger/pkg/observability"
	"github.com/matzehuels/pydigger/pkg/record"
	"github.com/matzehuels/pydigger/pkg/resolve"
	"github.com/matzehuels/pydigger/pkg/vcs"
)

// FeedSource lists the entries of the update feed, newest first.
type FeedSource interface {
	Entries(ctx context.Context) ([]pypi.Entry, error)
}

// MetadataFetcher retrieves the metadata document of a release.
type MetadataFetcher interface {
	FetchDocument(ctx context.Context, name, version string, refresh bool) (*pypi.Document, error)
}

// Prober inspects a record's repository and updates its flags in place.
type Prober interface {
	Probe(ctx context.Context, r *record.Record) vcs.Result
}

// Runner drives one ingestion run. Entries are processed sequentially.
type Runner struct {
	feed    FeedSource
	meta    MetadataFetcher
	store   *record.Store
	prober  Prober
	logger  *log.Logger
	hooks   observability.IngestHooks
	limit   int
	refresh bool
	now     func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger (log.Default() otherwise).
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithHooks sets the ingestion hooks.
func WithHooks(h observability.IngestHooks) Option {
	return func(r *Runner) {
		if h != nil {
			r.hooks = h
		}
	}
}

// WithProber enables repository probing. Without it flags stay unknown.
func WithProber(p Prober) Option {
	return func(r *Runner) { r.prober = p }
}

// WithLimit visits at most n entries; n <= 0 visits all.
func WithLimit(n int) Option {
	return func(r *Runner) { r.limit = n }
}

// WithRefresh bypasses the metadata cache.
func WithRefresh(refresh bool) Option {
	return func(r *Runner) { r.refresh = refresh }
}

// NewRunner creates a runner reading feed, fetching from meta and writing
// to store.
func NewRunner(feed FeedSource, meta MetadataFetcher, store *record.Store, opts ...Option) *Runner {
	r := &Runner{
		feed:   feed,
		meta:   meta,
		store:  store,
		logger: log.Default(),
		hooks:  observability.NoopIngestHooks{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads the feed and processes its entries. Per-entry failures are
// logged and counted; the returned error is non-nil only when the feed
// cannot be read or ctx is cancelled, and Stats is valid in both cases.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	start := r.now()
	stats := NewStats(start)
	defer func() {
		stats.Elapsed = r.now().Sub(start)
		r.hooks.OnRunComplete(ctx, stats.RunID, stats.Visited, stats.Elapsed)
	}()

	entries, err := r.feed.Entries(ctx)
	if err != nil {
		r.logger.Error("cannot read feed", "err", err)
		return stats, err
	}
	stats.ProjectsInRSS = len(entries)
	r.hooks.OnRunStart(ctx, stats.RunID, len(entries))
	r.logger.Info("read feed", "entries", len(entries), "run", stats.RunID)

	if r.limit > 0 && r.limit < len(entries) {
		entries = entries[:r.limit]
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("run interrupted", "visited", stats.Visited)
			return stats, err
		}
		t := r.now()
		name, outcome := r.process(ctx, e)
		stats.Add(outcome)
		r.hooks.OnEntry(ctx, name, outcome.String(), r.now().Sub(t))
	}
	return stats, nil
}

// process handles one feed entry and returns the package name (when known)
// and the entry's outcome.
func (r *Runner) process(ctx context.Context, e pypi.Entry) (string, Outcome) {
	r.logger.Info("entry", "link", e.Link)
	r.logger.Debug("entry", "title", e.Title, "published", e.Published)

	if strings.TrimSpace(e.Published) == "" {
		r.logger.Error("no publication date", "link", e.Link)
		return "", MissingDateError
	}
	if e.PublishedAt == nil {
		r.logger.Error("cannot parse publication date", "link", e.Link, "published", e.Published)
		return "", DateParseError
	}
	pubDate := *e.PublishedAt

	name, version, ok := pypi.ParseProjectLink(e.Link)
	if !ok {
		r.logger.Warn("not a project release link", "link", e.Link)
		return "", Ignored
	}

	stored, err := r.store.Load(name)
	if err != nil {
		// An unreadable record is treated as absent and will be replaced.
		r.logger.Warn("cannot load stored record", "name", name, "err", err)
		stored = nil
	}
	if Gate(stored, pubDate) == Skip {
		r.logger.Info("up to date, skipping", "name", name)
		return name, Skipped
	}

	t := r.now()
	doc, err := r.meta.FetchDocument(ctx, name, version, r.refresh)
	r.hooks.OnFetch(ctx, name, r.now().Sub(t), err)
	if err != nil {
		r.logger.Error("cannot fetch metadata", "name", name, "version", version, "err", err)
		return name, Failed
	}

	rec := NewRecord(name, doc, pubDate)
	if r.prober != nil {
		res := r.prober.Probe(ctx, rec)
		if res.Host.Kind == vcs.GitHub || res.Host.Kind == vcs.GitLab {
			r.hooks.OnProbe(ctx, res.Host.Kind.String(), res.Duration, res.Err)
		}
	}
	if err := r.store.Save(rec); err != nil {
		r.logger.Error("cannot save record", "name", name, "err", err)
		return name, Failed
	}
	r.logger.Info("saved", "name", rec.Name, "version", rec.Version, "repository", rec.Repository)
	return name, Success
}

// NewRecord builds a fresh record from a metadata document. name is the
// feed's name for the package and decides the storage path; the document's
// spelling is kept when it only differs in case.
func NewRecord(name string, doc *pypi.Document, pubDate time.Time) *record.Record {
	info := doc.Info
	rec := &record.Record{
		Name:              name,
		Version:           strings.TrimSpace(info.Version),
		Summary:           strings.TrimSpace(info.Summary),
		License:           strings.TrimSpace(info.License),
		LicenseExpression: strings.TrimSpace(info.LicenseExpression),
		Maintainer:        strings.TrimSpace(info.Maintainer),
		Author:            strings.TrimSpace(info.Author),
		ProjectURLs:       info.ProjectURLs,
		PubDate:           pubDate.UTC(),
	}
	if strings.EqualFold(info.Name, name) {
		rec.Name = info.Name
	}
	if rec.ProjectURLs == nil {
		rec.ProjectURLs = record.URLs{}
	}
	resolve.FromURLs(info.ProjectURLs, info.HomePage, info.DownloadURL).Apply(rec)
	return rec
}

package ingest

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pydigger/pkg/errors"
	"github.com/matzehuels/pydigger/pkg/integrations/pypi"
	"github.com/matzehuels/pydigger/pkg/record"
	"github.com/matzehuels/pydigger/pkg/vcs"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

type fakeFeed struct {
	entries []pypi.Entry
	err     error
}

func (f fakeFeed) Entries(context.Context) ([]pypi.Entry, error) { return f.entries, f.err }

type fakeMeta struct {
	docs    map[string]*pypi.Document
	fetched []string
}

func (f *fakeMeta) FetchDocument(_ context.Context, name, version string, _ bool) (*pypi.Document, error) {
	f.fetched = append(f.fetched, name+"@"+version)
	if doc, ok := f.docs[name]; ok {
		return doc, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "pypi package %s", name)
}

type fakeProber struct{ calls int }

func (p *fakeProber) Probe(_ context.Context, r *record.Record) vcs.Result {
	p.calls++
	r.HasGitHubActions = record.True
	r.HasDependabot = record.False
	return vcs.Result{Host: vcs.Classify(r.Repository), Verified: true, Inspected: true}
}

func entry(name, version string, at time.Time) pypi.Entry {
	t := at.UTC()
	return pypi.Entry{
		Title:       name + " " + version,
		Link:        "https://pypi.org/project/" + name + "/" + version + "/",
		Published:   at.Format(time.RFC1123Z),
		PublishedAt: &t,
	}
}

func doc(name, version string, urls map[string]string) *pypi.Document {
	return &pypi.Document{Info: pypi.Info{
		Name:        name,
		Version:     version,
		Summary:     name + " summary",
		License:     "MIT",
		ProjectURLs: urls,
	}}
}

func newTestRunner(t *testing.T, feed FeedSource, meta MetadataFetcher, opts ...Option) (*Runner, *record.Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	store := record.NewStore(t.TempDir())
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	opts = append([]Option{WithLogger(logger)}, opts...)
	return NewRunner(feed, meta, store, opts...), store, &buf
}

func TestRunSuccessAndSkip(t *testing.T) {
	T := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	meta := &fakeMeta{docs: map[string]*pypi.Document{
		"alpha": doc("alpha", "1.0", map[string]string{"Source": "https://github.com/o/alpha"}),
		"beta":  doc("beta", "2.0", nil),
	}}
	feed := fakeFeed{entries: []pypi.Entry{
		entry("alpha", "1.0", T),
		entry("beta", "2.0", T),
	}}
	r, store, _ := newTestRunner(t, feed, meta)

	if err := store.Save(&record.Record{Name: "beta", Version: "2.0", PubDate: T}); err != nil {
		t.Fatal(err)
	}

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Count(Success) != 1 || stats.Count(Skipped) != 1 || stats.Visited != 2 || stats.ProjectsInRSS != 2 {
		t.Errorf("stats = %+v, want {Success: 1, Skipped: 1}", stats)
	}
	if len(meta.fetched) != 1 || meta.fetched[0] != "alpha@1.0" {
		t.Errorf("fetched = %v, want only alpha", meta.fetched)
	}

	alpha, err := store.Load("alpha")
	if err != nil || alpha == nil {
		t.Fatalf("Load(alpha) = %v, %v", alpha, err)
	}
	if !alpha.PubDate.Equal(T) {
		t.Errorf("PubDate = %v, want the feed timestamp %v", alpha.PubDate, T)
	}
	if alpha.Repository != "https://github.com/o/alpha" || alpha.RepositorySource != record.SourceProjectSource {
		t.Errorf("repository = %q (%s)", alpha.Repository, alpha.RepositorySource)
	}
	if alpha.HasGitHubActions != record.Unknown {
		t.Error("flags should stay unknown without a prober")
	}

	// A second run over the same feed skips everything.
	stats, err = r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count(Skipped) != 2 {
		t.Errorf("second run = %+v, want 2 skipped", stats)
	}
}

func TestRunNewerEntryReplacesRecord(t *testing.T) {
	T := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	meta := &fakeMeta{docs: map[string]*pypi.Document{"pkg": doc("pkg", "1.1", nil)}}
	r, store, _ := newTestRunner(t, fakeFeed{entries: []pypi.Entry{entry("pkg", "1.1", T.Add(time.Second))}}, meta)

	old := &record.Record{Name: "pkg", Version: "1.0", PubDate: T, Repository: "https://github.com/o/old", RepositorySource: record.SourceProjectSource}
	if err := store.Save(old); err != nil {
		t.Fatal(err)
	}
	stats, _ := r.Run(context.Background())
	if stats.Count(Success) != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	got, _ := store.Load("pkg")
	if got.Version != "1.1" || got.Repository != "" {
		t.Errorf("record was not replaced wholesale: %+v", got)
	}
}

func TestRunOutcomes(t *testing.T) {
	T := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	noDate := entry("nodate", "1", T)
	noDate.Published, noDate.PublishedAt = "", nil
	badDate := entry("baddate", "1", T)
	badDate.Published, badDate.PublishedAt = "yesterday", nil
	notProject := entry("x", "1", T)
	notProject.Link = "https://pypi.org/user/someone/"

	meta := &fakeMeta{docs: map[string]*pypi.Document{"ok": doc("ok", "1", nil)}}
	feed := fakeFeed{entries: []pypi.Entry{
		noDate,
		badDate,
		notProject,
		entry("missing", "1", T),
		entry("ok", "1", T),
	}}
	r, _, logs := newTestRunner(t, feed, meta)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := map[Outcome]int{
		MissingDateError: 1,
		DateParseError:   1,
		Ignored:          1,
		Failed:           1,
		Success:          1,
		Skipped:          0,
	}
	for o, n := range want {
		if stats.Count(o) != n {
			t.Errorf("%s = %d, want %d", o, stats.Count(o), n)
		}
	}
	if stats.Visited != 5 || stats.ErrorProjects() != 2 {
		t.Errorf("visited=%d errors=%d", stats.Visited, stats.ErrorProjects())
	}
	// Date errors stop before any fetch.
	if len(meta.fetched) != 2 {
		t.Errorf("fetched = %v, want missing and ok only", meta.fetched)
	}
	for _, line := range []string{"no publication date", "cannot parse publication date", "cannot fetch metadata"} {
		if !bytes.Contains(logs.Bytes(), []byte(line)) {
			t.Errorf("log is missing %q", line)
		}
	}
}

func TestRunLimitAndProbe(t *testing.T) {
	T := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	meta := &fakeMeta{docs: map[string]*pypi.Document{
		"a": doc("a", "1", map[string]string{"Repository": "https://github.com/o/a"}),
		"b": doc("b", "1", nil),
		"c": doc("c", "1", nil),
	}}
	feed := fakeFeed{entries: []pypi.Entry{entry("a", "1", T), entry("b", "1", T), entry("c", "1", T)}}
	prober := &fakeProber{}
	r, store, _ := newTestRunner(t, feed, meta, WithLimit(2), WithProber(prober))

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.ProjectsInRSS != 3 || stats.Visited != 2 {
		t.Errorf("in feed %d, visited %d; want 3, 2", stats.ProjectsInRSS, stats.Visited)
	}
	if prober.calls != 2 {
		t.Errorf("prober calls = %d, want 2", prober.calls)
	}
	a, _ := store.Load("a")
	if a.HasGitHubActions != record.True || a.HasDependabot != record.False {
		t.Errorf("probe flags not persisted: %+v", a)
	}
	if c, _ := store.Load("c"); c != nil {
		t.Error("entry beyond the limit should not be processed")
	}
}

func TestRunFeedError(t *testing.T) {
	feedErr := errors.New(errors.ErrCodeNetwork, "feed down")
	r, _, _ := newTestRunner(t, fakeFeed{err: feedErr}, &fakeMeta{})

	stats, err := r.Run(context.Background())
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Run() error = %v, want NETWORK_ERROR", err)
	}
	if stats == nil || stats.Visited != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRunCancelled(t *testing.T) {
	T := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	feed := fakeFeed{entries: []pypi.Entry{entry("a", "1", T)}}
	r, _, _ := newTestRunner(t, feed, &fakeMeta{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := r.Run(ctx)
	if err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if stats.Visited != 0 {
		t.Errorf("visited = %d, want 0", stats.Visited)
	}
}

func TestNewRecord(t *testing.T) {
	T := time.Unix(1700000000, 0)
	d := &pypi.Document{Info: pypi.Info{
		Name:        "Flask-Login",
		Version:     " 0.6.3 ",
		License:     "  ",
		HomePage:    "https://github.com/maxcountryman/flask-login",
		DownloadURL: "https://example.org/dl",
	}}

	rec := NewRecord("flask-login", d, T)
	if rec.Name != "Flask-Login" {
		t.Errorf("Name = %q, want the document spelling", rec.Name)
	}
	if rec.Version != "0.6.3" || rec.License != "" {
		t.Errorf("fields not trimmed: %+v", rec)
	}
	if rec.Repository != d.Info.HomePage || rec.RepositorySource != record.SourceInfoHomePage {
		t.Errorf("repository = %q (%s)", rec.Repository, rec.RepositorySource)
	}
	if rec.Download != "https://example.org/dl" || rec.DownloadSource != record.SourceInfoDownloadURL {
		t.Errorf("download = %q (%s)", rec.Download, rec.DownloadSource)
	}
	if rec.ProjectURLs == nil {
		t.Error("ProjectURLs should never be nil")
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	other := NewRecord("flask_login", d, T)
	if other.Name != "flask_login" {
		t.Errorf("Name = %q, want the feed name when spellings differ", other.Name)
	}
}

// Package resolve derives a package's canonical home page, repository and
// download URLs from its declared metadata.
//
// PyPI packages declare URLs in many inconsistent ways: a "Source" or
// "Source Code" label in project_urls, a "Repository" or "GitHub" label, only a
// "Homepage" that happens to be the repository, or the legacy top-level
// home_page and download_url fields. [Resolve] applies one fixed precedence
// table ([Precedence]) and a short fallback chain, and records the provenance
// of every value it sets.
//
// Resolution is deterministic and side-effect free.
package resolve

import (
	"sort"
	"strings"
	"unicode"

	"github.com/matzehuels/pydigger/pkg/record"
)

// Target is the derived field a project_urls label resolves into.
type Target int

const (
	Repository Target = iota
	HomePage
	Download
)

func (t Target) String() string {
	switch t {
	case Repository:
		return "repository"
	case HomePage:
		return "home_page"
	case Download:
		return "download"
	default:
		return "unknown"
	}
}

// Rule maps a normalized project_urls label to a target field.
type Rule struct {
	Label  string // normalized label, see NormalizeLabel
	Target Target
	Source string // provenance tag recorded with the value
}

// Precedence is the ordered label table. For each target the first rule
// whose label is present wins; homepage is last-resort repository evidence.
var Precedence = []Rule{
	{Label: "source", Target: Repository, Source: record.SourceProjectSource},
	{Label: "sourcecode", Target: Repository, Source: record.SourceProjectSourceCode},
	{Label: "repository", Target: Repository, Source: record.SourceProjectRepository},
	{Label: "github", Target: Repository, Source: record.SourceProjectGitHub},
	{Label: "homepage", Target: Repository, Source: record.SourceProjectHomepage},
	{Label: "homepage", Target: HomePage, Source: record.SourceProjectHomepage},
	{Label: "download", Target: Download, Source: record.SourceProjectDownload},
}

// Input is the URL-bearing part of a package's metadata.
type Input struct {
	ProjectURLs map[string]string
	HomePage    string // info.home_page
	DownloadURL string // info.download_url
}

// Value is a resolved URL with its provenance. The zero Value is absent.
type Value struct {
	URL    string
	Source string
}

// IsSet reports whether the value was resolved.
func (v Value) IsSet() bool { return v.URL != "" }

// Result holds the derived fields.
type Result struct {
	HomePage   Value
	Repository Value
	Download   Value
}

// Resolve applies the precedence table and fallbacks to in.
func Resolve(in Input) Result {
	labels := normalizedLabels(in.ProjectURLs)

	var res Result
	for _, rule := range Precedence {
		slot := res.slot(rule.Target)
		if slot.IsSet() {
			continue
		}
		if u, ok := labels[rule.Label]; ok {
			*slot = Value{URL: u, Source: rule.Source}
		}
	}

	if !res.HomePage.IsSet() {
		if u := strings.TrimSpace(in.HomePage); u != "" {
			res.HomePage = Value{URL: u, Source: record.SourceInfoHomePage}
		}
	}
	if !res.Download.IsSet() {
		if u := strings.TrimSpace(in.DownloadURL); u != "" {
			res.Download = Value{URL: u, Source: record.SourceInfoDownloadURL}
		}
	}
	if !res.Repository.IsSet() && res.HomePage.IsSet() {
		res.Repository = Value{URL: res.HomePage.URL, Source: record.SourceInfoHomePage}
	}
	return res
}

// Apply copies the result into r, clearing fields that did not resolve.
func (res Result) Apply(r *record.Record) {
	r.HomePage, r.HomePageSource = res.HomePage.URL, res.HomePage.Source
	r.Repository, r.RepositorySource = res.Repository.URL, res.Repository.Source
	r.Download, r.DownloadSource = res.Download.URL, res.Download.Source
}

// RepositoryURL returns the repository URL of a stored record: the resolved
// value when present, otherwise the value the resolver would derive from the
// record's project_urls and home page. Records written before repository
// resolution existed still classify this way.
func RepositoryURL(r *record.Record) string {
	if r.Repository != "" {
		return r.Repository
	}
	return Resolve(Input{ProjectURLs: r.ProjectURLs, HomePage: r.HomePage}).Repository.URL
}

func (res *Result) slot(t Target) *Value {
	switch t {
	case HomePage:
		return &res.HomePage
	case Download:
		return &res.Download
	default:
		return &res.Repository
	}
}

// normalizedLabels maps normalized labels to URLs. When several raw labels
// normalize to the same key, the lexically smallest raw label wins.
func normalizedLabels(urls map[string]string) map[string]string {
	raw := make([]string, 0, len(urls))
	for k := range urls {
		raw = append(raw, k)
	}
	sort.Strings(raw)

	out := make(map[string]string, len(raw))
	for _, k := range raw {
		u := strings.TrimSpace(urls[k])
		if u == "" {
			continue
		}
		n := NormalizeLabel(k)
		if _, seen := out[n]; !seen {
			out[n] = u
		}
	}
	return out
}

// NormalizeLabel strips ASCII punctuation and whitespace from a project_urls
// label and lowercases it: "Source_Code" → "sourcecode", "Home-Page!" →
// "homepage". It is idempotent.
func NormalizeLabel(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		if unicode.IsSpace(r) || isASCIIPunct(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func isASCIIPunct(r rune) bool {
	return r < unicode.MaxASCII && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r)
}

// FromURLs is shorthand for Resolve with the given fields.
func FromURLs(urls map[string]string, homePage, downloadURL string) Result {
	return Resolve(Input{ProjectURLs: urls, HomePage: homePage, DownloadURL: downloadURL})
}

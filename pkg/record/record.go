package record

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	packageurl "github.com/package-url/packageurl-go"
)

// Provenance tags recorded next to every derived URL.
const (
	SourceProjectSource     = "project_urls.source"
	SourceProjectSourceCode = "project_urls.sourcecode"
	SourceProjectRepository = "project_urls.repository"
	SourceProjectGitHub     = "project_urls.github"
	SourceProjectHomepage   = "project_urls.homepage"
	SourceProjectDownload   = "project_urls.download"
	SourceInfoHomePage      = "info.home_page"
	SourceInfoDownloadURL   = "info.download_url"
)

// Record is the persisted, resolved metadata of one package.
//
// Optional string fields use the empty string for "absent"; they are omitted
// from JSON when empty and decode from null or missing keys as empty.
// PubDate is the freshness watermark and serializes as Unix epoch seconds.
//
// Records are replaced wholesale; no code path mutates a stored record in place.
type Record struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	Summary           string `json:"summary,omitempty"`
	License           string `json:"license,omitempty"`
	LicenseExpression string `json:"license_expression,omitempty"`
	Maintainer        string `json:"maintainer,omitempty"`
	Author            string `json:"author,omitempty"`

	HomePage         string `json:"home_page,omitempty"`
	HomePageSource   string `json:"home_page_source,omitempty"`
	Repository       string `json:"repository,omitempty"`
	RepositorySource string `json:"repository_source,omitempty"`
	Download         string `json:"download,omitempty"`
	DownloadSource   string `json:"download_source,omitempty"`

	ProjectURLs URLs      `json:"project_urls"`
	PubDate     time.Time `json:"pub_date"`

	HasGitHubActions  TriState `json:"has_github_actions"`
	HasGitLabPipeline TriState `json:"has_gitlab_pipeline"`
	HasDependabot     TriState `json:"has_dependabot"`
}

// MarshalJSON encodes the record with PubDate as epoch seconds and a
// non-nil project_urls object.
func (r Record) MarshalJSON() ([]byte, error) {
	type alias Record
	urls := r.ProjectURLs
	if urls == nil {
		urls = URLs{}
	}
	return json.Marshal(struct {
		alias
		ProjectURLs URLs  `json:"project_urls"`
		PubDate     int64 `json:"pub_date"`
	}{alias(r), urls, r.PubDate.Unix()})
}

// UnmarshalJSON decodes a record leniently: unknown keys are ignored and
// missing or null keys leave the field absent.
func (r *Record) UnmarshalJSON(data []byte) error {
	type alias Record
	aux := struct {
		*alias
		PubDate *int64 `json:"pub_date"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.PubDate != nil {
		r.PubDate = time.Unix(*aux.PubDate, 0).UTC()
	}
	return nil
}

// Validate reports whether the record carries the fields every stored record
// must have and whether each derived URL has its provenance.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("record has no name")
	}
	pairs := []struct{ field, value, source string }{
		{"home_page", r.HomePage, r.HomePageSource},
		{"repository", r.Repository, r.RepositorySource},
		{"download", r.Download, r.DownloadSource},
	}
	for _, p := range pairs {
		if (p.value == "") != (p.source == "") {
			return fmt.Errorf("record %s: %s and %s_source must be set together", r.Name, p.field, p.field)
		}
	}
	return nil
}

// Key returns the case-insensitive identity of the record.
func (r *Record) Key() string {
	return strings.ToLower(r.Name)
}

// Exemplar returns the reduced form of the record used in report pages and
// bucket samples.
func (r *Record) Exemplar() Exemplar {
	return Exemplar{
		Name:    r.Name,
		Version: r.Version,
		Summary: r.Summary,
		PubDate: r.PubDate,
		PURL:    PURL(r.Name, r.Version),
	}
}

// Exemplar is a capped sample entry of a report bucket.
type Exemplar struct {
	Name    string    `json:"name"`
	Version string    `json:"version"`
	Summary string    `json:"summary,omitempty"`
	PubDate time.Time `json:"pub_date"`
	PURL    string    `json:"purl,omitempty"`
}

// MarshalJSON encodes PubDate as epoch seconds.
func (e Exemplar) MarshalJSON() ([]byte, error) {
	type alias Exemplar
	return json.Marshal(struct {
		alias
		PubDate int64 `json:"pub_date"`
	}{alias(e), e.PubDate.Unix()})
}

// UnmarshalJSON decodes PubDate from epoch seconds.
func (e *Exemplar) UnmarshalJSON(data []byte) error {
	type alias Exemplar
	aux := struct {
		*alias
		PubDate *int64 `json:"pub_date"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.PubDate != nil {
		e.PubDate = time.Unix(*aux.PubDate, 0).UTC()
	}
	return nil
}

// PURL returns the package URL (pkg:pypi/name@version) of a PyPI package,
// with the name in its NormalizeName form.
func PURL(name, version string) string {
	n := NormalizeName(name)
	if n == "" {
		return ""
	}
	return packageurl.NewPackageURL(packageurl.TypePyPi, "", n, version, nil, "").ToString()
}

// NormalizeName returns the form PyPI compares names in: trimmed, lowercase,
// underscores and dots replaced by hyphens.
func NormalizeName(name string) string {
	return nameReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

var nameReplacer = strings.NewReplacer("_", "-", ".", "-")

// URLs is a label → URL mapping as declared by a package.
// Decoding drops entries whose value is not a non-empty string.
type URLs map[string]string

// UnmarshalJSON decodes a JSON object, keeping only string values.
func (u *URLs) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(URLs, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out[k] = strings.TrimSpace(s)
		}
	}
	*u = out
	return nil
}

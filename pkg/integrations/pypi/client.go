package pypi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/pydigger/pkg/cache"
	perrors "github.com/matzehuels/pydigger/pkg/errors"
	"github.com/matzehuels/pydigger/pkg/integrations"
	"github.com/matzehuels/pydigger/pkg/record"
)

// DefaultIndexURL is the PyPI JSON API root.
const DefaultIndexURL = "https://pypi.org/pypi"

// Document is the part of a PyPI JSON metadata document that pydigger reads.
// Unknown fields are ignored; null strings decode as empty.
type Document struct {
	Info Info `json:"info"`
}

// Info is the "info" object of a metadata document.
type Info struct {
	Name              string      `json:"name"`
	Version           string      `json:"version"`
	Summary           string      `json:"summary"`
	License           string      `json:"license"`
	LicenseExpression string      `json:"license_expression"`
	HomePage          string      `json:"home_page"`
	DownloadURL       string      `json:"download_url"`
	Maintainer        string      `json:"maintainer"`
	Author            string      `json:"author"`
	ProjectURLs       record.URLs `json:"project_urls"`
}

// Client fetches metadata documents from the PyPI JSON API.
type Client struct {
	*integrations.Client
	baseURL string
	keys    cache.Keyer
}

// NewClient creates a PyPI client. Documents for an explicit version are
// cached in backend for cacheTTL; pass cache.NewNullCache() to disable.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, cacheTTL, nil),
		baseURL: DefaultIndexURL,
		keys:    cache.NewScopedKeyer(cache.NewDefaultKeyer(), "pypi:"),
	}
}

// WithBaseURL points the client at another index (mirrors, tests).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// FetchDocument retrieves the metadata document of name at version.
// An empty version fetches the latest release.
//
// Released versions are immutable, so documents with a version are served
// from the cache unless refresh is set. Errors carry NOT_FOUND,
// NETWORK_ERROR or PARSE_ERROR codes and still match the
// [integrations.ErrNotFound] / [integrations.ErrNetwork] sentinels.
func (c *Client) FetchDocument(ctx context.Context, name, version string, refresh bool) (*Document, error) {
	if err := perrors.ValidatePackageName(name); err != nil {
		return nil, err
	}

	var doc Document
	fetch := func() error { return c.fetch(ctx, name, version, &doc) }

	var err error
	if version == "" {
		err = fetch()
	} else {
		err = c.Cached(ctx, c.keys.MetadataKey(name, version), refresh, &doc, fetch)
	}
	if err != nil {
		return nil, err
	}
	if doc.Info.ProjectURLs == nil {
		doc.Info.ProjectURLs = record.URLs{}
	}
	return &doc, nil
}

// DocumentURL returns the JSON API URL of name at version.
func (c *Client) DocumentURL(name, version string) string {
	if version == "" {
		return fmt.Sprintf("%s/%s/json", c.baseURL, url.PathEscape(name))
	}
	return fmt.Sprintf("%s/%s/%s/json", c.baseURL, url.PathEscape(name), url.PathEscape(version))
}

func (c *Client) fetch(ctx context.Context, name, version string, doc *Document) error {
	u := c.DocumentURL(name, version)
	err := c.Get(ctx, u, doc)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, integrations.ErrNotFound):
		return perrors.Wrap(perrors.ErrCodeNotFound, err, "pypi package %s %s", name, version)
	case errors.Is(err, integrations.ErrDecode):
		return perrors.Wrap(perrors.ErrCodeParse, err, "pypi metadata %s %s", name, version)
	default:
		return perrors.Wrap(perrors.ErrCodeNetwork, err, "fetch %s", u)
	}
}

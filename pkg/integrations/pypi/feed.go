package pypi

import (
	"context"
	"regexp"
	"time"

	"github.com/mmcdole/gofeed"

	perrors "github.com/matzehuels/pydigger/pkg/errors"
	"github.com/matzehuels/pydigger/pkg/integrations"
)

// DefaultFeedURL is the PyPI "newest updates" RSS feed.
const DefaultFeedURL = "https://pypi.org/rss/updates.xml"

// Entry is one item of the update feed, in feed order.
type Entry struct {
	Title string
	Link  string
	// Published is the raw publication timestamp; empty when the item has none.
	Published string
	// PublishedAt is Published parsed as an RFC 2822 style date, in UTC.
	// It is nil when Published is empty or malformed.
	PublishedAt *time.Time
}

// projectLinkRE matches release links: <host>/project/<name>/<version>/
var projectLinkRE = regexp.MustCompile(`^https?://[^/]+/project/([^/]+)/([^/]+)/?$`)

// ParseProjectLink extracts the package name and version from a release
// link. ok is false for links that do not point at a project release.
func ParseProjectLink(link string) (name, version string, ok bool) {
	m := projectLinkRE.FindStringSubmatch(link)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// FeedClient reads the update feed.
type FeedClient struct {
	client *integrations.Client
	url    string
	parser *gofeed.Parser
}

// NewFeedClient returns a client for the feed at url
// (DefaultFeedURL when empty). Feeds are never cached.
func NewFeedClient(client *integrations.Client, url string) *FeedClient {
	if url == "" {
		url = DefaultFeedURL
	}
	if client == nil {
		client = integrations.NewClient(nil, 0, nil)
	}
	return &FeedClient{client: client, url: url, parser: gofeed.NewParser()}
}

// Entries fetches and parses the feed.
func (f *FeedClient) Entries(ctx context.Context) ([]Entry, error) {
	body, err := f.client.Open(ctx, f.url)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "fetch feed %s", f.url)
	}
	defer body.Close()

	feed, err := f.parser.Parse(body)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeParse, err, "parse feed %s", f.url)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		e := Entry{
			Title:     item.Title,
			Link:      item.Link,
			Published: item.Published,
		}
		if item.Published != "" && item.PublishedParsed != nil {
			t := item.PublishedParsed.UTC()
			e.PublishedAt = &t
		}
		entries = append(entries, e)
	}
	return entries, nil
}

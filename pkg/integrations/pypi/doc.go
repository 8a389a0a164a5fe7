// Package pypi reads the Python Package Index.
//
// Two endpoints are used:
//
//   - the update feed ([DefaultFeedURL]), an RSS document listing the most
//     recent releases as {title, link, pubDate} items, read by [FeedClient]
//   - the JSON API ([DefaultIndexURL]), which serves one metadata document
//     per release at /pypi/<name>/<version>/json, read by [Client]
//
// Feed links have the form https://pypi.org/project/<name>/<version>/ and are
// split with [ParseProjectLink]. Publication timestamps are passed through
// unparsed so the caller can tell a missing date from a malformed one.
//
//	feed := pypi.NewFeedClient(nil, "")
//	entries, err := feed.Entries(ctx)
//
//	client := pypi.NewClient(cache.NewNullCache(), 0)
//	doc, err := client.FetchDocument(ctx, "requests", "2.32.3", false)
package pypi

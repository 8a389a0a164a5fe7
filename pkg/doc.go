// Package pkg provides the libraries behind pydigger.
//
// # Overview
//
// pydigger follows the PyPI update feed, keeps one resolved metadata record
// per package and aggregates the collection into a report. The typical data
// flow of a download run:
//
//	PyPI update feed (RSS)
//	         ↓
//	    [ingest] freshness gate (skip entries not newer than the stored record)
//	         ↓
//	    [integrations/pypi] metadata document (cached per version)
//	         ↓
//	    [resolve] home page, repository and download URL with provenance
//	         ↓
//	    [vcs] repository probe (GitHub Actions, Dependabot, GitLab CI)
//	         ↓
//	    [record] JSON record store
//
// and of a report run:
//
//	[record] store → [report] license and VCS summaries → report.json
//
// # Main Packages
//
// [record] - The persisted package record, tri-state probe flags, report
// exemplars and the sharded JSON file store.
//
// [resolve] - Deterministic URL resolution from declared project URLs, driven
// by one ordered precedence table.
//
// [ingest] - The sequential download run: feed entries, freshness gate,
// outcomes and run statistics.
//
// [vcs] - Repository URL classification and the git-based prober.
//
// [report] - Aggregation of stored records into bucketed summaries.
//
// [integrations] - Shared HTTP client with response caching;
// [integrations/pypi] implements the JSON API and the update feed.
//
// [cache] - Response cache backends (file, Redis, null).
//
// [observability] - Hook interfaces and Prometheus metrics.
//
// [errors] - Coded errors and input validation.
//
// # Testing
//
//	go test ./...
//	go test -run Example ./pkg/...
package pkg

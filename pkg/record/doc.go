// Package record defines the persisted Package Record and its file store.
//
// # Record
//
// A [Record] holds the latest known metadata of one PyPI package together
// with the URLs derived from it (home page, repository, download), the
// provenance of each derived URL, and the tri-state CI flags set by the
// repository prober.
//
// Identity is case-insensitive: "Django" and "django" are the same record.
//
// # Storage
//
// [Store] keeps one pretty-printed JSON document per package:
//
//	data/pypi/re/requests.json
//	data/pypi/dj/django.json
//	data/pypi/ab.json          // names of two characters or fewer
//
// Timestamps serialize as Unix epoch seconds. Decoding is lenient: unknown
// keys are ignored and missing keys leave fields absent, so records written by
// older or newer schema versions still load.
package record

// Package ingest runs the incremental download of package metadata.
//
// A run reads the update feed once and visits its entries in order. Each
// entry passes through the freshness [Gate]; entries newer than the stored
// record are fetched, resolved, optionally probed and persisted. Every
// visited entry ends in exactly one [Outcome], and [Stats] sums them.
package ingest

import (
	"time"

	"github.com/matzehuels/pydigger/pkg/record"
)

// Decision is the freshness gate's verdict for one feed entry.
type Decision int

const (
	// Proceed means the entry is newer than what is stored (or nothing is).
	Proceed Decision = iota
	// Skip means the stored record is at least as new as the entry.
	Skip
)

func (d Decision) String() string {
	if d == Skip {
		return "skip"
	}
	return "proceed"
}

// Gate decides whether an entry published at pubDate needs processing given
// the stored record, which may be nil. Equal timestamps skip: a record is
// replaced only by a strictly newer publication.
func Gate(stored *record.Record, pubDate time.Time) Decision {
	if stored != nil && !stored.PubDate.Before(pubDate) {
		return Skip
	}
	return Proceed
}

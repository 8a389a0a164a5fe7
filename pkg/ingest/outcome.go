package ingest

// Outcome is the terminal state of one visited feed entry.
type Outcome int

const (
	Success Outcome = iota
	// DateParseError: the entry has a timestamp that cannot be parsed.
	DateParseError
	// MissingDateError: the entry has no timestamp.
	MissingDateError
	// Skipped: the stored record is up to date.
	Skipped
	// Ignored: the link is not a project release link.
	Ignored
	// Failed: fetching, decoding or persisting the metadata failed.
	Failed
)

// Outcomes lists every outcome in declaration order.
var Outcomes = []Outcome{Success, DateParseError, MissingDateError, Skipped, Ignored, Failed}

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case DateParseError:
		return "date_parse_error"
	case MissingDateError:
		return "missing_date_error"
	case Skipped:
		return "skipped"
	case Ignored:
		return "ignored"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

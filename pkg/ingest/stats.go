package ingest

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pydigger/pkg/record"
)

// Stats summarizes one ingestion run. It is persisted as <data>/pypi.json.
//
// The per-outcome counters always sum to Visited. ErrorProjects is the sum
// of both date error counters.
type Stats struct {
	RunID             string
	StartDate         time.Time
	ProjectsInRSS     int
	Visited           int
	Downloaded        int
	Skipped           int
	DateErrors        int
	MissingDateErrors int
	Ignored           int
	Failed            int
	Elapsed           time.Duration
}

// NewStats starts the statistics of a run beginning at start.
func NewStats(start time.Time) *Stats {
	return &Stats{RunID: uuid.NewString(), StartDate: start}
}

// Add counts one visited entry.
func (s *Stats) Add(o Outcome) {
	s.Visited++
	switch o {
	case Success:
		s.Downloaded++
	case DateParseError:
		s.DateErrors++
	case MissingDateError:
		s.MissingDateErrors++
	case Skipped:
		s.Skipped++
	case Ignored:
		s.Ignored++
	case Failed:
		s.Failed++
	}
}

// Count returns the number of entries that ended in o.
func (s *Stats) Count(o Outcome) int {
	switch o {
	case Success:
		return s.Downloaded
	case DateParseError:
		return s.DateErrors
	case MissingDateError:
		return s.MissingDateErrors
	case Skipped:
		return s.Skipped
	case Ignored:
		return s.Ignored
	case Failed:
		return s.Failed
	}
	return 0
}

// ErrorProjects is the number of entries rejected for their timestamp.
func (s *Stats) ErrorProjects() int {
	return s.DateErrors + s.MissingDateErrors
}

type statsJSON struct {
	RunID             string `json:"run_id"`
	StartDate         int64  `json:"start_date"`
	ProjectsInRSS     int    `json:"projects_in_rss"`
	Visited           int    `json:"visited"`
	Downloaded        int    `json:"downloaded_projects"`
	Skipped           int    `json:"skipped_projects"`
	DateErrors        int    `json:"date_errors"`
	MissingDateErrors int    `json:"missing_date_errors"`
	Ignored           int    `json:"ignored_projects"`
	Failed            int    `json:"failed_projects"`
	ErrorProjects     int    `json:"error_projects"`
	ElapsedTime       int64  `json:"elapsed_time"`
}

// MarshalJSON writes timestamps as epoch seconds and durations as seconds.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(statsJSON{
		RunID:             s.RunID,
		StartDate:         s.StartDate.Unix(),
		ProjectsInRSS:     s.ProjectsInRSS,
		Visited:           s.Visited,
		Downloaded:        s.Downloaded,
		Skipped:           s.Skipped,
		DateErrors:        s.DateErrors,
		MissingDateErrors: s.MissingDateErrors,
		Ignored:           s.Ignored,
		Failed:            s.Failed,
		ErrorProjects:     s.ErrorProjects(),
		ElapsedTime:       int64(s.Elapsed / time.Second),
	})
}

// UnmarshalJSON reads the on-disk form. Files written before the extended
// counters existed decode with those counters at zero.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var aux statsJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Stats{
		RunID:             aux.RunID,
		StartDate:         time.Unix(aux.StartDate, 0).UTC(),
		ProjectsInRSS:     aux.ProjectsInRSS,
		Visited:           aux.Visited,
		Downloaded:        aux.Downloaded,
		Skipped:           aux.Skipped,
		DateErrors:        aux.DateErrors,
		MissingDateErrors: aux.MissingDateErrors,
		Ignored:           aux.Ignored,
		Failed:            aux.Failed,
		Elapsed:           time.Duration(aux.ElapsedTime) * time.Second,
	}
	return nil
}

// SaveStats writes s to path.
func SaveStats(path string, s *Stats) error {
	return record.WriteJSON(path, s)
}

// LoadStats reads the statistics file at path.
func LoadStats(path string) (*Stats, error) {
	var s Stats
	if err := record.ReadJSON(path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pydigger/pkg/record"
)

// PageSize caps the project page and every exemplar list.
const PageSize = 50

// Report is the aggregate written to report.json.
type Report struct {
	Total    int               `json:"total"`
	Projects []record.Exemplar `json:"projects"`
	License  *LicenseSummary   `json:"license"`
	VCS      *VCSSummary       `json:"vcs"`
}

// Build sorts records newest first (ties by name) and aggregates them.
// records is sorted in place. A nil logger means log.Default().
func Build(records []*record.Record, logger *log.Logger) *Report {
	if logger == nil {
		logger = log.Default()
	}
	Sort(records)

	rep := &Report{
		Total:    len(records),
		Projects: make([]record.Exemplar, 0, min(len(records), PageSize)),
		License:  newLicenseSummary(),
		VCS:      newVCSSummary(),
	}
	for i, r := range records {
		if i < PageSize {
			rep.Projects = append(rep.Projects, r.Exemplar())
		}
		rep.License.add(r, logger)
		rep.VCS.add(r, logger)
	}
	return rep
}

// Sort orders records by publication date, newest first, then by name.
func Sort(records []*record.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.PubDate.Equal(b.PubDate) {
			return a.PubDate.After(b.PubDate)
		}
		return a.Key() < b.Key()
	})
}

// Load reads every record in store. Unreadable or malformed files are
// logged and skipped; only a failure to walk the store is returned.
func Load(store *record.Store, logger *log.Logger) ([]*record.Record, error) {
	if logger == nil {
		logger = log.Default()
	}
	var records []*record.Record
	err := store.Walk(func(path string, r *record.Record, err error) error {
		if err != nil {
			logger.Error("skipping record", "path", path, "err", err)
			return nil
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded records", "count", len(records), "dir", store.Dir())
	return records, nil
}

// WriteJSON encodes the report as indented JSON to w.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Export atomically writes the report to path.
func (r *Report) Export(path string) error {
	return record.WriteJSON(path, r)
}

// Read loads a previously exported report.
func Read(path string) (*Report, error) {
	var rep Report
	if err := record.ReadJSON(path, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// bucket appends r to list while the list is below PageSize and bumps n.
func bucket(n *int, list *[]record.Exemplar, r *record.Record) {
	*n++
	if len(*list) < PageSize {
		*list = append(*list, r.Exemplar())
	}
}

func emptyList() []record.Exemplar { return []record.Exemplar{} }

// Package report aggregates stored package records into the summary
// written to report.json.
//
// A [Report] holds the newest [PageSize] projects, a license summary and a
// VCS summary. Every summary bucket carries an unbounded count next to a
// list of at most [PageSize] exemplars:
//
//	records, _ := report.Load(store, logger)
//	rep := report.Build(records, logger)
//	_ = rep.Export(filepath.Join(dataDir, "report.json"))
//
// Building is a pure function of the records; loading skips unreadable
// files with a log line.
package report

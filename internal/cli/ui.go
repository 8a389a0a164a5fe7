package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/pydigger/pkg/ingest"
	"github.com/matzehuels/pydigger/pkg/report"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Tables
// =============================================================================

// newTable returns a rounded two-column table with dim borders.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col > 0:
				return StyleNumber
			default:
				return lipgloss.NewStyle()
			}
		})
}

// renderStats renders the outcome counts of an ingestion run.
func renderStats(w io.Writer, s *ingest.Stats) {
	t := newTable("Outcome", "Projects")
	t.Row("in feed", strconv.Itoa(s.ProjectsInRSS))
	t.Row("visited", strconv.Itoa(s.Visited))
	for _, o := range ingest.Outcomes {
		t.Row(o.String(), strconv.Itoa(s.Count(o)))
	}
	fmt.Fprintln(w, StyleTitle.Render("Run "+s.RunID))
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, StyleDim.Render("elapsed "+s.Elapsed.Round(time.Millisecond).String()))
}

// renderReport renders the headline numbers of a report.
func renderReport(w io.Writer, r *report.Report) {
	l, v := r.License, r.VCS

	licenses := newTable("License", "Projects")
	for _, name := range topLicenses(l.Licenses, 10) {
		licenses.Row(name, strconv.Itoa(l.Licenses[name]))
	}
	licenses.Row("no license", strconv.Itoa(l.NoLicenseCount))
	licenses.Row("bad license", strconv.Itoa(l.BadLicenseCount))
	licenses.Row("long license", strconv.Itoa(l.LongLicenseCount))
	licenses.Row("valid SPDX (unlisted)", strconv.Itoa(l.SPDXValidCount))

	hosts := newTable("VCS", "Projects")
	hosts.Row("github", strconv.Itoa(v.GitHubCount))
	hosts.Row("  with actions", strconv.Itoa(v.HasGitHubActionsCount))
	hosts.Row("  without actions", strconv.Itoa(v.NoGitHubActionsCount))
	hosts.Row("  with dependabot", strconv.Itoa(v.HasDependabotCount))
	hosts.Row("gitlab", strconv.Itoa(v.GitLabCount))
	hosts.Row("  with pipeline", strconv.Itoa(v.HasGitLabPipelineCount))
	hosts.Row("  without pipeline", strconv.Itoa(v.NoGitLabPipelineCount))
	hosts.Row("other", strconv.Itoa(v.Hosts["other"]))
	hosts.Row("unrecognized", strconv.Itoa(v.BadVCSCount))
	hosts.Row("none", strconv.Itoa(v.NoVCSCount))

	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("%d projects", r.Total)))
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, licenses.Render(), "  ", hosts.Render()))
}

// topLicenses returns up to n non-zero registry entries, most used first.
func topLicenses(counts map[string]int, n int) []string {
	var names []string
	for name, count := range counts {
		if count > 0 {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pydigger/pkg/report"
)

// reportCommand creates the report command.
func (c *CLI) reportCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate stored records into report.json",
		Long: `Load every stored record, bucket the projects by license and source
repository host, and write the result to <data-dir>/report.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReport(quiet)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the summary tables")

	return cmd
}

func (c *CLI) runReport(quiet bool) error {
	prog := newProgress(c.Logger)

	records, err := report.Load(c.store(), c.Logger)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		printWarning("No records in %s, run 'pydigger download' first", c.Config.RecordsDir())
	}

	rep := report.Build(records, c.Logger)
	path := c.Config.ReportPath()
	if err := rep.Export(path); err != nil {
		return err
	}
	prog.done("Report generated")

	if !quiet {
		renderReport(os.Stdout, rep)
	}
	printSuccess("Wrote report with %d projects", rep.Total)
	printFile(path)
	return nil
}

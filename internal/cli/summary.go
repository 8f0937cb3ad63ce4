package cli

import (
	"github.com/spf13/cobra"
)

var (
	summaryOutput     string
	summaryOutputFile string
	summaryFlags      sourceFlags
)

func newSummaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [source]",
		Short: "Print a one-shot dashboard report",
		Long: `Load a dataset, apply the given filters and print the key metrics, chart
data, descriptive statistics and insights of the filtered view.

The source is a file (.csv, .tsv, .json, .ndjson, .xlsx, .log), a database
URI (postgres://...?table=t, sqlite://path?table=t), "-" for stdin or
sample:titanic. Without a source the configured one, or the sample, is used.

Examples:
  datasum summary
  datasum summary titanic.csv -f pclass=1,2 -f age=18..
  datasum summary -o json --output-file report.json titanic.csv
  datasum summary -o prompt data.xlsx`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSummary,
	}

	cmd.Flags().StringVarP(&summaryOutput, "output", "o", "", "output format (text, json, markdown, csv, prompt)")
	cmd.Flags().StringVar(&summaryOutputFile, "output-file", "", "save output to file instead of stdout")
	summaryFlags.register(cmd, true)

	return cmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	a := newApp(&summaryFlags)
	defer a.finish()

	sess, err := a.session(commandContext(cmd), args)
	if err != nil {
		return err
	}

	format := summaryOutput
	if format == "" {
		format = a.cfg.Output.DefaultFormat
	}
	out, err := renderReport(a, sess.Analysis(), format)
	if err != nil {
		return err
	}
	return handleOutputDestination(cmd.OutOrStdout(), out, summaryOutputFile)
}

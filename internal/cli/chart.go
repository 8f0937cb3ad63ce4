package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/chart"
	"github.com/yildizm/DataSum/internal/monitor"
)

var (
	chartName  string
	chartOut   string
	chartList  bool
	chartFlags sourceFlags
)

func newChartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart [source]",
		Short: "Render a dashboard chart",
		Long: `Render one of the dashboard's charts for the filtered view.

Without --out the chart is drawn in the terminal. With --out it is written as
a PNG or SVG image chosen by the file extension. Bar, grouped bar and
histogram charts can be written as images; every chart can be drawn as text.

Examples:
  datasum chart --list
  datasum chart --chart survival_by_class
  datasum chart --chart age_distribution --out ages.png -f sex=female
  datasum chart titanic.csv --chart survival_by_gender --out gender.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChart,
	}

	cmd.Flags().StringVar(&chartName, "chart", "", "chart name (see --list); all charts when empty")
	cmd.Flags().StringVar(&chartOut, "out", "", "image file (.png or .svg)")
	cmd.Flags().BoolVar(&chartList, "list", false, "list the dashboard's charts")
	chartFlags.register(cmd, true)

	return cmd
}

func runChart(cmd *cobra.Command, args []string) error {
	a := newApp(&chartFlags)
	defer a.finish()

	sess, err := a.session(commandContext(cmd), args)
	if err != nil {
		return err
	}
	analysis := sess.Analysis()
	out := cmd.OutOrStdout()

	if chartList {
		return listCharts(out, analysis)
	}

	charts := analysis.Charts
	if chartName != "" {
		c, ok := analysis.Chart(chartName)
		if !ok {
			return fmt.Errorf("unknown chart %q (available: %s)", chartName, strings.Join(chartNames(analysis), ", "))
		}
		charts = []analyzer.ChartData{c}
	}

	if chartOut == "" {
		opts := a.textChartOptions()
		return a.collector.TrackOperation(monitor.OperationRender, func() error {
			for _, c := range charts {
				fmt.Fprintln(out, chart.RenderText(c, opts))
			}
			return nil
		})
	}

	if len(charts) != 1 {
		return fmt.Errorf("--out needs a single chart; pass --chart")
	}
	format, err := chart.FormatFromPath(chartOut)
	if err != nil {
		return err
	}
	imgOpts := chart.ImageOptions{Width: a.cfg.Charts.Width, Height: a.cfg.Charts.Height}

	err = a.collector.TrackOperation(monitor.OperationRender, func() error {
		return writeFile(chartOut, func(w io.Writer) error {
			return chart.RenderImage(w, charts[0], format, imgOpts)
		})
	})
	if err != nil {
		return err
	}
	statusf(os.Stderr, "chart", "Chart %s written to %s", charts[0].Name, chartOut)
	return nil
}

func chartNames(a *analyzer.Analysis) []string {
	names := make([]string, len(a.Charts))
	for i, c := range a.Charts {
		names[i] = c.Name
	}
	return names
}

func listCharts(w io.Writer, a *analyzer.Analysis) error {
	if len(a.Charts) == 0 {
		_, err := fmt.Fprintln(w, "No charts configured.")
		return err
	}
	for _, c := range a.Charts {
		if _, err := fmt.Fprintf(w, "%-24s %-12s %s\n", c.Name, c.Kind, c.Title); err != nil {
			return err
		}
	}
	return nil
}

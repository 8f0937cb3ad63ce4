package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yildizm/DataSum/internal/export"
	"github.com/yildizm/DataSum/internal/ui"
)

var (
	exploreNoTUI  bool
	exploreOutput string
	exploreFlags  sourceFlags
)

func newExploreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore [source]",
		Short: "Explore a dataset in the terminal dashboard",
		Long: `Open the interactive dashboard: filter widgets in the sidebar, key metric
cards, and tabs for the raw records, the charts and the details.

With --no-tui, a non-text output format or --verbose, the report is printed
instead.

Examples:
  datasum explore
  datasum explore titanic.csv --theme high-contrast
  datasum explore --dashboard titanic.yaml data.csv
  datasum explore --no-tui -f sex=female`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExplore,
	}

	cmd.Flags().BoolVar(&exploreNoTUI, "no-tui", false, "disable terminal UI, output to stdout")
	cmd.Flags().StringVarP(&exploreOutput, "output", "o", "text", "report format when the UI is off (text, json, markdown, csv, prompt)")
	exploreFlags.register(cmd, true)

	return cmd
}

// shouldUseTUIMode reports whether explore starts the interactive UI
func shouldUseTUIMode() bool {
	return !exploreNoTUI && exploreOutput == "text" && !isVerbose()
}

func runExplore(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(commandContext(cmd))
	defer cancel()

	a := newApp(&exploreFlags)
	defer a.finish()

	sess, err := a.session(ctx, args)
	if err != nil {
		return err
	}

	if !shouldUseTUIMode() {
		out, err := renderReport(a, sess.Analysis(), exploreOutput)
		if err != nil {
			return err
		}
		return handleOutputDestination(cmd.OutOrStdout(), out, "")
	}

	opts, err := uiOptions(a)
	if err != nil {
		return err
	}
	return ui.Run(ctx, sess, opts)
}

func uiOptions(a *app) (ui.Options, error) {
	delim, err := export.ParseDelimiter(a.cfg.Output.Delimiter)
	if err != nil {
		return ui.Options{}, err
	}

	opts := ui.DefaultOptions()
	opts.Theme = a.cfg.UI.Theme
	if themeName != "" {
		opts.Theme = themeName
	}
	if _, ok := ui.ThemeByName(opts.Theme); !ok {
		return ui.Options{}, errUnknownTheme(opts.Theme)
	}
	opts.Color = colorEnabled()
	opts.TableRows = a.cfg.UI.TableRows
	opts.ExportDir = a.cfg.Output.ExportDir
	opts.Delimiter = delim
	opts.Chart = a.textChartOptions()
	return opts, nil
}

func errUnknownTheme(name string) error {
	return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(ui.AvailableThemes(), ", "))
}

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/DataSum/internal/dataset/source"
	"github.com/yildizm/DataSum/internal/watch"
)

var (
	watchOutput   string
	watchDebounce time.Duration
	watchFlags    sourceFlags
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-print the summary whenever the dataset file changes",
		Long: `Monitor a dataset file for changes and print a fresh summary of the
filtered view after each change. Uses file system notifications; bursts of
writes are collapsed into one reload. Press Ctrl+C to stop watching.

Examples:
  datasum watch titanic.csv
  datasum watch -f pclass=1 -o json exports/latest.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringVarP(&watchOutput, "output", "o", "", "output format (text, json, markdown, csv, prompt)")
	cmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before reloading")
	watchFlags.register(cmd, true)

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(commandContext(cmd))
	defer cancel()

	uri := args[0]
	if err := requireFile(uri, "watch"); err != nil {
		return err
	}

	a := newApp(&watchFlags)
	defer a.finish()

	watcher, err := watch.New(source.FilePath(uri), watchDebounce, newLogger("watch"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := printSummary(ctx, a, uri, out); err != nil {
		return err
	}
	statusf(cmd.ErrOrStderr(), "watch", "Watching %s (Ctrl+C to stop)", watcher.Path())

	return watcher.Run(ctx, func(ctx context.Context) error {
		fmt.Fprintf(out, "\n%s Change detected at %s\n\n", GetEmoji("watch"), time.Now().Format("15:04:05"))
		return printSummary(ctx, a, uri, out)
	})
}

// printSummary reloads the file and prints the filtered summary
func printSummary(ctx context.Context, a *app, uri string, w io.Writer) error {
	sess, err := a.session(ctx, []string{uri})
	if err != nil {
		return err
	}
	format := watchOutput
	if format == "" {
		format = a.cfg.Output.DefaultFormat
	}
	report, err := renderReport(a, sess.Analysis(), format)
	if err != nil {
		return err
	}
	_, err = w.Write(report)
	return err
}

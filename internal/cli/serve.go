package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/yildizm/DataSum/internal/chart"
	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/dataset/source"
	"github.com/yildizm/DataSum/internal/export"
	"github.com/yildizm/DataSum/internal/server"
	"github.com/yildizm/DataSum/internal/watch"
)

var (
	serveAddr  string
	serveWatch bool
	serveFlags sourceFlags
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "Serve the dashboard over HTTP",
		Long: `Serve the dashboard as an HTML report and a JSON API. Every request reads
its filters from the query string, so requests never share state.

Routes:
  /                  HTML report          /api/view      metrics, charts, rows
  /api/dataset       columns and kinds    /api/describe  descriptive statistics
  /api/stats         operation timings    /charts/{name}.png|svg
  /export.csv        filtered records     /export.xlsx   filtered workbook
  /metrics           Prometheus           /healthz

With --watch the dataset file is reloaded when it changes.

Examples:
  datasum serve
  datasum serve titanic.csv --addr :9000 --watch
  curl 'localhost:8080/api/view?pclass=1,2&age=18..'`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "reload the dataset when its file changes")
	serveFlags.register(cmd, false)

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(commandContext(cmd))
	defer cancel()

	a := newApp(&serveFlags)
	defer a.finish()
	defer startSampling(ctx, a)()

	uri := a.sourceURI(args)
	if serveWatch {
		if err := requireFile(uri, "watch"); err != nil {
			return err
		}
	}

	ds, err := a.open(ctx, uri)
	if err != nil {
		return err
	}
	def, err := a.definition(ds)
	if err != nil {
		return err
	}
	cfg, err := serverConfig(a)
	if err != nil {
		return err
	}

	log := newLogger("server")
	srv, err := server.New(ds, def, cfg, a.collector, log)
	if err != nil {
		return err
	}

	var watcher *watch.Watcher
	if serveWatch {
		if watcher, err = watch.New(source.FilePath(uri), watch.DefaultDebounce, newLogger("watch")); err != nil {
			return err
		}
	}
	// the server times reloads itself
	load := func(ctx context.Context) (*dataset.Dataset, error) {
		return source.Open(ctx, uri, a.sourceOptions())
	}

	statusf(os.Stderr, "server", "Serving %s (%d records) on %s", ds.Name(), ds.Len(), cfg.Addr)
	return srv.Run(ctx, watcher, load)
}

func serverConfig(a *app) (server.Config, error) {
	delim, err := export.ParseDelimiter(a.cfg.Output.Delimiter)
	if err != nil {
		return server.Config{}, err
	}
	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	return server.Config{
		Addr:          addr,
		ReadTimeout:   a.cfg.Server.ReadTimeout,
		WriteTimeout:  a.cfg.Server.WriteTimeout,
		PreviewRows:   a.cfg.Server.PreviewRows,
		HistogramBins: a.cfg.Charts.HistogramBins,
		Image:         chart.ImageOptions{Width: a.cfg.Charts.Width, Height: a.cfg.Charts.Height},
		Delimiter:     delim,
	}, nil
}

package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yildizm/DataSum/internal/export"
	"github.com/yildizm/DataSum/internal/monitor"
	"github.com/yildizm/DataSum/internal/session"
)

var (
	exportDelimiter string
	exportColumns   []string
	exportOut       string
	exportNoHeader  bool
	exportFlags     sourceFlags
)

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [source]",
		Short: "Export the filtered records",
		Long: `Write the records that pass every filter as delimited text: a header row
followed by one line per record, in dataset order.

The output goes to stdout unless --out is given. An --out path ending in
.tsv defaults to tab separation; .xlsx writes a workbook.

Examples:
  datasum export -f pclass=1 > first_class.csv
  datasum export titanic.csv --out adults.tsv -f age=18..
  datasum export --columns name,age,fare --delimiter ';'
  datasum export --out survivors.xlsx -f survived=true`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportDelimiter, "delimiter", "", "field delimiter (comma, tab, semicolon, pipe)")
	cmd.Flags().StringSliceVar(&exportColumns, "columns", nil, "columns to write (default all)")
	cmd.Flags().StringVar(&exportOut, "out", "", "output file (.csv, .tsv, .xlsx); stdout when empty")
	cmd.Flags().BoolVar(&exportNoHeader, "no-header", false, "omit the header row")
	exportFlags.register(cmd, true)

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	a := newApp(&exportFlags)
	defer a.finish()

	opts, err := exportOptions(a)
	if err != nil {
		return err
	}

	sess, err := a.session(commandContext(cmd), args)
	if err != nil {
		return err
	}

	write := func(w io.Writer) error { return sess.Export(w, opts) }
	if isWorkbook(exportOut) {
		write = func(w io.Writer) error {
			return a.collector.TrackOperation(monitor.OperationExport, func() error {
				return export.WriteXLSX(w, sess.View(), opts)
			})
		}
	}

	if exportOut == "" || exportOut == "-" {
		return write(cmd.OutOrStdout())
	}
	if err := validateOutputFilePath(exportOut); err != nil {
		return err
	}
	if err := writeFile(exportOut, write); err != nil {
		return err
	}
	reportExport(sess, exportOut)
	return nil
}

// exportOptions resolves the delimiter from the flag, the output file
// extension and then the config
func exportOptions(a *app) (export.Options, error) {
	raw := exportDelimiter
	if raw == "" && isTSV(exportOut) {
		raw = "tab"
	}
	if raw == "" {
		raw = a.cfg.Output.Delimiter
	}
	delim, err := export.ParseDelimiter(raw)
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{
		Delimiter: delim,
		Columns:   exportColumns,
		NoHeader:  exportNoHeader,
	}, nil
}

func isTSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".tsv")
}

func isWorkbook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func reportExport(sess *session.Session, path string) {
	statusf(os.Stderr, "export", "Exported %d of %d records to %s", sess.View().Len(), sess.Dataset().Len(), path)
}

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yildizm/DataSum/internal/dashboard"
)

func newDashboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Manage dashboard definition files",
		Long: `A dashboard definition is a YAML file naming the filters, metrics and
charts of a dashboard. Without one, the Titanic explorer is used for datasets
that have its columns and a dashboard is inferred for anything else.`,
	}

	cmd.AddCommand(newDashboardInitCommand())
	cmd.AddCommand(newDashboardValidateCommand())
	cmd.AddCommand(newDashboardShowCommand())

	return cmd
}

func newDashboardInitCommand() *cobra.Command {
	var (
		outputPath string
		force      bool
		flags      sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "init [source]",
		Short: "Write a dashboard definition for a dataset",
		Long: `Write the dashboard DataSum would use for a dataset as a starting point
for editing: the Titanic explorer for passenger tables, an inferred dashboard
otherwise.`,
		Example: `  # Titanic explorer definition
  datasum dashboard init

  # Inferred definition for a spreadsheet
  datasum dashboard init sales.xlsx --output sales.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && fileExists(outputPath) {
				return fmt.Errorf("dashboard file already exists at %s (use --force to overwrite)", outputPath)
			}

			a := newApp(&flags)
			ds, err := a.open(commandContext(cmd), a.sourceURI(args))
			if err != nil {
				return err
			}
			data, err := dashboard.Marshal(dashboard.Resolve(nil, ds))
			if err != nil {
				return err
			}
			if err := writeOutputBytesToFile(data, outputPath); err != nil {
				return err
			}

			statusf(cmd.OutOrStdout(), "success", "Dashboard definition created at: %s", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "dashboard.yaml", "output path for the definition")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	flags.register(cmd, false)

	return cmd
}

func newDashboardValidateCommand() *cobra.Command {
	var (
		sourceURI string
		flags     sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a dashboard definition",
		Long: `Check a definition for unknown fields, missing names and bad widget
choices. With --source the definition is also checked against the dataset's
columns.`,
		Example: `  datasum dashboard validate dashboard.yaml
  datasum dashboard validate dashboard.yaml --source titanic.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			def, err := dashboard.Load(args[0])
			if err != nil {
				statusf(out, "error", "Dashboard validation failed:")
				fmt.Fprintf(out, "   %v\n", err)
				return err
			}

			a := newApp(&flags)
			if sourceURI != "" {
				ds, err := a.open(commandContext(cmd), sourceURI)
				if err != nil {
					return err
				}
				if err := def.Validate(ds); err != nil {
					reportValidation(out, err)
					return err
				}
			} else if err := def.Validate(nil); err != nil {
				reportValidation(out, err)
				return err
			}

			statusf(out, "success", "Dashboard is valid")
			statusf(out, "statistics", "Dashboard summary:")
			fmt.Fprintf(out, "   Title: %s\n", def.Title)
			fmt.Fprintf(out, "   Filters: %d\n", len(def.Filters))
			fmt.Fprintf(out, "   Metrics: %d\n", len(def.Metrics))
			fmt.Fprintf(out, "   Charts: %d\n", len(def.Charts))
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceURI, "source", "", "dataset to check the definition against")
	flags.register(cmd, false)

	return cmd
}

func reportValidation(out io.Writer, err error) {
	statusf(out, "error", "Dashboard validation failed:")
	var verr *dashboard.ValidationError
	if errors.As(err, &verr) {
		for _, p := range verr.Problems {
			fmt.Fprintf(out, "   - %s\n", p)
		}
		return
	}
	fmt.Fprintf(out, "   %v\n", err)
}

func newDashboardShowCommand() *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "show [source]",
		Short: "Print the dashboard used for a dataset",
		Long: `Print the effective dashboard definition as YAML: the --dashboard file
when given, otherwise the one chosen for the dataset.`,
		Example: `  datasum dashboard show
  datasum dashboard show data.csv
  datasum dashboard show --dashboard custom.yaml titanic.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(&flags)
			ds, err := a.open(commandContext(cmd), a.sourceURI(args))
			if err != nil {
				return err
			}
			def, err := a.definition(ds)
			if err != nil {
				return err
			}
			data, err := dashboard.Marshal(def)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	flags.register(cmd, false)
	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/kipimo/core/report"
)

func (cli *commandLine) exportCmd() *cobra.Command {
	var (
		format  string
		output  string
		archive bool
		email   bool
	)
	cmd := &cobra.Command{
		Use:   "export SLUG",
		Short: "Export the progress report of a district",
		Long: `Export the progress report of a district as csv, json or yaml.

The report is written to stdout unless --output is given. --archive stores it in the
configured archive (S3 bucket or local directory) and --email sends it to the district admin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			ctx, slug := cmd.Context(), args[0]

			switch {
			case archive:
				loc, err := cli.reports.Archive(ctx, slug, f)
				if err != nil {
					return errors.Wrap(err, "archiving report")
				}
				fmt.Fprintf(cli.out, "report archived to %s\n", loc)
				return nil
			case email:
				if err = cli.reports.Email(ctx, slug, f); err != nil {
					return errors.Wrap(err, "emailing report")
				}
				fmt.Fprintln(cli.out, "report sent")
				return nil
			}

			file, err := cli.reports.Export(ctx, slug, f)
			if err != nil {
				return errors.Wrap(err, "exporting report")
			}
			if output == "" {
				_, err = cli.out.Write(file.Content)
				return err
			}
			if err = os.WriteFile(output, file.Content, 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", output)
			}
			fmt.Fprintf(cli.out, "report written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatCSV), "Report format: csv, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&archive, "archive", false, "Store the report in the configured archive")
	cmd.Flags().BoolVar(&email, "email", false, "Email the report to the district admin")
	return cmd
}

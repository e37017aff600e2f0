package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/medlibrary-backend/internal/library/validation"
	"github.com/yungbote/medlibrary-backend/internal/services"
)

func newValidateCommand(opts *options) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Build the library and report every problem",
		Long: `Build the library the same way the server does and print every rejected
document, quality warning and dangling cross-reference.

The command fails when any document is rejected. With --strict it also fails
on warnings and dangling cross-references.`,
		Example: `  # Validate the embedded library
  contentctl validate

  # Validate a working copy and treat warnings as failures
  contentctl validate --dir ./content --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := services.NewLibraryService(opts.logger(), opts.libraryConfig(), nil, nil, nil, nil)
			res, err := lib.Reload(cmd.Context())
			if err != nil {
				return err
			}
			report := lib.Audit()
			out := cmd.OutOrStdout()

			for _, is := range report.Issues {
				c := warnColor
				if is.Severity == validation.SeverityError {
					c = errColor
				}
				c.Fprintf(out, "%-7s ", is.Severity)
				fmt.Fprintf(out, "%s [%s] %s", is.RecordID, is.Category, is.Message)
				if is.Source != "" {
					dimColor.Fprintf(out, " (%s)", is.Source)
				}
				fmt.Fprintln(out)
			}
			for _, d := range report.Dangling {
				warnColor.Fprintf(out, "%-7s ", "dangling")
				fmt.Fprintf(out, "%s -> %s (%s)\n", d.SourceID, d.TargetID, d.Relationship)
			}

			fmt.Fprintln(out)
			titleColor.Fprint(out, "Summary: ")
			fmt.Fprintf(out, "%d accepted, %d rejected, %d warnings, %d dangling\n",
				res.Records, res.Rejected, res.Warnings, res.Dangling)

			failed := res.Errors > 0 || res.Rejected > 0
			if strict && (res.Warnings > 0 || res.Dangling > 0) {
				failed = true
			}
			if failed {
				errColor.Fprintln(out, "FAIL")
				return ErrValidationFailed
			}
			okColor.Fprintln(out, "OK")
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on warnings and dangling cross-references too")
	return cmd
}

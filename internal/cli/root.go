// Package cli implements contentctl, the authoring tool for the content
// library.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
	"github.com/yungbote/medlibrary-backend/internal/library/corpus"
	"github.com/yungbote/medlibrary-backend/internal/library/manifest"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
	"github.com/yungbote/medlibrary-backend/internal/services"
)

var (
	// Version information, set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

// ErrValidationFailed is returned by validate when the library does not pass.
var ErrValidationFailed = errors.New("content validation failed")

type options struct {
	dir      string
	manifest string
	verbose  bool
	noColor  bool
}

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed)
	dimColor   = color.New(color.Faint)
)

// NewRootCommand creates the contentctl root command.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "contentctl",
		Short: "Validate, inspect and publish the medical content library",
		Long: `contentctl works on a content library: a manifest.yaml listing JSON or YAML
documents, each holding one educational record.

Without --dir it uses the library compiled into the binary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dir, "dir", "", "content directory holding the manifest (default: embedded library)")
	flags.StringVar(&opts.manifest, "manifest", manifest.DefaultName, "manifest file name inside the content directory")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log build details")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newShowCommand(opts))
	rootCmd.AddCommand(newRelatedCommand(opts))
	rootCmd.AddCommand(newTagsCommand(opts))
	rootCmd.AddCommand(newSearchCommand(opts))
	rootCmd.AddCommand(newMirrorCommand(opts))
	rootCmd.AddCommand(newGraphCommand(opts))
	rootCmd.AddCommand(newNotifyCommand(opts))

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "contentctl %s (%s)\n", Version, GitCommit)
		},
	}
}

func (o *options) logger() *logger.Logger {
	if !o.verbose {
		return logger.Nop()
	}
	log, err := logger.New("development")
	if err != nil {
		return logger.Nop()
	}
	return log
}

// libraryConfig serves every status: authors need to see drafts.
func (o *options) libraryConfig() services.LibraryConfig {
	source := services.SourceEmbedded
	if o.dir != "" {
		source = services.SourceDir
	}
	return services.LibraryConfig{
		Source:       source,
		FS:           corpus.Open(o.dir),
		ManifestName: o.manifest,
		VisibleStatuses: []string{
			string(content.StatusDraft),
			string(content.StatusReview),
			string(content.StatusPublished),
		},
		Instance: "contentctl",
		Lint:     true,
	}
}

func printRecordLine(w io.Writer, r *content.EducationalContent) {
	fmt.Fprintf(w, "%-40s %-10s %s", r.ID, r.Type, r.Name)
	if r.Status != content.StatusPublished {
		warnColor.Fprintf(w, " [%s]", r.Status)
	}
	fmt.Fprintln(w)
}

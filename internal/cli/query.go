package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/medlibrary-backend/internal/services"
)

func newShowCommand(opts *options) *cobra.Command {
	var tier string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a record, or one of its levels with --tier",
		Example: `  contentctl show condition-hypoglycemia
  contentctl show topic-teratogens --tier expert`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := loadLibrary(cmd, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if tier == "" {
				rec, err := lib.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				titleColor.Fprintln(out, rec.Name)
				fmt.Fprintf(out, "id:      %s\n", rec.ID)
				fmt.Fprintf(out, "type:    %s\n", rec.Type)
				fmt.Fprintf(out, "status:  %s (v%d)\n", rec.Status, rec.Version)
				fmt.Fprintf(out, "scheme:  %s\n", rec.LevelScheme)
				for _, t := range rec.Levels.Tiers() {
					fmt.Fprintf(out, "level %d: %s\n", t, rec.Levels[t].Summary)
				}
				return nil
			}

			view, err := lib.Level(cmd.Context(), args[0], tier)
			if err != nil {
				return err
			}
			if view.FellBack != nil {
				warnColor.Fprintf(out, "note: %s\n", view.FellBack)
			}
			titleColor.Fprintf(out, "%s (level %d)\n", view.Name, view.Served)
			fmt.Fprintln(out, view.Level.Summary)
			fmt.Fprintln(out)
			fmt.Fprintln(out, view.Level.Explanation)
			for _, kt := range view.Level.KeyTerms {
				fmt.Fprintf(out, "  • %s: %s\n", kt.Term, kt.Definition)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tier, "tier", "", "complexity tier: 1-5 or intermediate|advanced|expert|master")
	return cmd
}

func newRelatedCommand(opts *options) *cobra.Command {
	var relationship, targetType string
	cmd := &cobra.Command{
		Use:   "related <id>",
		Short: "Resolve the cross-references of a record",
		Example: `  contentctl related condition-hypoglycemia
  contentctl related condition-hypoglycemia --type process`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := services.ParseRelatedFilter(relationship, targetType)
			if err != nil {
				return err
			}
			lib, err := loadLibrary(cmd, opts)
			if err != nil {
				return err
			}
			res, err := lib.Related(cmd.Context(), args[0], filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range res {
				if r.Resolved() {
					okColor.Fprintf(out, "%-10s ", r.Relationship)
					fmt.Fprintf(out, "%s (%s)\n", r.TargetID, r.Record.Name)
					continue
				}
				errColor.Fprintf(out, "%-10s ", r.Relationship)
				fmt.Fprintf(out, "%s (dangling)\n", r.TargetID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&relationship, "relationship", "", "only parent|child|sibling|related|see-also references")
	cmd.Flags().StringVar(&targetType, "type", "", "only references to this content type")
	return cmd
}

func newTagsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <category> <value>",
		Short: "List records carrying a tag",
		Long: `List records carrying a tag. Categories are systems, topics, keywords,
clinicalRelevance and examRelevance (values usmle, nbme or shelf:<name>).`,
		Example: `  contentctl tags topics diabetes
  contentctl tags examRelevance usmle`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := loadLibrary(cmd, opts)
			if err != nil {
				return err
			}
			recs := lib.FindByTag(cmd.Context(), args[0], args[1])
			for _, r := range recs {
				printRecordLine(cmd.OutOrStdout(), r)
			}
			if len(recs) == 0 {
				dimColor.Fprintln(cmd.OutOrStdout(), "no matches")
			}
			return nil
		},
	}
}

func newSearchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find records by name, Spanish name or alternate name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := loadLibrary(cmd, opts)
			if err != nil {
				return err
			}
			recs := lib.SearchNames(cmd.Context(), strings.Join(args, " "))
			for _, r := range recs {
				printRecordLine(cmd.OutOrStdout(), r)
			}
			if len(recs) == 0 {
				dimColor.Fprintln(cmd.OutOrStdout(), "no matches")
			}
			return nil
		},
	}
}

func loadLibrary(cmd *cobra.Command, opts *options) (services.LibraryService, error) {
	lib := services.NewLibraryService(opts.logger(), opts.libraryConfig(), nil, nil, nil, nil)
	if _, err := lib.Reload(cmd.Context()); err != nil {
		return nil, err
	}
	return lib, nil
}

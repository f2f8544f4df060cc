package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	projectscmd "github.com/goliatone/go-portfolio/internal/commands/projects"
	"github.com/goliatone/go-portfolio/internal/markdown"
)

func newImportCmd() *cobra.Command {
	var (
		pattern   string
		recursive bool
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Create or update projects from Markdown files with front matter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := buildModule(cmd)
			if err != nil {
				return err
			}
			defer module.Close()

			result := &markdown.ImportResult{}
			execErr := module.Container().Commands().Import.Execute(cmd.Context(), projectscmd.ImportProjectsCommand{
				Directory: args[0],
				Pattern:   pattern,
				Recursive: recursive,
				DryRun:    dryRun,
				Result:    result,
			})

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "created: %d, updated: %d, skipped: %d, failed: %d\n",
				len(result.Created), len(result.Updated), len(result.Skipped), len(result.Errors))
			for _, err := range result.Errors {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", err)
			}
			return execErr
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "*.md", "glob applied to file names")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into sub directories")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	return cmd
}

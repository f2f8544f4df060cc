package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	projectscmd "github.com/goliatone/go-portfolio/internal/commands/projects"
	"github.com/goliatone/go-portfolio/internal/media"
)

func newUploadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uploads",
		Short: "Manage stored uploads",
	}
	cmd.AddCommand(newUploadsCleanupCmd())
	return cmd
}

func newUploadsCleanupCmd() *cobra.Command {
	var (
		dryRun bool
		minAge time.Duration
	)
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove uploads no project references",
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := buildModule(cmd)
			if err != nil {
				return err
			}
			defer module.Close()

			result := &media.PruneResult{}
			msg := projectscmd.CleanupUploadsCommand{
				DryRun: dryRun,
				Result: result,
			}
			if cmd.Flags().Changed("min-age") {
				msg.MinAge = &minAge
			}
			if err := module.Container().Commands().Cleanup.Execute(cmd.Context(), msg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			verb := "removed"
			if result.DryRun {
				verb = "would remove"
			}
			for _, path := range result.Removed {
				_, _ = fmt.Fprintf(out, "%s %s\n", verb, path)
			}
			_, _ = fmt.Fprintf(out, "%s %d file(s), kept %d, skipped %d recent\n", verb, len(result.Removed), result.Kept, result.Recent)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list files without deleting them")
	cmd.Flags().DurationVar(&minAge, "min-age", projectscmd.DefaultCleanupMinAge, "only remove files older than this")
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-portfolio/internal/storage"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if (storage.Config{Driver: cfg.Database.Driver}).NormalizedDriver() == storage.DriverMemory {
				_, _ = fmt.Fprintln(out, "memory driver selected; nothing to migrate")
				return nil
			}
			cfg.Database.AutoMigrate = true
			module, err := moduleBuilder(cfg)
			if err != nil {
				return err
			}
			defer module.Close()

			applied := module.Container().AppliedMigrations()
			if len(applied) == 0 {
				_, _ = fmt.Fprintln(out, "database is up to date")
				return nil
			}
			for _, version := range applied {
				_, _ = fmt.Fprintf(out, "applied %s\n", version)
			}
			return nil
		},
	}
}

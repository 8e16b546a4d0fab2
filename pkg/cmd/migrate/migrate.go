package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bluess57/gt7core/log"
	"github.com/bluess57/gt7core/pkg/config"
	"github.com/bluess57/gt7core/pkg/storage"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "manages the lap archive schema",
	}
	cmd.AddCommand(newUpCmd())
	cmd.AddCommand(newDownCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "applies all pending archive migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(func(a *storage.Archive) error {
				if err := a.MigrateUp(); err != nil {
					return err
				}
				log.Info("archive schema is up to date")
				return nil
			})
		},
	}
}

func newDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "rolls back the most recent archive migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(func(a *storage.Archive) error {
				return a.MigrateDown()
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "prints the current archive schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(func(a *storage.Archive) error {
				version, dirty, err := a.MigrateVersion()
				if err != nil {
					return err
				}
				fmt.Printf("version %d (dirty: %v)\n", version, dirty)
				return nil
			})
		},
	}
}

func withArchive(fn func(a *storage.Archive) error) error {
	archive, err := storage.OpenArchive(config.ArchivePath,
		storage.WithoutAutoMigrate())
	if err != nil {
		return err
	}
	defer archive.Close() //nolint:errcheck // closing on exit
	return fn(archive)
}

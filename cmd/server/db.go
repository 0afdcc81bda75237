package main

import (
	"fmt"

	"github.com/spf13/cobra"

	dbfs "github.com/sagniknandigit/internship-management/db"
	"github.com/sagniknandigit/internship-management/internal/db"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations and load seed internships",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			d, err := db.New(ctx, cfg.DatabasePath, logger)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer d.Close()

			if err := db.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("database initialized", "path", cfg.DatabasePath)
			return nil
		},
	}
	return cmd
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [dest]",
		Short: "Write a consistent copy of the database",
		Long:  "Write a consistent copy of the database to dest (default <database_path>.bak). The server may keep running.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			dest := cfg.DatabasePath + ".bak"
			if len(args) == 1 {
				dest = args[0]
			}
			ctx := cmd.Context()
			d, err := db.New(ctx, cfg.DatabasePath, logger)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer d.Close()

			if err := db.Backup(ctx, d, dest); err != nil {
				return err
			}
			logger.Info("database backup completed", "dest", dest)
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [src]",
		Short: "Replace the database with a backup",
		Long:  "Replace the database file with the backup at src (default <database_path>.bak). Stop the server first.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			src := cfg.DatabasePath + ".bak"
			if len(args) == 1 {
				src = args[0]
			}
			if err := db.Restore(src, cfg.DatabasePath); err != nil {
				return err
			}
			logger.Info("database restore completed", "src", src, "target", cfg.DatabasePath)
			return nil
		},
	}
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Lokesh1028/agentjobs/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withMigrator(func(m *db.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printVersion(m)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration, or all of them with --all",
	RunE: func(cmd *cobra.Command, _ []string) error {
		all, _ := cmd.Flags().GetBool("all")
		return withMigrator(func(m *db.Migrator) error {
			rollback := func() error { return m.Steps(-1) }
			if all {
				rollback = m.Down
			}
			if err := rollback(); err != nil {
				return err
			}
			return printVersion(m)
		})
	},
}

var migrateForceCmd = &cobra.Command{
	Use:   "force VERSION",
	Short: "Mark the schema as VERSION without running migrations, clearing a dirty state",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return withMigrator(func(m *db.Migrator) error {
			if err := m.Force(v); err != nil {
				return err
			}
			return printVersion(m)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withMigrator(printVersion)
	},
}

func init() {
	migrateDownCmd.Flags().Bool("all", false, "roll back every migration")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd, migrateForceCmd)
	rootCmd.AddCommand(migrateCmd)
}

func withMigrator(fn func(*db.Migrator) error) error {
	m, err := db.NewMigrator(loadConfig().DatabaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func printVersion(m *db.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	return printJSON(map[string]any{"version": v, "dirty": dirty})
}

package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/campusgate/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSchema(cmd, func(sqlDB *sql.DB) error {
			return db.Migrate(cmd.Context(), sqlDB)
		})
	},
}

var migrateDownSteps int

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSchema(cmd, func(sqlDB *sql.DB) error {
			return db.MigrateDown(cmd.Context(), sqlDB, migrateDownSteps)
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	migrateDownCmd.Flags().IntVar(&migrateDownSteps, "steps", 1, "number of migrations to roll back; 0 rolls back all")
}

func withSchema(cmd *cobra.Command, fn func(*sql.DB) error) error {
	sqlDB, err := db.Open(cmd.Context(), db.Config{Path: cfg.DB.Path, Env: cfg.Env, SkipMigrate: true})
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := fn(sqlDB); err != nil {
		return err
	}

	version, dirty, ok, err := db.SchemaVersion(sqlDB)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "schema: empty")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema: version %d (dirty=%v)\n", version, dirty)
	return nil
}

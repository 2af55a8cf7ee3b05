package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

const defaultMigrationsDir = "db/migrations"

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", defaultMigrationsDir, "sql migrations directory")
}

func runMigration(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	command := "up"
	if migrateRollback {
		command = "down"
	}

	if err := applyMigrations(context.Background(), cfg.Database.Source, migrateDir, command); err != nil {
		log.Fatalf("%v", err)
	}

	return nil
}

// applyMigrations runs goose against the given DSN. The server start path
// uses it with "up" so a fresh deployment gets its schema without a
// separate migrate invocation.
func applyMigrations(ctx context.Context, dsn, dir, command string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()

	goose.SetTableName("schema_migrations")

	if err := goose.RunContext(ctx, command, db, dir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	return nil
}

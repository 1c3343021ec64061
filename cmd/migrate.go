/*
 * Copyright 2025 Humaid Alqasimi
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"github.com/ENO0123/hyoe-medical-records-system/db"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const migrationsDir = "db/migrations"

var CmdMigrate = &cli.Command{
	Name:  "migrate",
	Usage: "Database migration commands",
	Flags: []cli.Flag{databaseURLFlag},
	Commands: []*cli.Command{
		{
			Name:   "up",
			Usage:  "Run all pending migrations",
			Action: migrateUp,
		},
		{
			Name:   "down",
			Usage:  "Roll back the last migration",
			Action: migrateDown,
		},
		{
			Name:   "status",
			Usage:  "Show migration status",
			Action: migrateStatus,
		},
		{
			Name:      "create",
			Usage:     "Create a new SQL migration file",
			ArgsUsage: "<name>",
			Action:    migrateCreate,
		},
		{
			Name:   "version",
			Usage:  "Print the current version of the database",
			Action: migrateVersion,
		},
	},
}

// withMigrations opens a database/sql handle for goose and runs fn with a
// provider over the embedded migrations.
func withMigrations(ctx context.Context, cmd *cli.Command, fn func(context.Context, *goose.Provider) error) (err error) {
	databaseURL := cmd.String("database-url")
	if databaseURL == "" {
		return errDatabaseURLRequired
	}

	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(sqlDB))

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	migrations, err := fs.Sub(db.GetEmbeddedMigrations(), "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	return fn(ctx, provider)
}

func migrateUp(ctx context.Context, cmd *cli.Command) error {
	return withMigrations(ctx, cmd, func(ctx context.Context, p *goose.Provider) error {
		results, err := p.Up(ctx)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		for _, r := range results {
			appLogger.Info("Applied migration", "version", r.Source.Version, "duration", r.Duration.Round(time.Millisecond))
		}

		appLogger.Info("Migrations completed successfully", "applied", len(results))

		return nil
	})
}

func migrateDown(ctx context.Context, cmd *cli.Command) error {
	return withMigrations(ctx, cmd, func(ctx context.Context, p *goose.Provider) error {
		result, err := p.Down(ctx)
		if err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}

		appLogger.Info("Migration rolled back successfully", "version", result.Source.Version)

		return nil
	})
}

func migrateStatus(ctx context.Context, cmd *cli.Command) error {
	return withMigrations(ctx, cmd, func(ctx context.Context, p *goose.Provider) error {
		statuses, err := p.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}

		return writeMigrationStatus(os.Stdout, statuses)
	})
}

func writeMigrationStatus(w io.Writer, statuses []*goose.MigrationStatus) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")

	for _, st := range statuses {
		applied := "-"
		if st.State == goose.StateApplied && !st.AppliedAt.IsZero() {
			applied = st.AppliedAt.Local().Format("2006-01-02 15:04:05")
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", st.Source.Version, st.State, applied, st.Source.Path)
	}

	return tw.Flush()
}

func migrateVersion(ctx context.Context, cmd *cli.Command) error {
	return withMigrations(ctx, cmd, func(ctx context.Context, p *goose.Provider) error {
		version, err := p.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to get database version: %w", err)
		}

		fmt.Printf("Database version: %d\n", version)

		return nil
	})
}

// migrateCreate writes into the source tree, so it only makes sense from a
// checkout.
func migrateCreate(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 1 {
		return errMigrationNameRequired
	}

	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create migrations directory: %w", err)
	}

	if err := goose.Create(nil, migrationsDir, args.First(), "sql"); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	appLogger.Info("Created new migration", "dir", migrationsDir)

	return nil
}

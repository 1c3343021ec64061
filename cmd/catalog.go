/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/ENO0123/hyoe-medical-records-system/db"
)

var CmdCatalog = &cli.Command{
	Name:  "catalog",
	Usage: "Built-in test item catalog",
	Commands: []*cli.Command{
		{
			Name:   "sync",
			Usage:  "Upsert the built-in catalog into the database",
			Flags:  []cli.Flag{databaseURLFlag},
			Action: catalogSync,
		},
		{
			Name:  "list",
			Usage: "Print the built-in catalog",
			Action: func(_ context.Context, _ *cli.Command) error {
				return writeCatalog(os.Stdout, db.DefaultCatalog())
			},
		},
	},
}

func catalogSync(ctx context.Context, cmd *cli.Command) error {
	// withDatabase runs SyncSchema, which upserts the catalog.
	return withDatabase(ctx, cmd, func(ctx context.Context) error {
		items, err := db.ListTestItems(ctx)
		if err != nil {
			return err
		}

		appLogger.Info("Test item catalog synced", "builtin", len(db.DefaultCatalog()), "total", len(items))

		return nil
	})
}

func writeCatalog(w io.Writer, items []db.CatalogItem) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "CODE\tNAME\tCATEGORY\tUNIT\tORDER")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", item.Code, item.Name, item.Category, item.Unit, item.Order)
	}

	return tw.Flush()
}

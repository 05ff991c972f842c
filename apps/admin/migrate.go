package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-admin/storage/database"
)

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := migrateFunc(cmd.Context(), cli.db); err != nil {
				return err
			}
			fmt.Fprintln(cli.out, "Database migrated")
			return nil
		},
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/sprakportal/backend/core"
	"github.com/sprakportal/backend/storage/database"
)

func newMigrateCmd(conf *core.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database if needed and apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.CreateIfNotExist(conf); err != nil {
				return err
			}
			db, err := openDB(conf)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db.DB, conf); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		},
	}
}

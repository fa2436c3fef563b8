package main

import (
	"fmt"

	"github.com/go-arcade/agileboard/pkg/database"
	"github.com/spf13/cobra"

	_ "github.com/go-arcade/agileboard/internal/engine/model"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if err := database.AutoMigrate(e.manager.DB()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables\n", len(database.GetRegisteredModels()))
		return err
	},
}

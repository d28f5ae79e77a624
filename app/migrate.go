package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GoSiteSettings/GoSiteSettings/internal/db"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(_ *cobra.Command, _ []string) error {
		gdb, err := openDB()
		if err != nil {
			return err
		}

		defer func() { _ = db.Close(gdb) }()

		log.Info().Str("engine", cfg.DB.Engine).Msg("database migrated")

		return nil
	},
}

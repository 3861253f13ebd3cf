package main

import (
	"github.com/lmaotrigine/indieauth/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.New()
			setupLogger(cfg)

			log.Info().Str("driver", cfg.GetDatabaseDriver()).Msgf("%s migrator starting up", applicationIdentifier(cfg))
			db, err := openDatabase(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer db.Close()

			log.Info().Msg("migrations complete")
			return nil
		},
	}
}

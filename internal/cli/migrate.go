package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"student-analyzer/internal/config"
	"student-analyzer/internal/infra/postgres"
	"student-analyzer/internal/logger"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger.Init(cfg.Logging.Level, cfg.Logging.Format)
			return runMigrations(cmd.Context(), cfg)
		},
	}
}

func runMigrations(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	db := postgres.OpenBun(cfg.Postgres.URL)
	defer db.Close()

	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log := logger.Get().With().Str("component", "migrate").Logger()
	log.Info().Strs("applied", applied).Msg("migrations applied")
	return nil
}

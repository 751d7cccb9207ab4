package migrate

import (
	"context"
	"fmt"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

// MaybeRunDev applies pending migrations on boot when running in dev with
// POS_AUTO_MIGRATE set. SQLite clients already carry the embedded schema.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir, "driver": client.Driver()})
	if client.IsSQLite() {
		logg.Info(ctx, "migrate.skipped_sqlite")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	runner, err := NewRunner(sqlDB, DefaultDir)
	if err != nil {
		return err
	}
	applied, err := runner.Exec(ctx, "up")
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "applied", applied), "migrate.dev_autorun_completed")
	return nil
}

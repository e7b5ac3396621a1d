package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gearshare-backend/pkg/config"
	"github.com/angelmondragon/gearshare-backend/pkg/db"
	"github.com/angelmondragon/gearshare-backend/pkg/db/models"
	"github.com/angelmondragon/gearshare-backend/pkg/logger"
)

// MaybeRunDev migrates the schema at startup in dev when the AutoMigrate flag
// is set. Postgres runs the goose migrations; sqlite gets a GORM schema sync
// since the SQL files use Postgres types.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()})

	if cfg.DB.IsSQLite() {
		logg.Info(ctx, "syncing sqlite schema (dev auto-run)")
		if err := AutoMigrateModels(client); err != nil {
			return err
		}
		logg.Info(ctx, "sqlite schema synced")
		return nil
	}

	sqlDB, err := client.SQLDB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "running goose migrations (dev auto-run)")
	if err := Run(ctx, sqlDB, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}

// AutoMigrateModels creates the tables for every model through GORM.
func AutoMigrateModels(client *db.Client) error {
	if err := client.DB().AutoMigrate(&models.User{}, &models.Service{}, &models.Booking{}); err != nil {
		return fmt.Errorf("auto migrate models: %w", err)
	}
	return nil
}

package db

import (
	"context"
	"fmt"

	"github.com/tripnest/tripnest-backend/pkg/config"
	"github.com/tripnest/tripnest-backend/pkg/db/models"
	"github.com/tripnest/tripnest-backend/pkg/logger"
)

// MaybeAutoMigrate syncs the schema automatically when running in dev mode
// with the feature flag enabled. Production schemas are managed out of band.
func MaybeAutoMigrate(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	logg.Info(ctx, "running schema auto-migration (dev)")
	if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrating schema: %w", err)
	}
	logg.Info(ctx, "schema auto-migration completed")
	return nil
}

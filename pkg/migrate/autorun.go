package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/rentflow-backend/pkg/config"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot in dev when
// RENTFLOW_AUTO_MIGRATE is set.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	source := Embedded()
	if err := ValidateFS(source); err != nil {
		return fmt.Errorf("embedded migrations invalid: %w", err)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithField(ctx, "migrations", "embedded")
	logg.Info(ctx, "migrate.autorun.start")
	if err := Run(ctx, sqlDB, source, "up", logg); err != nil {
		return err
	}
	logg.Info(ctx, "migrate.autorun.done")
	return nil
}

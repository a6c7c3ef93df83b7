package migrate

import (
	"context"
	"fmt"

	"github.com/teslo-shop/storefront/pkg/config"
	"github.com/teslo-shop/storefront/pkg/db"
	"github.com/teslo-shop/storefront/pkg/logger"
)

// MaybeRun applies the embedded migrations on boot when the sql storage driver is
// active and STOREFRONT_DB_AUTO_MIGRATE is set. Dev environments always migrate.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil || !(cfg.DB.AutoMigrate || cfg.App.IsDev()) {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": cfg.DB.Driver})
	logg.Info(ctx, "running goose migrations on boot")

	if err := Run(ctx, sqlDB, cfg.DB.Driver, EmbeddedDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}

// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	propertystore "github.com/shelterhub/shelterhub/internal/app/store/properties"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// ShelterHub seeds the alarm property so operators see the flag in the
// properties list before the bot first toggles it.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	props := propertystore.New(deps.MongoDatabase)
	if _, ok, err := props.Get(ctx, models.PropAlarmEnabled); err != nil {
		return err
	} else if !ok {
		if _, err := props.Set(ctx, models.PropAlarmEnabled, "false"); err != nil {
			return err
		}
		logger.Info("seeded alarm property", zap.String("name", models.PropAlarmEnabled))
	}
	return nil
}

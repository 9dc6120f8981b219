// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/meethub/internal/app/system/indexes"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnsureSchema creates the indexes the stores rely on, notably the unique
// indexes that back duplicate-user detection.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.MongoDatabase)
}

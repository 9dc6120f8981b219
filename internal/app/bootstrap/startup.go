// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	meetingstore "github.com/dalemusser/meethub/internal/app/store/meetings"
	"github.com/dalemusser/meethub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// ownerSweep is created in Startup and stopped in Shutdown.
var ownerSweep *workers.OwnerSweep

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. MeetHub
// uses it to launch the owner-reference sweep that reconciles meetings left
// unreferenced by an interrupted create.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ownerSweep = workers.NewOwnerSweep(meetingstore.New(deps.MongoDatabase), logger, appCfg.OwnerSweepInterval)
	ownerSweep.Start()
	return nil
}

// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/meethub/internal/app/features/health"
	meetingsfeature "github.com/dalemusser/meethub/internal/app/features/meetings"
	uploadsfeature "github.com/dalemusser/meethub/internal/app/features/uploads"
	usersfeature "github.com/dalemusser/meethub/internal/app/features/users"
	"github.com/dalemusser/meethub/internal/app/system/auth"
	"github.com/dalemusser/meethub/internal/app/system/ratelimit"
	uploadstore "github.com/dalemusser/meethub/internal/app/system/uploads"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. MeetHub builds the token manager and
// upload store, applies bearer-token middleware globally, and mounts the
// JSON feature routers plus the file-serving route.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokenManager(appCfg.TokenKey, appCfg.TokenTTL, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	store, err := uploadstore.New(appCfg.UploadDir, logger)
	if err != nil {
		logger.Error("upload store init failed", zap.Error(err))
		return nil, err
	}

	limiter := ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateWindow)

	r := chi.NewRouter()

	// Global auth middleware: loads the bearer identity into context when a
	// valid token is present. Invalid or missing tokens leave the request
	// anonymous; per-route RequireSignedIn enforces authentication.
	r.Use(tokens.LoadBearerUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Users, registration, and login
	usersHandler := usersfeature.NewHandler(deps.MongoDatabase, tokens, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler, limiter))
	r.Mount("/api/login", usersfeature.LoginRoutes(usersHandler, limiter))
	r.Mount("/api/me", usersfeature.MeRoutes(usersHandler))

	// Meetings and comments
	meetingsHandler := meetingsfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/api/meetings", meetingsfeature.Routes(meetingsHandler))

	// Image uploads and stored-file retrieval
	uploadsHandler := uploadsfeature.NewHandler(store, logger)
	r.Mount("/api/uploads", uploadsfeature.Routes(uploadsHandler))
	r.Mount(appCfg.UploadURL, uploadsfeature.FileRoutes(uploadsHandler))

	return r, nil
}

// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for MeetHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, token_key, etc.
//   - Environment variables: MEETHUB_MONGO_URI, MEETHUB_TOKEN_KEY, etc.
//   - Command-line flags: --mongo_uri, --token_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "meethub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer token configuration
	{Name: "token_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Bearer token signing key (must be strong in production)"},
	{Name: "token_ttl", Default: "2h", Desc: "Bearer token lifetime (e.g., 2h, 30m)"},

	// Upload storage configuration
	{Name: "upload_dir", Default: "./uploads", Desc: "Local directory for uploaded images"},
	{Name: "upload_url", Default: "/files", Desc: "URL prefix for serving stored files"},

	// Rate limiting for login/registration
	{Name: "login_rate_limit", Default: 20, Desc: "Max login/registration attempts per window per client IP"},
	{Name: "login_rate_window", Default: "1m", Desc: "Rate-limit window (e.g., 1m, 30s)"},

	// Background reconciliation
	{Name: "owner_sweep_interval", Default: "5m", Desc: "How often unreferenced meetings are repaired"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MEETHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TokenKey: appValues.String("token_key"),
		TokenTTL: appValues.Duration("token_ttl", 2*time.Hour),

		UploadDir: appValues.String("upload_dir"),
		UploadURL: appValues.String("upload_url"),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", time.Minute),

		OwnerSweepInterval: appValues.Duration("owner_sweep_interval", 5*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// MeetHub validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and rejects an empty token key so
// the app never starts signing with a blank secret.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.TokenKey == "" {
		return fmt.Errorf("token_key must be set")
	}
	if appCfg.UploadDir == "" {
		return fmt.Errorf("upload_dir must be set")
	}
	if appCfg.LoginRateLimit <= 0 {
		return fmt.Errorf("login_rate_limit must be positive, got %d", appCfg.LoginRateLimit)
	}

	return nil
}

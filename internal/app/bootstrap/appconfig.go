// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, request limits). AppConfig is everything specific to
// MeetHub: the Mongo connection, token signing, upload storage, and the
// knobs for rate limiting and the owner-reference sweep.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Bearer token configuration
	TokenKey string        // Secret key for signing bearer tokens (must be strong in production)
	TokenTTL time.Duration // Token lifetime (e.g., 2h)

	// Upload storage configuration
	UploadDir string // Local directory uploads are stored in
	UploadURL string // URL prefix for serving stored files (e.g., "/files")

	// Rate limiting for login and registration
	LoginRateLimit  int           // Max attempts per window per client IP
	LoginRateWindow time.Duration // Window the limit applies over

	// Background reconciliation
	OwnerSweepInterval time.Duration // How often unreferenced meetings are repaired
}

// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP/HTTPS ports,
// TLS, logging level, CORS, body limits). AppConfig is everything specific
// to this application: the MongoDB connection, session cookies, and the
// bootstrap admin account.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: coursedeck-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Bootstrap admin: created (or promoted) on startup so a fresh deploy
	// always has one admin who can create products and users.
	AdminEmail    string
	AdminPassword string
}

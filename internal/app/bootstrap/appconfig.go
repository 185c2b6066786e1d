// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, CORS, body size limits). AppConfig is everything specific
// to EduPath: database connection strings, session settings, ledger
// defaults, and audit-log behavior.
//
// The struct is passed to most lifecycle hooks, so any configuration
// needed during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: edupath-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Audit logging mode: 'all' (db+log), 'db', 'log', or 'off'
	AuditLogMode string

	// Login brute-force limits: attempts per IP and per email account
	// within their windows.
	LoginIPLimit     int
	LoginIPWindow    time.Duration
	LoginEmailLimit  int
	LoginEmailWindow time.Duration

	// Ledger configuration
	DefaultCommissionRate float64 // Org-wide commission rate, applied when a staff user has no override
	DefaultCurrency       string  // Currency for invoices raised without one

	// Mongo transaction support. Requires a replica set; standalone dev
	// servers should leave this off.
	UseTransactions bool

	// Base URL the service is reachable at (used in log output only).
	BaseURL string
}

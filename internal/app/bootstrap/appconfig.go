// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging
// level, CORS, body limits). AppConfig holds everything specific to the
// announcements service. It is passed to most lifecycle hooks.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// DisplayTimezone is the IANA zone offset-less announcement dates are
	// read in (e.g., "America/Chicago").
	DisplayTimezone string

	// SeedTeachers are usernames inserted into teachers on startup when
	// missing. Handy for development; leave empty in production.
	SeedTeachers []string

	// SanitizeMessages strips unsafe HTML from announcement messages.
	SanitizeMessages bool

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// Store call timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
}

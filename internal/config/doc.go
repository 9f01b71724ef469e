// Package config resolves and validates the application's configuration.
//
// Settings are read from process environment variables and an optional
// KEY=value override file, overlaid on per-environment defaults taken from a
// static registry of options, coerced to their declared types and validated in
// a single pass. Every problem found is collected into one ValidationReport so
// that a misconfigured deployment is reported in full rather than one error at
// a time.
//
// The active environment (development, testing or production) is chosen by the
// APP_ENV variable. In production any validation problem is fatal; in
// development and testing problems are logged as warnings and missing values
// are replaced by sentinels that fail loudly when used.
//
// The Manager runs resolution once at startup and exposes the resulting
// immutable ResolvedConfig. Domain views (DatabaseConfig, CacheConfig,
// SecurityConfig, APIConfig, LoggingConfig) give each subsystem typed access
// to the options it needs and nothing else.
package config

package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DatabaseConfig exposes the database options.
type DatabaseConfig struct {
	c *ResolvedConfig
}

// NewDatabaseConfig returns the database view of a resolved Manager.
func NewDatabaseConfig(m *Manager) (DatabaseConfig, error) {
	c, err := m.Snapshot()
	if err != nil {
		return DatabaseConfig{}, err
	}
	return DatabaseConfig{c: c}, nil
}

// URL returns a copy of the database URL.
func (d DatabaseConfig) URL() *url.URL { return d.c.URL(KeyDatabaseURL) }

// ConnectionString returns the database URL as a string.
func (d DatabaseConfig) ConnectionString() string {
	if u := d.URL(); u != nil {
		return u.String()
	}
	return ""
}

// PoolSize returns the maximum number of pooled connections.
func (d DatabaseConfig) PoolSize() int { return d.c.Int(KeyDBPoolSize) }

// PoolTimeout returns how long to wait for a connection.
func (d DatabaseConfig) PoolTimeout() time.Duration { return d.c.Duration(KeyDBPoolTimeout) }

// PoolRecycle returns the maximum lifetime of a pooled connection.
func (d DatabaseConfig) PoolRecycle() time.Duration { return d.c.Duration(KeyDBPoolRecycle) }

// RecordQueries reports whether executed queries are recorded.
func (d DatabaseConfig) RecordQueries() bool { return d.c.Bool(KeyDBRecordQueries) }

// IsPlaceholder reports whether the database URL is a sentinel.
func (d DatabaseConfig) IsPlaceholder() bool { return d.c.IsPlaceholder(KeyDatabaseURL) }

// IsSQLite reports whether the database URL uses a sqlite scheme.
func (d DatabaseConfig) IsSQLite() bool {
	u := d.URL()
	return u != nil && strings.HasPrefix(strings.ToLower(u.Scheme), "sqlite")
}

// PoolConfig builds a pgx pool configuration from the database options. It
// returns ErrNotPostgres for non-PostgreSQL URLs.
func (d DatabaseConfig) PoolConfig() (*pgxpool.Config, error) {
	u := d.URL()
	if u == nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return nil, ErrNotPostgres
	}

	poolCfg, err := pgxpool.ParseConfig(u.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	poolCfg.MaxConns = int32(d.PoolSize())
	poolCfg.MaxConnLifetime = d.PoolRecycle()
	poolCfg.ConnConfig.ConnectTimeout = d.PoolTimeout()
	return poolCfg, nil
}

// CacheConfig exposes the cache options.
type CacheConfig struct {
	c *ResolvedConfig
}

// NewCacheConfig returns the cache view of a resolved Manager.
func NewCacheConfig(m *Manager) (CacheConfig, error) {
	c, err := m.Snapshot()
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{c: c}, nil
}

// Type returns the cache backend: simple, redis or null.
func (cc CacheConfig) Type() string { return cc.c.String(KeyCacheType) }

// RedisURL returns a copy of the Redis URL.
func (cc CacheConfig) RedisURL() *url.URL { return cc.c.URL(KeyRedisURL) }

// DefaultTimeout returns the default cache entry lifetime.
func (cc CacheConfig) DefaultTimeout() time.Duration { return cc.c.Duration(KeyCacheTimeout) }

// KeyPrefix returns the prefix applied to cache keys.
func (cc CacheConfig) KeyPrefix() string { return cc.c.String(KeyCacheKeyPrefix) }

// Key namespaces name with the configured prefix.
func (cc CacheConfig) Key(name string) string {
	return cc.KeyPrefix() + name
}

// SecurityConfig exposes secrets and token settings.
type SecurityConfig struct {
	c *ResolvedConfig
}

// NewSecurityConfig returns the security view of a resolved Manager.
func NewSecurityConfig(m *Manager) (SecurityConfig, error) {
	c, err := m.Snapshot()
	if err != nil {
		return SecurityConfig{}, err
	}
	return SecurityConfig{c: c}, nil
}

// SecretKey returns the application secret. Outside production it may be a
// placeholder; see IsPlaceholder.
func (s SecurityConfig) SecretKey() string { return s.c.String(KeySecretKey) }

// JWTSecretKey returns the token signing secret, falling back to SecretKey.
func (s SecurityConfig) JWTSecretKey() string {
	if s.c.IsSet(KeyJWTSecretKey) {
		return s.c.String(KeyJWTSecretKey)
	}
	return s.SecretKey()
}

// IsPlaceholder reports whether the signing secret is a sentinel.
func (s SecurityConfig) IsPlaceholder() bool {
	if s.c.IsSet(KeyJWTSecretKey) {
		return s.c.IsPlaceholder(KeyJWTSecretKey)
	}
	return s.c.IsPlaceholder(KeySecretKey)
}

// SigningMethod returns the configured HMAC signing method.
func (s SecurityConfig) SigningMethod() jwt.SigningMethod {
	return jwt.GetSigningMethod(s.c.String(KeyJWTAlgorithm))
}

// AccessTokenTTL returns the access token lifetime.
func (s SecurityConfig) AccessTokenTTL() time.Duration { return s.c.Duration(KeyJWTAccessExpires) }

// RefreshTokenTTL returns the refresh token lifetime.
func (s SecurityConfig) RefreshTokenTTL() time.Duration { return s.c.Duration(KeyJWTRefreshExpires) }

// PasswordCost returns the bcrypt cost.
func (s SecurityConfig) PasswordCost() int { return s.c.Int(KeyBcryptCost) }

// CSRFEnabled reports whether CSRF protection is on.
func (s SecurityConfig) CSRFEnabled() bool { return s.c.Bool(KeyCSRFEnabled) }

// ForceHTTPS reports whether plain HTTP is redirected to HTTPS.
func (s SecurityConfig) ForceHTTPS() bool { return s.c.Bool(KeyForceHTTPS) }

// APIConfig exposes the HTTP API options.
type APIConfig struct {
	c *ResolvedConfig
}

// NewAPIConfig returns the API view of a resolved Manager.
func NewAPIConfig(m *Manager) (APIConfig, error) {
	c, err := m.Snapshot()
	if err != nil {
		return APIConfig{}, err
	}
	return APIConfig{c: c}, nil
}

// Port returns the HTTP listen port.
func (a APIConfig) Port() int { return a.c.Int(KeyServerPort) }

// Version returns the active API version.
func (a APIConfig) Version() string { return a.c.String(KeyAPIVersion) }

// DocsEnabled reports whether API documentation is served.
func (a APIConfig) DocsEnabled() bool { return a.c.Bool(KeyAPIDocsEnabled) }

// CORSOrigins returns a copy of the allowed CORS origins.
func (a APIConfig) CORSOrigins() []string { return a.c.List(KeyCORSOrigins) }

// MaxContentLength returns the maximum request body size in bytes.
func (a APIConfig) MaxContentLength() int64 { return int64(a.c.Int(KeyMaxContentLength)) }

// UploadFolder returns the directory for uploaded files.
func (a APIConfig) UploadFolder() string { return a.c.String(KeyUploadFolder) }

// AllowedExtensions returns a copy of the accepted upload extensions.
func (a APIConfig) AllowedExtensions() []string { return a.c.List(KeyAllowedExtensions) }

// Addr returns the listen address for the configured port.
func (a APIConfig) Addr() string {
	return net.JoinHostPort("", strconv.Itoa(a.Port()))
}

// RateLimit returns the parsed default rate limit.
func (a APIConfig) RateLimit() (RateLimit, error) {
	return ParseRateLimit(a.c.String(KeyAPIRateLimit))
}

// AllowsOrigin reports whether origin is in the CORS allow list.
func (a APIConfig) AllowsOrigin(origin string) bool {
	return slices.Contains(a.c.List(KeyCORSOrigins), origin)
}

// AllowsExtension reports whether filename has an allowed upload extension.
func (a APIConfig) AllowsExtension(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return ext != "" && slices.Contains(a.c.List(KeyAllowedExtensions), ext)
}

// RateLimit is a request budget per period, e.g. 100 per hour.
type RateLimit struct {
	Requests int
	Period   time.Duration
}

var ratePeriods = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseRateLimit parses "<n> per <second|minute|hour|day>".
func ParseRateLimit(s string) (RateLimit, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) != 3 || fields[1] != "per" {
		return RateLimit{}, fmt.Errorf("invalid rate limit %q", s)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return RateLimit{}, fmt.Errorf("invalid rate limit %q: request count must be a positive integer", s)
	}
	period, ok := ratePeriods[fields[2]]
	if !ok {
		return RateLimit{}, fmt.Errorf("invalid rate limit %q: unknown period %q", s, fields[2])
	}
	return RateLimit{Requests: n, Period: period}, nil
}

// LoggingConfig exposes the logging options.
type LoggingConfig struct {
	c *ResolvedConfig
}

// NewLoggingConfig returns the logging view of a resolved Manager.
func NewLoggingConfig(m *Manager) (LoggingConfig, error) {
	c, err := m.Snapshot()
	if err != nil {
		return LoggingConfig{}, err
	}
	return LoggingConfig{c: c}, nil
}

// LevelName returns LOG_LEVEL as configured.
func (l LoggingConfig) LevelName() string { return l.c.String(KeyLogLevel) }

// Structured reports whether log records are JSON.
func (l LoggingConfig) Structured() bool { return l.c.Bool(KeyStructuredLogging) }

// File returns the log file path, or "" for stdout.
func (l LoggingConfig) File() string { return l.c.String(KeyLogFile) }

// Level maps LevelName to a slog level.
func (l LoggingConfig) Level() slog.Level {
	switch l.LevelName() {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

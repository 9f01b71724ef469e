package config

import (
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Option keys of the default registry.
const (
	KeyDatabaseURL       = "DATABASE_URL"
	KeyDBPoolSize        = "DB_POOL_SIZE"
	KeyDBPoolTimeout     = "DB_POOL_TIMEOUT"
	KeyDBPoolRecycle     = "DB_POOL_RECYCLE"
	KeyDBRecordQueries   = "DB_RECORD_QUERIES"
	KeyCacheType         = "CACHE_TYPE"
	KeyRedisURL          = "REDIS_URL"
	KeyCacheTimeout      = "CACHE_DEFAULT_TIMEOUT"
	KeyCacheKeyPrefix    = "CACHE_KEY_PREFIX"
	KeySecretKey         = "SECRET_KEY"
	KeyJWTSecretKey      = "JWT_SECRET_KEY"
	KeyJWTAlgorithm      = "JWT_ALGORITHM"
	KeyJWTAccessExpires  = "JWT_ACCESS_TOKEN_EXPIRES"
	KeyJWTRefreshExpires = "JWT_REFRESH_TOKEN_EXPIRES"
	KeyBcryptCost        = "BCRYPT_COST"
	KeyCSRFEnabled       = "CSRF_ENABLED"
	KeyForceHTTPS        = "FORCE_HTTPS"
	KeyServerPort        = "SERVER_PORT"
	KeyAPIVersion        = "API_VERSION"
	KeyAPIRateLimit      = "API_RATE_LIMIT"
	KeyAPIDocsEnabled    = "API_DOCS_ENABLED"
	KeyCORSOrigins       = "CORS_ORIGINS"
	KeyMaxContentLength  = "MAX_CONTENT_LENGTH"
	KeyUploadFolder      = "UPLOAD_FOLDER"
	KeyAllowedExtensions = "ALLOWED_EXTENSIONS"
	KeyLogLevel          = "LOG_LEVEL"
	KeyStructuredLogging = "STRUCTURED_LOGGING"
	KeyLogFile           = "LOG_FILE"
)

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the application's option table. It panics if the
// table itself is malformed.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		r, err := NewRegistry(defaultOptions()...)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// everywhere uses the same default in every environment.
func everywhere(v string) map[Environment]string {
	return perEnv(v, v, v)
}

func perEnv(dev, test, prod string) map[Environment]string {
	return map[Environment]string{
		Development: dev,
		Testing:     test,
		Production:  prod,
	}
}

var weakSecrets = []string{
	"dev-secret-key-change-in-production",
	"jwt-secret-key-change-in-production",
	"development-key",
	"dev-key",
	"secret",
	"password",
	"key",
	"123456",
	"changeme",
}

var (
	positiveDuration = &Rule{
		Func: func(v any, _ Environment) bool {
			d, ok := v.(time.Duration)
			return ok && d > 0
		},
		Message: "must be a positive duration",
	}

	strongSecret = &Rule{
		Func: func(v any, env Environment) bool {
			s, _ := v.(string)
			if env != Production {
				return true
			}
			if len(s) < 32 || slices.Contains(weakSecrets, strings.ToLower(s)) {
				return false
			}
			return strings.Trim(s, "0123456789") != ""
		},
		Message: "must be at least 32 characters, not a known weak value and not only digits in production",
	}

	recommendedSecret = &Rule{
		Func: func(v any, env Environment) bool {
			s, _ := v.(string)
			return env == Production || len(s) >= 16
		},
		Message: "is shorter than the recommended 16 characters",
	}
)

var (
	productionOrigins = &Rule{
		Func: func(v any, env Environment) bool {
			if env != Production {
				return true
			}
			origins, _ := v.([]string)
			if len(origins) == 0 {
				return false
			}
			return !slices.ContainsFunc(origins, isLocalOrigin)
		},
		Message: "should list the production origins and no localhost origin",
	}

	productionLogLevel = &Rule{
		Func: func(v any, env Environment) bool {
			return env != Production || v != "DEBUG"
		},
		Message: "enables debug logging in production",
	}
)

func isLocalOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Hostname()) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func schemeIn(schemes ...string) func(any, Environment) bool {
	return func(v any, _ Environment) bool {
		u, ok := v.(url.URL)
		return ok && slices.Contains(schemes, strings.ToLower(u.Scheme))
	}
}

func defaultOptions() []Option {
	return []Option{
		// Database
		{
			Key:        KeyDatabaseURL,
			Type:       TypeURL,
			Defaults:   map[Environment]string{Development: "sqlite:///dev.db", Testing: "sqlite:///:memory:"},
			RequiredIn: []Environment{Production},
			Advisory: &Rule{
				Func: func(v any, env Environment) bool {
					u, _ := v.(url.URL)
					return env != Production || !strings.HasPrefix(strings.ToLower(u.Scheme), "sqlite")
				},
				Message: "sqlite is not recommended for production",
			},
			Description: "Database connection URL",
		},
		{
			Key:         KeyDBPoolSize,
			Type:        TypeInt,
			Defaults:    everywhere("10"),
			Validator:   &Rule{Tag: "gt=0,lte=1000", Message: "must be between 1 and 1000"},
			Description: "Maximum number of pooled database connections",
		},
		{
			Key:         KeyDBPoolTimeout,
			Type:        TypeDuration,
			Defaults:    everywhere("30s"),
			Validator:   positiveDuration,
			Description: "How long to wait for a database connection",
		},
		{
			Key:         KeyDBPoolRecycle,
			Type:        TypeDuration,
			Defaults:    everywhere("1h"),
			Validator:   positiveDuration,
			Description: "Maximum lifetime of a pooled database connection",
		},
		{
			Key:         KeyDBRecordQueries,
			Type:        TypeBool,
			Defaults:    perEnv("true", "false", "false"),
			Description: "Record executed queries for debugging",
		},

		// Cache
		{
			Key:         KeyCacheType,
			Type:        TypeString,
			Defaults:    perEnv("simple", "null", "redis"),
			Validator:   &Rule{Tag: "oneof=simple redis null", Message: "must be one of simple, redis, null"},
			Description: "Cache backend",
		},
		{
			Key:         KeyRedisURL,
			Type:        TypeURL,
			Defaults:    map[Environment]string{Development: "redis://localhost:6379/0", Testing: "redis://localhost:6379/0"},
			RequiredIn:  []Environment{Production},
			Validator:   &Rule{Func: schemeIn("redis", "rediss"), Message: "must use the redis or rediss scheme"},
			Description: "Redis connection URL for the cache",
		},
		{
			Key:         KeyCacheTimeout,
			Type:        TypeDuration,
			Defaults:    everywhere("5m"),
			Validator:   positiveDuration,
			Description: "Default cache entry lifetime",
		},
		{
			Key:         KeyCacheKeyPrefix,
			Type:        TypeString,
			Defaults:    perEnv("app_", "app_test_", "app_"),
			Validator:   &Rule{Tag: "min=1", Message: "must not be empty"},
			Description: "Prefix applied to every cache key",
		},

		// Security
		{
			Key:         KeySecretKey,
			Type:        TypeString,
			RequiredIn:  Environments(),
			Secret:      true,
			Validator:   strongSecret,
			Advisory:    recommendedSecret,
			Description: "Application secret used for sessions and signing",
		},
		{
			Key:         KeyJWTSecretKey,
			Type:        TypeString,
			Secret:      true,
			Validator:   strongSecret,
			Advisory:    recommendedSecret,
			Description: "Token signing secret, falls back to SECRET_KEY",
		},
		{
			Key:         KeyJWTAlgorithm,
			Type:        TypeString,
			Defaults:    everywhere("HS256"),
			Validator:   &Rule{Tag: "oneof=HS256 HS384 HS512", Message: "must be one of HS256, HS384, HS512"},
			Description: "HMAC algorithm used to sign tokens",
		},
		{
			Key:         KeyJWTAccessExpires,
			Type:        TypeDuration,
			Defaults:    perEnv("1h", "5m", "1h"),
			Validator:   positiveDuration,
			Description: "Access token lifetime",
		},
		{
			Key:         KeyJWTRefreshExpires,
			Type:        TypeDuration,
			Defaults:    everywhere("720h"),
			Validator:   positiveDuration,
			Description: "Refresh token lifetime",
		},
		{
			Key:      KeyBcryptCost,
			Type:     TypeInt,
			Defaults: perEnv("10", "4", "12"),
			Validator: &Rule{
				Func: func(v any, _ Environment) bool {
					n, ok := v.(int)
					return ok && n >= bcrypt.MinCost && n <= bcrypt.MaxCost
				},
				Message: "must be a valid bcrypt cost (4-31)",
			},
			Description: "bcrypt cost for password hashing",
		},
		{
			Key:         KeyCSRFEnabled,
			Type:        TypeBool,
			Defaults:    perEnv("true", "false", "true"),
			Description: "Enable CSRF protection",
		},
		{
			Key:         KeyForceHTTPS,
			Type:        TypeBool,
			Defaults:    perEnv("false", "false", "true"),
			Description: "Redirect plain HTTP requests to HTTPS",
		},

		// API
		{
			Key:         KeyServerPort,
			Type:        TypeInt,
			Defaults:    everywhere("8080"),
			Validator:   &Rule{Tag: "gt=0,lt=65536", Message: "must be a valid TCP port"},
			Description: "HTTP listen port",
		},
		{
			Key:         KeyAPIVersion,
			Type:        TypeString,
			Defaults:    everywhere("v2"),
			Validator:   &Rule{Tag: "oneof=v1 v2", Message: "must be one of v1, v2"},
			Description: "Active API version",
		},
		{
			Key:      KeyAPIRateLimit,
			Type:     TypeString,
			Defaults: everywhere("100 per hour"),
			Validator: &Rule{
				Func: func(v any, _ Environment) bool {
					s, _ := v.(string)
					_, err := ParseRateLimit(s)
					return err == nil
				},
				Message: `must look like "<n> per second|minute|hour|day"`,
			},
			Description: "Default API rate limit",
		},
		{
			Key:         KeyAPIDocsEnabled,
			Type:        TypeBool,
			Defaults:    perEnv("true", "true", "false"),
			Description: "Serve API documentation",
		},
		{
			Key:         KeyCORSOrigins,
			Type:        TypeList,
			Defaults:    everywhere(""),
			Validator:   &Rule{Tag: "dive,url", Message: "must be a comma-separated list of origin URLs"},
			Advisory:    productionOrigins,
			Description: "Allowed CORS origins",
		},
		{
			Key:         KeyMaxContentLength,
			Type:        TypeInt,
			Defaults:    everywhere("16777216"),
			Validator:   &Rule{Tag: "gt=0", Message: "must be positive"},
			Description: "Maximum request body size in bytes",
		},
		{
			Key:         KeyUploadFolder,
			Type:        TypeString,
			Defaults:    everywhere("uploads/"),
			Validator:   &Rule{Tag: "min=1", Message: "must not be empty"},
			Description: "Directory for uploaded files",
		},
		{
			Key:         KeyAllowedExtensions,
			Type:        TypeList,
			Defaults:    everywhere("txt,pdf,png,jpg,jpeg,gif,csv,json"),
			Validator:   &Rule{Tag: "min=1,dive,alphanum", Message: "must list at least one alphanumeric extension"},
			Description: "File extensions accepted for upload",
		},

		// Logging
		{
			Key:         KeyLogLevel,
			Type:        TypeString,
			Defaults:    perEnv("DEBUG", "WARNING", "WARNING"),
			Validator:   &Rule{Tag: "oneof=DEBUG INFO WARNING ERROR", Message: "must be one of DEBUG, INFO, WARNING, ERROR"},
			Advisory:    productionLogLevel,
			Description: "Minimum log level",
		},
		{
			Key:         KeyStructuredLogging,
			Type:        TypeBool,
			Defaults:    perEnv("false", "false", "true"),
			Description: "Emit JSON log records",
		},
		{
			Key:         KeyLogFile,
			Type:        TypeString,
			Description: "Write logs to this file instead of stdout",
		},
	}
}

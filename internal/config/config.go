package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full runtime configuration tree.
type Config struct {
	App         AppConfig
	Log         LogConfig
	Database    DatabaseConfig
	Mongo       MongoConfig
	Cors        CORSConfig
	Security    SecurityConfig
	Monitoring  MonitoringConfig
	Diagnostics DiagnosticsConfig
}

// AppConfig captures application-level settings.
type AppConfig struct {
	Name    string
	Env     string
	Version string
	Port    string
}

// LogConfig tunes the zap logger.
type LogConfig struct {
	Level string
}

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// DatabaseConfig stores database connectivity info.
type DatabaseConfig struct {
	Driver          string
	DSN             string
	ReadOnlyDSN     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// IsSQL reports whether the driver is served by the sqlx store.
func (d DatabaseConfig) IsSQL() bool {
	return d.Driver == DriverPostgres || d.Driver == DriverMySQL
}

// MongoConfig stores MongoDB connectivity info.
type MongoConfig struct {
	URI         string
	Database    string
	MaxPoolSize uint64
}

// CORSConfig declares cross-origin policy.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// SecurityConfig covers app hardening toggles.
type SecurityConfig struct {
	BcryptCost int
}

// MonitoringConfig adds observability tunables.
type MonitoringConfig struct {
	PrometheusEnabled bool
	SentryDSN         string
	SentrySampleRate  float64
}

// DiagnosticsConfig governs debug helpers.
type DiagnosticsConfig struct {
	EnableDebugLogs bool
	MaxLogLines     int
}

// Load reads from environment (optionally .env) and builds Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:    getenv("APP_NAME", "user-service"),
			Env:     getenv("APP_ENV", "development"),
			Version: getenv("APP_VERSION", "0.1.0"),
			Port:    getenv("PORT", "8080"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getenv("LOG_LEVEL", "")),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
			DSN:             getenv("DB_DSN", "postgres://postgres:postgres@db:5432/users_db?sslmode=disable"),
			ReadOnlyDSN:     getenv("DB_READ_DSN", ""),
			MaxOpenConns:    getInt("DB_MAX_OPEN", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE", 10),
			ConnMaxLifetime: time.Duration(getInt("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
			AutoMigrate:     getBool("DB_AUTO_MIGRATE", true),
		},
		Mongo: MongoConfig{
			URI:         getenv("MONGO_URI", "mongodb://mongo:27017"),
			Database:    getenv("MONGO_DATABASE", "users_db"),
			MaxPoolSize: nonNegative(getInt("MONGO_MAX_POOL", 0)),
		},
		Cors: CORSConfig{
			AllowedOrigins:   splitAndTrim(getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173,http://localhost:8080")),
			AllowedMethods:   splitAndTrim(getenv("CORS_METHODS", "GET,POST,PUT,DELETE,OPTIONS")),
			AllowedHeaders:   splitAndTrim(getenv("CORS_HEADERS", "Content-Type,Accept,X-Requested-With,X-Request-ID")),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", true),
		},
		Security: SecurityConfig{
			BcryptCost: getInt("SECURITY_BCRYPT_COST", getInt("BCRYPT_COST", 12)),
		},
		Monitoring: MonitoringConfig{
			PrometheusEnabled: getBool("PROMETHEUS_ENABLED", true),
			SentryDSN:         getenv("SENTRY_DSN", ""),
			SentrySampleRate:  getFloat("SENTRY_SAMPLE_RATE", 0.2),
		},
		Diagnostics: DiagnosticsConfig{
			EnableDebugLogs: getBool("ENABLE_DEBUG_LOGS", false),
			MaxLogLines:     getInt("DEBUG_LOG_LIMIT", 200),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL:
		if c.Database.DSN == "" {
			return fmt.Errorf("DB_DSN must be provided for driver %s", c.Database.Driver)
		}
	case DriverMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DATABASE must be provided")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported db driver %s", c.Database.Driver)
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost %d out of range 4..31", c.Security.BcryptCost)
	}
	return nil
}

// nonNegative maps negative values to 0 so they cannot wrap around.
func nonNegative(v int) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}

func getenv(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getInt(key string, def int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return i
}

func getBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}

func getFloat(key string, def float64) float64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}

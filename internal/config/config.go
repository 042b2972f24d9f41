package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by the repository layer.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Query        QueryConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// DatabaseConfig holds connection values for the selected storage driver.
type DatabaseConfig struct {
	Driver         string
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	DSN            string
	SQLitePath     string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// QueryConfig tunes ticket submission.
type QueryConfig struct {
	IDMaxAttempts int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// ParseDriver normalizes a storage driver name and rejects unknown ones.
func ParseDriver(raw string) (string, error) {
	driver := strings.ToLower(strings.TrimSpace(raw))
	switch driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
		return driver, nil
	default:
		return "", fmt.Errorf("unknown storage driver %q", raw)
	}
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	driver, err := ParseDriver(getEnv("DB_DRIVER", DriverPostgres))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_DRIVER: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "client-query-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Database: DatabaseConfig{
			Driver:         driver,
			Host:           getEnv("DB_HOST", "127.0.0.1"),
			Port:           os.Getenv("DB_PORT"),
			User:           getEnv("DB_USER", "root"),
			Password:       os.Getenv("DB_PASSWORD"),
			Name:           getEnv("DB_NAME", "clientquery_db"),
			DSN:            os.Getenv("DB_DSN"),
			SQLitePath:     getEnv("DB_SQLITE_PATH", "clientquery.db"),
			MaxConns:       int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("DB_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("DB_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("DB_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("DB_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Query: QueryConfig{
			IDMaxAttempts: getEnvAsInt("QUERY_ID_MAX_ATTEMPTS", 5),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", ""),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ConnectionString returns the driver-specific DSN. An explicit DB_DSN wins.
func (d DatabaseConfig) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}
	switch d.Driver {
	case DriverMySQL:
		port := d.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, port, d.Name)
	case DriverSQLite:
		return d.SQLitePath
	default:
		port := d.Port
		if port == "" {
			port = "5432"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(d.User, d.Password),
			Host:     fmt.Sprintf("%s:%s", d.Host, port),
			Path:     "/" + d.Name,
			RawQuery: "sslmode=disable",
		}
		return u.String()
	}
}

// SaveDatabaseSettings persists connection settings to an env file so later
// runs can pick them up through Load.
func SaveDatabaseSettings(path string, d DatabaseConfig) error {
	values := map[string]string{
		"DB_DRIVER":   d.Driver,
		"DB_HOST":     d.Host,
		"DB_USER":     d.User,
		"DB_PASSWORD": d.Password,
		"DB_NAME":     d.Name,
	}
	if d.Port != "" {
		values["DB_PORT"] = d.Port
	}
	if d.Driver == DriverSQLite {
		values["DB_SQLITE_PATH"] = d.SQLitePath
	}

	// keep unrelated keys already present in the file
	if existing, err := godotenv.Read(path); err == nil {
		for key, val := range existing {
			if _, ok := values[key]; !ok {
				values[key] = val
			}
		}
	}

	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

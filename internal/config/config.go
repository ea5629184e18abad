package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"

	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string // SQLite DSN
	DBMode       string // "file" or "memory" (SQLite only)

	// Database - Postgres
	PGHost     string
	PGPort     int
	PGUser     string
	PGPassword string
	PGDatabase string
	PGSSLMode  string

	// Database - startup wait (Postgres only)
	DBConnectRetries int
	DBConnectBackoff time.Duration
	DBConnectTimeout time.Duration

	// Uploads
	UploadsDir          string
	UploadMaxSize       int64
	UploadStrictContent bool          // Sniff content in addition to the declared type
	UploadRateLimit     int           // Uploads per window per client IP, 0 disables
	UploadRateWindow    time.Duration // Window for UploadRateLimit
	TrustProxyHeaders   bool          // Key the rate limit on X-Forwarded-For/X-Real-IP; enable only behind a proxy that sets them

	// CORS
	CORSAllowedOrigins []string

	// Observability (optional)
	SentryDSN string

	// Storage: "local" (disk) or "s3" (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	StorageDriver string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "filedrop"),
		AppEnv:  envString("APP_ENV", "development"),
		Port:    envString("PORT", "5001"),

		// Database
		DBDriver:     normalizeDriver(envString("DB_DRIVER", envString("DB_TYPE", DriverSQLite))),
		DBConnection: envString("DB_CONNECTION", "./data/filedrop.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),
		DBMode:       envString("DB_MODE", "file"),

		// Database - Postgres (defaults match the docker-compose service)
		PGHost:     envString("PGHOST", "db"),
		PGPort:     envInt("PGPORT", 5432),
		PGUser:     envString("PGUSER", "user"),
		PGPassword: envString("PGPASSWORD", "password"),
		PGDatabase: envString("PGDATABASE", "dropbox_clone"),
		PGSSLMode:  envString("PGSSLMODE", "disable"),

		DBConnectRetries: envInt("DB_CONNECT_RETRIES", 5),
		DBConnectBackoff: envDuration("DB_CONNECT_BACKOFF", 2*time.Second),
		DBConnectTimeout: envDuration("DB_CONNECT_TIMEOUT", 60*time.Second),

		// Uploads
		UploadsDir:          envString("UPLOADS_DIR", "./uploads"),
		UploadMaxSize:       int64(envInt("UPLOAD_MAX_SIZE", 10<<20)), // 10MB
		UploadStrictContent: envBool("UPLOAD_STRICT_CONTENT", false),
		UploadRateLimit:     envInt("UPLOAD_RATE_LIMIT", 60),
		UploadRateWindow:    envDuration("UPLOAD_RATE_WINDOW", time.Minute),
		TrustProxyHeaders:   envBool("TRUST_PROXY_HEADERS", false),

		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		StorageDriver: envString("STORAGE_DRIVER", StorageLocal),
		S3Region:      envString("S3_REGION", ""),
		S3Bucket:      envString("S3_BUCKET", ""),
		S3AccessKey:   envString("S3_ACCESS_KEY", ""),
		S3SecretKey:   envString("S3_SECRET_KEY", ""),
		S3Endpoint:    envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
	}

	err = cfg.Validate()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	return cfg
}

// Validate checks option combinations that cannot work at runtime
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use sqlite or pgx)", c.DBDriver)
	}

	switch c.StorageDriver {
	case StorageLocal:
		if c.UploadsDir == "" {
			return fmt.Errorf("UPLOADS_DIR is required for local storage")
		}
	case StorageS3:
		for key, value := range map[string]string{"S3_REGION": c.S3Region, "S3_BUCKET": c.S3Bucket} {
			if value == "" {
				return fmt.Errorf("%s is required for s3 storage", key)
			}
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q (use local or s3)", c.StorageDriver)
	}

	if c.UploadMaxSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE must be positive")
	}

	return nil
}

// PostgresDSN builds the connection URL from the PG* settings
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PGUser, c.PGPassword),
		Host:     fmt.Sprintf("%s:%d", c.PGHost, c.PGPort),
		Path:     "/" + c.PGDatabase,
		RawQuery: "sslmode=" + url.QueryEscape(c.PGSSLMode),
	}
	return u.String()
}

// normalizeDriver accepts the driver names people actually type
func normalizeDriver(driver string) string {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres
	case "sqlite", "sqlite3":
		return DriverSQLite
	}
	return driver
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return def
	}
	return items
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

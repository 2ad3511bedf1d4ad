package config

import (
	"time"

	"github.com/spf13/viper"
)

type StoreBackend string

const (
	StoreBackendSQLite    StoreBackend = "sqlite"    // Local gorm/sqlite document store (default)
	StoreBackendFirestore StoreBackend = "firestore" // Cloud Firestore
)

type IdentityMode string

const (
	IdentityModeHeader IdentityMode = "header" // Identity headers set by the authenticating proxy
	IdentityModeJWT    IdentityMode = "jwt"    // Bearer token issued by the identity provider
)

type (
	Config struct {
		HTTP
		Global
		Log
		Store
		Catalog
		Covers
		Identity
		Tasks
		Reconcile
		Demo
	}

	HTTP struct {
		Port           int32
		Host           string
		AllowedOrigins []string // CORS origins of the browser front end; empty disables CORS
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Log struct {
		Mode string // "production" or "development"
	}
	Store struct {
		Backend            StoreBackend
		DatabasePath       string
		DatabaseLogLevel   string // silent, error, warn, info
		FirestoreProjectID string
	}
	Catalog struct {
		BaseURL       string
		APIKey        string
		RatePerSecond float64
		Burst         int
		CacheTTL      time.Duration
		RedisURL      string // Optional; enables the search response cache
	}
	Covers struct {
		Dir string
	}
	Identity struct {
		Mode      IdentityMode
		JWTSecret string
		JWTIssuer string   // Optional; checked when set
		AdminUIDs []string // Callers allowed on /api/admin routes
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Reconcile struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Demo struct {
		Enabled bool // Read-only mode: write requests are rejected
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("cors_allowed_origins", []string{})
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("log_mode", "development")

	// Store defaults
	v.SetDefault("store_backend", string(StoreBackendSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_log_level", "warn")
	v.SetDefault("firestore_project_id", "")

	// Catalog defaults
	v.SetDefault("catalog_base_url", DefaultCatalogBaseURL)
	v.SetDefault("catalog_api_key", "")
	v.SetDefault("catalog_rate_per_second", 2.0)
	v.SetDefault("catalog_burst", 4)
	v.SetDefault("catalog_cache_ttl", "10m")
	v.SetDefault("redis_url", "")

	v.SetDefault("covers_dir", "./covers")

	// Identity defaults
	v.SetDefault("identity_mode", string(IdentityModeHeader))
	v.SetDefault("identity_jwt_secret", "")
	v.SetDefault("identity_jwt_issuer", "")
	v.SetDefault("admin_uids", []string{})

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Counter reconciliation defaults
	v.SetDefault("reconcile_enabled", true)
	v.SetDefault("reconcile_schedule", "0 3 * * *")

	v.SetDefault("demo_mode", false)

	return &Config{
		HTTP: HTTP{
			Port:           v.GetInt32("PORT"),
			Host:           v.GetString("HOST"),
			AllowedOrigins: v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Log: Log{
			Mode: v.GetString("LOG_MODE"),
		},
		Store: Store{
			Backend:            StoreBackend(v.GetString("STORE_BACKEND")),
			DatabasePath:       v.GetString("DATABASE_PATH"),
			DatabaseLogLevel:   v.GetString("DATABASE_LOG_LEVEL"),
			FirestoreProjectID: v.GetString("FIRESTORE_PROJECT_ID"),
		},
		Catalog: Catalog{
			BaseURL:       v.GetString("CATALOG_BASE_URL"),
			APIKey:        v.GetString("CATALOG_API_KEY"),
			RatePerSecond: v.GetFloat64("CATALOG_RATE_PER_SECOND"),
			Burst:         v.GetInt("CATALOG_BURST"),
			CacheTTL:      v.GetDuration("CATALOG_CACHE_TTL"),
			RedisURL:      v.GetString("REDIS_URL"),
		},
		Covers: Covers{
			Dir: v.GetString("COVERS_DIR"),
		},
		Identity: Identity{
			Mode:      IdentityMode(v.GetString("IDENTITY_MODE")),
			JWTSecret: v.GetString("IDENTITY_JWT_SECRET"),
			JWTIssuer: v.GetString("IDENTITY_JWT_ISSUER"),
			AdminUIDs: v.GetStringSlice("ADMIN_UIDS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Reconcile: Reconcile{
			Enabled:  v.GetBool("RECONCILE_ENABLED"),
			Schedule: v.GetString("RECONCILE_SCHEDULE"),
		},
		Demo: Demo{
			Enabled: v.GetBool("DEMO_MODE"),
		},
	}
}

// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, storage, signing keys, the planning
// pipeline, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-certified-backend/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-certified-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// CertConfig holds the signing identity and the admin credential that
// guards publish operations.
type CertConfig struct {
	PublicKey  string // CERT_SIGN_PUBLIC_KEY (base64 DER SPKI)
	PrivateKey string // CERT_SIGN_PRIVATE_KEY (base64 DER PKCS#8)
	AdminToken string // ADMIN_TOKEN; empty disables admin routes
}

// ArtifactsConfig selects where artifact bodies are stored.
type ArtifactsConfig struct {
	Backend   string // ARTIFACTS_BACKEND: fs|gcs
	Dir       string // ARTIFACTS_DIR (fs backend)
	GCSBucket string // ARTIFACTS_GCS_BUCKET (gcs backend)
	GCSPrefix string // ARTIFACTS_GCS_PREFIX (gcs backend, optional)
}

// PlannerConfig controls which proposers run and how long each may take.
type PlannerConfig struct {
	Engines         []string      // PROPOSER_ENGINES (CSV, configured order is the tie-break order)
	ProposerTimeout time.Duration // PROPOSER_TIMEOUT
	ExternalURL     string        // PROPOSER_EXTERNAL_URL (endpoint of the "external" engine)
}

// CitationConfig controls citation reachability probes.
type CitationConfig struct {
	Timeout       time.Duration // CITATION_TIMEOUT (floor 300ms)
	MaxBytes      int           // CITATION_MAX_BYTES (floor 128)
	CacheRedisURL string        // CITATION_CACHE_REDIS_URL (optional)
	CacheTTL      time.Duration // CITATION_CACHE_TTL
}

// AuditConfig controls the in-memory audit ring.
type AuditConfig struct {
	Preview bool // AUDIT_PREVIEW exposes the audit endpoint
	Buffer  int  // AUDIT_BUFFER (floor 100)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // zerolog level name
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	AppMode     string // production|test; selects how signing keys are obtained
	DBDriver    string // sqlite|postgres
	DBPath      string // SQLite path
	DatabaseURL string // PostgreSQL DSN

	// Certified pipeline
	Cert      CertConfig
	Artifacts ArtifactsConfig
	Planner   PlannerConfig
	Citations CitationConfig
	Audit     AuditConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the environment, applies defaults and floors, and validates.
// The returned Config is populated even when validation fails.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		AppMode:     strings.ToLower(getenv("APP_MODE", "production")),
		DBDriver:    strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBPath:      getenv("DB_PATH", "app.db"),
		DatabaseURL: getenv("DATABASE_URL", ""),

		// Certified pipeline
		Cert: CertConfig{
			PublicKey:  getenv("CERT_SIGN_PUBLIC_KEY", ""),
			PrivateKey: getenv("CERT_SIGN_PRIVATE_KEY", ""),
			AdminToken: getenv("ADMIN_TOKEN", ""),
		},
		Artifacts: ArtifactsConfig{
			Backend:   strings.ToLower(getenv("ARTIFACTS_BACKEND", "fs")),
			Dir:       getenv("ARTIFACTS_DIR", "artifacts"),
			GCSBucket: getenv("ARTIFACTS_GCS_BUCKET", ""),
			GCSPrefix: getenv("ARTIFACTS_GCS_PREFIX", ""),
		},
		Planner: PlannerConfig{
			Engines:         splitCSV(getenv("PROPOSER_ENGINES", "adaptive-v1,template-v0")),
			ProposerTimeout: getdur("PROPOSER_TIMEOUT", 5*time.Second),
			ExternalURL:     getenv("PROPOSER_EXTERNAL_URL", ""),
		},
		Citations: CitationConfig{
			Timeout:       getdur("CITATION_TIMEOUT", 1500*time.Millisecond),
			MaxBytes:      getint("CITATION_MAX_BYTES", 1024),
			CacheRedisURL: getenv("CITATION_CACHE_REDIS_URL", ""),
			CacheTTL:      getdur("CITATION_CACHE_TTL", 10*time.Minute),
		},
		Audit: AuditConfig{
			Preview: getbool("AUDIT_PREVIEW", false),
			Buffer:  getint("AUDIT_BUFFER", 1000),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-certified-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.Citations.Timeout < 300*time.Millisecond {
		cfg.Citations.Timeout = 300 * time.Millisecond
	}
	if cfg.Citations.MaxBytes < 128 {
		cfg.Citations.MaxBytes = 128
	}
	if cfg.Audit.Buffer < 100 {
		cfg.Audit.Buffer = 100
	}

	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once, joined with errors.Join.
func (c Config) Validate() error {
	var errs []error
	check := func(bad bool, msg string) {
		if bad {
			errs = append(errs, errors.New(msg))
		}
	}

	// Server and logging
	_, lvlErr := zerolog.ParseLevel(c.LogLevel)
	check(lvlErr != nil || c.LogLevel == "", "LOG_LEVEL must be a zerolog level (trace, debug, info, warn, error, fatal, panic, disabled)")
	check(strings.TrimSpace(c.Port) == "", "PORT must not be empty")
	check(c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0,
		"timeouts must be positive durations")
	check(c.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0")

	// Storage
	check(c.AppMode != "production" && c.AppMode != "test", "APP_MODE must be one of: production, test")
	switch c.DBDriver {
	case "sqlite":
		check(strings.TrimSpace(c.DBPath) == "", "DB_PATH must not be empty")
	case "postgres":
		check(strings.TrimSpace(c.DatabaseURL) == "", "DATABASE_URL must be set when DB_DRIVER=postgres")
	default:
		check(true, "DB_DRIVER must be one of: sqlite, postgres")
	}
	switch c.Artifacts.Backend {
	case "fs":
		check(strings.TrimSpace(c.Artifacts.Dir) == "", "ARTIFACTS_DIR must not be empty")
	case "gcs":
		check(strings.TrimSpace(c.Artifacts.GCSBucket) == "", "ARTIFACTS_GCS_BUCKET must be set when ARTIFACTS_BACKEND=gcs")
	default:
		check(true, "ARTIFACTS_BACKEND must be one of: fs, gcs")
	}

	// Pipeline
	check(c.IsProduction() && strings.TrimSpace(c.Cert.AdminToken) == "", "ADMIN_TOKEN must be set in production mode")
	check(len(c.Planner.Engines) == 0, "PROPOSER_ENGINES must name at least one engine")
	check(c.Planner.ProposerTimeout <= 0, "PROPOSER_TIMEOUT must be > 0")
	check(c.Citations.CacheTTL <= 0, "CITATION_CACHE_TTL must be > 0")
	check(c.IdempotencyTTL <= 0, "IDEMPOTENCY_TTL must be > 0")

	// Protection and telemetry
	check(c.RateRPS < 0, "RATE_RPS must be >= 0")
	check(c.RateBurst < 1, "RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0")
	check(c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")

	return errors.Join(errs...)
}

// IsProduction reports whether signing keys must come from the environment.
func (c Config) IsProduction() bool { return c.AppMode == "production" }

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if b, ok := sysutil.ParseBool(os.Getenv(k)); ok {
		return b
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}

package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/materials-catalog/internal/data/db"
	"github.com/yungbote/materials-catalog/internal/observability"
	"github.com/yungbote/materials-catalog/internal/platform/cache"
	"github.com/yungbote/materials-catalog/internal/platform/envutil"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

const defaultJWTSecret = "defaultsecret"

type StorageConfig struct {
	Mode            string `yaml:"mode"`
	EmulatorHost    string `yaml:"emulator_host"`
	MaterialBucket  string `yaml:"material_bucket"`
	ThumbnailBucket string `yaml:"thumbnail_bucket"`
	PublicBaseURL   string `yaml:"public_base_url"`
}

type Config struct {
	Env             string        `yaml:"env"`
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`

	JWTSecretKey string `yaml:"jwt_secret_key"`
	JWTIssuer    string `yaml:"jwt_issuer"`

	Postgres db.PostgresConfig `yaml:"postgres"`
	// SQLiteDSN replaces Postgres when set. Local runs only.
	SQLiteDSN      string `yaml:"sqlite_dsn"`
	SeedCategories bool   `yaml:"seed_categories"`

	Storage StorageConfig     `yaml:"storage"`
	Redis   cache.RedisConfig `yaml:"redis"`

	DefaultPageSize  int   `yaml:"default_page_size"`
	MaxUploadBytes   int64 `yaml:"max_upload_bytes"`
	WriteMaxAttempts int   `yaml:"write_max_attempts"`

	MetricsEnabled   bool                     `yaml:"metrics_enabled"`
	MetricsNamespace string                   `yaml:"metrics_namespace"`
	// MetricsAddr serves /metrics on a second listener as well, e.g. ":9090".
	MetricsAddr      string                   `yaml:"metrics_addr"`
	Otel             observability.OtelConfig `yaml:"otel"`
}

func DefaultConfig() Config {
	return Config{
		Env:             "development",
		Port:            "8080",
		ShutdownTimeout: 15 * time.Second,
		JWTSecretKey:    defaultJWTSecret,
		Postgres: db.PostgresConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "catalog",
			SSLMode: "disable",
		},
		Storage:          StorageConfig{Mode: "gcs"},
		Redis:            cache.RedisConfig{Prefix: "catalog", TTL: 5 * time.Minute},
		DefaultPageSize:  12,
		MaxUploadBytes:   100 << 20,
		WriteMaxAttempts: 3,
		MetricsEnabled:   true,
		MetricsNamespace: "catalog",
		Otel:             observability.OtelConfig{ServiceName: "materials-catalog", SampleRatio: 1},
	}
}

// LoadConfig layers defaults, the optional CATALOG_CONFIG_FILE and the environment.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := DefaultConfig()
	if path := envutil.String("CATALOG_CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.ShutdownTimeout = envutil.Duration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if raw := envutil.String("CORS_ALLOWED_ORIGINS", ""); raw != "" {
		cfg.AllowedOrigins = splitList(raw)
	}

	cfg.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.JWTSecretKey)
	cfg.JWTIssuer = envutil.String("JWT_ISSUER", cfg.JWTIssuer)

	pg := &cfg.Postgres
	pg.DSN = envutil.String("POSTGRES_DSN", pg.DSN)
	pg.Host = envutil.String("POSTGRES_HOST", pg.Host)
	pg.Port = envutil.String("POSTGRES_PORT", pg.Port)
	pg.User = envutil.String("POSTGRES_USER", pg.User)
	pg.Password = envutil.String("POSTGRES_PASSWORD", pg.Password)
	pg.Name = envutil.String("POSTGRES_NAME", pg.Name)
	pg.SSLMode = envutil.String("POSTGRES_SSLMODE", pg.SSLMode)
	pg.MaxOpenConns = envutil.Int("POSTGRES_MAX_OPEN_CONNS", pg.MaxOpenConns)
	pg.MaxIdleConns = envutil.Int("POSTGRES_MAX_IDLE_CONNS", pg.MaxIdleConns)
	cfg.SQLiteDSN = envutil.String("SQLITE_DSN", cfg.SQLiteDSN)
	cfg.SeedCategories = envutil.Bool("SEED_CATEGORIES", cfg.SeedCategories)

	st := &cfg.Storage
	st.Mode = envutil.String("OBJECT_STORAGE_MODE", st.Mode)
	st.EmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", st.EmulatorHost)
	st.MaterialBucket = envutil.String("MATERIAL_GCS_BUCKET_NAME", st.MaterialBucket)
	st.ThumbnailBucket = envutil.String("THUMBNAIL_GCS_BUCKET_NAME", st.ThumbnailBucket)
	st.PublicBaseURL = envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", st.PublicBaseURL)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL = envutil.Duration("CATALOG_CACHE_TTL", cfg.Redis.TTL)

	cfg.DefaultPageSize = envutil.Int("DEFAULT_PAGE_SIZE", cfg.DefaultPageSize)
	cfg.MaxUploadBytes = envutil.Int64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.WriteMaxAttempts = envutil.Int("WRITE_MAX_ATTEMPTS", cfg.WriteMaxAttempts)

	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.MetricsNamespace = envutil.String("METRICS_NAMESPACE", cfg.MetricsNamespace)
	cfg.MetricsAddr = envutil.String("METRICS_ADDR", cfg.MetricsAddr)

	ot := &cfg.Otel
	ot.Enabled = envutil.Bool("OTEL_ENABLED", ot.Enabled)
	ot.ServiceName = envutil.String("OTEL_SERVICE_NAME", ot.ServiceName)
	ot.Environment = envutil.String("OTEL_ENVIRONMENT", ot.Environment)
	ot.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ot.Endpoint)
	ot.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", ot.Insecure)
	if raw := envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""); raw != "" {
		ot.Headers = observability.ParseHeaders(raw)
	}
	if raw := envutil.String("OTEL_SAMPLE_RATIO", ""); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			ot.SampleRatio = v
		}
	}
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.IsProduction() && c.JWTSecretKey == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET_KEY must be set in production"))
	}
	if c.DefaultPageSize < 0 {
		errs = append(errs, errors.New("DEFAULT_PAGE_SIZE cannot be negative"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.WriteMaxAttempts < 1 {
		errs = append(errs, errors.New("WRITE_MAX_ATTEMPTS must be at least 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "prod", "production":
		return true
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

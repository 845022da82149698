package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Auth     AuthConfig     `mapstructure:"auth"`
	AI       AIConfig       `mapstructure:"ai"`
	Renderer RendererConfig `mapstructure:"renderer"`
	Export   ExportConfig   `mapstructure:"export"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	LogLevel string         `mapstructure:"log_level"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int    `mapstructure:"port"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

// Origins splits the comma separated origin list.
func (a APIConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(a.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	PublicEndpoint  string        `mapstructure:"public_endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	Bucket          string        `mapstructure:"bucket"`
	Region          string        `mapstructure:"region"`
	BucketLookup    string        `mapstructure:"bucket_lookup"`
	AutoCreate      bool          `mapstructure:"auto_create_bucket"`
	PresignTTL      time.Duration `mapstructure:"presign_ttl"`
}

// AuthConfig contains token signing material and login throttling settings.
type AuthConfig struct {
	PrivateKeyPath        string        `mapstructure:"private_key_path"`
	PublicKeyPath         string        `mapstructure:"public_key_path"`
	AccessTokenTTL        time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL       time.Duration `mapstructure:"refresh_token_ttl"`
	LoginRateLimitPerHour int           `mapstructure:"login_rate_limit_per_hour"`
	LoginLockThreshold    int           `mapstructure:"login_lock_threshold"`
	LoginLockTTL          time.Duration `mapstructure:"login_lock_ttl"`
	CookieDomain          string        `mapstructure:"cookie_domain"`
}

// AIConfig selects and configures the generative text provider.
type AIConfig struct {
	Provider          string        `mapstructure:"provider"`
	GeminiAPIKey      string        `mapstructure:"gemini_api_key"`
	GeminiTextModel   string        `mapstructure:"gemini_text_model"`
	GeminiImportModel string        `mapstructure:"gemini_import_model"`
	OpenAIAPIKey      string        `mapstructure:"openai_api_key"`
	OpenAIModel       string        `mapstructure:"openai_model"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	BackoffStep       time.Duration `mapstructure:"backoff_step"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// RendererConfig configures the headless browser used for PDF output.
type RendererConfig struct {
	Engine     string        `mapstructure:"engine"`
	BrowserBin string        `mapstructure:"browser_bin"`
	NoSandbox  bool          `mapstructure:"no_sandbox"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ExportConfig contains rendering defaults and export retention.
type ExportConfig struct {
	DefaultTemplate      string `mapstructure:"default_template"`
	Locale               string `mapstructure:"locale"`
	MarkdownDescriptions bool   `mapstructure:"markdown_descriptions"`
	RetentionDays        int    `mapstructure:"retention_days"`
}

// UploadConfig limits user uploads.
type UploadConfig struct {
	MaxImageBytes  int64  `mapstructure:"max_image_bytes"`
	MaxImportBytes int64  `mapstructure:"max_import_bytes"`
	ClamdAddr      string `mapstructure:"clamd_addr"`
}

// WorkerConfig contains asynq worker settings.
type WorkerConfig struct {
	Concurrency     int    `mapstructure:"concurrency"`
	CleanupSchedule string `mapstructure:"cleanup_schedule"`
	MetricsAddr     string `mapstructure:"metrics_addr"`
}

// SlogLevel parses LogLevel, falling back to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration from environment variables, after merging an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.allowed_origins", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resume_builder")
	v.SetDefault("database.user", "resume_builder")
	v.SetDefault("database.password", "resume_builder")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.public_endpoint", "http://localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resumes")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("minio.presign_ttl", 15*time.Minute)
	v.SetDefault("auth.private_key_path", "keys/jwt_private.pem")
	v.SetDefault("auth.public_key_path", "keys/jwt_public.pem")
	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.login_rate_limit_per_hour", 10)
	v.SetDefault("auth.login_lock_threshold", 5)
	v.SetDefault("auth.login_lock_ttl", 15*time.Minute)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini_text_model", "gemini-1.5-flash")
	v.SetDefault("ai.gemini_import_model", "gemini-2.0-flash")
	v.SetDefault("ai.openai_model", "gpt-4o-mini")
	v.SetDefault("ai.max_attempts", 3)
	v.SetDefault("ai.backoff_step", time.Second)
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("renderer.engine", "rod")
	v.SetDefault("renderer.no_sandbox", true)
	v.SetDefault("renderer.timeout", 30*time.Second)
	v.SetDefault("export.default_template", "Modern")
	v.SetDefault("export.locale", "en")
	v.SetDefault("export.markdown_descriptions", false)
	v.SetDefault("export.retention_days", 7)
	v.SetDefault("upload.max_image_bytes", 5<<20)
	v.SetDefault("upload.max_import_bytes", 10<<20)
	v.SetDefault("upload.clamd_addr", "")
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.cleanup_schedule", "@daily")
	v.SetDefault("worker.metrics_addr", ":9091")
	v.SetDefault("log_level", "info")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                       "API_PORT",
		"api.allowed_origins":            "API_ALLOWED_ORIGINS",
		"database.host":                  "DATABASE_HOST",
		"database.port":                  "DATABASE_PORT",
		"database.name":                  "POSTGRES_DB",
		"database.user":                  "POSTGRES_USER",
		"database.password":              "POSTGRES_PASSWORD",
		"database.sslmode":               "DATABASE_SSLMODE",
		"redis.host":                     "REDIS_HOST",
		"redis.port":                     "REDIS_PORT",
		"redis.password":                 "REDIS_PASSWORD",
		"minio.endpoint":                 "MINIO_ENDPOINT",
		"minio.public_endpoint":          "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":            "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":        "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":                  "MINIO_USE_SSL",
		"minio.bucket":                   "MINIO_BUCKET",
		"minio.region":                   "MINIO_REGION",
		"minio.bucket_lookup":            "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket":       "MINIO_AUTO_CREATE_BUCKET",
		"minio.presign_ttl":              "MINIO_PRESIGN_TTL",
		"auth.private_key_path":          "JWT_PRIVATE_KEY_PATH",
		"auth.public_key_path":           "JWT_PUBLIC_KEY_PATH",
		"auth.access_token_ttl":          "JWT_ACCESS_TOKEN_TTL",
		"auth.refresh_token_ttl":         "JWT_REFRESH_TOKEN_TTL",
		"auth.login_rate_limit_per_hour": "LOGIN_RATE_LIMIT_PER_HOUR",
		"auth.login_lock_threshold":      "LOGIN_LOCK_THRESHOLD",
		"auth.login_lock_ttl":            "LOGIN_LOCK_TTL",
		"auth.cookie_domain":             "COOKIE_DOMAIN",
		"ai.provider":                    "AI_PROVIDER",
		"ai.gemini_api_key":              "GEMINI_API_KEY",
		"ai.gemini_text_model":           "GEMINI_TEXT_MODEL",
		"ai.gemini_import_model":         "GEMINI_IMPORT_MODEL",
		"ai.openai_api_key":              "OPENAI_API_KEY",
		"ai.openai_model":                "OPENAI_MODEL",
		"ai.max_attempts":                "AI_MAX_ATTEMPTS",
		"ai.backoff_step":                "AI_BACKOFF_STEP",
		"ai.timeout":                     "AI_TIMEOUT",
		"renderer.engine":                "RENDERER_ENGINE",
		"renderer.browser_bin":           "RENDERER_BROWSER_BIN",
		"renderer.no_sandbox":            "RENDERER_NO_SANDBOX",
		"renderer.timeout":               "RENDERER_TIMEOUT",
		"export.default_template":        "EXPORT_DEFAULT_TEMPLATE",
		"export.locale":                  "EXPORT_LOCALE",
		"export.markdown_descriptions":   "EXPORT_MARKDOWN_DESCRIPTIONS",
		"export.retention_days":          "EXPORT_RETENTION_DAYS",
		"upload.max_image_bytes":         "UPLOAD_MAX_IMAGE_BYTES",
		"upload.max_import_bytes":        "UPLOAD_MAX_IMPORT_BYTES",
		"upload.clamd_addr":              "CLAMD_ADDR",
		"worker.concurrency":             "WORKER_CONCURRENCY",
		"worker.cleanup_schedule":        "WORKER_CLEANUP_SCHEDULE",
		"worker.metrics_addr":            "WORKER_METRICS_ADDR",
		"log_level":                      "LOG_LEVEL",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.AccessKeyID == "" {
		return errors.New("minio access key id is required")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		return errors.New("minio secret access key is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	switch cfg.AI.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unsupported ai provider %q", cfg.AI.Provider)
	}
	if cfg.AI.MaxAttempts <= 0 {
		return errors.New("ai max attempts must be positive")
	}
	if cfg.AI.BackoffStep < 0 {
		return errors.New("ai backoff step must not be negative")
	}
	switch cfg.Renderer.Engine {
	case "rod", "chromedp":
	default:
		return fmt.Errorf("unsupported renderer engine %q", cfg.Renderer.Engine)
	}
	if cfg.Renderer.Timeout <= 0 {
		return errors.New("renderer timeout must be positive")
	}
	switch cfg.Export.Locale {
	case "en", "pt-BR":
	default:
		return fmt.Errorf("unsupported export locale %q", cfg.Export.Locale)
	}
	if cfg.Export.RetentionDays <= 0 {
		return errors.New("export retention days must be positive")
	}
	if cfg.Upload.MaxImageBytes <= 0 || cfg.Upload.MaxImportBytes <= 0 {
		return errors.New("upload limits must be positive")
	}
	return nil
}

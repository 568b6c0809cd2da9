package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	CORS      CORSConfig
	Email     EmailConfig
	Extractor ExtractorConfig
	Pipeline  PipelineConfig
	OCR       OCRConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// S3Config holds object storage settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	PortalURL   string `mapstructure:"portal_url"`
}

// ExtractorProviderConfig holds settings for a single vision extraction
// provider. Keys and endpoints are injected here; nothing is hardcoded in
// the provider packages.
type ExtractorProviderConfig struct {
	Provider        string  `mapstructure:"provider"`
	APIKey          string  `mapstructure:"api_key"`
	DefaultModel    string  `mapstructure:"default_model"`
	TimeoutSecs     int     `mapstructure:"timeout_secs"`
	Temperature     float64 `mapstructure:"temperature"`
	TopK            int     `mapstructure:"top_k"`
	TopP            float64 `mapstructure:"top_p"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
}

// ExtractorConfig holds vision extraction settings with provider fallback.
type ExtractorConfig struct {
	Primary  ExtractorProviderConfig `mapstructure:"primary"`
	Fallback ExtractorProviderConfig `mapstructure:"fallback"`

	// Requests per second across sequential extraction calls; 1.0
	// reproduces the historical 1-second inter-call delay.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// FallbackConfig returns the fallback provider config, or nil if not set.
func (e *ExtractorConfig) FallbackConfig() *ExtractorProviderConfig {
	if e.Fallback.Provider != "" {
		return &e.Fallback
	}
	return nil
}

// PipelineConfig holds image merge and size optimization defaults.
type PipelineConfig struct {
	MergePages       bool    `mapstructure:"merge_pages"`
	MergeOrientation string  `mapstructure:"merge_orientation"`
	MergeMaxWidth    int     `mapstructure:"merge_max_width"`
	MergeMaxHeight   int     `mapstructure:"merge_max_height"`
	MergeSpacing     int     `mapstructure:"merge_spacing"`
	MergeQuality     int     `mapstructure:"merge_quality"`
	MaxFileSizeMB    float64 `mapstructure:"max_file_size_mb"`
	MaxWidth         int     `mapstructure:"max_width"`
	MaxHeight        int     `mapstructure:"max_height"`
	InitialQuality   float64 `mapstructure:"initial_quality"`
	MinQuality       float64 `mapstructure:"min_quality"`
}

// OCRConfig holds local OCR settings.
type OCRConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Languages string `mapstructure:"languages"`
}

// Load reads configuration from environment variables with the PULSE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "pulse")
	v.SetDefault("db.password", "pulse_secret")
	v.SetDefault("db.name", "pulse_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "1h")
	v.SetDefault("jwt.issuer", "publicpulse")

	// S3 defaults
	v.SetDefault("s3.region", "eu-west-1")
	v.SetDefault("s3.bucket", "publicpulse-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 10)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-west-1")
	v.SetDefault("email.from_address", "noreply@publicpulse.go.ug")
	v.SetDefault("email.from_name", "PublicPulse")
	v.SetDefault("email.portal_url", "http://localhost:3000")

	// Extractor defaults
	v.SetDefault("extractor.primary.provider", "gemini")
	v.SetDefault("extractor.primary.api_key", "")
	v.SetDefault("extractor.primary.default_model", "gemini-2.0-flash")
	v.SetDefault("extractor.primary.timeout_secs", 120)
	v.SetDefault("extractor.primary.temperature", 0.1)
	v.SetDefault("extractor.primary.top_k", 32)
	v.SetDefault("extractor.primary.top_p", 1.0)
	v.SetDefault("extractor.primary.max_output_tokens", 4096)
	v.SetDefault("extractor.fallback.provider", "")
	v.SetDefault("extractor.fallback.api_key", "")
	v.SetDefault("extractor.fallback.default_model", "")
	v.SetDefault("extractor.fallback.timeout_secs", 120)
	v.SetDefault("extractor.fallback.temperature", 0.1)
	v.SetDefault("extractor.fallback.top_k", 32)
	v.SetDefault("extractor.fallback.top_p", 1.0)
	v.SetDefault("extractor.fallback.max_output_tokens", 4096)
	v.SetDefault("extractor.requests_per_second", 1.0)

	// Pipeline defaults
	v.SetDefault("pipeline.merge_pages", true)
	v.SetDefault("pipeline.merge_orientation", "vertical")
	v.SetDefault("pipeline.merge_max_width", 2048)
	v.SetDefault("pipeline.merge_max_height", 4096)
	v.SetDefault("pipeline.merge_spacing", 20)
	v.SetDefault("pipeline.merge_quality", 85)
	v.SetDefault("pipeline.max_file_size_mb", 3.5)
	v.SetDefault("pipeline.max_width", 2048)
	v.SetDefault("pipeline.max_height", 2048)
	v.SetDefault("pipeline.initial_quality", 0.85)
	v.SetDefault("pipeline.min_quality", 0.3)

	// OCR defaults
	v.SetDefault("ocr.enabled", false)
	v.SetDefault("ocr.languages", "eng")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                         "PULSE_SERVER_PORT",
		"server.read_timeout":                 "PULSE_SERVER_READ_TIMEOUT",
		"server.write_timeout":                "PULSE_SERVER_WRITE_TIMEOUT",
		"server.environment":                  "PULSE_SERVER_ENVIRONMENT",
		"db.host":                             "PULSE_DB_HOST",
		"db.port":                             "PULSE_DB_PORT",
		"db.user":                             "PULSE_DB_USER",
		"db.password":                         "PULSE_DB_PASSWORD",
		"db.name":                             "PULSE_DB_NAME",
		"db.sslmode":                          "PULSE_DB_SSLMODE",
		"db.max_open":                         "PULSE_DB_MAX_OPEN",
		"db.max_idle":                         "PULSE_DB_MAX_IDLE",
		"jwt.secret":                          "PULSE_JWT_SECRET",
		"jwt.access_expiry":                   "PULSE_JWT_ACCESS_EXPIRY",
		"jwt.issuer":                          "PULSE_JWT_ISSUER",
		"s3.region":                           "PULSE_S3_REGION",
		"s3.bucket":                           "PULSE_S3_BUCKET",
		"s3.endpoint":                         "PULSE_S3_ENDPOINT",
		"s3.access_key":                       "PULSE_S3_ACCESS_KEY",
		"s3.secret_key":                       "PULSE_S3_SECRET_KEY",
		"s3.max_file_size_mb":                 "PULSE_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":                   "PULSE_S3_PRESIGN_EXPIRY",
		"log.level":                           "PULSE_LOG_LEVEL",
		"log.format":                          "PULSE_LOG_FORMAT",
		"cors.allowed_origins":                "PULSE_CORS_ALLOWED_ORIGINS",
		"email.provider":                      "PULSE_EMAIL_PROVIDER",
		"email.region":                        "PULSE_EMAIL_REGION",
		"email.from_address":                  "PULSE_EMAIL_FROM_ADDRESS",
		"email.from_name":                     "PULSE_EMAIL_FROM_NAME",
		"email.portal_url":                    "PULSE_EMAIL_PORTAL_URL",
		"extractor.primary.provider":          "PULSE_EXTRACTOR_PRIMARY_PROVIDER",
		"extractor.primary.api_key":           "PULSE_EXTRACTOR_PRIMARY_API_KEY",
		"extractor.primary.default_model":     "PULSE_EXTRACTOR_PRIMARY_DEFAULT_MODEL",
		"extractor.primary.timeout_secs":      "PULSE_EXTRACTOR_PRIMARY_TIMEOUT_SECS",
		"extractor.fallback.provider":         "PULSE_EXTRACTOR_FALLBACK_PROVIDER",
		"extractor.fallback.api_key":          "PULSE_EXTRACTOR_FALLBACK_API_KEY",
		"extractor.fallback.default_model":    "PULSE_EXTRACTOR_FALLBACK_DEFAULT_MODEL",
		"extractor.fallback.timeout_secs":     "PULSE_EXTRACTOR_FALLBACK_TIMEOUT_SECS",
		"extractor.requests_per_second":       "PULSE_EXTRACTOR_REQUESTS_PER_SECOND",
		"pipeline.merge_pages":                "PULSE_PIPELINE_MERGE_PAGES",
		"pipeline.merge_orientation":          "PULSE_PIPELINE_MERGE_ORIENTATION",
		"pipeline.merge_max_width":            "PULSE_PIPELINE_MERGE_MAX_WIDTH",
		"pipeline.merge_max_height":           "PULSE_PIPELINE_MERGE_MAX_HEIGHT",
		"pipeline.merge_spacing":              "PULSE_PIPELINE_MERGE_SPACING",
		"pipeline.merge_quality":              "PULSE_PIPELINE_MERGE_QUALITY",
		"pipeline.max_file_size_mb":           "PULSE_PIPELINE_MAX_FILE_SIZE_MB",
		"pipeline.max_width":                  "PULSE_PIPELINE_MAX_WIDTH",
		"pipeline.max_height":                 "PULSE_PIPELINE_MAX_HEIGHT",
		"pipeline.initial_quality":            "PULSE_PIPELINE_INITIAL_QUALITY",
		"pipeline.min_quality":                "PULSE_PIPELINE_MIN_QUALITY",
		"ocr.enabled":                         "PULSE_OCR_ENABLED",
		"ocr.languages":                       "PULSE_OCR_LANGUAGES",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Comma-separated origins arrive as a single string via env
	if len(cfg.CORS.AllowedOrigins) == 1 && strings.Contains(cfg.CORS.AllowedOrigins[0], ",") {
		cfg.CORS.AllowedOrigins = strings.Split(cfg.CORS.AllowedOrigins[0], ",")
	}

	if cfg.Pipeline.MinQuality > cfg.Pipeline.InitialQuality {
		return nil, fmt.Errorf("pipeline.min_quality (%.2f) must not exceed pipeline.initial_quality (%.2f)",
			cfg.Pipeline.MinQuality, cfg.Pipeline.InitialQuality)
	}

	return &cfg, nil
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Billing   BillingConfig
	Discovery DiscoveryConfig
	Template  TemplateConfig
	S3        S3Config
	CORS      CORSConfig
	Log       LogConfig
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

// BillingConfig holds billing API settings. SellerTaxID is the seller's own
// fiscal id, needed by the extractor to avoid misreading it as the client's.
// Series is the fallback invoice series for bare numeric identifiers.
type BillingConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	Token              string `mapstructure:"token"`
	SellerTaxID        string `mapstructure:"seller_tax_id"`
	Series             string `mapstructure:"series"`
	MinFetchIntervalMS int    `mapstructure:"min_fetch_interval_ms"`
	TimeoutSecs        int    `mapstructure:"timeout_secs"`
}

// MinFetchInterval returns the minimum delay between outbound fetches.
func (b *BillingConfig) MinFetchInterval() time.Duration {
	return time.Duration(b.MinFetchIntervalMS) * time.Millisecond
}

// DiscoveryConfig holds sequential discovery settings.
type DiscoveryConfig struct {
	MaxAttempts   int `mapstructure:"max_attempts"`
	NotFoundLimit int `mapstructure:"not_found_limit"`
}

// TemplateConfig holds certificate template settings.
type TemplateConfig struct {
	Path                   string `mapstructure:"path"`
	FallbackWarrantyMonths int    `mapstructure:"fallback_warranty_months"`
}

// S3Config holds object storage settings for generated certificates.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the CERTIKID_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CERTIKID")
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
	v.SetDefault("db.user", "certikid")
	v.SetDefault("db.password", "certikid_secret")
	v.SetDefault("db.name", "certikid_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Billing defaults
	v.SetDefault("billing.base_url", "")
	v.SetDefault("billing.token", "")
	v.SetDefault("billing.seller_tax_id", "")
	v.SetDefault("billing.series", "PK")
	v.SetDefault("billing.min_fetch_interval_ms", 1500)
	v.SetDefault("billing.timeout_secs", 60)

	// Discovery defaults
	v.SetDefault("discovery.max_attempts", 50)
	v.SetDefault("discovery.not_found_limit", 2)

	// Template defaults
	v.SetDefault("template.path", "assets/certificate_template.pdf")
	v.SetDefault("template.fallback_warranty_months", 24)

	// S3 defaults
	v.SetDefault("s3.region", "eu-central-1")
	v.SetDefault("s3.bucket", "certikid-certificates")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "CERTIKID_SERVER_PORT",
		"server.read_timeout":               "CERTIKID_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "CERTIKID_SERVER_WRITE_TIMEOUT",
		"server.environment":                "CERTIKID_SERVER_ENVIRONMENT",
		"db.host":                           "CERTIKID_DB_HOST",
		"db.port":                           "CERTIKID_DB_PORT",
		"db.user":                           "CERTIKID_DB_USER",
		"db.password":                       "CERTIKID_DB_PASSWORD",
		"db.name":                           "CERTIKID_DB_NAME",
		"db.sslmode":                        "CERTIKID_DB_SSLMODE",
		"db.max_open":                       "CERTIKID_DB_MAX_OPEN",
		"db.max_idle":                       "CERTIKID_DB_MAX_IDLE",
		"billing.base_url":                  "CERTIKID_BILLING_BASE_URL",
		"billing.token":                     "CERTIKID_BILLING_TOKEN",
		"billing.seller_tax_id":             "CERTIKID_BILLING_SELLER_TAX_ID",
		"billing.series":                    "CERTIKID_BILLING_SERIES",
		"billing.min_fetch_interval_ms":     "CERTIKID_BILLING_MIN_FETCH_INTERVAL_MS",
		"billing.timeout_secs":              "CERTIKID_BILLING_TIMEOUT_SECS",
		"discovery.max_attempts":            "CERTIKID_DISCOVERY_MAX_ATTEMPTS",
		"discovery.not_found_limit":         "CERTIKID_DISCOVERY_NOT_FOUND_LIMIT",
		"template.path":                     "CERTIKID_TEMPLATE_PATH",
		"template.fallback_warranty_months": "CERTIKID_TEMPLATE_FALLBACK_WARRANTY_MONTHS",
		"s3.region":                         "CERTIKID_S3_REGION",
		"s3.bucket":                         "CERTIKID_S3_BUCKET",
		"s3.endpoint":                       "CERTIKID_S3_ENDPOINT",
		"s3.access_key":                     "CERTIKID_S3_ACCESS_KEY",
		"s3.secret_key":                     "CERTIKID_S3_SECRET_KEY",
		"s3.presign_expiry":                 "CERTIKID_S3_PRESIGN_EXPIRY",
		"cors.allowed_origins":              "CERTIKID_CORS_ALLOWED_ORIGINS",
		"log.level":                         "CERTIKID_LOG_LEVEL",
		"log.format":                        "CERTIKID_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CERTIKID_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CERTIKID_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Billing = BillingConfig{
		BaseURL:            v.GetString("billing.base_url"),
		Token:              v.GetString("billing.token"),
		SellerTaxID:        v.GetString("billing.seller_tax_id"),
		Series:             v.GetString("billing.series"),
		MinFetchIntervalMS: v.GetInt("billing.min_fetch_interval_ms"),
		TimeoutSecs:        v.GetInt("billing.timeout_secs"),
	}
	cfg.Discovery = DiscoveryConfig{
		MaxAttempts:   v.GetInt("discovery.max_attempts"),
		NotFoundLimit: v.GetInt("discovery.not_found_limit"),
	}
	cfg.Template = TemplateConfig{
		Path:                   v.GetString("template.path"),
		FallbackWarrantyMonths: v.GetInt("template.fallback_warranty_months"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}

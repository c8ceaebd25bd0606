package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Queue     QueueConfig
	Auth      AuthConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	Outbox    OutboxConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// DatabaseConfig holds configuration for the Azure SQL database.
// ConnectionString (the SqlConnectionString setting) takes precedence;
// otherwise the string is assembled from the discrete fields.
type DatabaseConfig struct {
	ConnectionString string
	Host             string
	Port             int
	Name             string
	User             string
	Password         string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  int
	// ConnectRetries is the number of startup connection attempts.
	// Azure SQL serverless can take up to a minute to resume from pause.
	ConnectRetries int
}

// QueueConfig holds configuration for the queue output binding
type QueueConfig struct {
	// Mode selects the sink implementation: "azure" or "log"
	Mode string
	// Name is the target queue, "outqueue" by default
	Name string
	// ConnectionString is the storage account connection string
	// (the AzureWebJobsStorage setting)
	ConnectionString string
	// CreateIfMissing creates the queue on startup when it does not exist
	CreateIfMissing bool
}

// AuthConfig models the Functions HTTP auth level.
// "anonymous" leaves trigger routes open; "function" requires a
// function key via the x-functions-key header or the code query parameter.
type AuthConfig struct {
	Level       string
	FunctionKey string
	AdminKey    string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// OutboxConfig controls the queue outbox sweep job
type OutboxConfig struct {
	// SweepCron is the cron expression for re-dispatching unsent rows
	SweepCron string
	// BatchSize caps the number of rows dispatched per sweep
	BatchSize int
	// DispatchTimeout is the per-sweep timeout (seconds)
	DispatchTimeout int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	XSSProtection         string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstSize         int
	WhitelistIPs      []string
	WhitelistPaths    []string
}

// DSN returns the SQL Server connection string in URL form.
// A configured ConnectionString wins over the discrete fields.
func (d *DatabaseConfig) DSN() string {
	if d.ConnectionString != "" {
		return d.ConnectionString
	}
	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
	}
	q := url.Values{}
	q.Set("database", d.Name)
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// DispatchTimeoutDuration returns the outbox dispatch timeout as duration
func (o *OutboxConfig) DispatchTimeoutDuration() time.Duration {
	return time.Duration(o.DispatchTimeout) * time.Second
}

// Load loads configuration from file and environment variables.
// This is a basic load that doesn't fetch secrets from the vault;
// use LoadWithSecrets for full secret resolution.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The Functions app settings names are kept as-is so a local.settings.json
	// style environment carries over unchanged
	if cfg.Database.ConnectionString == "" {
		cfg.Database.ConnectionString = v.GetString("SQLCONNECTIONSTRING")
	}
	if cfg.Queue.ConnectionString == "" {
		cfg.Queue.ConnectionString = v.GetString("AZUREWEBJOBSSTORAGE")
	}
	if cfg.Auth.FunctionKey == "" {
		cfg.Auth.FunctionKey = v.GetString("FUNCTION_KEY")
	}
	if cfg.Auth.AdminKey == "" {
		cfg.Auth.AdminKey = v.GetString("FUNCTION_ADMIN_KEY")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Queue.Mode {
	case "azure", "log":
	default:
		return fmt.Errorf("unsupported queue mode: %s", cfg.Queue.Mode)
	}
	switch cfg.Auth.Level {
	case "anonymous", "function", "admin":
	default:
		return fmt.Errorf("unsupported auth level: %s", cfg.Auth.Level)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "outbind")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults (Azure SQL / SQL Server)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 1433)
	v.SetDefault("database.name", "mySampleDatabase")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.connectRetries", 5)

	// Queue defaults
	v.SetDefault("queue.mode", "log")
	v.SetDefault("queue.name", "outqueue")
	v.SetDefault("queue.createIfMissing", true)

	// Auth defaults: trigger routes are open unless a level is configured
	v.SetDefault("auth.level", "anonymous")

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// Outbox defaults
	v.SetDefault("outbox.sweepCron", "@every 1m")
	v.SetDefault("outbox.batchSize", 100)
	v.SetDefault("outbox.dispatchTimeout", 30)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Content-Type", "x-functions-key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", false)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.burstSize", 10)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})
}

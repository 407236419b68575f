package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the complete service configuration
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Database    DatabaseConfig `toml:"database"`
	Redis       RedisConfig    `toml:"redis"`
	Minio       MinioConfig    `toml:"minio"`
	Auth        AuthConfig     `toml:"auth"`
	Jobs        JobsConfig     `toml:"jobs"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port int `toml:"port"`
}

// DatabaseConfig contains PostgreSQL pool settings
type DatabaseConfig struct {
	URL         string `toml:"url"`
	MaxConns    int32  `toml:"max_conns"`
	MinConns    int32  `toml:"min_conns"`
	AutoMigrate bool   `toml:"auto_migrate"`
}

// RedisConfig contains cache connection settings
type RedisConfig struct {
	Addr     string        `toml:"addr"`
	Password string        `toml:"password"`
	DB       int           `toml:"db"`
	CacheTTL time.Duration `toml:"cache_ttl"`
}

// MinioConfig contains object storage settings for archive exports
type MinioConfig struct {
	Endpoint      string        `toml:"endpoint"`
	AccessKey     string        `toml:"access_key"`
	SecretKey     string        `toml:"secret_key"`
	UseSSL        bool          `toml:"use_ssl"`
	ArchiveBucket string        `toml:"archive_bucket"`
	URLExpiry     time.Duration `toml:"url_expiry"`
}

// AuthConfig contains JWT verification settings. JWKSURL takes precedence over Secret.
type AuthConfig struct {
	Secret  string `toml:"secret"`
	JWKSURL string `toml:"jwks_url"`
}

// JobsConfig contains background job settings
type JobsConfig struct {
	ExpirySweepInterval time.Duration `toml:"expiry_sweep_interval"`
	ExpirySweepBatch    int           `toml:"expiry_sweep_batch"`
}

// Default returns the configuration used for local development.
func Default() *Config {
	return &Config{
		Environment: "development",
		Server:      ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			MaxConns:    25,
			MinConns:    5,
			AutoMigrate: true,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			CacheTTL: 10 * time.Minute,
		},
		Minio: MinioConfig{
			Endpoint:      "localhost:9000",
			AccessKey:     "minioadmin",
			SecretKey:     "minioadmin",
			ArchiveBucket: "organization-archives",
			URLExpiry:     15 * time.Minute,
		},
		Jobs: JobsConfig{
			ExpirySweepInterval: 15 * time.Minute,
			ExpirySweepBatch:    100,
		},
	}
}

// Load reads an optional TOML file on top of the defaults, then applies
// environment overrides. An empty filename skips the file.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename != "" {
		if _, err := toml.DecodeFile(filename, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Environment = getEnv("ENV", c.Environment)
	c.Server.Port = getEnvInt("PORT", c.Server.Port)

	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.AutoMigrate = getEnvBool("DATABASE_AUTO_MIGRATE", c.Database.AutoMigrate)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Redis.CacheTTL = getEnvDuration("CACHE_TTL", c.Redis.CacheTTL)

	c.Minio.Endpoint = getEnv("MINIO_ENDPOINT", c.Minio.Endpoint)
	c.Minio.AccessKey = getEnv("MINIO_ACCESS_KEY", c.Minio.AccessKey)
	c.Minio.SecretKey = getEnv("MINIO_SECRET_KEY", c.Minio.SecretKey)
	c.Minio.UseSSL = getEnvBool("MINIO_USE_SSL", c.Minio.UseSSL)
	c.Minio.ArchiveBucket = getEnv("MINIO_ARCHIVE_BUCKET", c.Minio.ArchiveBucket)

	c.Auth.Secret = getEnv("JWT_SECRET", c.Auth.Secret)
	c.Auth.JWKSURL = getEnv("JWKS_URL", c.Auth.JWKSURL)

	c.Jobs.ExpirySweepInterval = getEnvDuration("EXPIRY_SWEEP_INTERVAL", c.Jobs.ExpirySweepInterval)
	c.Jobs.ExpirySweepBatch = getEnvInt("EXPIRY_SWEEP_BATCH", c.Jobs.ExpirySweepBatch)
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Jobs.ExpirySweepInterval <= 0 {
		return errors.New("expiry sweep interval must be positive")
	}
	return nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StorageConfig holds object storage configuration.
type StorageConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	Secure          bool   `mapstructure:"secure"`
	PathStyle       bool   `mapstructure:"path_style"`
	// ACL "private" disables the custom domain in generated URLs.
	ACL          string `mapstructure:"acl"`
	CustomDomain string `mapstructure:"custom_domain"`

	ClientUploads ClientUploadsConfig         `mapstructure:"client_uploads"`
	Collections   map[string]CollectionConfig `mapstructure:"collections"`
	Breaker       BreakerConfig               `mapstructure:"breaker"`
}

// ClientUploadsConfig controls client-direct uploads through signed URLs.
type ClientUploadsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// CollectionConfig holds per-collection storage options.
type CollectionConfig struct {
	Prefix string `mapstructure:"prefix"`
}

// BreakerConfig configures the optional circuit breaker around the storage client.
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// AuthConfig holds bearer token validation settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// RedisConfig holds Redis configuration. An empty address disables Redis.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig limits signed URL issuance per principal.
type RateLimitConfig struct {
	SignedURLLimit  int           `mapstructure:"signed_url_limit"`
	SignedURLWindow time.Duration `mapstructure:"signed_url_window"`
}

// CORSConfig holds allowed origins for browser uploads.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ErrMissingBucket is returned when storage is enabled without a bucket.
var ErrMissingBucket = errors.New("storage.bucket is required when storage is enabled")

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/storage-oss")

	return load(v)
}

// LoadFile loads configuration from an explicit file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("STORAGE_OSS")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Secrets are usually injected through the environment.
	if secret := os.Getenv("STORAGE_OSS_ACCESS_KEY_SECRET"); secret != "" {
		cfg.Storage.AccessKeySecret = secret
	}
	if secret := os.Getenv("STORAGE_OSS_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if password := os.Getenv("STORAGE_OSS_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for required values.
func (c *Config) Validate() error {
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return ErrMissingBucket
	}
	return nil
}

// CollectionPrefix returns the configured prefix of a collection and whether
// the collection is configured at all.
func (c *StorageConfig) CollectionPrefix(slug string) (string, bool) {
	col, ok := c.Collections[slug]
	if !ok {
		return "", false
	}
	return col.Prefix, true
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Minute)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.region", "oss-cn-hangzhou")
	v.SetDefault("storage.secure", true)
	v.SetDefault("storage.client_uploads.enabled", false)
	v.SetDefault("storage.breaker.enabled", false)
	v.SetDefault("storage.breaker.failure_threshold", 5)
	v.SetDefault("storage.breaker.timeout", 30*time.Second)

	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.signed_url_limit", 60)
	v.SetDefault("rate_limit.signed_url_window", time.Minute)

	v.SetDefault("cors.allow_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

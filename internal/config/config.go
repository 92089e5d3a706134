package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/yukikurage/workboard-api/internal/constants"
)

type Config struct {
	Addr      string
	GinMode   string
	LogLevel  string
	LogFormat string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	RedisURL      string
	SessionSecret string
	SessionTTL    time.Duration

	OpenAIAPIKey string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string
}

var defaults = map[string]any{
	"addr":             ":8080",
	"gin_mode":         "debug",
	"log_level":        "info",
	"log_format":       "text",
	"db_driver":        "mysql",
	"db_host":          "localhost",
	"db_port":          "3306",
	"db_user":          "taskuser",
	"db_password":      "taskpassword",
	"db_name":          "workboard",
	"db_path":          "data/workboard.db",
	"redis_url":        "redis://localhost:6379/0",
	"session_secret":   "default-secret-key-change-me",
	"session_ttl":      constants.DefaultSessionTTL,
	"openai_api_key":   "",
	"minio_endpoint":   "",
	"minio_access_key": "",
	"minio_secret_key": "",
	"minio_bucket":     "workboard-images",
	"minio_use_ssl":    false,
	"minio_public_url": "",
}

// Load reads configuration from the environment and, when configFile is not
// empty, from a YAML file. Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key := range defaults {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		Addr:           v.GetString("addr"),
		GinMode:        v.GetString("gin_mode"),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		DBDriver:       strings.ToLower(v.GetString("db_driver")),
		DBHost:         v.GetString("db_host"),
		DBPort:         v.GetString("db_port"),
		DBUser:         v.GetString("db_user"),
		DBPassword:     v.GetString("db_password"),
		DBName:         v.GetString("db_name"),
		DBPath:         v.GetString("db_path"),
		RedisURL:       v.GetString("redis_url"),
		SessionSecret:  v.GetString("session_secret"),
		SessionTTL:     v.GetDuration("session_ttl"),
		OpenAIAPIKey:   v.GetString("openai_api_key"),
		MinioEndpoint:  v.GetString("minio_endpoint"),
		MinioAccessKey: v.GetString("minio_access_key"),
		MinioSecretKey: v.GetString("minio_secret_key"),
		MinioBucket:    v.GetString("minio_bucket"),
		MinioUseSSL:    v.GetBool("minio_use_ssl"),
		MinioPublicURL: v.GetString("minio_public_url"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must not be empty")
	}
	return nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

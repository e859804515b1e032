// Package config loads process configuration from defaults, an optional
// YAML file, a .env file and ODG_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type LocalConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	RequireAuth bool          `mapstructure:"require_auth"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
}

type MediaConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Local    LocalConfig    `mapstructure:"local"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Media    MediaConfig    `mapstructure:"media"`
	Log      LogConfig      `mapstructure:"log"`
}

// EnvPrefix is prepended to every environment override, e.g. ODG_SERVER_ADDR.
const EnvPrefix = "ODG"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8004")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("local.path", "odgpos.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.require_auth", false)
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("media.base_url", "")
	v.SetDefault("media.max_upload_bytes", 10<<20)
	v.SetDefault("log.file", "")
}

// Load reads configuration. With an empty path, config.yaml in the working
// directory is used when present; an explicit path must exist.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url (or DATABASE_URL) is required")
	}
	if c.Database.MaxConns <= 0 {
		return errors.New("database.max_conns must be positive")
	}
	if c.Media.MaxUploadBytes <= 0 {
		return errors.New("media.max_upload_bytes must be positive")
	}
	return nil
}

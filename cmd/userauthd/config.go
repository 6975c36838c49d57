package main

import (
	"strings"

	"github.com/goliatone/go-errors"
	auth "github.com/goliatone/go-userauth"
	"github.com/spf13/viper"
)

// AppConfig is the full daemon configuration. Values come from an optional
// userauthd.yaml and USERAUTH_ prefixed environment variables, env winning.
type AppConfig struct {
	ServerAddr  string        `mapstructure:"server_addr"`
	DatabaseDSN string        `mapstructure:"database_dsn"`
	Debug       bool          `mapstructure:"debug"`
	CORS        CORSConfig    `mapstructure:"cors"`
	Auth        auth.Settings `mapstructure:"auth"`
	Seed        SeedConfig    `mapstructure:"seed"`
}

type CORSConfig struct {
	AllowOrigins string `mapstructure:"allow_origins"`
	AllowMethods string `mapstructure:"allow_methods"`
}

// SeedConfig bootstraps a first admin account so a fresh database is
// usable without hand written SQL. Ignored when empty.
type SeedConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

func loadConfig() (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("server_addr", ":8080")
	v.SetDefault("database_dsn", "file:userauth.db?cache=shared&_pragma=foreign_keys(1)")
	v.SetDefault("debug", false)
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("cors.allow_methods", "GET,POST,PUT,DELETE,OPTIONS")
	v.SetDefault("auth.token_ttl", auth.DefaultTokenTTL)
	v.SetDefault("auth.issuer", "userauthd")
	v.SetDefault("auth.cookie_name", auth.DefaultCookieName)

	// keys without defaults still need to be registered or AutomaticEnv
	// will not surface them through Unmarshal
	v.SetDefault("auth.signing_secret", "")
	v.SetDefault("auth.shared_secret", "")
	v.SetDefault("auth.service_subject", "")
	v.SetDefault("seed.admin_username", "")
	v.SetDefault("seed.admin_email", "")
	v.SetDefault("seed.admin_password", "")

	v.SetConfigName("userauthd")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/userauthd")

	v.SetEnvPrefix("USERAUTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read config file")
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to unmarshal config")
	}

	cfg.Auth = cfg.Auth.WithDefaults()

	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

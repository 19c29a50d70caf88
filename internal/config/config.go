package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr      string
		GinMode   string
		StaticDir string
	}
	Mongo struct {
		URI      string
		Database string
	}
	Redis struct {
		Addr     string
		Password string
	}
	Session struct {
		Secret string
	}
	CORS struct {
		AllowedOrigins string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	_ = godotenv.Load() // optional .env

	v := viper.New()
	v.SetEnvPrefix("AUTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:5000")
	v.SetDefault("server.ginmode", "debug")
	v.SetDefault("server.staticdir", "public")
	v.SetDefault("mongo.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mongo.database", "authdb")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("session.secret", "")
	v.SetDefault("cors.allowedorigins", "http://localhost:3000")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects configurations that must not reach production.
func (c Config) Validate() error {
	if c.Server.GinMode == "release" {
		if c.Session.Secret == "" {
			return fmt.Errorf("session secret is required in release mode")
		}
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required in release mode")
		}
	}
	return nil
}

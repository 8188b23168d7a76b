package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds all configuration for the server.
// Tags use mapstructure for Viper unmarshalling; every key can be overridden
// through the environment.
type ServerConfig struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogPretty   bool   `mapstructure:"LOG_PRETTY"`

	// Redis backs the token blacklist. When RedisAddr is empty the server
	// falls back to the in-process blacklist, which is only suitable for a
	// single-instance deployment.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	JWTSecretKey        string `mapstructure:"JWT_SECRET_KEY"`
	JWTIssuer           string `mapstructure:"JWT_ISSUER"`
	AccessTokenTTLMin   int    `mapstructure:"ACCESS_TOKEN_TTL_MIN"`
	RefreshTokenTTLHour int    `mapstructure:"REFRESH_TOKEN_TTL_HOUR"`

	BcryptCost int `mapstructure:"BCRYPT_COST"`
}

// LoadConfig reads configuration from file, environment variables, and defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/botforge/")
	v.AddConfigPath("$HOME/.botforge")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "3000")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/botforge_dev")
	v.SetDefault("MONGO_DB_NAME", "botforge_dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET_KEY", "a_very_secret_jwt_key_change_me") // CHANGE IN PRODUCTION
	v.SetDefault("JWT_ISSUER", "botforge")
	v.SetDefault("ACCESS_TOKEN_TTL_MIN", 60)
	v.SetDefault("REFRESH_TOKEN_TTL_HOUR", 720) // 30 days
	v.SetDefault("BCRYPT_COST", 0)              // 0 means bcrypt.DefaultCost

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}

package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application. Values are read by
// viper from an optional config file or from environment variables.
type Config struct {
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`

	SpotifyClientID     string `mapstructure:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `mapstructure:"SPOTIFY_CLIENT_SECRET"`

	DBName     string `mapstructure:"DB_NAME"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
}

// configKeys are bound explicitly so that env-only values survive
// viper.Unmarshal without a config file present.
var configKeys = []string{
	"TELEGRAM_BOT_TOKEN",
	"SPOTIFY_CLIENT_ID",
	"SPOTIFY_CLIENT_SECRET",
	"DB_NAME",
	"DB_USER",
	"DB_PASSWORD",
	"DB_HOST",
	"DB_PORT",
}

// requiredKeys must be non-empty after loading; the loader fails fast with
// an error naming the first missing one.
var requiredKeys = []string{
	"TELEGRAM_BOT_TOKEN",
	"SPOTIFY_CLIENT_ID",
	"SPOTIFY_CLIENT_SECRET",
	"DB_NAME",
	"DB_USER",
	"DB_PASSWORD",
	"DB_HOST",
}

// LoadConfig reads configuration from a config file in path (if present)
// or from environment variables.
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	v.SetDefault("DB_PORT", "5432")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine as long as the environment
		// provides the values.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	for _, key := range requiredKeys {
		if v.GetString(key) == "" {
			return Config{}, fmt.Errorf("%s is not set", key)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return config, nil
}

// PostgresDSN assembles the connection string for the database from the
// individual DB_* settings.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

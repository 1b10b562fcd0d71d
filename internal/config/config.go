package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port                     string `mapstructure:"PORT"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	JWTSecret                string `mapstructure:"JWT_SECRET"`
	TokenTTLHours            int    `mapstructure:"TOKEN_TTL_HOURS"`
	EmailUser                string `mapstructure:"EMAIL_USER"`
	EmailPass                string `mapstructure:"EMAIL_PASS"`
	SMTPHost                 string `mapstructure:"SMTP_HOST"`
	SMTPPort                 int    `mapstructure:"SMTP_PORT"`
	ClientURL                string `mapstructure:"CLIENT_URL"`
	ReconcileIntervalMinutes int    `mapstructure:"RECONCILE_INTERVAL_MINUTES"`
}

func Load() (*Config, error) {
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("TOKEN_TTL_HOURS", 1)
	viper.SetDefault("SMTP_HOST", "smtp.gmail.com")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("RECONCILE_INTERVAL_MINUTES", 10)

	viper.BindEnv("PORT")
	viper.BindEnv("DATABASE_URL")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("TOKEN_TTL_HOURS")
	viper.BindEnv("EMAIL_USER")
	viper.BindEnv("EMAIL_PASS")
	viper.BindEnv("SMTP_HOST")
	viper.BindEnv("SMTP_PORT")
	viper.BindEnv("CLIENT_URL")
	viper.BindEnv("RECONCILE_INTERVAL_MINUTES")

	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	return &cfg, nil
}

package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	DatabaseDSN     string        `env:"DATABASE_URI"`
	MigrationsDir   string        `env:"MIGRATIONS_DIR"`
	JWTSecret       string        `env:"JWT_SECRET"`
	NotifierAddress string        `env:"NOTIFIER_ADDRESS"`
	RedemptionTTL   time.Duration `env:"REDEMPTION_TTL"`
	SweepInterval   time.Duration `env:"EXPIRY_SWEEP_INTERVAL"`
}

func LoadConfig() (*Config, error) {
	// .env файл опционален, ошибку отсутствия игнорируем.
	_ = godotenv.Load()

	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.JWTSecret == "" {
		return nil, errors.New("JWT secret is not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	flag.StringVar(&flagConfig.JWTSecret, "s", "", "JWT signing secret")
	flag.StringVar(&flagConfig.NotifierAddress, "n", "", "Notification service base URL, empty value disables notifications")
	flag.DurationVar(&flagConfig.RedemptionTTL, "ttl", 0, "Redemption claim window, zero disables expiry sweeping")
	flag.DurationVar(&flagConfig.SweepInterval, "sweep", time.Minute, "Expiry sweep interval")

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:      defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:     defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir:   defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		JWTSecret:       defaultIfBlank(envConfig.JWTSecret, flagsConfig.JWTSecret),
		NotifierAddress: defaultIfBlank(envConfig.NotifierAddress, flagsConfig.NotifierAddress),
		RedemptionTTL:   defaultIfZero(envConfig.RedemptionTTL, flagsConfig.RedemptionTTL),
		SweepInterval:   defaultIfZero(envConfig.SweepInterval, flagsConfig.SweepInterval),
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func defaultIfZero(value time.Duration, defaultValue time.Duration) time.Duration {
	if value == 0 {
		return defaultValue
	}
	return value
}

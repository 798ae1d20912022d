package config

import (
	"os"
)

type Config struct {
	DatabaseURL  string
	Port         string
	Environment  string
	PredictorURL string

	// Structured logging
	LogLevel  string
	LogFormat string

	// Optional YAML file overriding the built-in trading parameters
	TradingConfigPath string

	// Identifies this deployment to the wiki price API
	WikiUserAgent string
}

func Load() *Config {
	defaultDSN := "flipper:flipper@tcp(127.0.0.1:3306)/osrs_flipper?charset=utf8mb4&parseTime=True&loc=Local"

	return &Config{
		DatabaseURL:  getEnv("DATABASE_URL", defaultDSN),
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		PredictorURL: getEnv("PREDICTOR_URL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		TradingConfigPath: getEnv("TRADING_CONFIG_PATH", ""),

		WikiUserAgent: getEnv("WIKI_USER_AGENT", "osrs-flipper backend"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

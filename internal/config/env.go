package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	Port              string
	JWTSecret         string
	SuperglueAPIKey   string
	SuperglueEndpoint string
	AIAPIKey          string
	GenModel          string
	HistoryCacheDir   string
	HistorySyncEvery  time.Duration
	DefaultMerchantID string
	MagicLinkTTL      time.Duration
}

// LoadConfig loads the environment variables and returns the config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		Port:              getEnv("PORT", "8080"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		SuperglueAPIKey:   getEnv("SUPERGLUE_API_KEY", ""),
		SuperglueEndpoint: getEnv("SUPERGLUE_ENDPOINT", "https://graphql.superglue.ai"),
		AIAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GenModel:          getEnv("GEN_MODEL", "gemini-1.5-flash"),
		HistoryCacheDir:   getEnv("HISTORY_CACHE_DIR", "./data"),
		HistorySyncEvery:  time.Duration(getEnvInt("HISTORY_SYNC_INTERVAL_SECONDS", 5)) * time.Second,
		DefaultMerchantID: getEnv("DEFAULT_MERCHANT_ID", "merchant_008"),
		MagicLinkTTL:      time.Duration(getEnvInt("MAGIC_LINK_TTL_MINUTES", 15)) * time.Minute,
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

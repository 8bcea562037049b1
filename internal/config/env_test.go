package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/insightdeck")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://graphql.superglue.ai", cfg.SuperglueEndpoint)
	assert.Equal(t, "gemini-1.5-flash", cfg.GenModel)
	assert.Equal(t, "./data", cfg.HistoryCacheDir)
	assert.Equal(t, 5*time.Second, cfg.HistorySyncEvery)
	assert.Equal(t, "merchant_008", cfg.DefaultMerchantID)
	assert.Equal(t, 15*time.Minute, cfg.MagicLinkTTL)
}

func TestGetEnvInt_Invalid(t *testing.T) {
	t.Setenv("HISTORY_SYNC_INTERVAL_SECONDS", "soon")
	assert.Equal(t, 5, getEnvInt("HISTORY_SYNC_INTERVAL_SECONDS", 5))
}

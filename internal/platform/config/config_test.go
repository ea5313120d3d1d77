package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("ENV", "dev")
	t.Setenv("API_KEY", "")
	t.Setenv("CAMPAIGN_CODE", "")
	t.Setenv("CAMPAIGN_VALUE", "")
	t.Setenv("CAMPAIGN_VALIDITY_DAYS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "EMAIL25SAVE", cfg.Campaign.Code)
	assert.Equal(t, "fixed", cfg.Campaign.Type)
	assert.InDelta(t, 25.0, cfg.Campaign.Value, 0.0001)
	assert.Equal(t, 30, cfg.Campaign.ValidityDays)
	assert.Equal(t, "dev-admin-key", cfg.APIKey)
}

func TestLoadCampaignOverrides(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("CAMPAIGN_CODE", "spring10")
	t.Setenv("CAMPAIGN_VALUE", "10.5")
	t.Setenv("CAMPAIGN_PRODUCTS", "gold, platinum ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "SPRING10", cfg.Campaign.Code)
	assert.InDelta(t, 10.5, cfg.Campaign.Value, 0.0001)
	assert.Equal(t, []string{"gold", "platinum"}, cfg.Campaign.Products)
}

func TestLoadRejectsMissingDatabaseURL(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresAPIKeyInProd(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("ENV", "prod")
	t.Setenv("API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDBType(t *testing.T) {
	t.Setenv("DB_TYPE", "oracle")

	_, err := Load()
	assert.Error(t, err)
}

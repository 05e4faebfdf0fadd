package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", " 1, 2 ,3")
	t.Setenv("REMNAWAVE_API_URL", "https://panel.example.com/")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, cfg.AdminIDs)
	assert.Equal(t, "https://panel.example.com", cfg.APIURL)
	assert.Equal(t, 20, cfg.MaxBulkCreate)
	assert.Equal(t, 100*time.Millisecond, cfg.BulkCreateDelay)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.WebhookMode)
	assert.False(t, cfg.CacheEnabled)
}

func TestLoadFromEnv_MissingMandatory(t *testing.T) {
	testCases := []struct {
		name  string
		unset string
	}{
		{name: "token", unset: "TELEGRAM_BOT_TOKEN"},
		{name: "admins", unset: "ADMIN_IDS"},
		{name: "api url", unset: "REMNAWAVE_API_URL"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.unset, "")

			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	t.Run("bad admin id", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ADMIN_IDS", "1,abc")
		_, err := LoadFromEnv()
		assert.ErrorContains(t, err, "abc")
	})

	t.Run("bulk cap out of range", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MAX_BULK_CREATE", "0")
		_, err := LoadFromEnv()
		assert.ErrorContains(t, err, "MAX_BULK_CREATE")
	})

	t.Run("webhook without url", func(t *testing.T) {
		setRequired(t)
		t.Setenv("WEBHOOK_MODE", "true")
		_, err := LoadFromEnv()
		assert.ErrorContains(t, err, "WEBHOOK_URL")
	})
}

func TestParseAdminIDs(t *testing.T) {
	ids, err := ParseAdminIDs("10,,20 ")
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20}, ids)

	_, err = ParseAdminIDs(" , ")
	assert.Error(t, err)
}

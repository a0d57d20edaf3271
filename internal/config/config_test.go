package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co/")
	t.Setenv("SUPABASE_KEY", "anon-key")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, SourceREST, cfg.CampaignSource)
	assert.Equal(t, "https://example.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, 60*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 120*time.Second, cfg.UploadTimeout)
	assert.Equal(t, "AutoLynx AI Caller Portal", cfg.Branding.AppName)
	assert.Equal(t, "support@autolynx.ai", cfg.Branding.SupportEmail)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_DurationFormats(t *testing.T) {
	t.Setenv("CHAT_TIMEOUT", "90")
	t.Setenv("UPLOAD_TIMEOUT", "2m")
	t.Setenv("POLL_INTERVAL", "not-a-duration")

	cfg := LoadConfig()

	assert.Equal(t, 90*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 2*time.Minute, cfg.UploadTimeout)
	assert.Equal(t, 15*time.Second, cfg.PollInterval)
}

func TestLoadConfig_Bools(t *testing.T) {
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("INSTALL_CHANGE_TRIGGERS", "maybe")

	cfg := LoadConfig()

	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.InstallTriggers)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:           "8080",
			DBDriver:       "sqlite",
			DBPath:         "./test.db",
			CampaignSource: SourceNone,
			ChatTimeout:    time.Second,
			UploadTimeout:  time.Second,
			PollInterval:   time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty port", func(c *Config) { c.Port = "" }, "PORT"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER"},
		{"postgres without url", func(c *Config) { c.DBDriver = "postgres" }, "DATABASE_URL"},
		{"campaign postgres without url", func(c *Config) { c.CampaignSource = SourcePostgres }, "CAMPAIGN_DATABASE_URL"},
		{"rest without key", func(c *Config) {
			c.CampaignSource = SourceREST
			c.SupabaseURL = "https://x.supabase.co"
		}, "SUPABASE_KEY"},
		{"unknown source", func(c *Config) { c.CampaignSource = "mongo" }, "CAMPAIGN_SOURCE"},
		{"zero timeout", func(c *Config) { c.ChatTimeout = 0 }, "CHAT_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

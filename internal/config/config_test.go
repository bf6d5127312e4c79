package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.RESTPort)
	assert.Equal(t, "8081", cfg.Server.WSPort)
	assert.True(t, cfg.Database.Enabled)
	assert.True(t, cfg.Sources.Archive.Enabled)
	assert.False(t, cfg.Sources.CricAPI.Enabled)
	assert.False(t, cfg.Telegram.Enabled)
	assert.Equal(t, []string{"t20", "odi", "ipl"}, cfg.Sources.Archive.Formats)
	assert.Equal(t, 60*time.Second, cfg.Cache.LiveMatches)
	assert.Equal(t, 6*time.Hour, cfg.Cache.PlayerStatsTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "0 3 * * *", cfg.Scheduler.ArchiveRefreshSpec)
	assert.Equal(t, "", cfg.LLM.Provider)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
server:
  rest_port: "9090"
cache:
  live_matches: 30s
sources:
  rapidapi:
    enabled: true
    api_key: test-key
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.RESTPort)
	assert.Equal(t, 30*time.Second, cfg.Cache.LiveMatches)
	assert.True(t, cfg.Sources.RapidAPI.Enabled)
	assert.Equal(t, "test-key", cfg.Sources.RapidAPI.APIKey)
	// Untouched keys keep their defaults.
	assert.Equal(t, "8081", cfg.Server.WSPort)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateSourceNeedsKey(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Sources.CricAPI.Enabled = true
	cfg.Sources.CricAPI.APIKey = ""
	assert.ErrorContains(t, cfg.Validate(), "cricapi")

	cfg.Sources.CricAPI.APIKey = "k"
	cfg.Sources.RapidAPI.Enabled = true
	assert.ErrorContains(t, cfg.Validate(), "rapidapi")
}

func TestValidateTelegramNeedsToken(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Telegram.Enabled = true
	assert.ErrorContains(t, cfg.Validate(), "bot_token")
}

func TestValidateCacheTTL(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Cache.LiveMatches = 0
	assert.ErrorContains(t, cfg.Validate(), "live_matches")
}

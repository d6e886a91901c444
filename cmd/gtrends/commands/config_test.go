package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gtrends/lib/trends/series"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	err := os.WriteFile(path, []byte(`{
		// password comes from the environment
		credentials: { username: "alice" },
		geo: "US",
		rescale: { threshold: 5 },
	}`), 0600)
	require.NoError(t, err)
	t.Setenv("GTRENDS_PASSWORD", "hunter2")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "alice", cfg.Credentials.Username)
	require.Equal(t, "hunter2", cfg.Credentials.Password)
	require.Equal(t, "US", cfg.Geo)
	require.Equal(t, "https://accounts.google.com", cfg.AccountsUrl)
	require.Equal(t, 5.0, cfg.Rescale.Options().Threshold)
	require.Equal(t, 0.0003, cfg.Rescale.Options().Floor)
	require.False(t, cfg.Cache.Enabled())
}

func TestLoadConfigZeroThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	err := os.WriteFile(path, []byte(`{
		credentials: { username: "alice", password: "hunter2" },
		rescale: { threshold: 0 },
	}`), 0600)
	require.NoError(t, err)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, series.RescaleOptions{Threshold: 0, Floor: 0.0003}, cfg.Rescale.Options())
	require.Equal(t, series.DefaultRescaleOptions(), rescaleConfig{}.Options())
}

func TestLoadConfigWithoutCredentials(t *testing.T) {
	t.Setenv("GTRENDS_USERNAME", "")
	t.Setenv("GTRENDS_PASSWORD", "")
	_, err := loadConfig(filepath.Join(t.TempDir(), "config.json5"))
	require.Error(t, err)
}

func TestDateRange(t *testing.T) {
	start, end, err := dateRange("2006-01", "2007-03-15")
	require.NoError(t, err)
	require.Equal(t, time.Date(2006, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2007, time.March, 15, 0, 0, 0, 0, time.UTC), end)

	_, end, err = dateRange("2006-01", "")
	require.NoError(t, err)
	require.Equal(t, 1, end.Day())

	_, _, err = dateRange("jan 2006", "")
	require.Error(t, err)
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/planforge/go-session-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	require.Equal(t, "https://api.planforge.example", cfg.APIBaseURL)
	require.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	require.Equal(t, filepath.Join("data", "session.json"), cfg.SessionRecordPath())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: https://staging.planforge.example
data_dir: /tmp/planforge
http_timeout: 5s
init_delay: 0s
remember_window: 168h
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://staging.planforge.example", cfg.APIBaseURL)
	require.Equal(t, "/tmp/planforge", cfg.DataDir)
	require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	require.Equal(t, time.Duration(0), cfg.InitDelay)
	require.Equal(t, 7*24*time.Hour, cfg.RememberWindow)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestEnvOverridesDurations(t *testing.T) {
	t.Setenv("PLANFORGE_HTTP_TIMEOUT", "3s")
	t.Setenv("PLANFORGE_INIT_DELAY", "25ms")

	cfg := config.Default()
	require.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 25*time.Millisecond, cfg.InitDelay)
}

func TestEnvInvalidDurationKeepsConfigured(t *testing.T) {
	t.Setenv("PLANFORGE_HTTP_TIMEOUT", "soon")

	cfg := config.Default()
	require.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: https://file.example\n"), 0o600))

	t.Setenv("PLANFORGE_API_URL", "https://env.example")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://env.example", cfg.APIBaseURL)
}

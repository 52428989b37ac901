package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the EFC_* variables a developer shell may export, restoring them after the test.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"EFC_MODE", "EFC_API_URL", "EFC_PRODUCTION_API_URL", "EFC_LOCAL_API_URL",
		"EFC_API_TIMEOUT", "EFC_RETRY_MAX_RETRIES", "EFC_PROFILE", "EFC_SECRETS_BACKEND",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func loadForTest(t *testing.T, home string) (Config, error) {
	t.Helper()

	return Load(viper.New(), LoadOptions{
		HomeDir:    home,
		DotEnvPath: filepath.Join(home, "missing.env"),
	})
}

func TestLoadDefaultsToProduction(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()

	cfg, err := loadForTest(t, home)
	require.NoError(t, err)

	assert.Equal(t, ModeProduction, cfg.Mode)
	assert.Equal(t, DefaultProductionAPIURL, cfg.APIURL)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, 30*time.Second, cfg.DashboardInterval)
	assert.Equal(t, 5*time.Second, cfg.NotificationInterval)
	assert.Equal(t, domain.DefaultProfile, cfg.Profile)
	assert.Equal(t, filepath.Join(home, ".efc", "sessions.toml"), cfg.SessionsPath)
	assert.Equal(t, filepath.Join(home, ".efc", "secrets"), cfg.SecretsDir)
	assert.Equal(t, SecretsAuto, cfg.SecretsBackend)
}

func TestLoadLocalModeUsesLoopbackURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("EFC_MODE", "local")

	cfg, err := loadForTest(t, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, DefaultLocalAPIURL, cfg.APIURL)
}

func TestLoadPerModeURLOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EFC_MODE", "local")
	t.Setenv("EFC_LOCAL_API_URL", "http://127.0.0.1:9000/api")
	t.Setenv("EFC_PRODUCTION_API_URL", "https://prod.example.com/api")

	cfg, err := loadForTest(t, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/api", cfg.APIURL)

	t.Setenv("EFC_MODE", "production")
	cfg, err = loadForTest(t, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "https://prod.example.com/api", cfg.APIURL)
}

func TestLoadExplicitAPIURLWinsOverMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("EFC_MODE", "local")
	t.Setenv("EFC_API_URL", "https://pinned.example.com/api")

	cfg, err := loadForTest(t, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "https://pinned.example.com/api", cfg.APIURL)
}

func TestLoadReadsConfigFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	configDir := filepath.Join(home, ".efc")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(`
mode = "local"
profile = "school-admin"

[api]
timeout = "45s"

[retry]
max_retries = 5
`), 0o600))

	cfg, err := loadForTest(t, home)
	require.NoError(t, err)

	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, domain.ProfileName("school-admin"), cfg.Profile)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, filepath.Join(configDir, "config.toml"), cfg.ConfigFile)
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	dotEnv := filepath.Join(home, ".env")
	require.NoError(t, os.WriteFile(dotEnv, []byte("EFC_MODE=local\n"), 0o600))

	cfg, err := Load(viper.New(), LoadOptions{HomeDir: home, DotEnvPath: dotEnv})
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, cfg.Mode)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown mode", env: map[string]string{"EFC_MODE": "staging"}, wantErr: "unsupported mode"},
		{name: "non http url", env: map[string]string{"EFC_API_URL": "ftp://example.com"}, wantErr: "must use http or https"},
		{name: "zero timeout", env: map[string]string{"EFC_API_TIMEOUT": "0s"}, wantErr: "timeout must be positive"},
		{name: "negative retries", env: map[string]string{"EFC_RETRY_MAX_RETRIES": "-1"}, wantErr: "must not be negative"},
		{name: "unknown secrets backend", env: map[string]string{"EFC_SECRETS_BACKEND": "keychain"}, wantErr: "unsupported secrets backend"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tc.env {
				t.Setenv(key, value)
			}

			_, err := loadForTest(t, t.TempDir())
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode(" Production ")
	require.NoError(t, err)
	assert.Equal(t, ModeProduction, mode)

	_, err = ParseMode("")
	require.Error(t, err)
}

func TestLoadSecretsBackendFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("EFC_SECRETS_BACKEND", "File")

	cfg, err := loadForTest(t, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, SecretsFile, cfg.SecretsBackend)
}

package config

import (
	"path/filepath"
	"time"

	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/spf13/viper"
)

const (
	DefaultProductionAPIURL = "https://ecofuelconnect-backend.onrender.com/api"
	DefaultLocalAPIURL      = "http://localhost:5000/api"

	// The production backend sleeps when idle; a cold start routinely takes
	// most of a minute.
	DefaultTimeout              = 90 * time.Second
	DefaultMaxRetries           = 3
	DefaultRetryBaseDelay       = time.Second
	DefaultDashboardInterval    = 30 * time.Second
	DefaultNotificationInterval = 5 * time.Second
)

// ApplyDefaults sets default configuration values in the provided Viper instance.
func ApplyDefaults(v *viper.Viper, configDir string) {
	v.SetDefault(KeyMode, string(ModeProduction))
	v.SetDefault(KeyProductionAPIURL, DefaultProductionAPIURL)
	v.SetDefault(KeyLocalAPIURL, DefaultLocalAPIURL)
	v.SetDefault(KeyTimeout, DefaultTimeout)

	v.SetDefault(KeyMaxRetries, DefaultMaxRetries)
	v.SetDefault(KeyRetryBaseDelay, DefaultRetryBaseDelay)

	v.SetDefault(KeyDashboardInterval, DefaultDashboardInterval)
	v.SetDefault(KeyNotificationInterval, DefaultNotificationInterval)

	v.SetDefault(KeyProfile, string(domain.DefaultProfile))
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeySecretsDir, filepath.Join(configDir, "secrets"))
	v.SetDefault(KeySecretsBackend, string(SecretsAuto))
	v.SetDefault(KeySessionsPath, filepath.Join(configDir, "sessions.toml"))
}

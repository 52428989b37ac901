// Package config resolves the explicit startup configuration of the client.
//
// Values are layered with viper: defaults, then ~/.efc/config.toml, then an
// optional .env file, then EFC_* environment variables, then flag overrides.
// The backend base URL is selected by Mode unless EFC_API_URL pins it.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Mode string

const (
	ModeLocal      Mode = "local"
	ModeProduction Mode = "production"
)

func ParseMode(raw string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case ModeLocal, ModeProduction:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported mode %q (want local or production)", raw)
	}
}

const (
	configDirName  = ".efc"
	configName     = "config"
	configType     = "toml"
	envPrefix      = "EFC"
	dotEnvFileName = ".env"
)

// Keys are exported so the CLI can bind flags onto them.
const (
	KeyMode                 = "mode"
	KeyAPIURL               = "api.url"
	KeyProductionAPIURL     = "api.production_url"
	KeyLocalAPIURL          = "api.local_url"
	KeyTimeout              = "api.timeout"
	KeyMaxRetries           = "retry.max_retries"
	KeyRetryBaseDelay       = "retry.base_delay"
	KeyDashboardInterval    = "poll.dashboard_interval"
	KeyNotificationInterval = "poll.notification_interval"
	KeyProfile              = "profile"
	KeyLogLevel             = "log.level"
	KeySecretsDir           = "secrets.dir"
	KeySecretsBackend       = "secrets.backend"
	KeySessionsPath         = "sessions.path"
)

// SecretsBackend selects where bearer tokens are kept. Auto prefers pass(1)
// and falls back to files under SecretsDir.
type SecretsBackend string

const (
	SecretsAuto SecretsBackend = "auto"
	SecretsFile SecretsBackend = "file"
	SecretsPass SecretsBackend = "pass"
)

type Config struct {
	Mode                 Mode
	APIURL               string
	Timeout              time.Duration
	MaxRetries           int
	RetryBaseDelay       time.Duration
	DashboardInterval    time.Duration
	NotificationInterval time.Duration
	Profile              domain.ProfileName
	LogLevel             string
	SecretsDir           string
	SecretsBackend       SecretsBackend
	SessionsPath         string
	ConfigFile           string
}

type LoadOptions struct {
	// HomeDir overrides the user home directory lookup.
	HomeDir string
	// DotEnvPath overrides the .env location; empty means ./.env.
	DotEnvPath string
}

func Load(v *viper.Viper, opts LoadOptions) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir := opts.HomeDir
	if homeDir == "" {
		resolved, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		homeDir = resolved
	}

	if err := loadDotEnv(opts.DotEnvPath); err != nil {
		return Config{}, err
	}

	configDir := filepath.Join(homeDir, configDirName)
	ApplyDefaults(v, configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyAPIURL, "EFC_API_URL")
	_ = v.BindEnv(KeyProductionAPIURL, "EFC_PRODUCTION_API_URL")
	_ = v.BindEnv(KeyLocalAPIURL, "EFC_LOCAL_API_URL")

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	mode, err := ParseMode(v.GetString(KeyMode))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Mode:                 mode,
		APIURL:               resolveAPIURL(v, mode),
		Timeout:              v.GetDuration(KeyTimeout),
		MaxRetries:           v.GetInt(KeyMaxRetries),
		RetryBaseDelay:       v.GetDuration(KeyRetryBaseDelay),
		DashboardInterval:    v.GetDuration(KeyDashboardInterval),
		NotificationInterval: v.GetDuration(KeyNotificationInterval),
		Profile:              domain.ProfileName(strings.TrimSpace(v.GetString(KeyProfile))),
		LogLevel:             v.GetString(KeyLogLevel),
		SecretsDir:           v.GetString(KeySecretsDir),
		SecretsBackend:       SecretsBackend(strings.ToLower(strings.TrimSpace(v.GetString(KeySecretsBackend)))),
		SessionsPath:         v.GetString(KeySessionsPath),
		ConfigFile:           v.ConfigFileUsed(),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if err := validateAPIURL(c.APIURL); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("retry base delay must not be negative, got %s", c.RetryBaseDelay)
	}
	if c.DashboardInterval <= 0 || c.NotificationInterval <= 0 {
		return errors.New("poll intervals must be positive")
	}
	if c.Profile == "" {
		return errors.New("profile is empty")
	}
	switch c.SecretsBackend {
	case SecretsAuto, SecretsFile, SecretsPass:
	default:
		return fmt.Errorf("unsupported secrets backend %q (want auto, file or pass)", c.SecretsBackend)
	}

	return nil
}

func resolveAPIURL(v *viper.Viper, mode Mode) string {
	if explicit := strings.TrimSpace(v.GetString(KeyAPIURL)); explicit != "" {
		return explicit
	}

	if mode == ModeProduction {
		return strings.TrimSpace(v.GetString(KeyProductionAPIURL))
	}

	return strings.TrimSpace(v.GetString(KeyLocalAPIURL))
}

func validateAPIURL(raw string) error {
	if raw == "" {
		return errors.New("api url is empty")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse api url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api url %q must use http or https", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("api url %q has no host", raw)
	}

	return nil
}

func loadDotEnv(path string) error {
	if path == "" {
		path = dotEnvFileName
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

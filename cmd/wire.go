package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/ecofuelconnect/efc/internal/adapters/backend"
	"github.com/ecofuelconnect/efc/internal/adapters/render/dashboard"
	tomlrepo "github.com/ecofuelconnect/efc/internal/adapters/repo/toml"
	chainstore "github.com/ecofuelconnect/efc/internal/adapters/secrets/chain"
	filestore "github.com/ecofuelconnect/efc/internal/adapters/secrets/file"
	passstore "github.com/ecofuelconnect/efc/internal/adapters/secrets/pass"
	"github.com/ecofuelconnect/efc/internal/adapters/transport"
	"github.com/ecofuelconnect/efc/internal/application"
	"github.com/ecofuelconnect/efc/internal/config"
	"github.com/ecofuelconnect/efc/internal/logging"
	"github.com/ecofuelconnect/efc/internal/ports"
	"github.com/ecofuelconnect/efc/internal/version"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	viper  *viper.Viper
	asJSON bool

	cfg            config.Config
	logger         *zap.Logger
	registry       *prometheus.Registry
	client         *transport.Client
	api            *backend.Backend
	sessions       *application.SessionService
	renderBoard    func(dashboard.Board, dashboard.RenderOptions) (string, error)
	idempotencyKey func() string
	now            func() time.Time
}

func newApp(v *viper.Viper) *app {
	return &app{
		viper:          v,
		logger:         zap.NewNop(),
		renderBoard:    dashboard.Render,
		idempotencyKey: uuid.NewString,
		now:            time.Now,
	}
}

// wire resolves configuration once flags are parsed and builds the client
// stack every command shares.
func (a *app) wire(cmd *cobra.Command) error {
	cfg, err := config.Load(a.viper, config.LoadOptions{})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	a.logger = logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Mode == config.ModeLocal,
		Output:      cmd.ErrOrStderr(),
	}).With(zap.String("profile", string(cfg.Profile)))

	repo, err := tomlrepo.NewRepository(a.viper)
	if err != nil {
		return fmt.Errorf("wire session repository: %w", err)
	}

	store, err := newSecretStore(cfg)
	if err != nil {
		return fmt.Errorf("wire secret store: %w", err)
	}

	a.registry = prometheus.NewRegistry()
	metrics, err := transport.NewMetrics(a.registry)
	if err != nil {
		return fmt.Errorf("register transport metrics: %w", err)
	}

	// The client needs the session's token and the session service needs the
	// client to log in, so the credential lookup is resolved per request.
	profile := cfg.Profile
	client, err := transport.New(
		transport.Config{
			BaseURL:        cfg.APIURL,
			Timeout:        cfg.Timeout,
			MaxRetries:     cfg.MaxRetries,
			RetryBaseDelay: cfg.RetryBaseDelay,
			UserAgent:      "efc/" + version.Version,
		},
		transport.WithLogger(a.logger),
		transport.WithMetrics(metrics),
		transport.WithCredentials(transport.CredentialFunc(func(ctx context.Context) (string, error) {
			return a.sessions.Token(ctx, profile)
		})),
	)
	if err != nil {
		return fmt.Errorf("wire api client: %w", err)
	}

	a.client = client
	a.api = backend.New(client)
	a.sessions = application.NewSessionService(a.api.Auth, repo, store, ports.SystemClock{})

	a.logger.Debug("client wired",
		zap.String("mode", string(cfg.Mode)),
		zap.String("api_url", client.BaseURL()),
		zap.String("secrets", string(cfg.SecretsBackend)),
	)

	return nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func newSecretStore(cfg config.Config) (ports.SecretStore, error) {
	switch cfg.SecretsBackend {
	case config.SecretsFile:
		return filestore.NewStore(cfg.SecretsDir), nil
	case config.SecretsPass:
		return passstore.NewStore(), nil
	default:
		return chainstore.NewPassFirstWithFileFallback(cfg.SecretsDir)
	}
}

package di

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/radiorabe/supersaas-auth-connector/internal/config"
	"github.com/radiorabe/supersaas-auth-connector/internal/gate"
	"github.com/radiorabe/supersaas-auth-connector/internal/identity"
	"github.com/radiorabe/supersaas-auth-connector/internal/provisioning"
	"github.com/radiorabe/supersaas-auth-connector/internal/server"
	"github.com/radiorabe/supersaas-auth-connector/internal/session"
)

// ProvideLogger creates a zerolog.Logger for the runtime environment:
// JSON on plain stdout, pretty console format when attached to a
// terminal-like environment via SAC_CONSOLE_LOG.
func ProvideLogger() zerolog.Logger {
	if os.Getenv("SAC_CONSOLE_LOG") != "" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			Level(zerolog.InfoLevel).
			With().
			Timestamp().
			Logger()
	}

	return zerolog.New(os.Stdout).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}

// ProvideContext returns the root context with the logger attached.
func ProvideContext(logger zerolog.Logger) context.Context {
	return logger.WithContext(context.Background())
}

// ProvideConfig loads and validates the process configuration.
func ProvideConfig(logger zerolog.Logger, path ConfigPath, port PortOverride) (*config.Config, error) {
	cfg, err := config.Load(string(path))
	if err != nil {
		return nil, err
	}
	if port != 0 {
		cfg.Port = int(port)
	}
	if cfg.Debug {
		logger.Info().Msg("Debug mode enabled")
	}
	return cfg, nil
}

// isLocalDev reports whether the externally visible URL is plain-http
// localhost, where Secure cookies would be dropped by the browser.
func isLocalDev(externalURL string) bool {
	return strings.HasPrefix(externalURL, "http://localhost") ||
		strings.HasPrefix(externalURL, "http://127.0.0.1")
}

// ProvideSessionStore creates the cookie-backed session store.
func ProvideSessionStore(cfg *config.Config) *session.Store {
	return session.New(cfg.SecretKey, isLocalDev(cfg.URL))
}

// ProvideIdentityProvider creates the Keycloak provider for the
// configured realm.
func ProvideIdentityProvider(cfg *config.Config) identity.Provider {
	return &identity.KeycloakProvider{
		ServerURL: cfg.SSOServerURL,
		Realm:     cfg.SSORealm,
	}
}

// ProvideIdentityClient creates the OIDC client, or a network-free
// stand-in when authentication is disabled.
func ProvideIdentityClient(ctx context.Context, cfg *config.Config, provider identity.Provider, disableAuth DisableAuth) (gate.IdentityClient, error) {
	logger := zerolog.Ctx(ctx)

	if bool(disableAuth) {
		logger.Warn().Msg("Authentication is DISABLED - using no-op identity client (development only)")
		return identity.NewDisabledClient(), nil
	}

	client, err := identity.NewClient(ctx, identity.ClientInput{
		Provider:     provider,
		ClientID:     cfg.SSOClientID,
		ClientSecret: cfg.SSOClientSecret,
		CallbackURL:  cfg.CallbackURL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create identity client: %w", err)
	}
	return client, nil
}

// ProvideProvisioningClient creates the SuperSaaS client.
func ProvideProvisioningClient(cfg *config.Config) *provisioning.Client {
	return provisioning.New(cfg.SuperSaaSBaseURL, cfg.SuperSaaSAccountName, cfg.SuperSaaSAPIToken)
}

// ProvideGate creates the authentication gate.
func ProvideGate(cfg *config.Config, client gate.IdentityClient, sessions *session.Store, disableAuth DisableAuth) *gate.Gate {
	return gate.New(gate.Input{
		Identity:     client,
		Sessions:     sessions,
		CallbackPath: "/oidc/callback",
		ErrorURL:     cfg.ErrorRedirectURL,
		Disabled:     bool(disableAuth),
	})
}

// ProvideHandler creates the route logic handler.
func ProvideHandler(cfg *config.Config, g *gate.Gate, client gate.IdentityClient, sessions *session.Store, provisioner *provisioning.Client) *server.Handler {
	return server.NewHandler(server.HandlerInput{
		Config:      cfg,
		Gate:        g,
		Identity:    client,
		Sessions:    sessions,
		Provisioner: provisioner,
	})
}

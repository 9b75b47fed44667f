package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/radiorabe/supersaas-auth-connector/internal/config"
	"github.com/radiorabe/supersaas-auth-connector/internal/di"
	"github.com/radiorabe/supersaas-auth-connector/internal/server"
)

func main() {
	logger := di.ProvideLogger()
	ctx := logger.WithContext(context.Background())

	app := &cli.App{
		Name:  "supersaas-auth-connector",
		Usage: "Bridge Keycloak OIDC logins into SuperSaaS sessions",
		Description: `Authenticates browser users against a Keycloak realm via the OIDC
authorization-code flow, lazily provisions a matching SuperSaaS user,
and redirects the browser to a signed SuperSaaS login URL.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to optional YAML configuration file",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port (overrides PORT)",
			},
			&cli.BoolFlag{
				Name:  "disable-auth",
				Usage: "bypass authentication entirely (development only)",
			},
		},
		Action: serveAction,
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}

func serveAction(c *cli.Context) error {
	container, err := di.New(
		di.WithConfigPath(c.String("config")),
		di.WithPortOverride(c.Int("port")),
		di.WithDisableAuth(c.Bool("disable-auth")),
	)
	if err != nil {
		return fmt.Errorf("failed to setup DI container: %w", err)
	}

	logger := di.MustGet[zerolog.Logger](container)
	cfg := di.MustGet[*config.Config](container)

	if c.Bool("disable-auth") {
		logger.Warn().Msg("Authentication is DISABLED - this should only be used for development")
	}

	handler := di.MustGet[*server.Handler](container)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Info().
		Str("addr", addr).
		Str("callback_url", cfg.CallbackURL()).
		Str("error_redirect_url", cfg.ErrorRedirectURL).
		Msg("Starting HTTP server")

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler.Router(logger),
	}
	return httpServer.ListenAndServe()
}

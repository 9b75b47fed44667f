// Package config loads the immutable process configuration for the
// connector. Values come from struct defaults, an optional YAML file,
// and finally environment variables (highest precedence). A .env file
// in the working directory is honored for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all settings consumed by the connector. It is built once
// at startup and passed explicitly into constructors; request-handling
// code never reads the environment.
type Config struct {
	Debug bool `yaml:"debug"`

	// Keycloak OIDC settings.
	SSOServerURL    string `yaml:"sso_server_url" validate:"required,url"`
	SSORealm        string `yaml:"sso_realm" validate:"required"`
	SSOClientID     string `yaml:"sso_client_id" validate:"required"`
	SSOClientSecret string `yaml:"sso_client_secret"`

	// Where the browser is sent on any authentication or provisioning
	// failure, and after front-channel logout completes.
	ErrorRedirectURL      string `yaml:"error_redirect_url" validate:"required,url"`
	PostLogoutRedirectURL string `yaml:"post_logout_redirect_url" validate:"required,url"`

	// SuperSaaS API settings.
	SuperSaaSAccountName string `yaml:"supersaas_account_name" validate:"required"`
	SuperSaaSAPIToken    string `yaml:"supersaas_api_token"`
	SuperSaaSBaseURL     string `yaml:"supersaas_base_url" validate:"required,url"`

	// HTTP server settings. URL is the externally visible base URL; the
	// OIDC callback target is derived from it as <URL>/oidc/callback.
	Host      string `yaml:"host" validate:"required"`
	Port      int    `yaml:"port" validate:"required,gt=0,lte=65535"`
	URL       string `yaml:"url" validate:"required,url"`
	SecretKey string `yaml:"secret_key" validate:"required"`
}

// CallbackURL returns the externally visible OIDC callback target.
func (c *Config) CallbackURL() string {
	return c.URL + "/oidc/callback"
}

// Default returns the configuration defaults used when neither the
// YAML file nor the environment overrides a value.
func Default() *Config {
	return &Config{
		Debug:                 false,
		SSOServerURL:          "https://sso.rabe.ch/auth/",
		SSORealm:              "rabe",
		SSOClientID:           "supersaas-auth-connector",
		ErrorRedirectURL:      "https://www.rabe.ch",
		PostLogoutRedirectURL: "https://www.rabe.ch",
		SuperSaaSAccountName:  "RaBe",
		SuperSaaSBaseURL:      "https://www.supersaas.com",
		Host:                  "127.0.0.1",
		Port:                  8000,
		URL:                   "http://localhost:8000",
		SecretKey:             "supersecretkey",
	}
}

// Load builds the configuration from defaults, the optional YAML file
// at path (empty path skips the file), and environment variables.
func Load(path string) (*Config, error) {
	// Best effort: absence of a .env file is not an error.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("DEBUG"); ok {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG value %q: %w", v, err)
		}
		cfg.Debug = debug
	}
	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT value %q: %w", v, err)
		}
		cfg.Port = port
	}

	setString(&cfg.SSOServerURL, "SSO_SERVER_URL")
	setString(&cfg.SSORealm, "SSO_REALM")
	setString(&cfg.SSOClientID, "SSO_CLIENT_ID")
	setString(&cfg.SSOClientSecret, "SSO_CLIENT_SECRET")
	setString(&cfg.ErrorRedirectURL, "ERROR_REDIRECT_URL")
	setString(&cfg.PostLogoutRedirectURL, "POST_LOGOUT_REDIRECT_URL")
	setString(&cfg.SuperSaaSAccountName, "SUPERSAAS_ACCOUNT_NAME")
	setString(&cfg.SuperSaaSAPIToken, "SUPERSAAS_API_TOKEN")
	setString(&cfg.SuperSaaSBaseURL, "SUPERSAAS_BASE_URL")
	setString(&cfg.Host, "HOST")
	setString(&cfg.URL, "URL")
	setString(&cfg.SecretKey, "SECRET_KEY")
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://sso.rabe.ch/auth/", cfg.SSOServerURL)
	assert.Equal(t, "rabe", cfg.SSORealm)
	assert.Equal(t, "supersaas-auth-connector", cfg.SSOClientID)
	assert.Equal(t, "https://www.rabe.ch", cfg.ErrorRedirectURL)
	assert.Equal(t, "RaBe", cfg.SuperSaaSAccountName)
	assert.Equal(t, "https://www.supersaas.com", cfg.SuperSaaSBaseURL)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8000, cfg.Port)
	assert.False(t, cfg.Debug)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SSO_SERVER_URL", "https://sso.example.test/auth/")
	t.Setenv("SSO_REALM", "example")
	t.Setenv("PORT", "9000")
	t.Setenv("DEBUG", "true")
	t.Setenv("SUPERSAAS_API_TOKEN", "token-from-env")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://sso.example.test/auth/", cfg.SSOServerURL)
	assert.Equal(t, "example", cfg.SSORealm)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "token-from-env", cfg.SuperSaaSAPIToken)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
sso_realm: from-yaml
port: 9999
error_redirect_url: https://errors.example.test
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-yaml", cfg.SSORealm)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "https://errors.example.test", cfg.ErrorRedirectURL)
	// Untouched values keep their defaults.
	assert.Equal(t, "https://sso.rabe.ch/auth/", cfg.SSOServerURL)
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sso_realm: from-yaml\n"), 0o600))
	t.Setenv("SSO_REALM", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.SSORealm)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad server URL", key: "SSO_SERVER_URL", value: "not-a-url"},
		{name: "bad port", key: "PORT", value: "notanumber"},
		{name: "bad debug", key: "DEBUG", value: "maybe"},
		{name: "empty realm", key: "SSO_REALM", value: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestCallbackURL(t *testing.T) {
	cfg := Default()
	cfg.URL = "https://supersaas-auth.example.test"
	assert.Equal(t, "https://supersaas-auth.example.test/oidc/callback", cfg.CallbackURL())
}

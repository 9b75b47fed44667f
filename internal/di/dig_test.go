package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiorabe/supersaas-auth-connector/internal/config"
	"github.com/radiorabe/supersaas-auth-connector/internal/gate"
	"github.com/radiorabe/supersaas-auth-connector/internal/identity"
	"github.com/radiorabe/supersaas-auth-connector/internal/server"
	"github.com/radiorabe/supersaas-auth-connector/internal/session"
)

func TestNew_ResolvesFullGraph(t *testing.T) {
	// With auth disabled no OIDC discovery happens, so the complete
	// object graph can be built offline.
	container, err := New(WithDisableAuth(true))
	require.NoError(t, err)

	handler := MustGet[*server.Handler](container)
	assert.NotNil(t, handler)

	g := MustGet[*gate.Gate](container)
	assert.NotNil(t, g)

	store := MustGet[*session.Store](container)
	assert.NotNil(t, store)
}

func TestNew_DisabledAuthUsesDisabledClient(t *testing.T) {
	container, err := New(WithDisableAuth(true))
	require.NoError(t, err)

	client := MustGet[gate.IdentityClient](container)
	_, ok := client.(*identity.DisabledClient)
	assert.True(t, ok)
}

func TestWithPortOverride(t *testing.T) {
	container, err := New(WithDisableAuth(true), WithPortOverride(9123))
	require.NoError(t, err)

	cfg := MustGet[*config.Config](container)
	assert.Equal(t, 9123, cfg.Port)
}

func TestWithConfigPath_MissingFile(t *testing.T) {
	container, err := New(WithDisableAuth(true), WithConfigPath("/does/not/exist.yaml"))
	require.NoError(t, err)

	// Providers are lazy: the bad path surfaces when config is needed.
	err = container.Invoke(func(*config.Config) {})
	assert.Error(t, err)
}

type extraDep struct {
	cfg *config.Config
}

func TestWithProviders(t *testing.T) {
	container, err := New(
		WithDisableAuth(true),
		WithProviders(func(cfg *config.Config) *extraDep {
			return &extraDep{cfg: cfg}
		}),
	)
	require.NoError(t, err)

	extra := MustGet[*extraDep](container)
	require.NotNil(t, extra)
	assert.NotNil(t, extra.cfg)
}

func TestMustGet_PanicsOnUnknownType(t *testing.T) {
	container, err := New(WithDisableAuth(true))
	require.NoError(t, err)

	type unregistered struct{}
	assert.Panics(t, func() {
		MustGet[*unregistered](container)
	})
}

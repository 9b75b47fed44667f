package identity

import (
	"fmt"
	"net/url"
	"strings"
)

// Provider describes an OIDC identity provider. Implementations supply
// the issuer used for endpoint discovery and the provider-specific
// front-channel logout URL.
type Provider interface {
	// IssuerURL returns the OIDC issuer URL used for discovery and
	// token verification.
	IssuerURL() string

	// LogoutURL returns the end-session URL. postLogoutRedirect is
	// where the provider should send the browser after logging out.
	LogoutURL(postLogoutRedirect string) string

	// Type returns the provider type identifier (e.g. "keycloak").
	Type() string
}

// KeycloakProvider implements Provider for a Keycloak realm.
type KeycloakProvider struct {
	ServerURL string // Keycloak base URL (e.g. "https://sso.rabe.ch/auth/")
	Realm     string
}

// IssuerURL returns the realm issuer, <server>/realms/<realm>.
func (p *KeycloakProvider) IssuerURL() string {
	return fmt.Sprintf("%s/realms/%s", strings.TrimSuffix(p.ServerURL, "/"), p.Realm)
}

// LogoutURL returns the realm's openid-connect logout endpoint with the
// post-logout redirect attached, so Keycloak can perform front-channel
// logout and send the browser onward.
func (p *KeycloakProvider) LogoutURL(postLogoutRedirect string) string {
	params := url.Values{}
	params.Add("redirect_uri", postLogoutRedirect)
	return fmt.Sprintf("%s/protocol/openid-connect/logout?%s", p.IssuerURL(), params.Encode())
}

// Type returns "keycloak".
func (p *KeycloakProvider) Type() string {
	return "keycloak"
}

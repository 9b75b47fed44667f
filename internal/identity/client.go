// Package identity performs the OIDC protocol legwork against the
// identity provider: authorization URL construction, code→token
// exchange, and userinfo retrieval. Token signature validation is
// delegated to the go-oidc verifier.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	apperrors "github.com/radiorabe/supersaas-auth-connector/internal/errors"
)

// Token is the result of one successful authorization-code exchange.
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
}

// Claims is the subset of userinfo claims the connector consumes.
type Claims struct {
	Email string `json:"email"`
	UID   string `json:"uid"`
}

// Client talks to a single OIDC provider on behalf of the connector.
type Client struct {
	provider     Provider
	oidcProvider *oidc.Provider
	oauth2Config oauth2.Config
}

// ClientInput carries the dependencies for NewClient.
type ClientInput struct {
	Provider     Provider
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// NewClient discovers the provider's endpoints and prepares the OAuth2
// configuration for the authorization-code flow.
func NewClient(ctx context.Context, input ClientInput) (*Client, error) {
	logger := zerolog.Ctx(ctx)

	issuerURL := input.Provider.IssuerURL()
	oidcProvider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		logger.Error().
			Err(err).
			Str("issuer_url", issuerURL).
			Str("provider_type", input.Provider.Type()).
			Msg("Failed to discover OIDC provider")
		return nil, fmt.Errorf("failed to discover OIDC provider %s: %w", issuerURL, err)
	}

	oauth2Config := oauth2.Config{
		ClientID:     input.ClientID,
		ClientSecret: input.ClientSecret,
		RedirectURL:  input.CallbackURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	logger.Info().
		Str("issuer_url", issuerURL).
		Str("auth_url", oauth2Config.Endpoint.AuthURL).
		Str("token_url", oauth2Config.Endpoint.TokenURL).
		Msg("OIDC provider configured")

	return &Client{
		provider:     input.Provider,
		oidcProvider: oidcProvider,
		oauth2Config: oauth2Config,
	}, nil
}

// generateState creates a random state value for the authorization
// redirect.
func generateState() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

// AuthCodeURL returns the provider's authorization endpoint URL with a
// fresh random state parameter.
func (c *Client) AuthCodeURL() string {
	return c.oauth2Config.AuthCodeURL(generateState())
}

// ExchangeCode exchanges an authorization code for a token set. When
// the response carries an ID token it is verified against the issuer's
// keys; a token set with an unverifiable ID token is rejected.
func (c *Client) ExchangeCode(ctx context.Context, code string) (Token, error) {
	logger := zerolog.Ctx(ctx)

	token, err := c.oauth2Config.Exchange(ctx, code)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to exchange authorization code")
		return Token{}, fmt.Errorf("%w: %w", apperrors.ErrCodeExchangeFailure, err)
	}

	rawIDToken, _ := token.Extra("id_token").(string)
	if rawIDToken != "" {
		verifier := c.oidcProvider.Verifier(&oidc.Config{ClientID: c.oauth2Config.ClientID})
		if _, err := verifier.Verify(ctx, rawIDToken); err != nil {
			logger.Error().Err(err).Msg("Failed to verify ID token")
			return Token{}, fmt.Errorf("%w: %w", apperrors.ErrCodeExchangeFailure, err)
		}
	}

	return Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		IDToken:      rawIDToken,
	}, nil
}

// FetchUserinfo retrieves the userinfo claims for an access token. The
// Keycloak realm exposes the stable user id as the "uid" claim; realms
// without that mapper fall back to the userinfo subject.
func (c *Client) FetchUserinfo(ctx context.Context, accessToken string) (Claims, error) {
	logger := zerolog.Ctx(ctx)

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	userinfo, err := c.oidcProvider.UserInfo(ctx, source)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch userinfo")
		return Claims{}, fmt.Errorf("%w: %w", apperrors.ErrUserinfoFetchFailure, err)
	}

	var claims Claims
	if err := userinfo.Claims(&claims); err != nil {
		logger.Error().Err(err).Msg("Failed to decode userinfo claims")
		return Claims{}, fmt.Errorf("%w: %w", apperrors.ErrUserinfoFetchFailure, err)
	}
	if claims.UID == "" {
		claims.UID = userinfo.Subject
	}

	return claims, nil
}

// LogoutURL returns the provider's front-channel logout URL.
func (c *Client) LogoutURL(postLogoutRedirect string) string {
	return c.provider.LogoutURL(postLogoutRedirect)
}

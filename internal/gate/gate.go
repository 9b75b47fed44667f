// Package gate is the per-request authentication decision point. It
// classifies every inbound request, drives the authorization-code
// exchange on the OIDC callback path, and attaches the authenticated
// identity to the request context for the route handlers. It never
// forces a redirect for unauthenticated requests; routes that require
// an identity decide that themselves.
package gate

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	apperrors "github.com/radiorabe/supersaas-auth-connector/internal/errors"
	"github.com/radiorabe/supersaas-auth-connector/internal/identity"
	"github.com/radiorabe/supersaas-auth-connector/internal/session"
)

// IdentityClient is the slice of the identity provider the gate and the
// route handlers consume.
type IdentityClient interface {
	// AuthCodeURL returns the provider's authorization endpoint URL to
	// start a new login flow.
	AuthCodeURL() string

	// ExchangeCode exchanges an authorization code for a token set.
	ExchangeCode(ctx context.Context, code string) (identity.Token, error)

	// FetchUserinfo retrieves the claims for a fresh access token.
	FetchUserinfo(ctx context.Context, accessToken string) (identity.Claims, error)

	// LogoutURL returns the provider's front-channel logout URL.
	LogoutURL(postLogoutRedirect string) string
}

// Gate intercepts every request before route logic runs.
type Gate struct {
	identity     IdentityClient
	sessions     *session.Store
	callbackPath string
	errorURL     string
	disabled     bool
}

// Input carries the dependencies for New.
type Input struct {
	Identity     IdentityClient
	Sessions     *session.Store
	CallbackPath string
	ErrorURL     string

	// Disabled bypasses the OIDC flow and attaches a fixed local-dev
	// identity to every request. Local development only.
	Disabled bool
}

// New creates an authentication gate.
func New(input Input) *Gate {
	return &Gate{
		identity:     input.Identity,
		sessions:     input.Sessions,
		callbackPath: input.CallbackPath,
		errorURL:     input.ErrorURL,
		disabled:     input.Disabled,
	}
}

// Middleware wraps next with the authentication gate.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		if g.disabled {
			logger.Debug().Str("path", r.URL.Path).Msg("Authentication bypassed (gate disabled)")
			claims := identity.Claims{Email: "dev@localhost", UID: "local-dev"}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims)))
			return
		}

		if r.URL.Path == g.callbackPath {
			g.handleCallback(w, r, next)
			return
		}

		// Every other path: derive the identity from the session, when
		// present, and let the route decide what to do without one.
		data := g.sessions.Get(r)
		if data.Authenticated() {
			r = r.WithContext(WithIdentity(r.Context(), data.Claims))
		}
		next.ServeHTTP(w, r)
	})
}

// handleCallback performs the code exchange and userinfo fetch for the
// OIDC callback. A session already authenticated from an earlier login
// is re-exchanged and overwritten; the single session write below keeps
// a double-submitted callback last-writer-wins. Any failure leaves the
// session unauthenticated and sends the browser to the error URL.
func (g *Gate) handleCallback(w http.ResponseWriter, r *http.Request, next http.Handler) {
	logger := zerolog.Ctx(r.Context())
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		logger.Error().Str("error", errParam).Msg("Identity provider returned an error on callback")
		g.failAuth(w, r)
		return
	}

	code := query.Get("code")
	if code == "" {
		logger.Error().Err(apperrors.ErrMissingAuthorizationCode).Msg("Callback rejected")
		g.failAuth(w, r)
		return
	}

	token, err := g.identity.ExchangeCode(r.Context(), code)
	if err != nil {
		logger.Error().Err(err).Msg("Authorization code exchange failed")
		g.failAuth(w, r)
		return
	}

	claims, err := g.identity.FetchUserinfo(r.Context(), token.AccessToken)
	if err != nil {
		// Discard the just-obtained tokens: partial authentication must
		// never be observable.
		logger.Error().Err(err).Msg("Userinfo fetch failed, discarding token set")
		g.failAuth(w, r)
		return
	}

	data := &session.Data{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		IDToken:      token.IDToken,
		Claims:       claims,
	}
	if err := g.sessions.Save(r, w, data); err != nil {
		logger.Error().Err(err).Msg("Failed to save session")
		g.failAuth(w, r)
		return
	}

	logger.Info().
		Str("email", claims.Email).
		Str("uid", claims.UID).
		Msg("User authenticated")
	next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims)))
}

// failAuth clears any session state and redirects to the configured
// error destination. No internal error detail reaches the browser.
func (g *Gate) failAuth(w http.ResponseWriter, r *http.Request) {
	if err := g.sessions.Clear(r, w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to clear session")
	}
	http.Redirect(w, r, g.errorURL, http.StatusFound)
}

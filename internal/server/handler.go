// Package server wires the route logic around the authentication gate:
// four redirect handlers plus the operational endpoints.
package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/radiorabe/supersaas-auth-connector/internal/config"
	"github.com/radiorabe/supersaas-auth-connector/internal/gate"
	"github.com/radiorabe/supersaas-auth-connector/internal/session"
)

// Provisioner ensures a downstream account exists for an authenticated
// identity and returns its login URL.
type Provisioner interface {
	EnsureUser(ctx context.Context, email, uid string) (string, error)
}

// Handler holds the route logic and its collaborators.
type Handler struct {
	cfg         *config.Config
	gate        *gate.Gate
	identity    gate.IdentityClient
	sessions    *session.Store
	provisioner Provisioner
}

// HandlerInput carries the dependencies for NewHandler.
type HandlerInput struct {
	Config      *config.Config
	Gate        *gate.Gate
	Identity    gate.IdentityClient
	Sessions    *session.Store
	Provisioner Provisioner
}

// NewHandler creates the route logic handler.
func NewHandler(input HandlerInput) *Handler {
	return &Handler{
		cfg:         input.Config,
		gate:        input.Gate,
		identity:    input.Identity,
		sessions:    input.Sessions,
		provisioner: input.Provisioner,
	}
}

// Router configures all HTTP routes and the middleware chain around
// them: request id -> logging -> metrics -> authentication gate ->
// routes.
func (h *Handler) Router(logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /oidc/callback", h.handleCallback)
	mux.HandleFunc("GET /supersaas", h.handleSuperSaaS)
	mux.HandleFunc("GET /logout", h.handleLogout)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Everything else, including /, funnels into /supersaas.
	mux.HandleFunc("/", h.handleRoot)

	var handler http.Handler = h.gate.Middleware(mux)
	handler = metricsMiddleware(handler)
	handler = loggingMiddleware(logger)(handler)
	return handler
}

// handleRoot sends the browser to the provisioning route.
func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/supersaas", http.StatusFound)
}

// handleCallback completes the login handshake. The gate has already
// exchanged the code and populated the session by the time this runs.
func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/supersaas", http.StatusFound)
}

// handleSuperSaaS ensures the SuperSaaS user exists and redirects to
// its login URL. Without an identity the browser is sent to the
// provider's authorization endpoint to start the flow.
func (h *Handler) handleSuperSaaS(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	claims, ok := gate.IdentityFrom(r.Context())
	if !ok {
		logger.Info().Msg("Unauthenticated request, redirecting to identity provider")
		http.Redirect(w, r, h.identity.AuthCodeURL(), http.StatusFound)
		return
	}

	loginURL, err := h.provisioner.EnsureUser(r.Context(), claims.Email, claims.UID)
	if err != nil {
		// The session stays authenticated: the tokens are still good
		// and a later provisioning attempt may succeed.
		logger.Error().Err(err).Str("uid", claims.UID).Msg("Provisioning failed")
		http.Redirect(w, r, h.cfg.ErrorRedirectURL, http.StatusFound)
		return
	}

	http.Redirect(w, r, loginURL, http.StatusFound)
}

// handleLogout clears the session unconditionally and hands the browser
// to the provider for front-channel logout.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if err := h.sessions.Clear(r, w); err != nil {
		logger.Error().Err(err).Msg("Failed to clear session on logout")
	}
	http.Redirect(w, r, h.identity.LogoutURL(h.cfg.PostLogoutRedirectURL), http.StatusFound)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

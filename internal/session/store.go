// Package session persists authentication state in a signed browser
// cookie. One cookie write carries the full token set and claims, so a
// session is always either empty or completely authenticated.
package session

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/radiorabe/supersaas-auth-connector/internal/identity"
)

const (
	sessionName     = "sac-session"
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
	idTokenKey      = "id_token"
	claimsKey       = "claims" // stores claims JSON
)

// Data is the authentication state of one browser session.
type Data struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Claims       identity.Claims
}

// Authenticated reports whether the session holds a token set obtained
// from a successful exchange.
func (d *Data) Authenticated() bool {
	return d != nil && d.AccessToken != ""
}

// Store reads and writes session Data through a gorilla CookieStore.
type Store struct {
	cookies *sessions.CookieStore
}

// New creates a cookie-backed session store signed with secretKey.
// Secure is disabled for plain-http local development, where the
// browser would otherwise drop the cookie.
func New(secretKey string, isLocalDev bool) *Store {
	cookies := sessions.NewCookieStore([]byte(secretKey))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0, // browser-session lifetime
		HttpOnly: true,
		Secure:   !isLocalDev,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cookies: cookies}
}

// Get returns the session data for the request. Requests with no
// cookie, or with a cookie that fails signature verification, yield an
// empty unauthenticated session rather than an error.
func (s *Store) Get(r *http.Request) *Data {
	session, err := s.cookies.Get(r, sessionName)
	if err != nil {
		// Tampered or stale cookies decode to a fresh session.
		zerolog.Ctx(r.Context()).Debug().
			Str("error", err.Error()).
			Msg("Invalid session cookie, treating as unauthenticated")
		return &Data{}
	}

	data := &Data{}
	data.AccessToken, _ = session.Values[accessTokenKey].(string)
	data.RefreshToken, _ = session.Values[refreshTokenKey].(string)
	data.IDToken, _ = session.Values[idTokenKey].(string)

	if claimsJSON, ok := session.Values[claimsKey].(string); ok && claimsJSON != "" {
		if err := json.Unmarshal([]byte(claimsJSON), &data.Claims); err != nil {
			zerolog.Ctx(r.Context()).Debug().
				Str("error", err.Error()).
				Msg("Undecodable session claims, treating as unauthenticated")
			return &Data{}
		}
	}
	return data
}

// Save replaces the session contents with data in a single cookie
// write.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, data *Data) error {
	session, _ := s.cookies.Get(r, sessionName)

	claimsJSON, err := json.Marshal(data.Claims)
	if err != nil {
		return err
	}

	session.Values[accessTokenKey] = data.AccessToken
	session.Values[refreshTokenKey] = data.RefreshToken
	session.Values[idTokenKey] = data.IDToken
	session.Values[claimsKey] = string(claimsJSON)
	return session.Save(r, w)
}

// Clear expires the session cookie. Clearing an already-empty session
// is a no-op success.
func (s *Store) Clear(r *http.Request, w http.ResponseWriter) error {
	session, _ := s.cookies.Get(r, sessionName)
	// Empty the values too: the expiring cookie must not carry a
	// decodable copy of the old token set.
	session.Values = make(map[any]any)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

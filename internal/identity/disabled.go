package identity

import (
	"context"

	apperrors "github.com/radiorabe/supersaas-auth-connector/internal/errors"
)

// DisabledClient stands in for the identity provider when the gate runs
// with authentication disabled. It never touches the network, so local
// development works without reachable SSO. It must never be used in
// production.
type DisabledClient struct{}

// NewDisabledClient creates an identity client that performs no OIDC
// protocol work.
func NewDisabledClient() *DisabledClient {
	return &DisabledClient{}
}

// AuthCodeURL sends the browser back to the root instead of a provider.
func (*DisabledClient) AuthCodeURL() string { return "/" }

// ExchangeCode always fails; the disabled gate never reaches it.
func (*DisabledClient) ExchangeCode(context.Context, string) (Token, error) {
	return Token{}, apperrors.ErrCodeExchangeFailure
}

// FetchUserinfo always fails; the disabled gate never reaches it.
func (*DisabledClient) FetchUserinfo(context.Context, string) (Claims, error) {
	return Claims{}, apperrors.ErrUserinfoFetchFailure
}

// LogoutURL skips the provider and redirects straight onward.
func (*DisabledClient) LogoutURL(postLogoutRedirect string) string {
	return postLogoutRedirect
}

package errors

import "errors"

var (
	ErrMissingAuthorizationCode = errors.New("callback request carries no authorization code")
	ErrCodeExchangeFailure      = errors.New("authorization code exchange failed")
	ErrUserinfoFetchFailure     = errors.New("userinfo fetch failed")
	ErrProvisioningFailure      = errors.New("supersaas user provisioning failed")
)

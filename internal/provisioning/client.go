// Package provisioning ensures that an authenticated identity has a
// matching SuperSaaS user and issues the checksum-signed login URL the
// browser is redirected to.
package provisioning

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // the SuperSaaS login API mandates MD5 checksums
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/radiorabe/supersaas-auth-connector/internal/errors"
)

const requestTimeout = 10 * time.Second

// Client talks to the SuperSaaS account-management API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accountName string
	apiToken    string
}

// New creates a SuperSaaS client for one account.
func New(baseURL, accountName, apiToken string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		baseURL:     baseURL,
		accountName: accountName,
		apiToken:    apiToken,
	}
}

type userAttributes struct {
	Name string `json:"name"`
}

// EnsureUser creates or updates the SuperSaaS user for the given
// identity and returns the login URL for it. The user id carries an
// "fk" suffix marking it as federated. Repeated calls with the same uid
// update the same user, so the operation is idempotent.
func (c *Client) EnsureUser(ctx context.Context, email, uid string) (string, error) {
	logger := zerolog.Ctx(ctx)

	body, err := json.Marshal(userAttributes{Name: email})
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrProvisioningFailure, err)
	}

	endpoint := fmt.Sprintf("%s/api/users/%sfk.json?account=%s",
		c.baseURL, url.PathEscape(uid), url.QueryEscape(c.accountName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrProvisioningFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.accountName, c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error().Err(err).Str("uid", uid).Msg("SuperSaaS user upsert failed")
		return "", fmt.Errorf("%w: %w", apperrors.ErrProvisioningFailure, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// 409 means the user already exists, which is exactly the state we
	// want.
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusConflict {
		logger.Error().
			Int("status_code", resp.StatusCode).
			Str("uid", uid).
			Msg("SuperSaaS user upsert rejected")
		return "", fmt.Errorf("%w: unexpected status %d", apperrors.ErrProvisioningFailure, resp.StatusCode)
	}

	logger.Info().Str("uid", uid).Str("email", email).Msg("SuperSaaS user ensured")
	return c.loginURL(email), nil
}

// loginURL builds the autologin URL for a user. The checksum over
// account name, API token and user name is the SuperSaaS API contract.
func (c *Client) loginURL(name string) string {
	sum := md5.Sum([]byte(c.accountName + c.apiToken + name))
	params := url.Values{}
	params.Add("account", c.accountName)
	params.Add("user[name]", name)
	params.Add("checksum", hex.EncodeToString(sum[:]))
	return fmt.Sprintf("%s/api/login?%s", c.baseURL, params.Encode())
}

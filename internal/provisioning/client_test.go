package provisioning

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/radiorabe/supersaas-auth-connector/internal/errors"
)

type fakeSuperSaaS struct {
	mux   *http.ServeMux
	users map[string]string // user id -> name

	requests []string // user ids seen, in order
}

func newFakeSuperSaaS(t *testing.T) (*fakeSuperSaaS, *httptest.Server) {
	t.Helper()

	fake := &fakeSuperSaaS{
		mux:   http.NewServeMux(),
		users: make(map[string]string),
	}
	fake.mux.HandleFunc("PUT /api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		account, token, ok := r.BasicAuth()
		if !ok || account != "RaBe" || token != "api-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var attrs struct {
			Name string `json:"name"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &attrs); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		id := r.PathValue("id")
		fake.requests = append(fake.requests, id)
		if _, exists := fake.users[id]; exists {
			fake.users[id] = attrs.Name
			w.WriteHeader(http.StatusOK)
			return
		}
		fake.users[id] = attrs.Name
		w.WriteHeader(http.StatusCreated)
	})

	server := httptest.NewServer(fake.mux)
	t.Cleanup(server.Close)
	return fake, server
}

func TestEnsureUser_CreatesFederatedUser(t *testing.T) {
	fake, server := newFakeSuperSaaS(t)
	client := New(server.URL, "RaBe", "api-token")

	loginURL, err := client.EnsureUser(context.Background(), "u@x.test", "42")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"42fk.json": "u@x.test"}, fake.users)

	parsed, err := url.Parse(loginURL)
	require.NoError(t, err)
	assert.Equal(t, "/api/login", parsed.Path)
	query := parsed.Query()
	assert.Equal(t, "RaBe", query.Get("account"))
	assert.Equal(t, "u@x.test", query.Get("user[name]"))
	assert.Len(t, query.Get("checksum"), 32)
}

func TestEnsureUser_Idempotent(t *testing.T) {
	fake, server := newFakeSuperSaaS(t)
	client := New(server.URL, "RaBe", "api-token")

	first, err := client.EnsureUser(context.Background(), "u@x.test", "42")
	require.NoError(t, err)
	second, err := client.EnsureUser(context.Background(), "u@x.test", "42")
	require.NoError(t, err)

	// Same login destination both times, and still a single account.
	assert.Equal(t, first, second)
	assert.Len(t, fake.users, 1)
	assert.Equal(t, []string{"42fk.json", "42fk.json"}, fake.requests)
}

func TestEnsureUser_ConflictIsSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := New(server.URL, "RaBe", "api-token")
	_, err := client.EnsureUser(context.Background(), "u@x.test", "42")
	assert.NoError(t, err)
}

func TestEnsureUser_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := New(server.URL, "RaBe", "api-token")
	_, err := client.EnsureUser(context.Background(), "u@x.test", "42")
	assert.True(t, errors.Is(err, apperrors.ErrProvisioningFailure))
}

func TestEnsureUser_Unreachable(t *testing.T) {
	client := New("http://127.0.0.1:1", "RaBe", "api-token")
	_, err := client.EnsureUser(context.Background(), "u@x.test", "42")
	assert.True(t, errors.Is(err, apperrors.ErrProvisioningFailure))
}

func TestLoginURL_Deterministic(t *testing.T) {
	client := New("https://www.supersaas.com", "RaBe", "api-token")

	assert.Equal(t, client.loginURL("u@x.test"), client.loginURL("u@x.test"))
	assert.NotEqual(t, client.loginURL("u@x.test"), client.loginURL("other@x.test"))
}

func TestLoginURL_Checksum(t *testing.T) {
	// MD5 over the empty concatenation pins the checksum algorithm.
	client := New("https://www.supersaas.com", "", "")

	parsed, err := url.Parse(client.loginURL(""))
	require.NoError(t, err)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", parsed.Query().Get("checksum"))
}

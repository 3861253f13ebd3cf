package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/lmaotrigine/indieauth/internal/config"
	"github.com/lmaotrigine/indieauth/token"
	"github.com/stretchr/testify/require"
)

var keygenOutput = regexp.MustCompile(`^Public: ([0-9a-f]{64})\nPrivate: ([0-9a-f]{128})\n$`)

func setupEnv(t *testing.T) *token.KeyPair {
	t.Helper()
	keyPair, err := token.GenerateKeyPair()
	require.NoError(t, err)

	t.Setenv("ENV", "TEST")
	t.Setenv("PASETO_PUBLIC", keyPair.PublicHex())
	t.Setenv("PASETO_PRIVATE", keyPair.PrivateHex())
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "indieauth.db"))
	t.Setenv("VALKEY_ADDR", "")
	t.Setenv("COOKIE_SECRET", "")
	t.Setenv("OAUTH_PROVIDERS", "gitlab")
	t.Setenv("OAUTH_GITLAB_AUTH_URI", "https://git.example/oauth/authorize")
	t.Setenv("OAUTH_GITLAB_TOKEN_URI", "https://git.example/oauth/token")
	t.Setenv("OAUTH_GITLAB_CLIENT_ID", "client")
	return keyPair
}

func TestKeygen(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"keygen"})
	require.NoError(t, cmd.Execute())

	match := keygenOutput.FindStringSubmatch(out.String())
	require.NotNil(t, match, out.String())
	_, err := token.NewKeyPairFromHex(match[1], match[2])
	require.NoError(t, err)
}

func TestKeygenToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.txt")
	cmd := rootCmd()
	cmd.SetArgs([]string{"keygen", "-o", path})
	require.NoError(t, cmd.Execute())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	require.NotNil(t, mustReadKeys(t, path))
}

func mustReadKeys(t *testing.T, path string) *token.KeyPair {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	match := keygenOutput.FindStringSubmatch(string(raw))
	require.NotNil(t, match, string(raw))
	keyPair, err := token.NewKeyPairFromHex(match[1], match[2])
	require.NoError(t, err)
	return keyPair
}

func TestApplicationIdentifier(t *testing.T) {
	t.Setenv("APP_NAME", "indieauth")
	t.Setenv("IDENTITY_URL", "https://5ht2.me/")
	require.Equal(t, "indieauth/"+Version+" +https://5ht2.me/.well-known/botinfo", applicationIdentifier(config.New()))
}

func TestCookieSecret(t *testing.T) {
	keyPair := setupEnv(t)

	secret, err := cookieSecret(config.New(), keyPair)
	require.NoError(t, err)
	require.Equal(t, keyPair.Seed(), secret, "falls back to the signing seed")

	t.Setenv("COOKIE_SECRET", "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff")
	secret, err = cookieSecret(config.New(), keyPair)
	require.NoError(t, err)
	require.Len(t, secret, 32)

	t.Setenv("COOKIE_SECRET", "not hex")
	_, err = cookieSecret(config.New(), keyPair)
	require.Error(t, err)
}

func TestNewAppServesRequests(t *testing.T) {
	setupEnv(t)

	a, err := newApp(t.Context(), config.New(), true)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	require.NotNil(t, a.federation)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login/gitlab", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "https://git.example/oauth/authorize?response_type=code&client_id=client&state=")
}

func TestNewAppRejectsBadConfiguration(t *testing.T) {
	t.Run("mismatched key pair", func(t *testing.T) {
		setupEnv(t)
		other, err := token.GenerateKeyPair()
		require.NoError(t, err)
		t.Setenv("PASETO_PUBLIC", other.PublicHex())

		_, err = newApp(t.Context(), config.New(), true)
		require.Error(t, err)
	})

	t.Run("unsupported provider", func(t *testing.T) {
		setupEnv(t)
		t.Setenv("OAUTH_PROVIDERS", "github")
		t.Setenv("OAUTH_GITHUB_AUTH_URI", "https://github.com/login/oauth/authorize")
		t.Setenv("OAUTH_GITHUB_TOKEN_URI", "https://github.com/login/oauth/access_token")
		t.Setenv("OAUTH_GITHUB_CLIENT_ID", "client")

		_, err := newApp(t.Context(), config.New(), true)
		require.Error(t, err)
	})

	t.Run("incomplete provider", func(t *testing.T) {
		setupEnv(t)
		t.Setenv("OAUTH_GITLAB_CLIENT_ID", "")

		_, err := newApp(t.Context(), config.New(), true)
		require.Error(t, err)
	})
}

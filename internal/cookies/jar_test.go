package cookies_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lmaotrigine/indieauth/internal/cookies"
	"github.com/stretchr/testify/require"
)

func newJar(t *testing.T, seed byte) *cookies.Jar {
	t.Helper()
	jar, err := cookies.NewJar(bytes.Repeat([]byte{seed}, 32), true)
	require.NoError(t, err)
	return jar
}

// replay copies the cookies set on rec into a fresh request.
func replay(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestPrivateCookieRoundTrip(t *testing.T) {
	jar := newJar(t, 1)

	rec := httptest.NewRecorder()
	require.NoError(t, jar.SetPrivate(rec, &http.Cookie{Name: "token", Value: "v2.public.abc"}))

	set := rec.Result().Cookies()
	require.Len(t, set, 1)
	require.NotContains(t, set[0].Value, "v2.public.abc")
	require.True(t, set[0].HttpOnly)
	require.True(t, set[0].Secure)
	require.Equal(t, http.SameSiteLaxMode, set[0].SameSite)
	require.Equal(t, "/", set[0].Path)

	value, ok := jar.GetPrivate(replay(rec), "token")
	require.True(t, ok)
	require.Equal(t, "v2.public.abc", value)
}

func TestPrivateCookieRejectsForeignKey(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, newJar(t, 1).SetPrivate(rec, &http.Cookie{Name: "token", Value: "x"}))

	_, ok := newJar(t, 2).GetPrivate(replay(rec), "token")
	require.False(t, ok)
}

func TestPrivateCookieRejectsPlainValue(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: "v2.public.abc"})

	_, ok := newJar(t, 1).GetPrivate(r, "token")
	require.False(t, ok)
}

func TestPrivateCookieBoundToName(t *testing.T) {
	jar := newJar(t, 1)
	rec := httptest.NewRecorder()
	require.NoError(t, jar.SetPrivate(rec, &http.Cookie{Name: "a", Value: "x"}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "b", Value: rec.Result().Cookies()[0].Value})
	_, ok := jar.GetPrivate(r, "b")
	require.False(t, ok)
}

func TestRemove(t *testing.T) {
	rec := httptest.NewRecorder()
	newJar(t, 1).Remove(rec, "oauth2_state_gitlab", "")

	set := rec.Result().Cookies()
	require.Len(t, set, 1)
	require.Equal(t, "oauth2_state_gitlab", set[0].Name)
	require.Equal(t, -1, set[0].MaxAge)
}

func TestNewJarShortSecret(t *testing.T) {
	_, err := cookies.NewJar([]byte("short"), false)
	require.Error(t, err)
}

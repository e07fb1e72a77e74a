package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/pkg/cookie"
)

const (
	secretA = "0123456789abcdef0123456789abcdef"
	secretB = "fedcba9876543210fedcba9876543210"
)

func roundTrip(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := cookie.New(nil)
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"", ""})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"short"})
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)
	assert.Equal(t, "/", m.Defaults().Path)
	assert.True(t, m.Defaults().HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, m.Defaults().SameSite)
}

func TestManager_SetGet(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA}, cookie.WithSecure(true))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.Set(w, "theme", "dark", cookie.WithMaxAge(60)))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, 60, cookies[0].MaxAge)
	assert.True(t, cookies[0].Secure)
	assert.True(t, cookies[0].HttpOnly)

	v, err := m.Get(roundTrip(w), "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)

	_, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "theme")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestManager_Signed(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.SetSigned(w, "sid", "token-value"))

	v, err := m.GetSigned(roundTrip(w), "sid")
	require.NoError(t, err)
	assert.Equal(t, "token-value", v)

	t.Run("tampered", func(t *testing.T) {
		raw := w.Result().Cookies()[0].Value
		payload, sig, _ := strings.Cut(raw, ".")
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: payload + "x." + sig})
		_, err := m.GetSigned(r, "sid")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("unsigned", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "plain"})
		_, err := m.GetSigned(r, "sid")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})

	t.Run("rotated secret still verifies", func(t *testing.T) {
		rotated, err := cookie.New([]string{secretB, secretA})
		require.NoError(t, err)
		v, err := rotated.GetSigned(roundTrip(w), "sid")
		require.NoError(t, err)
		assert.Equal(t, "token-value", v)
	})
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	m.Delete(w, "sid")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	m, err := cookie.NewFromConfig(cookie.Config{
		Secrets:  " " + secretA + " , " + secretB,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	require.NoError(t, err)
	assert.True(t, m.Defaults().Secure)
	assert.Equal(t, http.SameSiteStrictMode, m.Defaults().SameSite)
}

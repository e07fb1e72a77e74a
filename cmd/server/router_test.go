package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/pkg/clientip"
	"github.com/dmitrymomot/sessionguard/pkg/cookie"
	"github.com/dmitrymomot/sessionguard/pkg/identity"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/ratelimiter"
	"github.com/dmitrymomot/sessionguard/pkg/session"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0"

type testApp struct {
	handler http.Handler
	users   *identity.MemoryProvider
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppIn(t, "development")
}

func newTestAppIn(t *testing.T, env string) *testApp {
	t.Helper()
	ctx := context.Background()

	users := identity.NewMemoryProvider()
	_, err := users.Add(identity.Identity{Email: "member@example.com", Role: "member"}, "member-pw")
	require.NoError(t, err)
	_, err = users.Add(identity.Identity{Email: "admin@example.com", Role: "admin"}, "admin-pw")
	require.NoError(t, err)

	cfg := settings{
		App:     AppConfig{Environment: env},
		Session: session.Config{CleanupInterval: -1},
		Cookie:  cookie.Config{Secrets: "0123456789abcdef0123456789abcdef"},
	}
	cfg.applyEnvironment()
	cookies, err := cookie.NewFromConfig(cfg.Cookie)
	require.NoError(t, err)

	mgr := session.New(
		session.WithConfig(cfg.Session),
		session.WithCookieManager(cookies),
		session.WithIdentityProvider(users),
		session.WithAuthenticator(identity.NewAuthenticator(users)),
	)
	t.Cleanup(func() { _ = mgr.Close() })

	policy, err := loadPolicy(ctx, "", logger.Discard())
	require.NoError(t, err)
	ips, err := clientip.New()
	require.NoError(t, err)

	attempts := ratelimiter.NewMemoryStore(ratelimiter.WithStaleAfter(0))
	t.Cleanup(func() { _ = attempts.Close() })
	limiter, err := ratelimiter.NewBucket(attempts, ratelimiter.Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Hour})
	require.NoError(t, err)

	handler := router(routerDeps{
		mgr:     mgr,
		policy:  policy,
		ips:     ips,
		limiter: limiter,
		log:     logger.Discard(),
	})
	return &testApp{handler: handler, users: users}
}

type client struct {
	t       *testing.T
	app     *testApp
	cookies []*http.Cookie
	csrf    string
	header  http.Header
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.RemoteAddr = "203.0.113.10:40000"
	r.Header.Set("User-Agent", userAgent)
	for k, v := range c.header {
		r.Header[k] = v
	}
	if c.csrf != "" {
		r.Header.Set("X-CSRF-Token", c.csrf)
	}
	for _, ck := range c.cookies {
		r.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.app.handler.ServeHTTP(rec, r)
	if set := rec.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return rec
}

func (c *client) login(email, password string) {
	c.t.Helper()

	rec := c.do(http.MethodPost, "/login", loginRequest{Email: email, Password: password})
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp sessionResponse
	require.NoError(c.t, json.NewDecoder(rec.Body).Decode(&resp))
	c.csrf = resp.CSRFToken
}

func TestRouter_LoginAndMe(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := &client{t: t, app: app}

	rec := c.do(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = c.do(http.MethodPost, "/login", loginRequest{Email: "member@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c.login("member@example.com", "member-pw")

	rec = c.do(http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"member@example.com"`)
}

func TestRouter_RotateRequiresCSRF(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := &client{t: t, app: app}
	c.login("member@example.com", "member-pw")
	csrf := c.csrf
	oldCookies := c.cookies

	c.csrf = ""
	rec := c.do(http.MethodPost, "/session/rotate", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c.csrf = csrf
	rec = c.do(http.MethodPost, "/session/rotate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stale := &client{t: t, app: app, cookies: oldCookies}
	assert.Equal(t, http.StatusUnauthorized, stale.do(http.MethodGet, "/me", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/me", nil).Code)
}

func TestRouter_AdminRoutes(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	member := &client{t: t, app: app}
	member.login("member@example.com", "member-pw")
	admin := &client{t: t, app: app}
	admin.login("admin@example.com", "admin-pw")

	memberID, _, err := app.users.GetCredentialsByEmail(context.Background(), "member@example.com")
	require.NoError(t, err)
	path := "/admin/users/" + memberID.ID.String() + "/sessions"

	assert.Equal(t, http.StatusForbidden, member.do(http.MethodDelete, path, nil).Code)

	rec := admin.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"revoked":1}`, strings.TrimSpace(rec.Body.String()))

	assert.Equal(t, http.StatusUnauthorized, member.do(http.MethodGet, "/me", nil).Code)

	assert.Equal(t, http.StatusBadRequest, admin.do(http.MethodDelete, "/admin/users/not-a-uuid/sessions", nil).Code)
}

func TestRouter_LogoutEverywhere(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	laptop := &client{t: t, app: app}
	laptop.login("member@example.com", "member-pw")
	other := &client{t: t, app: app}
	other.login("member@example.com", "member-pw")

	rec := laptop.do(http.MethodPost, "/session/logout-everywhere", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"revoked":1}`, strings.TrimSpace(rec.Body.String()))

	assert.Equal(t, http.StatusOK, laptop.do(http.MethodGet, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, other.do(http.MethodGet, "/me", nil).Code)
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := &client{t: t, app: app}

	for range 5 {
		rec := c.do(http.MethodPost, "/login", loginRequest{Email: "member@example.com", Password: "guess"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := c.do(http.MethodPost, "/login", loginRequest{Email: "member@example.com", Password: "member-pw"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRouter_LoginLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := &client{t: t, app: app, header: http.Header{}}

	admitted := 0
	for i := range 20 {
		c.header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		if c.do(http.MethodPost, "/login", loginRequest{Email: "member@example.com", Password: "guess"}).Code != http.StatusTooManyRequests {
			admitted++
		}
	}
	assert.Equal(t, 5, admitted, "the bucket is keyed on the TCP peer")
}

func TestRouter_CookieSecurity(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		env    string
		secure bool
	}{
		{"development", false},
		{"production", true},
		{"prod", true},
	} {
		t.Run(tt.env, func(t *testing.T) {
			c := &client{t: t, app: newTestAppIn(t, tt.env)}
			rec := c.do(http.MethodPost, "/login", loginRequest{Email: "member@example.com", Password: "member-pw"})
			require.Equal(t, http.StatusOK, rec.Code)

			set := rec.Result().Cookies()
			require.Len(t, set, 1)
			assert.Equal(t, tt.secure, set[0].Secure)
			assert.True(t, set[0].HttpOnly)
			assert.Empty(t, rec.Header().Get(session.ResponseTokenHeader), "browser clients only get the cookie")
		})
	}
}

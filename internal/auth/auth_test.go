// AngelaMos | 2026
// auth_test.go

package auth_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/edition-console/internal/auth"
	"github.com/carterperez-dev/templates/edition-console/internal/backend"
	"github.com/carterperez-dev/templates/edition-console/internal/backend/backendtest"
	"github.com/carterperez-dev/templates/edition-console/internal/config"
	"github.com/carterperez-dev/templates/edition-console/internal/core"
	"github.com/carterperez-dev/templates/edition-console/internal/middleware"
	"github.com/carterperez-dev/templates/edition-console/internal/session"
	"github.com/carterperez-dev/templates/edition-console/internal/view"
)

const (
	email    = "root@example.com"
	password = "correct horse"
)

var sessionCfg = config.SessionConfig{
	CookieName: "console_session",
	Secret:     strings.Repeat("x", 40),
	TTL:        time.Hour,
	Issuer:     "edition-console",
}

type loginCounter struct {
	mu       sync.Mutex
	outcomes []string
}

func (c *loginCounter) ObserveLogin(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, outcome)
}

type harness struct {
	router   http.Handler
	backend  *backendtest.Server
	sessions *session.Manager
	logins   *loginCounter
}

func newHarness(t *testing.T, limit int) *harness {
	t.Helper()

	srv := backendtest.New(t)
	srv.AddAccount(email, password, "tok-root", backend.UserDTO{
		ID: "1", Email: email, Name: "Root", Role: "SUPER_ADMIN",
	})

	client, err := backend.NewClient(config.BackendConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	signer, err := auth.NewCookieSigner(sessionCfg)
	require.NoError(t, err)
	sessions := session.NewManager(session.NewMemoryStore(), signer, sessionCfg)

	renderer, err := view.New("Console", view.WithFlashSource(sessions.PopFlashes))
	require.NoError(t, err)

	logins := &loginCounter{}
	handler := auth.NewHandler(auth.NewService(client, sessions, logins), renderer)

	limiter := middleware.NewRateLimiter(nil, middleware.RateLimitConfig{
		Limit:     middleware.PerWindow(limit, limit, time.Hour),
		OnLimited: handler.RateLimited,
	})

	r := chi.NewRouter()
	r.Use(middleware.LoadSession(sessions))
	handler.RegisterRoutes(r, limiter.Handler)
	r.With(middleware.RequireSession).Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello " + middleware.GetPrincipal(r.Context()).Role))
	})

	return &harness{router: r, backend: srv, sessions: sessions, logins: logins}
}

func (h *harness) postLogin(t *testing.T, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func cookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCfg.CookieName {
			return c
		}
	}
	return nil
}

func TestLoginFormRendersWhenAnonymous(t *testing.T) {
	h := newHarness(t, 10)

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="login-view"`)
}

func TestLoginSuccessStartsSession(t *testing.T) {
	h := newHarness(t, 10)

	rec := h.postLogin(t, email, password)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookie := cookieFrom(rec)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	home := httptest.NewRecorder()
	h.router.ServeHTTP(home, req)

	assert.Equal(t, http.StatusOK, home.Code)
	assert.Equal(t, "hello super-admin", home.Body.String())
	assert.Equal(t, []string{"success"}, h.logins.outcomes)

	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookie)
	again := httptest.NewRecorder()
	h.router.ServeHTTP(again, req)
	assert.Equal(t, http.StatusSeeOther, again.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t, 10)

	rec := h.postLogin(t, email, "wrong")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.Contains(t, rec.Body.String(), `value="root@example.com"`)
	assert.Nil(t, cookieFrom(rec))
	assert.Equal(t, []string{"invalid"}, h.logins.outcomes)
}

func TestLoginMissingFieldsSkipsBackend(t *testing.T) {
	h := newHarness(t, 10)

	rec := h.postLogin(t, "", "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "email is required")
	assert.Zero(t, h.backend.RequestCount())
}

func TestLoginBackendFailure(t *testing.T) {
	h := newHarness(t, 10)
	h.backend.FailNext(http.StatusServiceUnavailable, "maintenance window")

	rec := h.postLogin(t, email, password)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "maintenance window")
	assert.Equal(t, []string{"error"}, h.logins.outcomes)
}

func TestLoginJSONClient(t *testing.T) {
	h := newHarness(t, 10)

	form := url.Values{"email": {email}, "password": {"nope"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"INVALID_CREDENTIALS"`)
}

func TestLoginFromJSONBody(t *testing.T) {
	h := newHarness(t, 10)

	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":" `+email+` ","password":"`+password+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"super-admin"`)
	assert.NotNil(t, cookieFrom(rec))
}

func TestLoginRejectsMalformedJSONBody(t *testing.T) {
	h := newHarness(t, 10)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, h.backend.RequestCount())
}

func TestLoginIsRateLimited(t *testing.T) {
	h := newHarness(t, 2)

	h.postLogin(t, email, "wrong")
	h.postLogin(t, email, "wrong")
	rec := h.postLogin(t, email, password)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Too many sign-in attempts")
	assert.Equal(t, 2, h.backend.RequestCount())
}

func TestLogout(t *testing.T) {
	h := newHarness(t, 10)
	cookie := cookieFrom(h.postLogin(t, email, password))
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	home := httptest.NewRecorder()
	h.router.ServeHTTP(home, req)
	assert.Equal(t, http.StatusSeeOther, home.Code)
}

func TestCookieSigner(t *testing.T) {
	signer, err := auth.NewCookieSigner(sessionCfg)
	require.NoError(t, err)

	value, err := signer.Sign("sid-123", time.Minute)
	require.NoError(t, err)

	sid, err := signer.Verify(value)
	require.NoError(t, err)
	assert.Equal(t, "sid-123", sid)

	other, err := auth.NewCookieSigner(config.SessionConfig{
		Secret: strings.Repeat("y", 40),
		Issuer: sessionCfg.Issuer,
	})
	require.NoError(t, err)

	_, err = other.Verify(value)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = signer.Verify("not-a-jwt")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestCookieSignerExpired(t *testing.T) {
	signer, err := auth.NewCookieSigner(sessionCfg)
	require.NoError(t, err)

	value, err := signer.Sign("sid-123", -time.Minute)
	require.NoError(t, err)

	_, err = signer.Verify(value)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestCookieSignerRequiresSecret(t *testing.T) {
	_, err := auth.NewCookieSigner(config.SessionConfig{})
	assert.Error(t, err)
}

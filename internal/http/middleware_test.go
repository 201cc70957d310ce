package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func slogDiscard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/projects", "/projects"},
		{"/tasks/3?tab=comments", "/tasks/3?tab=comments"},
		{"https://evil.test/x", "/"},
		{"//evil.test/x", "/"},
		{"/\\evil.test", "/"},
		{"javascript:alert(1)", "/"},
		{"projects", "/"},
		{"/login", "/"},
		{"/logout?x=1", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeRedirectPath(tt.in), "input %q", tt.in)
	}
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/login", LoginURL("/"))
	assert.Equal(t, "/login", LoginURL("https://evil.test"))
	assert.Equal(t, "/login?redirect_uri=%2Fusers%2F4", LoginURL("/users/4"))
}

func TestRedirectPathForRequest_PostFallsBackToRoot(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/profile", nil)
	assert.Equal(t, "/", redirectPathForRequest(r))

	r = httptest.NewRequest(http.MethodPost, "/profile", nil)
	r.Header.Set("Hx-Request", "true")
	r.Header.Set("Referer", "https://vista.test/profile")
	assert.Equal(t, "/profile", redirectPathForRequest(r))
}

func TestRecover(t *testing.T) {
	h := Recover(slogDiscard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCSRFProtection(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, GetCSRFToken(r))
	})
	h := CSRFProtection(CSRFConfig{})(ok)

	// Safe methods mint a token and expose it to templates.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, cookies[0].Value, rec.Body.String())
		assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	}

	// The header satisfies validation for htmx requests.
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "abc"})
	req.Header.Set(DefaultCSRFHeaderName, "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "abc"})
	req.Header.Set(DefaultCSRFHeaderName, "abd")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/target/vista-ui/internal/ports"
	"github.com/target/vista-ui/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
				slog.Bool("htmx", IsHTMX(r)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionResolver hands out the session store and persisted storage of a browser client.
type SessionResolver interface {
	Get(ctx context.Context, clientID string) (*service.SessionStore, error)
	Storage(clientID string) ports.Storage
}

var _ SessionResolver = (*service.SessionRegistry)(nil)

// ClientSessionConfig configures the ClientSession middleware.
type ClientSessionConfig struct {
	Sessions     SessionResolver
	CookieName   string
	CookieMaxAge time.Duration
	CookieDomain string
	Logger       *slog.Logger
}

// ClientSession identifies the browser by an opaque cookie, issuing one when
// absent or malformed, and places its session store in the request context.
func ClientSession(cfg ClientSessionConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "vista_client"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientIDFromCookie(r, cfg.CookieName)
			if clientID == "" {
				clientID = uuid.NewString()
				setClientCookie(w, r, cfg, clientID)
			}

			store, err := cfg.Sessions.Get(r.Context(), clientID)
			if err != nil {
				logger.ErrorContext(r.Context(), "resolve session store failed", "client_id", clientID, "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			ctx := withClient(r.Context(), &clientContext{
				id:      clientID,
				store:   store,
				storage: cfg.Sessions.Storage(clientID),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientIDFromCookie returns the cookie value when it is a canonical UUID.
func clientIDFromCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	id, err := uuid.Parse(c.Value)
	if err != nil || id.String() != c.Value {
		return ""
	}
	return c.Value
}

func setClientCookie(w http.ResponseWriter, r *http.Request, cfg ClientSessionConfig, clientID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    clientID,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(cfg.CookieMaxAge.Seconds()),
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || isForwardedHTTPS(r)
}

// RequireSession lets the request through only when the browser is signed in.
// Signed-out browsers are sent to the login page.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store, ok := SessionStoreFromContext(r.Context())
		if !ok || !store.CheckAuth(r.Context()) {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// redirectToLogin redirects to the login page with the current URL as redirect_uri.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, LoginURL(redirectPathForRequest(r)))
}

// LoginURL returns the login path carrying redirectPath when it is worth returning to.
func LoginURL(redirectPath string) string {
	redirectPath = safeRedirectPath(redirectPath)
	if redirectPath == "/" {
		return "/login"
	}
	return "/login?redirect_uri=" + url.QueryEscape(redirectPath)
}

func redirectPathForRequest(r *http.Request) string {
	if IsHTMX(r) {
		if current := safeRedirectFromURL(r.Header.Get("Hx-Current-Url")); current != "" {
			return current
		}
		if referer := safeRedirectFromURL(r.Header.Get("Referer")); referer != "" {
			return referer
		}
	}
	if r.Method != http.MethodGet {
		return "/"
	}
	return safeRedirectPath(r.URL.RequestURI())
}

func safeRedirectFromURL(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	// Reject scheme-relative or host-only references.
	if u.Host != "" && !u.IsAbs() {
		return ""
	}

	// For absolute URLs, use just the path/query portion to keep redirects within the app.
	if u.IsAbs() {
		return safeRedirectPath(u.RequestURI())
	}

	return safeRedirectPath(raw)
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	// Browsers treat backslashes as slashes, so "/\evil.test" would leave the origin.
	if strings.ContainsAny(candidate, "\\\r\n\t") || strings.HasPrefix(candidate, "//") {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	if u.Path == "/login" || u.Path == "/register" || u.Path == "/logout" {
		return "/"
	}
	return candidate
}

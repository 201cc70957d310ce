package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	vista "github.com/target/vista-ui"
	"github.com/target/vista-ui/internal/ports"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions  SessionResolver
	Workspace ports.WorkspaceAPIFactory
	Calendar  CalendarService
	// Health checks the storage backend for /healthz (optional).
	Health HealthCheck
	// Renderer overrides the template renderer (optional; built from the template FS when nil).
	Renderer *TemplateRenderer

	CookieName           string
	CookieMaxAge         time.Duration
	CookieDomain         string
	LogoutOnUnauthorized bool
	IsDev                bool         // Development mode flag for template and static file reloading
	Logger               *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates and configures the HTTP router.
//
// /healthz and /static/ are served without a client cookie; every other route
// runs behind ClientSession and CSRFProtection.
func NewRouter(services RouterServices) (http.Handler, error) {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tr := services.Renderer
	if tr == nil {
		var err error
		tr, err = NewTemplateRenderer(TemplateRendererConfig{
			TemplateFS: templateFS(services.IsDev, logger),
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
	}

	h := &UIHandlers{
		T:                    tr,
		Workspace:            services.Workspace,
		Calendar:             services.Calendar,
		LogoutOnUnauthorized: services.LogoutOnUnauthorized,
		IsDev:                services.IsDev,
		Logger:               logger,
	}

	app := http.NewServeMux()
	registerAuthRoutes(app, h)
	registerScreenRoutes(app, h)
	app.HandleFunc("/", fallbackHandler)

	appHandler := CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})(app)
	appHandler = ClientSession(ClientSessionConfig{
		Sessions:     services.Sessions,
		CookieName:   services.CookieName,
		CookieMaxAge: services.CookieMaxAge,
		CookieDomain: services.CookieDomain,
		Logger:       logger,
	})(appHandler)

	root := http.NewServeMux()
	root.Handle("GET /healthz", healthHandler(services.Health, logger))
	root.Handle("GET /static/", staticHandler(services.IsDev, logger))
	root.Handle("/", appHandler)
	return root, nil
}

func registerAuthRoutes(mux *http.ServeMux, h *UIHandlers) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.LoginSubmit)
	mux.HandleFunc("GET /register", h.RegisterPage)
	mux.HandleFunc("POST /register", h.RegisterSubmit)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

func registerScreenRoutes(mux *http.ServeMux, h *UIHandlers) {
	mux.Handle("GET /{$}", h.Guard(DashboardScreen()))
	mux.Handle("GET /dashboard", h.Guard(DashboardScreen()))

	for _, route := range sectionRoutes {
		mux.Handle(route.Pattern, h.Guard(route.Screen))
	}

	mux.Handle("GET /calendar", h.Guard(h.CalendarScreen()))
	mux.Handle("GET /calendar/events", RequireSession(http.HandlerFunc(h.CalendarEvents)))

	mux.Handle("GET /profile", h.Guard(ProfileScreen()))
	mux.Handle("POST /profile", RequireSession(http.HandlerFunc(h.ProfileSubmit)))
	mux.Handle("GET /settings", http.RedirectHandler("/settings/password", http.StatusSeeOther))
	mux.Handle("GET /settings/password", h.Guard(PasswordScreen()))
	mux.Handle("POST /settings/password", RequireSession(http.HandlerFunc(h.PasswordSubmit)))
}

// fallbackHandler sends unknown pages to the dashboard.
func fallbackHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found"})
		return
	}
	redirect(w, r, "/")
}

// templateFS reads templates from disk in dev mode and from the embedded FS otherwise.
//
//nolint:ireturn // fs.FS is the abstraction.
func templateFS(isDev bool, logger *slog.Logger) fs.FS {
	if isDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(vista.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		logger.Warn("embedded templates unavailable, falling back to disk", "error", err)
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// staticHandler serves /static/* from disk in dev mode and from the embedded FS otherwise.
func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	var fsys http.FileSystem = http.Dir("frontend/static")
	if !isDev {
		if sub, err := fs.Sub(vista.StaticFS, "frontend/static"); err == nil {
			fsys = http.FS(sub)
		} else {
			logger.Warn("embedded static assets unavailable, falling back to disk", "error", err)
		}
	}
	files := http.StripPrefix("/static/", http.FileServer(fsys))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		files.ServeHTTP(w, r)
	})
}

package httpx

import (
	"context"
	"html"
	"log/slog"
	"net/http"

	"github.com/target/vista-ui/internal/domain/model"
	"github.com/target/vista-ui/internal/http/ui/viewmodel"
	"github.com/target/vista-ui/internal/ports"
)

// CalendarService derives calendar events for the current user.
type CalendarService interface {
	Events(ctx context.Context, api ports.WorkspaceAPI, filter model.CalendarFilter) ([]model.CalendarEvent, error)
}

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T         *TemplateRenderer
	Workspace ports.WorkspaceAPIFactory
	Calendar  CalendarService
	// LogoutOnUnauthorized signs the browser out when the API rejects its token.
	LogoutOnUnauthorized bool
	IsDev                bool // Development mode flag for enhanced error reporting
	Logger               *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// PageMeta holds basic metadata for rendering a page.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// PageSpec defines metadata and an optional fetch for page-specific data.
type PageSpec struct {
	Meta  PageMeta
	Fetch func(ctx context.Context, data map[string]any) error
}

// Screen is anything the guard can render inside the chrome.
type Screen interface {
	Spec(r *http.Request) PageSpec
}

// ScreenFunc adapts a function to Screen.
type ScreenFunc func(r *http.Request) PageSpec

// Spec implements Screen.
func (f ScreenFunc) Spec(r *http.Request) PageSpec { return f(r) }

// Guard renders s for signed-in browsers and redirects everyone else to the login page.
func (h *UIHandlers) Guard(s Screen) http.Handler {
	return RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Page(w, r, s.Spec(r))
	}))
}

// buildLayout derives the chrome for the current request.
func buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
	}
	if layout.Title == "" {
		layout.Title = "VISTA"
	}
	if layout.PageTitle == "" {
		layout.PageTitle = layout.Title
	}

	if user := CurrentUser(r.Context()); user != nil {
		layout.IsAuthenticated = true
		layout.User = viewmodel.NewUser(user)
		layout.Navigation = viewmodel.Navigation(user, r.URL.Path)
		layout.QuickActions = viewmodel.QuickActions(user)
	}
	return layout
}

// basePageData constructs the common page data map with user context.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	layout := buildLayout(r, meta)
	data := map[string]any{
		"Title":           layout.Title,
		"PageTitle":       layout.PageTitle,
		"CurrentPage":     layout.CurrentPage,
		"IsAuthenticated": layout.IsAuthenticated,
		"Navigation":      layout.Navigation,
		"QuickActions":    layout.QuickActions,
		"CSRFToken":       layout.CSRFToken,
	}
	if layout.User != nil {
		data["User"] = layout.User
	}
	return data
}

// Page builds base data, optionally fetches content data, and renders.
func (h *UIHandlers) Page(w http.ResponseWriter, r *http.Request, spec PageSpec) {
	data := basePageData(r, spec.Meta)
	if spec.Fetch != nil {
		if err := spec.Fetch(r.Context(), data); err != nil {
			if h.handleUnauthorized(w, r, err) {
				return
			}
			h.logger().WarnContext(r.Context(), "page data fetch failed",
				"page", spec.Meta.CurrentPage, "client_id", ClientIDFromContext(r.Context()), "error", err)
			markPageError(data)
		}
	}
	h.renderPage(w, r, http.StatusOK, data)
}

// renderPage renders a chrome page with htmx partial support.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	if !WantsPartial(r) {
		if err := h.T.RenderFull(w, status, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	// htmx swaps the content area; title and active nav entry are updated alongside it.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	SetHXTrigger(w, "nav:activate", map[string]string{"path": r.URL.Path})
	w.WriteHeader(status)

	title, _ := data["Title"].(string)
	pageTitle, _ := data["PageTitle"].(string)
	if _, err := w.Write([]byte(`<title>` + html.EscapeString(title) + `</title>`)); err != nil {
		h.logger().Error("failed to write partial document title", "error", err)
		return
	}
	if _, err := w.Write([]byte(`<h1 id="header-title" class="header-title" hx-swap-oob="outerHTML">` +
		html.EscapeString(pageTitle) + `</h1>`)); err != nil {
		h.logger().Error("failed to write partial header title", "error", err)
		return
	}
	if err := h.T.ExecuteTemplate(w, "content", data); err != nil {
		h.logger().Error("partial content render failed", "error", err, "path", r.URL.Path)
	}
}

// renderAuthPage renders login and registration outside the chrome.
func (h *UIHandlers) renderAuthPage(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	if err := h.T.RenderAuth(w, status, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "auth page render")
	}
}

// renderError renders the standalone error page.
func (h *UIHandlers) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	data := map[string]any{"Title": "Error - VISTA", "ErrorMessage": msg}
	if err := h.T.RenderError(w, status, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "error page render")
	}
}

func markPageError(data map[string]any) {
	data["Error"] = true
	if _, ok := data["ErrorMessage"]; ok {
		return
	}
	data["ErrorMessage"] = errMsgLoadFails
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if _, writeErr := w.Write([]byte(`<div class="dev-error"><h2>Template Rendering Error</h2>` +
			`<p><strong>Context:</strong> ` + html.EscapeString(context) + `</p>` +
			`<p><strong>Path:</strong> ` + html.EscapeString(r.URL.Path) + `</p>` +
			`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	http.Error(w, "internal server error", http.StatusInternalServerError)
}

package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/target/vista-ui/internal/domain/model"
	obserrors "github.com/target/vista-ui/internal/observability/errors"
	"github.com/target/vista-ui/internal/ports"
)

//nolint:gochecknoglobals // static page metadata
var calendarMeta = PageMeta{Title: "Calendario - VISTA", PageTitle: "Calendario", CurrentPage: PageCalendar}

// errNoWorkspace is returned when the router was built without a workspace API.
var errNoWorkspace = errors.New("workspace api not configured")

// workspaceAPI returns the project and task API authenticated as the requesting browser.
//
//nolint:ireturn // the port is the point.
func (h *UIHandlers) workspaceAPI(ctx context.Context) (ports.WorkspaceAPI, error) {
	storage, ok := ClientStorageFromContext(ctx)
	if !ok || h.Workspace == nil {
		return nil, errNoWorkspace
	}
	return h.Workspace.WorkspaceAPI(storage), nil
}

// parseCalendarFilter reads showTasks, showProjects, taskStatus and projectStatus.
// Missing or malformed flags default to true.
func parseCalendarFilter(q url.Values) model.CalendarFilter {
	f := model.DefaultCalendarFilter()
	if v, err := strconv.ParseBool(q.Get("showTasks")); err == nil {
		f.ShowTasks = v
	}
	if v, err := strconv.ParseBool(q.Get("showProjects")); err == nil {
		f.ShowProjects = v
	}
	f.TaskStatus = q.Get("taskStatus")
	f.ProjectStatus = q.Get("projectStatus")
	return f.Normalize()
}

// CalendarScreen renders tasks and projects as calendar events.
func (h *UIHandlers) CalendarScreen() Screen {
	return ScreenFunc(func(r *http.Request) PageSpec {
		filter := parseCalendarFilter(r.URL.Query())
		return PageSpec{Meta: calendarMeta, Fetch: func(ctx context.Context, data map[string]any) error {
			data["Filter"] = filter
			data["TaskStatuses"] = []model.TaskStatus{model.TaskStatusPending, model.TaskStatusInProgress, model.TaskStatusDone}
			data["ProjectStatuses"] = []model.ProjectStatus{model.ProjectStatusActive, model.ProjectStatusPaused, model.ProjectStatusFinished}
			events, err := h.calendarEvents(ctx, filter)
			if err != nil {
				return err
			}
			data["Events"] = events
			return nil
		}}
	})
}

// CalendarEvents returns the filtered events as JSON.
// GET /calendar/events?showTasks=&showProjects=&taskStatus=&projectStatus=.
func (h *UIHandlers) CalendarEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.calendarEvents(r.Context(), parseCalendarFilter(r.URL.Query()))
	if err != nil {
		if isUnauthorized(err) {
			h.logoutOnUnauthorized(r)
			WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "unauthorized", Err: errors.New("session expired")})
			return
		}
		h.logger().WarnContext(r.Context(), "calendar events failed", "client_id", ClientIDFromContext(r.Context()), "error", err)
		WriteError(w, ErrorParams{Code: http.StatusBadGateway, ErrCode: "api_error", Err: errors.New("could not load calendar events")})
		return
	}
	WriteJSON(w, http.StatusOK, events)
}

func (h *UIHandlers) calendarEvents(ctx context.Context, filter model.CalendarFilter) ([]model.CalendarEvent, error) {
	api, err := h.workspaceAPI(ctx)
	if err != nil {
		return nil, err
	}
	return h.Calendar.Events(ctx, api, filter)
}

// isUnauthorized reports whether err carries an HTTP 401 from the API.
func isUnauthorized(err error) bool {
	var sc obserrors.StatusCoder
	return errors.As(err, &sc) && sc.HTTPStatus() == http.StatusUnauthorized
}

func (h *UIHandlers) logoutOnUnauthorized(r *http.Request) bool {
	if !h.LogoutOnUnauthorized {
		return false
	}
	store, ok := SessionStoreFromContext(r.Context())
	if !ok {
		return false
	}
	h.logger().InfoContext(r.Context(), "api rejected token, signing client out", "client_id", ClientIDFromContext(r.Context()))
	store.Logout(r.Context())
	return true
}

// handleUnauthorized sends the browser to the login page when the API
// rejected its token and the session was dropped because of it.
func (h *UIHandlers) handleUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !isUnauthorized(err) || !h.logoutOnUnauthorized(r) {
		return false
	}
	redirectToLogin(w, r)
	return true
}

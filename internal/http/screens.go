package httpx

import (
	"context"
	"net/http"
)

//nolint:gochecknoglobals // static page metadata
var dashboardMeta = PageMeta{Title: "Dashboard - VISTA", PageTitle: "Dashboard", CurrentPage: PageDashboard}

// DashboardScreen greets the signed-in user.
func DashboardScreen() Screen {
	return ScreenFunc(func(*http.Request) PageSpec { return PageSpec{Meta: dashboardMeta} })
}

// SectionScreen is a guarded section of the application rendered with the
// generic screen template. Detail routes expose their {id} to the template.
type SectionScreen struct {
	Title       string
	Description string
}

// Spec implements Screen.
func (s SectionScreen) Spec(r *http.Request) PageSpec {
	id := r.PathValue("id")
	return PageSpec{
		Meta: PageMeta{Title: s.Title + " - VISTA", PageTitle: s.Title, CurrentPage: PageScreen},
		Fetch: func(_ context.Context, data map[string]any) error {
			data["Description"] = s.Description
			if id != "" {
				data["ResourceID"] = id
			}
			return nil
		},
	}
}

// sectionRoute binds a GET pattern to a section.
type sectionRoute struct {
	Pattern string
	Screen  SectionScreen
}

// sectionRoutes lists the guarded sections served by the generic screen.
//
//nolint:gochecknoglobals // static route table
var sectionRoutes = []sectionRoute{
	{"GET /projects", SectionScreen{"Proyectos", "Listado de proyectos del equipo."}},
	{"GET /projects/new", SectionScreen{"Nuevo Proyecto", "Crear un proyecto nuevo."}},
	{"GET /projects/{id}", SectionScreen{"Detalle del Proyecto", "Información, tareas y miembros del proyecto."}},
	{"GET /projects/{id}/edit", SectionScreen{"Editar Proyecto", "Modificar los datos del proyecto."}},
	{"GET /tasks", SectionScreen{"Tareas", "Listado de tareas."}},
	{"GET /tasks/new", SectionScreen{"Nueva Tarea", "Crear una tarea nueva."}},
	{"GET /tasks/{id}", SectionScreen{"Detalle de la Tarea", "Estado, responsables y comentarios de la tarea."}},
	{"GET /tasks/{id}/edit", SectionScreen{"Editar Tarea", "Modificar los datos de la tarea."}},
	{"GET /my-tasks", SectionScreen{"Mis Tareas", "Tareas asignadas a ti."}},
	{"GET /reports", SectionScreen{"Reportes", "Indicadores de proyectos y tareas."}},
	{"GET /users", SectionScreen{"Usuarios", "Miembros de la organización."}},
	{"GET /users/new", SectionScreen{"Nuevo Usuario", "Dar de alta un miembro."}},
	{"GET /users/{id}", SectionScreen{"Detalle del Usuario", "Perfil y asignaciones del usuario."}},
	{"GET /users/{id}/edit", SectionScreen{"Editar Usuario", "Modificar los datos del usuario."}},
}

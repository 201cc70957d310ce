package httpx

import (
	"net/http"
	"strings"

	domainauth "github.com/target/vista-ui/internal/domain/auth"
	"github.com/target/vista-ui/internal/http/validation"
	"github.com/target/vista-ui/internal/service"
)

//nolint:gochecknoglobals // static page metadata
var (
	loginMeta    = PageMeta{Title: "Iniciar Sesión - VISTA", PageTitle: "Iniciar Sesión", CurrentPage: PageLogin}
	registerMeta = PageMeta{Title: "Crear Cuenta - VISTA", PageTitle: "Crear Cuenta", CurrentPage: PageRegister}
)

// RoleOption is one entry of the registration role selector.
type RoleOption struct {
	Value string
	Label string
}

func roleOptions() []RoleOption {
	roles := []domainauth.Role{
		domainauth.RoleDeveloper,
		domainauth.RoleWorkforce,
		domainauth.RoleDevelopmentLead,
		domainauth.RoleWorkforceLead,
	}
	out := make([]RoleOption, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleOption{Value: string(r), Label: r.Label()})
	}
	return out
}

func roleValues() []string {
	opts := roleOptions()
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Value)
	}
	return out
}

// mustStore returns the browser's session store or writes a 500.
func (h *UIHandlers) mustStore(w http.ResponseWriter, r *http.Request) (*service.SessionStore, bool) {
	store, ok := SessionStoreFromContext(r.Context())
	if !ok {
		h.logger().ErrorContext(r.Context(), "session store missing from request context", "path", r.URL.Path)
		h.renderError(w, r, http.StatusInternalServerError, "")
		return nil, false
	}
	return store, true
}

// LoginPage renders the login form. Signed-in browsers go straight to their destination.
// GET /login?redirect_uri=<optional_redirect>.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	store, ok := h.mustStore(w, r)
	if !ok {
		return
	}
	redirectTo := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	if store.CheckAuth(r.Context()) {
		redirect(w, r, redirectTo)
		return
	}
	store.ClearError()

	data := NewTemplateData(r, loginMeta).
		With("RedirectURI", redirectTo).
		WithForm(map[string]string{}).
		Build()
	h.renderAuthPage(w, r, http.StatusOK, data)
}

// LoginSubmit signs the browser in.
// POST /login.
func (h *UIHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	store, ok := h.mustStore(w, r)
	if !ok {
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	redirectTo := safeRedirectPath(r.PostFormValue("redirect_uri"))

	render := func(status int, b *TemplateDataBuilder) {
		data := b.With("RedirectURI", redirectTo).WithForm(map[string]string{"email": email}).Build()
		h.renderAuthPage(w, r, status, data)
	}

	fv := validation.New().
		Validate("email", email, validation.Required("Correo electrónico", maxEmailLen), validation.Email("Correo electrónico")).
		Validate("password", password, validation.Required("Contraseña", maxPasswordLen))
	if !fv.OK() {
		render(http.StatusUnprocessableEntity, NewTemplateData(r, loginMeta).WithError(errMsgFixBelow).WithFieldErrors(fv.Errors()))
		return
	}

	if res := store.Login(r.Context(), email, password); !res.Success {
		render(http.StatusUnauthorized, NewTemplateData(r, loginMeta).WithError(res.Error))
		return
	}
	redirect(w, r, redirectTo)
}

// RegisterPage renders the registration form.
// GET /register.
func (h *UIHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	store, ok := h.mustStore(w, r)
	if !ok {
		return
	}
	if store.CheckAuth(r.Context()) {
		redirect(w, r, "/")
		return
	}
	store.ClearError()

	data := NewTemplateData(r, registerMeta).
		With("Roles", roleOptions()).
		WithForm(map[string]string{"role": string(domainauth.RoleDeveloper)}).
		Build()
	h.renderAuthPage(w, r, http.StatusOK, data)
}

// RegisterSubmit creates an account and signs the browser in.
// POST /register.
func (h *UIHandlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	store, ok := h.mustStore(w, r)
	if !ok {
		return
	}
	in := domainauth.RegisterInput{
		FirstName: strings.TrimSpace(r.PostFormValue("firstName")),
		LastName:  strings.TrimSpace(r.PostFormValue("lastName")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Password:  r.PostFormValue("password"),
		Role:      domainauth.Role(strings.TrimSpace(r.PostFormValue("role"))),
	}
	form := map[string]string{
		"firstName": in.FirstName,
		"lastName":  in.LastName,
		"email":     in.Email,
		"role":      string(in.Role),
	}
	render := func(status int, b *TemplateDataBuilder) {
		h.renderAuthPage(w, r, status, b.With("Roles", roleOptions()).WithForm(form).Build())
	}

	fv := validation.New().
		Validate("firstName", in.FirstName, validation.Required("Nombre", maxNameLen)).
		Validate("lastName", in.LastName, validation.Required("Apellido", maxNameLen)).
		Validate("email", in.Email, validation.Required("Correo electrónico", maxEmailLen), validation.Email("Correo electrónico")).
		Validate("password", in.Password,
			validation.Required("Contraseña", maxPasswordLen),
			validation.MinLength("Contraseña", minPasswordLen)).
		Validate("confirmPassword", r.PostFormValue("confirmPassword"),
			validation.Equals("Las contraseñas no coinciden.", in.Password)).
		Validate("role", string(in.Role), validation.Required("Rol", maxNameLen), validation.OneOf("Rol", roleValues()))
	if !fv.OK() {
		render(http.StatusUnprocessableEntity, NewTemplateData(r, registerMeta).WithError(errMsgFixBelow).WithFieldErrors(fv.Errors()))
		return
	}

	if res := store.Register(r.Context(), in); !res.Success {
		render(http.StatusBadRequest, NewTemplateData(r, registerMeta).WithError(res.Error))
		return
	}
	redirect(w, r, "/")
}

// Logout signs the browser out. It cannot fail.
// POST /logout.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	store, ok := h.mustStore(w, r)
	if !ok {
		return
	}
	store.Logout(r.Context())
	redirect(w, r, "/login")
}

// authStatusResponse is the body of GET /auth/status.
type authStatusResponse struct {
	Authenticated bool             `json:"authenticated"`
	User          *domainauth.User `json:"user"`
}

// Status reports whether the browser is signed in.
// GET /auth/status.
func (h *UIHandlers) Status(w http.ResponseWriter, r *http.Request) {
	store, ok := SessionStoreFromContext(r.Context())
	if !ok || !store.CheckAuth(r.Context()) {
		WriteJSON(w, http.StatusOK, authStatusResponse{})
		return
	}
	WriteJSON(w, http.StatusOK, authStatusResponse{Authenticated: true, User: store.State().User})
}

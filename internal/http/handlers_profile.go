package httpx

import (
	"context"
	"net/http"
	"strings"

	domainauth "github.com/target/vista-ui/internal/domain/auth"
	"github.com/target/vista-ui/internal/http/validation"
)

//nolint:gochecknoglobals // static page metadata
var (
	profileMeta  = PageMeta{Title: "Mi Perfil - VISTA", PageTitle: "Mi Perfil", CurrentPage: PageProfile}
	passwordMeta = PageMeta{Title: "Cambiar Contraseña - VISTA", PageTitle: "Cambiar Contraseña", CurrentPage: PagePassword}
)

// ProfileScreen shows the signed-in user's profile form.
func ProfileScreen() Screen {
	return ScreenFunc(func(r *http.Request) PageSpec {
		return PageSpec{Meta: profileMeta, Fetch: func(_ context.Context, data map[string]any) error {
			data["Form"] = profileForm(CurrentUser(r.Context()))
			return nil
		}}
	})
}

// PasswordScreen shows the change-password form.
func PasswordScreen() Screen {
	return ScreenFunc(func(*http.Request) PageSpec { return PageSpec{Meta: passwordMeta} })
}

func profileForm(u *domainauth.User) map[string]string {
	if u == nil {
		return map[string]string{}
	}
	return map[string]string{"firstName": u.FirstName, "lastName": u.LastName, "email": u.Email}
}

// ProfileSubmit updates the signed-in user's profile.
// POST /profile.
func (h *UIHandlers) ProfileSubmit(w http.ResponseWriter, r *http.Request) {
	store, ok := h.mustStore(w, r)
	if !ok {
		return
	}
	in := domainauth.ProfileUpdate{
		FirstName: strings.TrimSpace(r.PostFormValue("firstName")),
		LastName:  strings.TrimSpace(r.PostFormValue("lastName")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
	}
	form := map[string]string{"firstName": in.FirstName, "lastName": in.LastName, "email": in.Email}

	fv := validation.New().
		Validate("firstName", in.FirstName, validation.Required("Nombre", maxNameLen)).
		Validate("lastName", in.LastName, validation.Required("Apellido", maxNameLen)).
		Validate("email", in.Email, validation.Required("Correo electrónico", maxEmailLen), validation.Email("Correo electrónico"))
	if !fv.OK() {
		data := NewTemplateData(r, profileMeta).WithError(errMsgFixBelow).WithFieldErrors(fv.Errors()).WithForm(form).Build()
		h.renderPage(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	res := store.UpdateProfile(r.Context(), in)
	if !res.Success {
		data := NewTemplateData(r, profileMeta).WithError(res.Error).WithForm(form).Build()
		h.renderPage(w, r, http.StatusBadRequest, data)
		return
	}

	// Rebuild after the update so the chrome shows the new name.
	data := NewTemplateData(r, profileMeta).
		WithSuccess("Perfil actualizado correctamente.").
		WithForm(profileForm(CurrentUser(r.Context()))).
		Build()
	h.renderPage(w, r, http.StatusOK, data)
}

// PasswordSubmit changes the signed-in user's password.
// POST /settings/password.
func (h *UIHandlers) PasswordSubmit(w http.ResponseWriter, r *http.Request) {
	store, ok := h.mustStore(w, r)
	if !ok {
		return
	}
	current := r.PostFormValue("currentPassword")
	next := r.PostFormValue("newPassword")

	fv := validation.New().
		Validate("currentPassword", current, validation.Required("Contraseña actual", maxPasswordLen)).
		Validate("newPassword", next,
			validation.Required("Nueva contraseña", maxPasswordLen),
			validation.MinLength("Nueva contraseña", minPasswordLen)).
		Validate("confirmPassword", r.PostFormValue("confirmPassword"),
			validation.Equals("Las contraseñas no coinciden.", next))
	if !fv.OK() {
		data := NewTemplateData(r, passwordMeta).WithError(errMsgFixBelow).WithFieldErrors(fv.Errors()).Build()
		h.renderPage(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	if res := store.ChangePassword(r.Context(), current, next); !res.Success {
		data := NewTemplateData(r, passwordMeta).WithError(res.Error).Build()
		h.renderPage(w, r, http.StatusBadRequest, data)
		return
	}
	data := NewTemplateData(r, passwordMeta).WithSuccess("Contraseña actualizada correctamente.").Build()
	h.renderPage(w, r, http.StatusOK, data)
}

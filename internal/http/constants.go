package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
const (
	PageDashboard = "dashboard"
	PageScreen    = "screen" // generic section rendered inside the chrome
	PageCalendar  = "calendar"
	PageProfile   = "profile"
	PagePassword  = "password"

	// Pages rendered outside the chrome.
	PageLogin    = "login"
	PageRegister = "register"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// Form field limits shared by handlers and templates.
const (
	maxNameLen      = 50
	maxEmailLen     = 254
	maxPasswordLen  = 128
	minPasswordLen  = 6
	errMsgFixBelow  = "Corrige los errores indicados."
	errMsgLoadFails = "No se pudieron cargar los datos. Inténtalo de nuevo."
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageDashboard: "dashboard-content",
	PageScreen:    "screen-content",
	PageCalendar:  "calendar-content",
	PageProfile:   "profile-content",
	PagePassword:  "password-content",
	PageLogin:     "login-content",
	PageRegister:  "register-content",
}

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to dashboard-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "dashboard-content"
}

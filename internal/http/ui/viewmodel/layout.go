// Package viewmodel holds the data shapes templates render.
package viewmodel

// User is the signed-in user as shown in the navbar and sidebar.
type User struct {
	FullName  string
	Initials  string
	Email     string
	Role      string
	RoleLabel string
}

// NavItem is one sidebar entry.
type NavItem struct {
	Label  string
	Href   string
	Icon   string
	Active bool
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	User            *User
	Navigation      []NavItem
	QuickActions    []NavItem
}

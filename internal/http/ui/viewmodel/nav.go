package viewmodel

import (
	"strings"

	domainauth "github.com/target/vista-ui/internal/domain/auth"
)

// Navigation returns the sidebar entries for user. The users section is only
// listed for roles that can manage users.
func Navigation(user *domainauth.User, path string) []NavItem {
	items := []NavItem{
		{Label: "Dashboard", Href: "/", Icon: "home"},
		{Label: "Proyectos", Href: "/projects", Icon: "folder"},
		{Label: "Calendario", Href: "/calendar", Icon: "calendar"},
		{Label: "Tareas", Href: "/tasks", Icon: "clipboard"},
		{Label: "Reportes", Href: "/reports", Icon: "chart"},
	}
	if user.CanManageUsers() {
		items = append(items, NavItem{Label: "Usuarios", Href: "/users", Icon: "users"})
	}
	for i := range items {
		items[i].Active = isActive(items[i].Href, path)
	}
	return items
}

// QuickActions returns the sidebar shortcuts available to user.
func QuickActions(user *domainauth.User) []NavItem {
	var actions []NavItem
	if user.CanCreateProjects() {
		actions = append(actions, NavItem{Label: "Nuevo Proyecto", Href: "/projects/new", Icon: "plus"})
	}
	return append(actions, NavItem{Label: "Nueva Tarea", Href: "/tasks/new", Icon: "plus"})
}

// NewUser projects a domain user into its chrome representation.
func NewUser(u *domainauth.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		FullName:  u.FullName(),
		Initials:  u.Initials(),
		Email:     u.Email,
		Role:      string(u.Role),
		RoleLabel: u.Role.Label(),
	}
}

func isActive(href, path string) bool {
	if href == "/" {
		return path == "/" || path == "/dashboard"
	}
	return path == href || strings.HasPrefix(path, href+"/")
}

package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/target/vista-ui/internal/domain/auth"
)

func labels(items []NavItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestNavigation_RoleAware(t *testing.T) {
	lead := &domainauth.User{FirstName: "Ana", Role: domainauth.RoleWorkforceLead}
	dev := &domainauth.User{FirstName: "Luis", Role: domainauth.RoleDeveloper}
	wf := &domainauth.User{FirstName: "Eva", Role: domainauth.RoleWorkforce}

	assert.Contains(t, labels(Navigation(lead, "/")), "Usuarios")
	assert.NotContains(t, labels(Navigation(dev, "/")), "Usuarios")

	assert.Equal(t, []string{"Nuevo Proyecto", "Nueva Tarea"}, labels(QuickActions(dev)))
	assert.Equal(t, []string{"Nueva Tarea"}, labels(QuickActions(wf)))
	assert.Equal(t, []string{"Nueva Tarea"}, labels(QuickActions(nil)))
}

func TestNavigation_ActiveEntry(t *testing.T) {
	items := Navigation(nil, "/projects/12/edit")
	for _, it := range items {
		assert.Equal(t, it.Href == "/projects", it.Active, it.Href)
	}

	items = Navigation(nil, "/")
	assert.True(t, items[0].Active)
	assert.False(t, items[1].Active)
}

func TestNewUser(t *testing.T) {
	assert.Nil(t, NewUser(nil))

	u := NewUser(&domainauth.User{FirstName: "ana", LastName: "ruiz", Email: "a@x", Role: domainauth.RoleDevelopmentLead})
	assert.Equal(t, "AR", u.Initials)
	assert.Equal(t, "jefe_desarrollo", u.Role)
	assert.Equal(t, domainauth.RoleDevelopmentLead.Label(), u.RoleLabel)
}

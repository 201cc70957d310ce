//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "github.com/target/vista-ui/internal/domain/auth"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "activo"
	ProjectStatusPaused   ProjectStatus = "en_pausa"
	ProjectStatusFinished ProjectStatus = "terminado"
)

// Project is a project as returned by GET /projects.
type Project struct {
	ID          auth.ID       `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Priority    Priority      `json:"priority,omitempty"`
	StartDate   string        `json:"startDate,omitempty"`
	EndDate     string        `json:"endDate,omitempty"`
	CreatedAt   string        `json:"createdAt,omitempty"`
}

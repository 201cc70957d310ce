//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "github.com/target/vista-ui/internal/domain/auth"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pendiente"
	TaskStatusInProgress TaskStatus = "en_progreso"
	TaskStatusDone       TaskStatus = "completado"
)

// Priority ranks tasks and projects.
type Priority string

const (
	PriorityLow      Priority = "baja"
	PriorityMedium   Priority = "media"
	PriorityHigh     Priority = "alta"
	PriorityCritical Priority = "critica"
)

// Assignee is the subset of a user embedded in task payloads.
type Assignee struct {
	ID        auth.ID `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email,omitempty"`
}

// ProjectRef is the subset of a project embedded in task payloads.
type ProjectRef struct {
	ID   auth.ID `json:"id"`
	Name string  `json:"name"`
}

// Task is a unit of work as returned by GET /tasks.
// Dates are kept as the API's ISO-8601 strings.
type Task struct {
	ID            auth.ID     `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	Status        TaskStatus  `json:"status"`
	Priority      Priority    `json:"priority"`
	EstimatedDate string      `json:"estimatedDate,omitempty"`
	CompletedDate string      `json:"completedDate,omitempty"`
	CreatedAt     string      `json:"createdAt,omitempty"`
	Project       *ProjectRef `json:"project,omitempty"`

	// Assignee is the legacy single-assignee field; Assignees supersedes it.
	Assignee  *Assignee  `json:"assignee,omitempty"`
	Assignees []Assignee `json:"assignees,omitempty"`
}

// PrimaryAssignee returns the first of Assignees, falling back to the legacy
// Assignee field. It returns nil for unassigned tasks.
func (t Task) PrimaryAssignee() *Assignee {
	if len(t.Assignees) > 0 {
		a := t.Assignees[0]
		return &a
	}
	return t.Assignee
}

// AllAssignees returns Assignees when the payload carried the array (even
// empty), otherwise the legacy Assignee as a one-element slice.
func (t Task) AllAssignees() []Assignee {
	if t.Assignees != nil {
		return t.Assignees
	}
	if t.Assignee != nil {
		return []Assignee{*t.Assignee}
	}
	return []Assignee{}
}

// AssigneeDisplay summarises a task's assignees for list views.
type AssigneeDisplay struct {
	Text        string
	HasMultiple bool
	Primary     *Assignee
	Total       int
}

// UnassignedText is shown for tasks without assignees.
const UnassignedText = "Sin asignar"

// AssigneeDisplay describes the primary assignee and whether there are more.
func (t Task) AssigneeDisplay() AssigneeDisplay {
	primary := t.PrimaryAssignee()
	if primary == nil {
		return AssigneeDisplay{Text: UnassignedText}
	}
	all := t.AllAssignees()
	return AssigneeDisplay{
		Text:        primary.FirstName + " " + primary.LastName,
		HasMultiple: len(all) > 1,
		Primary:     primary,
		Total:       len(all),
	}
}

// IsAssignedTo reports whether userID is among the task's assignees.
func (t Task) IsAssignedTo(userID auth.ID) bool {
	for _, a := range t.AllAssignees() {
		if a.ID == userID {
			return true
		}
	}
	return false
}

// AssigneeID returns the primary assignee's ID or "" when unassigned.
func (t Task) AssigneeID() auth.ID {
	if a := t.PrimaryAssignee(); a != nil {
		return a.ID
	}
	return ""
}

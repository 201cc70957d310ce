//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "strings"

// CalendarEventKind distinguishes task events from project milestones.
type CalendarEventKind string

const (
	CalendarEventTask    CalendarEventKind = "task"
	CalendarEventProject CalendarEventKind = "project"
)

// CalendarEvent is one all-day entry on the calendar.
type CalendarEvent struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Start           string            `json:"start"`
	AllDay          bool              `json:"allDay"`
	BackgroundColor string            `json:"backgroundColor"`
	BorderColor     string            `json:"borderColor"`
	Kind            CalendarEventKind `json:"type"`
	EventType       string            `json:"eventType,omitempty"`
	Status          string            `json:"status,omitempty"`
	Priority        string            `json:"priority,omitempty"`
	Description     string            `json:"description,omitempty"`
	ProjectName     string            `json:"projectName,omitempty"`
}

// StatusAll disables status filtering.
const StatusAll = "all"

// CalendarFilter selects which events are derived.
type CalendarFilter struct {
	ShowTasks     bool
	ShowProjects  bool
	TaskStatus    string
	ProjectStatus string
}

// DefaultCalendarFilter shows everything.
func DefaultCalendarFilter() CalendarFilter {
	return CalendarFilter{
		ShowTasks:     true,
		ShowProjects:  true,
		TaskStatus:    StatusAll,
		ProjectStatus: StatusAll,
	}
}

// Normalize fills empty status filters with StatusAll.
func (f CalendarFilter) Normalize() CalendarFilter {
	f.TaskStatus = strings.TrimSpace(f.TaskStatus)
	if f.TaskStatus == "" {
		f.TaskStatus = StatusAll
	}
	f.ProjectStatus = strings.TrimSpace(f.ProjectStatus)
	if f.ProjectStatus == "" {
		f.ProjectStatus = StatusAll
	}
	return f
}

// MatchesTask reports whether the task status filter admits s.
func (f CalendarFilter) MatchesTask(s TaskStatus) bool {
	return f.TaskStatus == StatusAll || string(s) == f.TaskStatus
}

// MatchesProject reports whether the project status filter admits s.
func (f CalendarFilter) MatchesProject(s ProjectStatus) bool {
	return f.ProjectStatus == StatusAll || string(s) == f.ProjectStatus
}

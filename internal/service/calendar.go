package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/target/vista-ui/internal/domain/model"
	"github.com/target/vista-ui/internal/ports"
)

type eventColors struct{ background, border string }

var (
	colorTaskDone       = eventColors{"#10b981", "#059669"}
	colorTaskInProgress = eventColors{"#3b82f6", "#2563eb"}
	colorTaskDefault    = eventColors{"#6b7280", "#4b5563"}
	colorProjectStart   = eventColors{"#c4b5fd", "#8b5cf6"}
	colorProjectEnd     = eventColors{"#7c3aed", "#5b21b6"}

	colorPriority = map[model.Priority]eventColors{
		model.PriorityCritical: {"#ef4444", "#dc2626"},
		model.PriorityHigh:     {"#f97316", "#ea580c"},
		model.PriorityMedium:   {"#eab308", "#ca8a04"},
		model.PriorityLow:      {"#6b7280", "#4b5563"},
	}
)

// BuildCalendarEvents maps tasks and projects to calendar events. Task events
// come first; input order is preserved.
func BuildCalendarEvents(tasks []model.Task, projects []model.Project, filter model.CalendarFilter) []model.CalendarEvent {
	filter = filter.Normalize()
	events := make([]model.CalendarEvent, 0, len(tasks)+2*len(projects))

	if filter.ShowTasks {
		for _, t := range tasks {
			if filter.MatchesTask(t.Status) {
				events = append(events, taskEvent(t))
			}
		}
	}

	if filter.ShowProjects {
		for _, p := range projects {
			if !filter.MatchesProject(p.Status) {
				continue
			}
			events = append(events, projectEvents(p)...)
		}
	}
	return events
}

func taskEvent(t model.Task) model.CalendarEvent {
	ev := model.CalendarEvent{
		ID:          "task-" + string(t.ID),
		AllDay:      true,
		Kind:        model.CalendarEventTask,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Description: t.Description,
	}
	if t.Project != nil {
		ev.ProjectName = t.Project.Name
	}

	switch {
	case t.Status == model.TaskStatusDone && t.CompletedDate != "":
		ev.Start = t.CompletedDate
		ev.Title = "✅ " + t.Title
	case t.EstimatedDate != "":
		ev.Start = t.EstimatedDate
		ev.Title = "📋 " + t.Title
	default:
		ev.Start = t.CreatedAt
		ev.Title = "📋 " + t.Title
	}

	c := taskColors(t)
	ev.BackgroundColor, ev.BorderColor = c.background, c.border
	return ev
}

func taskColors(t model.Task) eventColors {
	switch t.Status {
	case model.TaskStatusDone:
		return colorTaskDone
	case model.TaskStatusInProgress:
		return colorTaskInProgress
	}
	if c, ok := colorPriority[t.Priority]; ok {
		return c
	}
	return colorTaskDefault
}

func projectEvents(p model.Project) []model.CalendarEvent {
	base := model.CalendarEvent{
		AllDay:      true,
		Kind:        model.CalendarEventProject,
		Status:      string(p.Status),
		Priority:    string(p.Priority),
		Description: p.Description,
	}

	var out []model.CalendarEvent
	start := p.StartDate
	if start == "" {
		start = p.CreatedAt
	}
	if start != "" {
		ev := base
		ev.ID = fmt.Sprintf("project-%s-start", p.ID)
		ev.Title = "🚀 " + p.Name + " (Inicio)"
		ev.Start = start
		ev.EventType = "start"
		ev.BackgroundColor, ev.BorderColor = colorProjectStart.background, colorProjectStart.border
		out = append(out, ev)
	}
	if p.EndDate != "" {
		ev := base
		ev.ID = fmt.Sprintf("project-%s-end", p.ID)
		ev.Title = "🏁 " + p.Name + " (Fin)"
		ev.Start = p.EndDate
		ev.EventType = "end"
		ev.BackgroundColor, ev.BorderColor = colorProjectEnd.background, colorProjectEnd.border
		out = append(out, ev)
	}
	return out
}

// CalendarServiceOptions groups dependencies for CalendarService.
type CalendarServiceOptions struct {
	Logger *slog.Logger
}

// CalendarService loads workspace data and derives calendar events.
type CalendarService struct {
	logger *slog.Logger
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(opts CalendarServiceOptions) *CalendarService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarService{logger: logger.With("component", "calendar")}
}

// Events fetches tasks and projects concurrently and derives the events
// selected by filter. Data the filter hides is not fetched.
func (s *CalendarService) Events(ctx context.Context, api ports.WorkspaceAPI, filter model.CalendarFilter) ([]model.CalendarEvent, error) {
	var (
		tasks    []model.Task
		projects []model.Project
	)

	g, gctx := errgroup.WithContext(ctx)
	if filter.ShowTasks {
		g.Go(func() error {
			var err error
			if tasks, err = api.ListTasks(gctx); err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}
			return nil
		})
	}
	if filter.ShowProjects {
		g.Go(func() error {
			var err error
			if projects, err = api.ListProjects(gctx); err != nil {
				return fmt.Errorf("list projects: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	events := BuildCalendarEvents(tasks, projects, filter)
	s.logger.DebugContext(ctx, "calendar events built", "tasks", len(tasks), "projects", len(projects), "events", len(events))
	return events, nil
}

package apiclient

import (
	"context"
	"net/http"

	"github.com/target/vista-ui/internal/domain/model"
)

type workspaceAPI struct {
	c      *Client
	authed *http.Client
}

func (w *workspaceAPI) ListTasks(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	if err := w.c.do(ctx, w.authed, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *workspaceAPI) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	if err := w.c.do(ctx, w.authed, http.MethodGet, "/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

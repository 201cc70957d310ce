package ports

import (
	"context"

	"github.com/target/vista-ui/internal/domain/model"
)

// WorkspaceAPI reads projects and tasks from the remote API on behalf of the
// current user.
type WorkspaceAPI interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
}

// WorkspaceAPIFactory builds a WorkspaceAPI authenticated with the token in storage.
type WorkspaceAPIFactory interface {
	WorkspaceAPI(storage Storage) WorkspaceAPI
}

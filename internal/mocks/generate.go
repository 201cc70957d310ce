// Package mocks provides mock implementations of the ports for testing the session layer.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockAuthAPI(ctrl)
//	api.EXPECT().Login(gomock.Any(), gomock.Any()).Return(payload, nil)
package mocks

// Generate mock for AuthAPI interface from internal/ports package.
// This creates MockAuthAPI with methods for all AuthAPI interface methods:
// Login, Register, UpdateProfile, ChangePassword
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=auth_api_mock.go github.com/target/vista-ui/internal/ports AuthAPI

// Generate mock for WorkspaceAPI interface from internal/ports package.
// This creates MockWorkspaceAPI with methods for all WorkspaceAPI interface methods:
// ListTasks, ListProjects
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=workspace_api_mock.go github.com/target/vista-ui/internal/ports WorkspaceAPI

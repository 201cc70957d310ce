package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/vista-ui/internal/adapters/memory"
	domainauth "github.com/target/vista-ui/internal/domain/auth"
	"github.com/target/vista-ui/internal/ports"
)

func newTestClient(t *testing.T, h http.Handler, path string) (*Client, ports.Storage) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/api/", ErrorMessagePath: path})
	require.NoError(t, err)
	return c, memory.NewStorageProvider().For("client-1")
}

func TestAuthAPI_LoginDecodesEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var in domainauth.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ana@x.com", in.Email)
		assert.Equal(t, "pw123", in.Password)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"user":{"id":1,"firstName":"Ana","lastName":"Ruiz","role":"desarrollador"},"token":"tok1"}}`)
	})

	c, storage := newTestClient(t, mux, "")
	out, err := c.AuthAPI(storage).Login(context.Background(), domainauth.Credentials{Email: "ana@x.com", Password: "pw123"})

	require.NoError(t, err)
	assert.Equal(t, "tok1", out.Token)
	require.NotNil(t, out.User)
	assert.Equal(t, "Ana", out.User.FirstName)
	assert.Equal(t, domainauth.ID("1"), out.User.ID)
}

func TestAuthAPI_ErrorMessageExtraction(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"Invalid credentials"}`)
	})

	c, storage := newTestClient(t, handler, "")
	_, err := c.AuthAPI(storage).Login(context.Background(), domainauth.Credentials{Email: "bad@x.com", Password: "wrong"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.ServerMessage())
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestAuthAPI_CustomErrorPathAndNonJSONBody(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		if calls == 1 {
			_, _ = io.WriteString(w, `{"errors":[{"msg":"Email already registered"}]}`)
			return
		}
		_, _ = io.WriteString(w, `<html>bad gateway</html>`)
	})

	c, storage := newTestClient(t, handler, "errors[0].msg")
	api := c.AuthAPI(storage)

	_, err := api.Register(context.Background(), domainauth.RegisterInput{Email: "a@x.com", Password: "pw"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Email already registered", apiErr.Message)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	_, err = api.Register(context.Background(), domainauth.RegisterInput{Email: "a@x.com", Password: "pw"})
	require.ErrorAs(t, err, &apiErr)
	assert.Empty(t, apiErr.Message)
}

func TestAuthAPI_AuthenticatedCallsCarryBearerFromStorage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok1", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"data":{"id":1,"firstName":"Anita","department":"QA"}}`)
	})
	mux.HandleFunc("PUT /api/auth/change-password", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	c, storage := newTestClient(t, mux, "")
	require.NoError(t, storage.Set(context.Background(), domainauth.KeyToken, "tok1"))
	api := c.AuthAPI(storage)

	user, err := api.UpdateProfile(context.Background(), domainauth.ProfileUpdate{FirstName: "Anita"})
	require.NoError(t, err)
	assert.Equal(t, "Anita", user.FirstName)
	assert.Contains(t, user.Extra, "department")

	require.NoError(t, api.ChangePassword(context.Background(), domainauth.PasswordChange{CurrentPassword: "a", NewPassword: "b"}))
}

func TestAuthAPI_MissingTokenFailsLocally(t *testing.T) {
	hit := false
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hit = true })

	c, storage := newTestClient(t, handler, "")
	err := c.AuthAPI(storage).ChangePassword(context.Background(), domainauth.PasswordChange{})

	assert.ErrorIs(t, err, ErrNoToken)
	assert.False(t, hit)
}

func TestWorkspaceAPI_ListTasksAndProjects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"data":[{"id":1,"title":"Write docs","status":"pendiente","priority":"alta","assignees":[{"id":2,"firstName":"Luis","lastName":"Paz"}]}]}`)
	})
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":"p1","name":"Apollo","status":"activo","startDate":"2024-01-01"}]}`)
	})

	c, storage := newTestClient(t, mux, "")
	require.NoError(t, storage.Set(context.Background(), domainauth.KeyToken, "tok"))
	api := c.WorkspaceAPI(storage)

	tasks, err := api.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Luis Paz", tasks[0].AssigneeDisplay().Text)

	projects, err := api.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, domainauth.ID("p1"), projects[0].ID)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "http://x", ErrorMessagePath: "errors[0"})
	assert.Error(t, err)
}

func TestError_Format(t *testing.T) {
	assert.Equal(t, "api: status 500", (&Error{Status: 500}).Error())
	assert.True(t, errors.Is(&Error{Status: 401}, ErrUnauthorized))
	assert.Equal(t, "auth.login", endpointTag("/auth/login"))
	assert.Equal(t, "tasks", endpointTag("/tasks?status=x"))
	assert.Equal(t, "tasks.id.comments", endpointTag("/tasks/42/comments"))
}

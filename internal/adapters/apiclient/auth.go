package apiclient

import (
	"context"
	"net/http"

	domainauth "github.com/target/vista-ui/internal/domain/auth"
)

// authAPI implements ports.AuthAPI. Login and registration go out without a
// token; profile and password calls carry the client's bearer token.
type authAPI struct {
	c      *Client
	authed *http.Client
}

func (a *authAPI) Login(ctx context.Context, in domainauth.Credentials) (domainauth.AuthPayload, error) {
	var out domainauth.AuthPayload
	err := a.c.do(ctx, a.c.anon, http.MethodPost, "/auth/login", in, &out)
	return out, err
}

func (a *authAPI) Register(ctx context.Context, in domainauth.RegisterInput) (domainauth.AuthPayload, error) {
	var out domainauth.AuthPayload
	err := a.c.do(ctx, a.c.anon, http.MethodPost, "/auth/register", in, &out)
	return out, err
}

func (a *authAPI) UpdateProfile(ctx context.Context, in domainauth.ProfileUpdate) (*domainauth.User, error) {
	var out domainauth.User
	if err := a.c.do(ctx, a.authed, http.MethodPut, "/auth/profile", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *authAPI) ChangePassword(ctx context.Context, in domainauth.PasswordChange) error {
	return a.c.do(ctx, a.authed, http.MethodPut, "/auth/change-password", in, nil)
}

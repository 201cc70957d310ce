package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/vista-ui/internal/domain/auth"
)

// AuthAPI is the remote authentication API.
// Errors carry the server's human-readable message when one was returned.
type AuthAPI interface {
	// Login exchanges credentials for a user and bearer token.
	Login(ctx context.Context, in domainauth.Credentials) (domainauth.AuthPayload, error)

	// Register creates an account and returns it logged in.
	Register(ctx context.Context, in domainauth.RegisterInput) (domainauth.AuthPayload, error)

	// UpdateProfile updates the current user and returns its canonical representation.
	UpdateProfile(ctx context.Context, in domainauth.ProfileUpdate) (*domainauth.User, error)

	// ChangePassword changes the current user's password.
	ChangePassword(ctx context.Context, in domainauth.PasswordChange) error
}

// AuthAPIFactory builds an AuthAPI whose authenticated calls read the bearer
// token from the given client storage.
type AuthAPIFactory interface {
	AuthAPI(storage Storage) AuthAPI
}

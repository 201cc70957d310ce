// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/target/vista-ui/internal/domain/auth"
	"github.com/target/vista-ui/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthAPI        = (*StubAuthAPI)(nil)
	_ ports.AuthAPIFactory = StaticAuthAPIFactory{}
	_ ports.Storage        = (*FaultyStorage)(nil)
)

// ErrNotStubbed is returned by StubAuthAPI methods without a configured func.
var ErrNotStubbed = errors.New("stub: method not configured")

// MessageError is an API error carrying a server message.
type MessageError struct {
	Status  int
	Message string
}

func (e *MessageError) Error() string { return e.Message }

// ServerMessage returns the server-provided message.
func (e *MessageError) ServerMessage() string { return e.Message }

// StubAuthAPI dispatches to per-method funcs and records calls.
type StubAuthAPI struct {
	LoginFunc          func(ctx context.Context, in domainauth.Credentials) (domainauth.AuthPayload, error)
	RegisterFunc       func(ctx context.Context, in domainauth.RegisterInput) (domainauth.AuthPayload, error)
	UpdateProfileFunc  func(ctx context.Context, in domainauth.ProfileUpdate) (*domainauth.User, error)
	ChangePasswordFunc func(ctx context.Context, in domainauth.PasswordChange) error

	mu    sync.Mutex
	calls []string
}

// Calls returns the method names invoked so far, in order.
func (s *StubAuthAPI) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *StubAuthAPI) record(name string) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()
}

func (s *StubAuthAPI) Login(ctx context.Context, in domainauth.Credentials) (domainauth.AuthPayload, error) {
	s.record("Login")
	if s.LoginFunc == nil {
		return domainauth.AuthPayload{}, ErrNotStubbed
	}
	return s.LoginFunc(ctx, in)
}

func (s *StubAuthAPI) Register(ctx context.Context, in domainauth.RegisterInput) (domainauth.AuthPayload, error) {
	s.record("Register")
	if s.RegisterFunc == nil {
		return domainauth.AuthPayload{}, ErrNotStubbed
	}
	return s.RegisterFunc(ctx, in)
}

func (s *StubAuthAPI) UpdateProfile(ctx context.Context, in domainauth.ProfileUpdate) (*domainauth.User, error) {
	s.record("UpdateProfile")
	if s.UpdateProfileFunc == nil {
		return nil, ErrNotStubbed
	}
	return s.UpdateProfileFunc(ctx, in)
}

func (s *StubAuthAPI) ChangePassword(ctx context.Context, in domainauth.PasswordChange) error {
	s.record("ChangePassword")
	if s.ChangePasswordFunc == nil {
		return ErrNotStubbed
	}
	return s.ChangePasswordFunc(ctx, in)
}

// StaticAuthAPIFactory hands out the same AuthAPI for every client.
type StaticAuthAPIFactory struct {
	API ports.AuthAPI
}

// AuthAPI implements ports.AuthAPIFactory.
//
//nolint:ireturn // factory returns the port.
func (f StaticAuthAPIFactory) AuthAPI(ports.Storage) ports.AuthAPI { return f.API }

// FaultyStorage wraps a Storage and injects errors.
type FaultyStorage struct {
	ports.Storage
	GetErr    error
	SetErr    error
	RemoveErr error
}

func (f *FaultyStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if f.GetErr != nil {
		return "", false, f.GetErr
	}
	return f.Storage.Get(ctx, key)
}

func (f *FaultyStorage) Set(ctx context.Context, key, value string) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	return f.Storage.Set(ctx, key, value)
}

func (f *FaultyStorage) Remove(ctx context.Context, key string) error {
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	return f.Storage.Remove(ctx, key)
}

// SampleUser returns a user fixture.
func SampleUser() *domainauth.User {
	return &domainauth.User{
		ID:        "1",
		FirstName: "Ana",
		LastName:  "Ruiz",
		Email:     "ana@vista.test",
		Role:      domainauth.RoleDevelopmentLead,
		IsActive:  true,
	}
}

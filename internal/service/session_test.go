package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/vista-ui/internal/adapters/memory"
	domainauth "github.com/target/vista-ui/internal/domain/auth"
	"github.com/target/vista-ui/internal/mocks"
	mockauth "github.com/target/vista-ui/internal/mocks/auth"
	"github.com/target/vista-ui/internal/ports"
)

type sessionFixture struct {
	provider *memory.StorageProvider
	storage  ports.Storage
	api      *mocks.MockAuthAPI
}

func newSessionFixture(t *testing.T) sessionFixture {
	t.Helper()
	p := memory.NewStorageProvider()
	return sessionFixture{
		provider: p,
		storage:  p.For("client-1"),
		api:      mocks.NewMockAuthAPI(gomock.NewController(t)),
	}
}

func (f sessionFixture) newStore(t *testing.T) *SessionStore {
	t.Helper()
	return NewSessionStore(context.Background(), SessionStoreOptions{Storage: f.storage, API: f.api})
}

func (f sessionFixture) seed(t *testing.T, token, user string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.storage.Set(ctx, domainauth.KeyToken, token))
	require.NoError(t, f.storage.Set(ctx, domainauth.KeyUser, user))
}

func (f sessionFixture) persisted(t *testing.T) map[string]string {
	t.Helper()
	dump, err := f.provider.Dump(context.Background(), "client-1")
	require.NoError(t, err)
	if dump == nil {
		dump = map[string]string{}
	}
	return dump
}

func assertInvariants(t *testing.T, s domainauth.Session) {
	t.Helper()
	assert.Equal(t, s.Token != nil, s.IsAuthenticated, "authenticated iff token present")
	if s.IsAuthenticated {
		assert.NotNil(t, s.User, "authenticated session must carry a user")
	}
}

func TestSessionStore_EmptyStorage(t *testing.T) {
	f := newSessionFixture(t)
	store := f.newStore(t)

	assert.False(t, store.CheckAuth(context.Background()))
	st := store.State()
	assert.Nil(t, st.User)
	assert.Nil(t, st.Token)
	assert.False(t, st.IsLoading)
	assert.Nil(t, st.Error)
}

func TestSessionStore_HydratesPersistedSession(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t, "abc", `{"id":1,"firstName":"Ana","lastName":"Ruiz","role":"desarrollador"}`)

	store := f.newStore(t)
	st := store.State()

	require.True(t, st.IsAuthenticated)
	assert.Equal(t, "abc", st.TokenValue())
	assert.Equal(t, "Ana", st.User.FirstName)
	assert.Equal(t, domainauth.RoleDeveloper, st.User.Role)
	assert.True(t, store.CheckAuth(context.Background()))
}

func TestSessionStore_MalformedUserIsAbsent(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t, "abc", `{not json`)

	store := f.newStore(t)
	st := store.State()

	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assertInvariants(t, st)
}

func TestSessionStore_NullUserIsAbsent(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t, "abc", `null`)

	store := f.newStore(t)
	st := store.State()

	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.False(t, store.CheckAuth(context.Background()))
	assert.Nil(t, store.State().User)
	assertInvariants(t, store.State())
}

func TestSessionStore_StorageReadErrorIsAbsent(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t, "abc", `{"id":1}`)
	faulty := &mockauth.FaultyStorage{Storage: f.storage, GetErr: errors.New("unreachable")}

	store := NewSessionStore(context.Background(), SessionStoreOptions{Storage: faulty, API: f.api})
	assert.False(t, store.CheckAuth(context.Background()))
}

func TestSessionStore_LoginSuccess(t *testing.T) {
	f := newSessionFixture(t)
	f.api.EXPECT().
		Login(gomock.Any(), domainauth.Credentials{Email: "ana@x.com", Password: "pw123"}).
		Return(domainauth.AuthPayload{User: mockauth.SampleUser(), Token: "tok1"}, nil)

	store := f.newStore(t)
	res := store.Login(context.Background(), "ana@x.com", "pw123")

	assert.Equal(t, domainauth.Result{Success: true}, res)
	st := store.State()
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.IsLoading)
	assert.Nil(t, st.Error)
	assert.Equal(t, "Ana", st.User.FirstName)
	assertInvariants(t, st)

	persisted := f.persisted(t)
	assert.Equal(t, "tok1", persisted[domainauth.KeyToken])
	assert.JSONEq(t, `{"id":1,"firstName":"Ana","lastName":"Ruiz","email":"ana@vista.test","role":"jefe_desarrollo","managerId":null,"isActive":true}`, persisted[domainauth.KeyUser])
}

func TestSessionStore_LoginServerRejection(t *testing.T) {
	tests := []struct {
		name   string
		seeded bool
	}{
		{name: "storage empty"},
		{name: "storage previously set", seeded: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t)
			if tt.seeded {
				f.seed(t, "stale", `{"id":9,"firstName":"Old"}`)
			}
			f.api.EXPECT().Login(gomock.Any(), gomock.Any()).
				Return(domainauth.AuthPayload{}, &mockauth.MessageError{Status: 401, Message: "Invalid credentials"})

			store := f.newStore(t)
			res := store.Login(context.Background(), "bad@x.com", "wrong")

			assert.Equal(t, domainauth.Result{Error: "Invalid credentials"}, res)
			st := store.State()
			assert.False(t, st.IsAuthenticated)
			assert.Nil(t, st.User)
			assert.Equal(t, "Invalid credentials", st.ErrorValue())
			assert.False(t, st.IsLoading)
			assert.Empty(t, f.persisted(t), "no stale token may survive a failed login")
		})
	}
}

func TestSessionStore_LoginNetworkErrorUsesFallback(t *testing.T) {
	f := newSessionFixture(t)
	f.api.EXPECT().Login(gomock.Any(), gomock.Any()).Return(domainauth.AuthPayload{}, errors.New("dial tcp: connection refused"))

	store := f.newStore(t)
	res := store.Login(context.Background(), "a@x.com", "pw")

	assert.Equal(t, MsgLoginFailed, res.Error)
	assert.Equal(t, MsgLoginFailed, store.State().ErrorValue())
}

func TestSessionStore_LoginRequiresCredentials(t *testing.T) {
	f := newSessionFixture(t)
	store := f.newStore(t)

	res := store.Login(context.Background(), "  ", "pw")
	assert.Equal(t, MsgCredentialsRequired, res.Error)
	assert.False(t, store.State().IsLoading)

	res = store.Login(context.Background(), "a@x.com", "")
	assert.False(t, res.Success)
}

func TestSessionStore_LoginIncompletePayloadFails(t *testing.T) {
	f := newSessionFixture(t)
	f.api.EXPECT().Login(gomock.Any(), gomock.Any()).Return(domainauth.AuthPayload{Token: "tok"}, nil)

	store := f.newStore(t)
	res := store.Login(context.Background(), "a@x.com", "pw")

	assert.Equal(t, MsgLoginFailed, res.Error)
	assert.False(t, store.State().IsAuthenticated)
	assert.Empty(t, f.persisted(t))
}

func TestSessionStore_LoginPersistFailureIsLoginFailure(t *testing.T) {
	f := newSessionFixture(t)
	f.api.EXPECT().Login(gomock.Any(), gomock.Any()).
		Return(domainauth.AuthPayload{User: mockauth.SampleUser(), Token: "tok1"}, nil)
	faulty := &mockauth.FaultyStorage{Storage: f.storage, SetErr: errors.New("disk full")}

	store := NewSessionStore(context.Background(), SessionStoreOptions{Storage: faulty, API: f.api})
	res := store.Login(context.Background(), "a@x.com", "pw")

	assert.Equal(t, MsgLoginFailed, res.Error)
	st := store.State()
	assert.False(t, st.IsAuthenticated)
	assertInvariants(t, st)
}

func TestSessionStore_LoginLogoutCheckAuthRoundTrip(t *testing.T) {
	f := newSessionFixture(t)
	f.api.EXPECT().Login(gomock.Any(), gomock.Any()).
		Return(domainauth.AuthPayload{User: mockauth.SampleUser(), Token: "tok1"}, nil)

	ctx := context.Background()
	store := f.newStore(t)
	require.True(t, store.Login(ctx, "a@x.com", "pw").Success)

	store.Logout(ctx)

	assert.False(t, store.CheckAuth(ctx))
	assert.Empty(t, f.persisted(t))
	assert.Equal(t, domainauth.Session{}, store.State())
}

func TestSessionStore_LogoutIsIdempotent(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t, "abc", `{"id":1,"firstName":"Ana"}`)
	ctx := context.Background()

	once := f.newStore(t)
	once.Logout(ctx)
	afterOnce, storageOnce := once.State(), f.persisted(t)

	f2 := newSessionFixture(t)
	f2.seed(t, "abc", `{"id":1,"firstName":"Ana"}`)
	twice := f2.newStore(t)
	twice.Logout(ctx)
	twice.Logout(ctx)

	assert.Equal(t, afterOnce, twice.State())
	assert.Equal(t, storageOnce, f2.persisted(t))
}

func TestSessionStore_LogoutStorageErrorStillResets(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t, "abc", `{"id":1,"firstName":"Ana"}`)
	faulty := &mockauth.FaultyStorage{Storage: f.storage, RemoveErr: errors.New("unreachable")}

	store := NewSessionStore(context.Background(), SessionStoreOptions{Storage: faulty, API: f.api})
	require.True(t, store.State().IsAuthenticated)

	store.Logout(context.Background())
	assert.Equal(t, domainauth.Session{}, store.State())
}

func TestSessionStore_RegisterSuccessLogsIn(t *testing.T) {
	f := newSessionFixture(t)
	in := domainauth.RegisterInput{FirstName: "Ana", LastName: "Ruiz", Email: "ana@x.com", Password: "pw123"}
	f.api.EXPECT().Register(gomock.Any(), in).
		Return(domainauth.AuthPayload{User: mockauth.SampleUser(), Token: "tok2"}, nil)

	store := f.newStore(t)
	res := store.Register(context.Background(), in)

	assert.True(t, res.Success)
	st := store.State()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, "tok2", f.persisted(t)[domainauth.KeyToken])
	assertInvariants(t, st)
}

func TestSessionStore_RegisterFailureForcesSignedOut(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t, "abc", `{"id":1,"firstName":"Ana"}`)
	f.api.EXPECT().Register(gomock.Any(), gomock.Any()).Return(domainauth.AuthPayload{}, errors.New("timeout"))

	store := f.newStore(t)
	res := store.Register(context.Background(), domainauth.RegisterInput{Email: "x@x.com", Password: "pw"})

	assert.Equal(t, MsgRegistrationFailed, res.Error)
	assert.False(t, store.State().IsAuthenticated)
	assert.Nil(t, store.State().User)
	assert.Empty(t, f.persisted(t))
}

func TestSessionStore_UpdateProfileReplacesUser(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t, "abc", `{"id":1,"firstName":"Ana","lastName":"Ruiz"}`)
	updated := mockauth.SampleUser()
	updated.FirstName = "Anita"
	f.api.EXPECT().UpdateProfile(gomock.Any(), domainauth.ProfileUpdate{FirstName: "Anita"}).Return(updated, nil)

	store := f.newStore(t)
	res := store.UpdateProfile(context.Background(), domainauth.ProfileUpdate{FirstName: "Anita"})

	require.True(t, res.Success)
	st := store.State()
	assert.Equal(t, "Anita", st.User.FirstName)
	assert.Equal(t, "abc", st.TokenValue())
	assert.Contains(t, f.persisted(t)[domainauth.KeyUser], `"firstName":"Anita"`)
	assert.Equal(t, "abc", f.persisted(t)[domainauth.KeyToken])
}

func TestSessionStore_UpdateProfileFailureKeepsIdentity(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t, "abc", `{"id":1,"firstName":"Ana"}`)
	f.api.EXPECT().UpdateProfile(gomock.Any(), gomock.Any()).Return(nil, &mockauth.MessageError{Status: 400, Message: ""})

	store := f.newStore(t)
	before := store.State()
	res := store.UpdateProfile(context.Background(), domainauth.ProfileUpdate{Email: "bad"})

	assert.Equal(t, MsgUpdateFailed, res.Error)
	after := store.State()
	assert.Equal(t, before.User, after.User)
	assert.Equal(t, before.Token, after.Token)
}

func TestSessionStore_ChangePasswordFailureOnlyTouchesError(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t, "abc", `{"id":1,"firstName":"Ana"}`)
	f.api.EXPECT().ChangePassword(gomock.Any(), domainauth.PasswordChange{CurrentPassword: "wrong", NewPassword: "new"}).
		Return(&mockauth.MessageError{Status: 400, Message: "Current password is incorrect"})

	store := f.newStore(t)
	before := store.State()
	res := store.ChangePassword(context.Background(), "wrong", "new")

	assert.Equal(t, "Current password is incorrect", res.Error)
	after := store.State()
	assert.Equal(t, before.User, after.User)
	assert.Equal(t, before.Token, after.Token)
	assert.Equal(t, before.IsAuthenticated, after.IsAuthenticated)
	assert.Equal(t, "Current password is incorrect", after.ErrorValue())
	assert.False(t, after.IsLoading)
}

func TestSessionStore_ChangePasswordSuccessAndClearError(t *testing.T) {
	f := newSessionFixture(t)
	f.seed(t, "abc", `{"id":1}`)
	gomock.InOrder(
		f.api.EXPECT().ChangePassword(gomock.Any(), gomock.Any()).Return(errors.New("boom")),
		f.api.EXPECT().ChangePassword(gomock.Any(), gomock.Any()).Return(nil),
	)

	store := f.newStore(t)
	assert.Equal(t, MsgPasswordChangeFailed, store.ChangePassword(context.Background(), "a", "b").Error)

	store.ClearError()
	assert.Nil(t, store.State().Error)

	assert.True(t, store.ChangePassword(context.Background(), "a", "b").Success)
	assert.Nil(t, store.State().Error)
}

func TestSessionStore_LoadingVisibleWhileInFlight(t *testing.T) {
	f := newSessionFixture(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.api.EXPECT().Login(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, domainauth.Credentials) (domainauth.AuthPayload, error) {
			close(entered)
			<-release
			return domainauth.AuthPayload{User: mockauth.SampleUser(), Token: "tok"}, nil
		})

	store := f.newStore(t)
	done := make(chan domainauth.Result)
	go func() { done <- store.Login(context.Background(), "a@x.com", "pw") }()

	<-entered
	assert.True(t, store.State().IsLoading)
	close(release)

	res := <-done
	assert.True(t, res.Success)
	assert.False(t, store.State().IsLoading)
}

func TestSessionStore_LoginAfterLogoutIsDiscarded(t *testing.T) {
	f := newSessionFixture(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.api.EXPECT().Login(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, domainauth.Credentials) (domainauth.AuthPayload, error) {
			close(entered)
			<-release
			return domainauth.AuthPayload{User: mockauth.SampleUser(), Token: "late"}, nil
		})

	ctx := context.Background()
	store := f.newStore(t)
	done := make(chan domainauth.Result)
	go func() { done <- store.Login(ctx, "a@x.com", "pw") }()

	<-entered
	store.Logout(ctx)
	close(release)

	res := <-done
	assert.Equal(t, MsgSuperseded, res.Error)
	assert.False(t, store.CheckAuth(ctx))
	assert.Empty(t, f.persisted(t))
	assert.False(t, store.State().IsLoading)
}

func TestSessionStore_OlderLoginDoesNotClearNewerLoading(t *testing.T) {
	f := newSessionFixture(t)
	firstIn, firstOut := make(chan struct{}), make(chan struct{})
	secondIn, secondOut := make(chan struct{}), make(chan struct{})
	gomock.InOrder(
		f.api.EXPECT().Login(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, domainauth.Credentials) (domainauth.AuthPayload, error) {
				close(firstIn)
				<-firstOut
				return domainauth.AuthPayload{}, &mockauth.MessageError{Message: "Invalid credentials"}
			}),
		f.api.EXPECT().Login(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, domainauth.Credentials) (domainauth.AuthPayload, error) {
				close(secondIn)
				<-secondOut
				return domainauth.AuthPayload{User: mockauth.SampleUser(), Token: "tok"}, nil
			}),
	)

	ctx := context.Background()
	store := f.newStore(t)
	first := make(chan domainauth.Result)
	second := make(chan domainauth.Result)
	go func() { first <- store.Login(ctx, "a@x.com", "bad") }()
	<-firstIn
	go func() { second <- store.Login(ctx, "a@x.com", "good") }()
	<-secondIn

	close(firstOut)
	assert.Equal(t, MsgSuperseded, (<-first).Error)
	assert.True(t, store.State().IsLoading)
	assert.Nil(t, store.State().Error)

	close(secondOut)
	assert.True(t, (<-second).Success)
	assert.True(t, store.State().IsAuthenticated)
	assert.False(t, store.State().IsLoading)
}

func TestSessionStore_SubscribersSeeOrderedTransitions(t *testing.T) {
	f := newSessionFixture(t)
	f.api.EXPECT().Login(gomock.Any(), gomock.Any()).
		Return(domainauth.AuthPayload{User: mockauth.SampleUser(), Token: "tok"}, nil)

	store := f.newStore(t)
	var (
		mu   sync.Mutex
		seen []domainauth.Session
	)
	unsubscribe := store.Subscribe(func(s domainauth.Session) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	ctx := context.Background()
	store.Login(ctx, "a@x.com", "pw")
	store.Logout(ctx)
	unsubscribe()
	store.CheckAuth(ctx)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.True(t, seen[0].IsLoading)
	assert.True(t, seen[1].IsAuthenticated)
	assert.False(t, seen[2].IsAuthenticated)
	for _, s := range seen {
		assertInvariants(t, s)
	}
}

func TestSessionStore_ConcurrentUseKeepsInvariants(t *testing.T) {
	f := newSessionFixture(t)
	f.api.EXPECT().Login(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, domainauth.Credentials) (domainauth.AuthPayload, error) {
			time.Sleep(time.Millisecond)
			return domainauth.AuthPayload{User: mockauth.SampleUser(), Token: "tok"}, nil
		}).AnyTimes()

	ctx := context.Background()
	store := f.newStore(t)
	store.Subscribe(func(s domainauth.Session) { assertInvariants(t, s) })

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch i % 3 {
			case 0:
				store.Login(ctx, "a@x.com", "pw")
			case 1:
				store.Logout(ctx)
			default:
				store.CheckAuth(ctx)
			}
		}()
	}
	wg.Wait()

	st := store.State()
	assertInvariants(t, st)
	assert.False(t, st.IsLoading)
	_, hasToken := f.persisted(t)[domainauth.KeyToken]
	assert.Equal(t, st.IsAuthenticated, hasToken)
}

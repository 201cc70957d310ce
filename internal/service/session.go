package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	domainauth "github.com/target/vista-ui/internal/domain/auth"
	"github.com/target/vista-ui/internal/observability/metrics"
	"github.com/target/vista-ui/internal/observability/statsd"
	"github.com/target/vista-ui/internal/ports"
)

// Messages reported when the server gives no reason of its own.
const (
	MsgLoginFailed          = "Login failed"
	MsgRegistrationFailed   = "Registration failed"
	MsgUpdateFailed         = "Update failed"
	MsgPasswordChangeFailed = "Password change failed"
	MsgCredentialsRequired  = "Email and password are required"
	MsgSuperseded           = "superseded by a newer request"
)

// Operation names used for logging and metrics.
const (
	OpLogin          = "login"
	OpRegister       = "register"
	OpLogout         = "logout"
	OpUpdateProfile  = "update_profile"
	OpChangePassword = "change_password"
)

// ServerMessenger is implemented by API errors that carry a message from the server.
type ServerMessenger interface {
	ServerMessage() string
}

// SessionStoreOptions groups dependencies for SessionStore.
type SessionStoreOptions struct {
	Storage ports.Storage
	API     ports.AuthAPI
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// SessionStore holds the authentication state of one browser client.
//
// State transitions are serialised and published to subscribers in order.
// Network calls never run while a lock is held. Each mutating operation takes
// a ticket; a response that arrives after a newer operation started is
// discarded.
type SessionStore struct {
	storage ports.Storage
	api     ports.AuthAPI
	metrics statsd.Sink
	logger  *slog.Logger

	// commitMu serialises transitions, storage writes and notifications.
	commitMu sync.Mutex
	seq      uint64
	// retired stores discard every pending response. Guarded by commitMu.
	retired  bool
	inflight atomic.Int32

	mu      sync.RWMutex
	state   domainauth.Session
	subs    map[int]func(domainauth.Session)
	nextSub int
}

// NewSessionStore constructs a SessionStore hydrated from persisted storage.
func NewSessionStore(ctx context.Context, opts SessionStoreOptions) *SessionStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &SessionStore{
		storage: opts.Storage,
		api:     opts.API,
		metrics: opts.Metrics,
		logger:  logger.With("component", "session_store"),
		subs:    make(map[int]func(domainauth.Session)),
	}
	user, token := s.readPersisted(ctx)
	s.state = identityState(user, token)
	return s
}

// State returns a snapshot of the current session.
func (s *SessionStore) State() domainauth.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to receive every new state. fn runs synchronously
// after each transition and must not call mutating SessionStore methods.
func (s *SessionStore) Subscribe(fn func(domainauth.Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// CheckAuth reloads user and token from persisted storage and reports
// whether the client is authenticated. It never fails.
func (s *SessionStore) CheckAuth(ctx context.Context) bool {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	user, token := s.readPersisted(ctx)
	next := s.apply(func(st *domainauth.Session) {
		id := identityState(user, token)
		st.User, st.Token, st.IsAuthenticated = id.User, id.Token, id.IsAuthenticated
	})
	return next.IsAuthenticated
}

// Login exchanges credentials for a session.
func (s *SessionStore) Login(ctx context.Context, email, password string) domainauth.Result {
	ticket := s.begin()
	defer s.inflight.Add(-1)
	start := time.Now()

	if strings.TrimSpace(email) == "" || password == "" {
		return s.finishAuth(ctx, authOutcome{op: OpLogin, ticket: ticket, start: start, msg: MsgCredentialsRequired})
	}

	payload, err := s.api.Login(ctx, domainauth.Credentials{Email: strings.TrimSpace(email), Password: password})
	return s.finishAuth(ctx, authOutcome{
		op: OpLogin, ticket: ticket, start: start,
		payload: payload, err: err, fallback: MsgLoginFailed,
	})
}

// Register creates an account and logs it in.
func (s *SessionStore) Register(ctx context.Context, in domainauth.RegisterInput) domainauth.Result {
	ticket := s.begin()
	defer s.inflight.Add(-1)
	start := time.Now()

	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return s.finishAuth(ctx, authOutcome{op: OpRegister, ticket: ticket, start: start, msg: MsgCredentialsRequired})
	}

	payload, err := s.api.Register(ctx, in)
	return s.finishAuth(ctx, authOutcome{
		op: OpRegister, ticket: ticket, start: start,
		payload: payload, err: err, fallback: MsgRegistrationFailed,
	})
}

// Logout clears persisted and in-memory identity. It cannot fail; storage
// errors are logged and the in-memory state is reset regardless.
func (s *SessionStore) Logout(ctx context.Context) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.seq++
	if err := s.clearPersisted(ctx); err != nil {
		s.logger.WarnContext(ctx, "clear persisted session on logout", "error", err)
	}
	s.apply(func(st *domainauth.Session) { *st = domainauth.Session{} })
	metrics.EmitSessionOperation(s.metrics, metrics.SessionMetric{Operation: OpLogout, Result: metrics.ResultSuccess})
}

// UpdateProfile sends profile changes and replaces the user with the
// server's canonical representation. The token is untouched.
func (s *SessionStore) UpdateProfile(ctx context.Context, in domainauth.ProfileUpdate) domainauth.Result {
	ticket := s.begin()
	defer s.inflight.Add(-1)
	start := time.Now()

	user, err := s.api.UpdateProfile(ctx, in)
	if err == nil && user == nil {
		err = errors.New("empty user in profile response")
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if s.stale(ticket) {
		return s.superseded(ctx, OpUpdateProfile, start)
	}
	if err != nil {
		return s.fail(ctx, OpUpdateProfile, start, err, serverMessage(err, MsgUpdateFailed))
	}

	if perr := s.persistUser(ctx, user); perr != nil {
		s.logger.ErrorContext(ctx, "persist updated user", "error", perr)
		return s.fail(ctx, OpUpdateProfile, start, perr, MsgUpdateFailed)
	}
	s.apply(func(st *domainauth.Session) {
		st.User = user
		st.IsLoading = false
		st.Error = nil
	})
	s.emit(OpUpdateProfile, metrics.ResultSuccess, start, nil)
	return domainauth.Ok()
}

// ChangePassword asks the server to change the current user's password.
// Only the loading and error fields change.
func (s *SessionStore) ChangePassword(ctx context.Context, currentPassword, newPassword string) domainauth.Result {
	ticket := s.begin()
	defer s.inflight.Add(-1)
	start := time.Now()

	err := s.api.ChangePassword(ctx, domainauth.PasswordChange{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	})

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if s.stale(ticket) {
		return s.superseded(ctx, OpChangePassword, start)
	}
	if err != nil {
		return s.fail(ctx, OpChangePassword, start, err, serverMessage(err, MsgPasswordChangeFailed))
	}
	s.apply(func(st *domainauth.Session) {
		st.IsLoading = false
		st.Error = nil
	})
	s.emit(OpChangePassword, metrics.ResultSuccess, start, nil)
	return domainauth.Ok()
}

// ClearError resets the error message.
func (s *SessionStore) ClearError() {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if s.State().Error == nil {
		return
	}
	s.apply(func(st *domainauth.Session) { st.Error = nil })
}

type authOutcome struct {
	op       string
	ticket   uint64
	start    time.Time
	payload  domainauth.AuthPayload
	err      error
	fallback string
	// msg short-circuits the call with a local validation failure.
	msg string
}

// finishAuth commits the result of a login or registration.
func (s *SessionStore) finishAuth(ctx context.Context, o authOutcome) domainauth.Result {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if s.stale(o.ticket) {
		return s.superseded(ctx, o.op, o.start)
	}

	var (
		failMsg string
		failErr = o.err
	)
	switch {
	case o.msg != "":
		failMsg = o.msg
	case o.err != nil:
		failMsg = serverMessage(o.err, o.fallback)
	case o.payload.Token == "" || o.payload.User == nil:
		failMsg = o.fallback
		failErr = errors.New("incomplete auth payload")
	default:
		if err := s.persistIdentity(ctx, o.payload.User, o.payload.Token); err != nil {
			s.logger.ErrorContext(ctx, "persist session", "op", o.op, "error", err)
			failMsg, failErr = o.fallback, err
		}
	}

	if failMsg != "" {
		if err := s.clearPersisted(ctx); err != nil {
			s.logger.WarnContext(ctx, "clear persisted session after failure", "op", o.op, "error", err)
		}
		s.apply(func(st *domainauth.Session) {
			msg := failMsg
			*st = domainauth.Session{Error: &msg}
		})
		s.emit(o.op, metrics.ResultError, o.start, failErr)
		return domainauth.Fail(failMsg)
	}

	token := o.payload.Token
	s.apply(func(st *domainauth.Session) {
		*st = domainauth.Session{User: o.payload.User, Token: &token, IsAuthenticated: true}
	})
	s.emit(o.op, metrics.ResultSuccess, o.start, nil)
	return domainauth.Ok()
}

// begin issues a ticket and marks the store as loading. The caller must
// release the in-flight count when the operation returns.
func (s *SessionStore) begin() uint64 {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.inflight.Add(1)
	s.seq++
	s.apply(func(st *domainauth.Session) {
		st.IsLoading = true
		st.Error = nil
	})
	return s.seq
}

// stale reports whether a response for ticket must be discarded. Caller holds commitMu.
func (s *SessionStore) stale(ticket uint64) bool {
	return s.retired || ticket != s.seq
}

// retire makes the store discard every pending and future response. A
// replacement store for the same client may then own persisted storage.
func (s *SessionStore) retire() {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.retired = true
	s.seq++
}

// tryRetire retires the store unless an operation is in flight or a commit
// holds the lock. It never blocks.
func (s *SessionStore) tryRetire() bool {
	if !s.commitMu.TryLock() {
		return false
	}
	defer s.commitMu.Unlock()

	if s.inflight.Load() > 0 {
		return false
	}
	s.retired = true
	s.seq++
	return true
}

// fail records msg as the error for a non-identity operation. Caller holds commitMu.
func (s *SessionStore) fail(ctx context.Context, op string, start time.Time, err error, msg string) domainauth.Result {
	s.logger.DebugContext(ctx, "session operation failed", "op", op, "error", err)
	s.apply(func(st *domainauth.Session) {
		st.IsLoading = false
		st.Error = &msg
	})
	s.emit(op, metrics.ResultError, start, err)
	return domainauth.Fail(msg)
}

// superseded reports a discarded response. Caller holds commitMu.
func (s *SessionStore) superseded(ctx context.Context, op string, start time.Time) domainauth.Result {
	s.logger.DebugContext(ctx, "discarding superseded response", "op", op)
	s.emit(op, metrics.ResultSuperseded, start, nil)
	return domainauth.Fail(MsgSuperseded)
}

// apply mutates state and notifies subscribers. Caller holds commitMu.
func (s *SessionStore) apply(fn func(*domainauth.Session)) domainauth.Session {
	s.mu.Lock()
	fn(&s.state)
	next := s.state
	subs := make([]func(domainauth.Session), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(next)
	}
	return next
}

func (s *SessionStore) emit(op, result string, start time.Time, err error) {
	metrics.EmitSessionOperation(s.metrics, metrics.SessionMetric{
		Operation: op,
		Result:    result,
		Duration:  time.Since(start),
		Err:       err,
	})
}

// readPersisted loads token and user. Read failures, malformed user JSON and
// a null user are treated as absent.
func (s *SessionStore) readPersisted(ctx context.Context) (*domainauth.User, *string) {
	var token *string
	if v, ok, err := s.storage.Get(ctx, domainauth.KeyToken); err != nil {
		s.logger.WarnContext(ctx, "read persisted token", "error", err)
	} else if ok {
		token = &v
	}

	var user *domainauth.User
	if raw, ok, err := s.storage.Get(ctx, domainauth.KeyUser); err != nil {
		s.logger.WarnContext(ctx, "read persisted user", "error", err)
	} else if ok {
		// A JSON null leaves user nil.
		if jerr := json.Unmarshal([]byte(raw), &user); jerr != nil {
			s.logger.WarnContext(ctx, "discarding malformed persisted user", "error", jerr)
			user = nil
		}
	}
	return user, token
}

func (s *SessionStore) persistIdentity(ctx context.Context, user *domainauth.User, token string) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if batch, ok := s.storage.(ports.BatchStorage); ok {
		return batch.SetMany(ctx, map[string]string{
			domainauth.KeyToken: token,
			domainauth.KeyUser:  string(raw),
		})
	}
	if err := s.storage.Set(ctx, domainauth.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("set user: %w", err)
	}
	if err := s.storage.Set(ctx, domainauth.KeyToken, token); err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	return nil
}

func (s *SessionStore) persistUser(ctx context.Context, user *domainauth.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Set(ctx, domainauth.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("set user: %w", err)
	}
	return nil
}

func (s *SessionStore) clearPersisted(ctx context.Context) error {
	if batch, ok := s.storage.(ports.BatchStorage); ok {
		return batch.RemoveMany(ctx, domainauth.KeyToken, domainauth.KeyUser)
	}
	return errors.Join(
		s.storage.Remove(ctx, domainauth.KeyToken),
		s.storage.Remove(ctx, domainauth.KeyUser),
	)
}

// identityState derives the identity fields. A token without a readable user
// is not an authenticated session.
func identityState(user *domainauth.User, token *string) domainauth.Session {
	if token == nil || user == nil {
		return domainauth.Session{User: user}
	}
	return domainauth.Session{User: user, Token: token, IsAuthenticated: true}
}

// serverMessage returns the server-provided message carried by err, or fallback.
func serverMessage(err error, fallback string) string {
	var sm ServerMessenger
	if errors.As(err, &sm) {
		if msg := strings.TrimSpace(sm.ServerMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/target/vista-ui/internal/domain/auth"
	"github.com/target/vista-ui/internal/observability/metrics"
	"github.com/target/vista-ui/internal/observability/statsd"
	"github.com/target/vista-ui/internal/ports"
)

// ErrClientIDRequired is returned when a session is requested without a client identifier.
var ErrClientIDRequired = errors.New("client id is required")

// SessionRegistryOptions groups dependencies for SessionRegistry.
type SessionRegistryOptions struct {
	Storage ports.StorageProvider
	APIs    ports.AuthAPIFactory
	// Capacity bounds the number of resident stores.
	Capacity int
	// IdleTTL evicts stores that have not been used for this long.
	IdleTTL time.Duration
	Metrics statsd.Sink
	Logger  *slog.Logger
	Now     func() time.Time
}

// SessionRegistry owns one SessionStore per browser client. Stores are built
// and hydrated on first access; concurrent first accesses share one build.
// A store with an operation in flight is never evicted, and an evicted store
// discards any response that arrives later, so at most one store per client
// writes to persisted storage.
type SessionRegistry struct {
	storage ports.StorageProvider
	apis    ports.AuthAPIFactory
	metrics statsd.Sink
	logger  *slog.Logger

	stores *LocalLRU[*SessionStore]
	group  singleflight.Group
}

// NewSessionRegistry constructs a SessionRegistry.
func NewSessionRegistry(opts SessionRegistryOptions) *SessionRegistry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &SessionRegistry{
		storage: opts.Storage,
		apis:    opts.APIs,
		metrics: opts.Metrics,
		logger:  logger.With("component", "session_registry"),
	}
	r.stores = NewLocalLRU(LocalLRUConfig[*SessionStore]{
		Capacity: opts.Capacity,
		IdleTTL:  opts.IdleTTL,
		Now:      opts.Now,
		Evictable: func(_ string, store *SessionStore) bool {
			return store.tryRetire()
		},
		OnEvict: func(clientID string, _ *SessionStore) {
			r.logger.Debug("session store evicted", "client_id", clientID)
		},
	})
	return r
}

// Get returns the SessionStore for clientID, building it on first access.
func (r *SessionRegistry) Get(ctx context.Context, clientID string) (*SessionStore, error) {
	if clientID == "" {
		return nil, ErrClientIDRequired
	}
	if store, ok := r.stores.Get(clientID); ok {
		return store, nil
	}

	// Hydration must not be cut short by one caller's cancellation since the
	// result is shared and cached.
	hydrateCtx := context.WithoutCancel(ctx)
	v, _, _ := r.group.Do(clientID, func() (any, error) {
		if store, ok := r.stores.Get(clientID); ok {
			return store, nil
		}
		store := r.build(hydrateCtx, clientID)
		r.stores.Set(clientID, store)
		metrics.EmitRegistrySize(r.metrics, r.stores.Len())
		return store, nil
	})
	store, _ := v.(*SessionStore)
	return store, nil
}

// Storage returns the persisted storage scoped to clientID.
func (r *SessionRegistry) Storage(clientID string) ports.Storage {
	return r.storage.For(clientID)
}

// Forget drops the resident store for clientID. The next Get rehydrates it;
// responses still pending on the dropped store are discarded.
func (r *SessionRegistry) Forget(clientID string) {
	if store, ok := r.stores.Peek(clientID); ok {
		store.retire()
	}
	r.stores.Delete(clientID)
}

// Stats reports cache counters.
func (r *SessionRegistry) Stats() LocalLRUStats {
	return r.stores.Stats()
}

func (r *SessionRegistry) build(ctx context.Context, clientID string) *SessionStore {
	storage := r.storage.For(clientID)
	logger := r.logger.With("client_id", clientID)
	store := NewSessionStore(ctx, SessionStoreOptions{
		Storage: storage,
		API:     r.apis.AuthAPI(storage),
		Metrics: r.metrics,
		Logger:  logger,
	})
	store.Subscribe(r.transitionObserver(logger, store.State().IsAuthenticated))
	logger.DebugContext(ctx, "session store hydrated", "authenticated", store.State().IsAuthenticated)
	return store
}

// transitionObserver logs and counts changes of the authenticated flag.
func (r *SessionRegistry) transitionObserver(logger *slog.Logger, initial bool) func(domainauth.Session) {
	last := initial
	return func(s domainauth.Session) {
		if s.IsAuthenticated == last {
			return
		}
		last = s.IsAuthenticated
		if s.IsAuthenticated {
			logger.Info("client signed in", "user_id", string(s.User.ID))
		} else {
			logger.Info("client signed out")
		}
		metrics.EmitAuthTransition(r.metrics, s.IsAuthenticated)
	}
}

package httpx

import (
	"context"

	domainauth "github.com/target/vista-ui/internal/domain/auth"
	"github.com/target/vista-ui/internal/ports"
	"github.com/target/vista-ui/internal/service"
)

// clientKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type clientKey struct{}

// clientContext is what ClientSession resolves for one request.
type clientContext struct {
	id      string
	store   *service.SessionStore
	storage ports.Storage
}

func withClient(ctx context.Context, c *clientContext) context.Context {
	if c == nil {
		return ctx
	}
	return context.WithValue(ctx, clientKey{}, c)
}

func clientFromContext(ctx context.Context) (*clientContext, bool) {
	c, ok := ctx.Value(clientKey{}).(*clientContext)
	return c, ok && c != nil
}

// ClientIDFromContext returns the browser client identifier or "".
func ClientIDFromContext(ctx context.Context) string {
	if c, ok := clientFromContext(ctx); ok {
		return c.id
	}
	return ""
}

// SessionStoreFromContext returns the session store of the requesting browser.
func SessionStoreFromContext(ctx context.Context) (*service.SessionStore, bool) {
	c, ok := clientFromContext(ctx)
	if !ok || c.store == nil {
		return nil, false
	}
	return c.store, true
}

// ClientStorageFromContext returns the persisted storage of the requesting browser.
func ClientStorageFromContext(ctx context.Context) (ports.Storage, bool) {
	c, ok := clientFromContext(ctx)
	if !ok || c.storage == nil {
		return nil, false
	}
	return c.storage, true
}

// CurrentUser returns the signed-in user of the requesting browser, or nil.
func CurrentUser(ctx context.Context) *domainauth.User {
	store, ok := SessionStoreFromContext(ctx)
	if !ok {
		return nil
	}
	st := store.State()
	if !st.IsAuthenticated {
		return nil
	}
	return st.User
}

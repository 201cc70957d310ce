package ports

import "context"

// Storage is a string key-value store scoped to one browser client.
// A missing key is reported as ok=false with a nil error.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// BatchStorage is implemented by storages that can write several keys atomically.
type BatchStorage interface {
	Storage
	SetMany(ctx context.Context, values map[string]string) error
	RemoveMany(ctx context.Context, keys ...string) error
}

// StorageProvider hands out the storage for a client identifier.
type StorageProvider interface {
	For(clientID string) Storage
}

// StorageAdmin is implemented by providers that can inspect and purge clients.
type StorageAdmin interface {
	Dump(ctx context.Context, clientID string) (map[string]string, error)
	Purge(ctx context.Context, clientID string) error
}

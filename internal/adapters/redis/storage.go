// Package redis provides Redis-based adapters for per-client storage.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/vista-ui/internal/ports"
)

const defaultPrefix = "vista:storage:"

var (
	_ ports.StorageProvider = (*StorageProvider)(nil)
	_ ports.StorageAdmin    = (*StorageProvider)(nil)
	_ ports.BatchStorage    = (*Storage)(nil)
)

// StorageProvider keeps each client's entries under "<prefix>{<clientID>}:<key>".
// The hash tag pins one client's keys to a single cluster slot.
type StorageProvider struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// StorageOptions groups StorageProvider settings.
type StorageOptions struct {
	Prefix string
	// TTL expires every written entry; zero keeps entries until removed.
	TTL time.Duration
}

// NewStorageProvider creates a Redis-backed StorageProvider.
func NewStorageProvider(client redis.UniversalClient, opts StorageOptions) *StorageProvider {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &StorageProvider{client: client, prefix: prefix, ttl: opts.TTL}
}

// For returns the storage scoped to clientID.
//
//nolint:ireturn // callers depend on the port.
func (p *StorageProvider) For(clientID string) ports.Storage {
	return &Storage{provider: p, clientID: clientID}
}

func (p *StorageProvider) clientPrefix(clientID string) string {
	return p.prefix + "{" + clientID + "}:"
}

// Dump returns all entries for clientID.
func (p *StorageProvider) Dump(ctx context.Context, clientID string) (map[string]string, error) {
	keys, err := p.clientKeys(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	cp := p.clientPrefix(clientID)
	for i, k := range keys {
		// Keys expired between SCAN and MGET come back nil.
		if v, ok := vals[i].(string); ok {
			out[strings.TrimPrefix(k, cp)] = v
		}
	}
	return out, nil
}

// Purge deletes every entry for clientID.
func (p *StorageProvider) Purge(ctx context.Context, clientID string) error {
	keys, err := p.clientKeys(ctx, clientID)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := p.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (p *StorageProvider) clientKeys(ctx context.Context, clientID string) ([]string, error) {
	if clientID == "" {
		return nil, errors.New("client id is required")
	}
	pattern := p.clientPrefix(clientID) + "*"

	cluster, ok := p.client.(*redis.ClusterClient)
	if !ok {
		return scanKeys(ctx, p.client, pattern)
	}
	var (
		mu   sync.Mutex
		keys []string
	)
	err := cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
		found, err := scanKeys(ctx, node, pattern)
		if err != nil {
			return err
		}
		mu.Lock()
		keys = append(keys, found...)
		mu.Unlock()
		return nil
	})
	return keys, err
}

func scanKeys(ctx context.Context, c redis.Cmdable, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := c.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

// Storage is one client's view of a StorageProvider.
type Storage struct {
	provider *StorageProvider
	clientID string
}

func (s *Storage) key(k string) string {
	return s.provider.clientPrefix(s.clientID) + k
}

// Get returns the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.provider.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

// Set stores value under key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := s.provider.client.Set(ctx, s.key(key), value, s.provider.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Remove deletes key.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if err := s.provider.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// SetMany writes all values in one MULTI/EXEC transaction.
func (s *Storage) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := s.provider.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, s.key(k), v, s.provider.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis multi set: %w", err)
	}
	return nil
}

// RemoveMany deletes all keys in one MULTI/EXEC transaction.
func (s *Storage) RemoveMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.provider.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Del(ctx, s.key(k))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis multi del: %w", err)
	}
	return nil
}

// Package memory provides a process-local client storage driver.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/target/vista-ui/internal/ports"
)

var (
	_ ports.StorageProvider = (*StorageProvider)(nil)
	_ ports.StorageAdmin    = (*StorageProvider)(nil)
	_ ports.BatchStorage    = (*Storage)(nil)
)

// StorageProvider keeps every client's storage in one map guarded by a mutex.
type StorageProvider struct {
	mu      sync.RWMutex
	clients map[string]map[string]string
}

// NewStorageProvider creates an empty StorageProvider.
func NewStorageProvider() *StorageProvider {
	return &StorageProvider{clients: make(map[string]map[string]string)}
}

// For returns the storage scoped to clientID.
//
//nolint:ireturn // callers depend on the port.
func (p *StorageProvider) For(clientID string) ports.Storage {
	return &Storage{provider: p, clientID: clientID}
}

// Dump returns a copy of clientID's entries.
func (p *StorageProvider) Dump(_ context.Context, clientID string) (map[string]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.clients[clientID]), nil
}

// Purge removes every entry for clientID.
func (p *StorageProvider) Purge(_ context.Context, clientID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clients, clientID)
	return nil
}

// Storage is one client's view of a StorageProvider.
type Storage struct {
	provider *StorageProvider
	clientID string
}

// Get returns the value stored under key.
func (s *Storage) Get(_ context.Context, key string) (string, bool, error) {
	s.provider.mu.RLock()
	defer s.provider.mu.RUnlock()
	v, ok := s.provider.clients[s.clientID][key]
	return v, ok, nil
}

// Set stores value under key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// Remove deletes key.
func (s *Storage) Remove(ctx context.Context, key string) error {
	return s.RemoveMany(ctx, key)
}

// SetMany stores all values under one lock.
func (s *Storage) SetMany(_ context.Context, values map[string]string) error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()

	entries, ok := s.provider.clients[s.clientID]
	if !ok {
		entries = make(map[string]string, len(values))
		s.provider.clients[s.clientID] = entries
	}
	maps.Copy(entries, values)
	return nil
}

// RemoveMany deletes all keys under one lock.
func (s *Storage) RemoveMany(_ context.Context, keys ...string) error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()

	entries := s.provider.clients[s.clientID]
	for _, k := range keys {
		delete(entries, k)
	}
	if len(entries) == 0 {
		delete(s.provider.clients, s.clientID)
	}
	return nil
}

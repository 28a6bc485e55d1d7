// Package devicecache holds small string values local to one client
// installation: the same-device pick, and mirrors of the durable preference.
package devicecache

import (
	"context"
	"sync"
)

// Cache is a key/value store local to one device. Get reports ok=false for a
// missing key. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
}

const keyPrefix = "vitrine:"

// LastPickedKey is the same-device slot holding the last collection picked on this device.
func LastPickedKey(userID string) string { return keyPrefix + "last-picked:" + userID }

// SyncedPickKey mirrors the durable cross-device last-selected collection.
func SyncedPickKey(userID string) string { return keyPrefix + "synced-pick:" + userID }

// DefaultKey mirrors the durable default collection.
func DefaultKey(userID string) string { return keyPrefix + "default:" + userID }

// Memory is an in-process Cache.
type Memory struct {
	mu   sync.RWMutex
	vals map[string]string
}

func NewMemory() *Memory { return &Memory{vals: make(map[string]string)} }

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.vals[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.vals, key)
	m.mu.Unlock()
	return nil
}

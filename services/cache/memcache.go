package cache

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheService implements CacheService on a memcached instance. Block
// entries live outside the process, so a rate-limited marketplace stays
// blocked across worker restarts until the window elapses.
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService connects to the memcached server at serverAddr.
func NewMemcacheService(serverAddr string) *MemcacheService {
	return &MemcacheService{
		client: memcache.New(serverAddr),
	}
}

// Get returns the value stored under key. A miss is an error; the collectors
// read that as "not blocked, go ahead".
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores value under key for the given window. Memcached evicts the
// entry on its own once the window elapses; nothing here refreshes it.
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
}

// Delete removes the entry under key, lifting a block early.
func (m *MemcacheService) Delete(key string) error {
	return m.client.Delete(key)
}

package cache

import (
	"context"
	"time"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache реализация CachePort в памяти процесса.
// Используется, когда Redis выключен, и для короткоживущего кэша API.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache создает кэш с интервалом очистки просроченных ключей cleanupInterval
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := m.cache.Get(key)
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	data, ok := val.([]byte)
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	return data, nil
}

// Set сохраняет копию value. expiration = 0 означает хранение без срока.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	data := make([]byte, len(value))
	copy(data, value)
	m.cache.Set(key, data, expiration)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

// Len количество ключей, включая просроченные, но еще не удаленные
func (m *MemoryCache) Len() int {
	return m.cache.ItemCount()
}

func (m *MemoryCache) Close() error {
	m.cache.Flush()
	return nil
}

package assets

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultAssetTTL      = 6 * time.Hour
	assetCleanupInterval = 30 * time.Minute
)

type blob struct {
	data        []byte
	contentType string
}

// MemoryStore keeps published assets in process memory until they expire
type MemoryStore struct {
	prefix string
	blobs  *cache.Cache
}

// NewMemoryStore creates a store whose URLs start with prefix. A zero ttl
// uses the default lifetime.
func NewMemoryStore(prefix string, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultAssetTTL
	}
	return &MemoryStore{
		prefix: prefix,
		blobs:  cache.New(ttl, assetCleanupInterval),
	}
}

// Publish stores data and returns its URL
func (m *MemoryStore) Publish(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to publish empty asset")
	}
	contentType = DetectContentType(data, contentType)
	key := newKey(contentType)
	m.blobs.SetDefault(key, blob{data: data, contentType: contentType})
	return joinURL(m.prefix, key), nil
}

// Open returns a published asset by key
func (m *MemoryStore) Open(ctx context.Context, key string) ([]byte, string, error) {
	v, ok := m.blobs.Get(key)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	b := v.(blob)
	return b.data, b.contentType, nil
}

// Len reports how many assets are held
func (m *MemoryStore) Len() int {
	return m.blobs.ItemCount()
}

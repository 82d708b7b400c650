package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/unalkalkan/SceneForge/internal/storage"
)

// StorageStore persists published assets through a storage adapter so they
// survive restarts
type StorageStore struct {
	prefix  string
	storage storage.Adapter
}

// NewStorageStore creates a storage-backed publisher
func NewStorageStore(prefix string, adapter storage.Adapter) *StorageStore {
	return &StorageStore{prefix: prefix, storage: adapter}
}

// Publish stores data and returns its URL
func (s *StorageStore) Publish(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to publish empty asset")
	}
	key := newKey(DetectContentType(data, contentType))
	if err := s.storage.Put(ctx, objectPath(key), bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to store asset: %w", err)
	}
	return joinURL(s.prefix, key), nil
}

// Open returns a published asset by key. The content type is derived from
// the key's extension.
func (s *StorageStore) Open(ctx context.Context, key string) ([]byte, string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	reader, err := s.storage.Get(ctx, objectPath(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, "", fmt.Errorf("failed to open asset: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read asset: %w", err)
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

func objectPath(key string) string {
	return path.Join("assets", key)
}

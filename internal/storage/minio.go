package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOAdapter implements the Adapter interface for self-hosted MinIO. The
// bucket is created on first successful use.
type MinIOAdapter struct {
	client *minio.Client
	bucket string
	region string

	mu    sync.Mutex
	ready bool
}

// MinIOOptions holds MinIO adapter configuration
type MinIOOptions struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// NewMinIOAdapter creates a new MinIO adapter
func NewMinIOAdapter(opts MinIOOptions) (*MinIOAdapter, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	access := strings.TrimSpace(opts.AccessKey)
	secret := strings.TrimSpace(opts.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("minio access key and secret key are required")
	}
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: opts.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init minio client: %w", err)
	}

	return &MinIOAdapter{
		client: client,
		bucket: bucket,
		region: region,
	}, nil
}

// ensureBucket checks for the bucket and creates it if missing. A failure is
// not remembered, so the next call tries again.
func (m *MinIOAdapter) ensureBucket(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		return nil
	}

	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to ensure bucket: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
			return fmt.Errorf("failed to ensure bucket: %w", err)
		}
	}
	m.ready = true
	return nil
}

// Put stores data at the given path
func (m *MinIOAdapter) Put(ctx context.Context, key string, data io.Reader) error {
	if err := m.ensureBucket(ctx); err != nil {
		return err
	}

	buf, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = m.client.PutObject(ctx, m.bucket, objectKey(key), bytes.NewReader(buf), int64(len(buf)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

// Get retrieves data from the given path. The object is read fully so a
// missing key surfaces here rather than on the first Read.
func (m *MinIOAdapter) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := m.ensureBucket(ctx); err != nil {
		return nil, err
	}

	obj, err := m.client.GetObject(ctx, m.bucket, objectKey(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes data at the given path
func (m *MinIOAdapter) Delete(ctx context.Context, key string) error {
	if err := m.ensureBucket(ctx); err != nil {
		return err
	}
	if err := m.client.RemoveObject(ctx, m.bucket, objectKey(key), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Exists checks if data exists at the given path
func (m *MinIOAdapter) Exists(ctx context.Context, key string) (bool, error) {
	if err := m.ensureBucket(ctx); err != nil {
		return false, err
	}
	_, err := m.client.StatObject(ctx, m.bucket, objectKey(key), minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return true, nil
}

// List returns paths matching the given prefix
func (m *MinIOAdapter) List(ctx context.Context, prefix string) ([]string, error) {
	if err := m.ensureBucket(ctx); err != nil {
		return nil, err
	}

	paths := make([]string, 0, 32)
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    objectKey(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		if obj.Key == "" {
			continue
		}
		paths = append(paths, obj.Key)
	}
	sort.Strings(paths)
	return paths, nil
}

// Close cleans up any resources
func (m *MinIOAdapter) Close() error {
	return nil
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}

func objectKey(key string) string {
	return strings.TrimLeft(strings.TrimSpace(key), "/")
}

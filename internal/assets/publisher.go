package assets

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Open for unknown or expired keys
var ErrNotFound = errors.New("asset not found")

// DefaultURLPrefix is the route published assets are served under
const DefaultURLPrefix = "/assets"

// Publisher turns generated bytes into a URL the presentation layer can load
type Publisher interface {
	// Publish stores data and returns its URL
	Publish(ctx context.Context, data []byte, contentType string) (string, error)

	// Open returns a published asset by key
	Open(ctx context.Context, key string) ([]byte, string, error)
}

// newKey builds a unique key whose extension reflects the content type
func newKey(contentType string) string {
	return uuid.NewString() + extensionFor(contentType)
}

var preferredExtensions = map[string]string{
	"audio/mpeg": ".mp3",
	"audio/mp3":  ".mp3",
	"audio/wav":  ".wav",
	"audio/ogg":  ".ogg",
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
}

func extensionFor(contentType string) string {
	base := strings.TrimSpace(strings.Split(contentType, ";")[0])
	if ext, ok := preferredExtensions[base]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(base); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

// DetectContentType fills in a missing or generic content type by sniffing
func DetectContentType(data []byte, declared string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}

func joinURL(prefix, key string) string {
	if prefix == "" {
		prefix = DefaultURLPrefix
	}
	return strings.TrimRight(prefix, "/") + "/" + key
}

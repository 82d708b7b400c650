package health

import (
	"context"
	"fmt"

	"github.com/unalkalkan/SceneForge/internal/provider"
	"github.com/unalkalkan/SceneForge/internal/storage"
)

const storageCheckKey = "health/.check"

// StorageCheck tests the storage adapter with an existence lookup
func StorageCheck(adapter storage.Adapter) CheckFunc {
	return func(ctx context.Context) (Status, error) {
		if _, err := adapter.Exists(ctx, storageCheckKey); err != nil {
			return StatusUnhealthy, fmt.Errorf("storage unreachable: %w", err)
		}
		return StatusHealthy, nil
	}
}

// ProvidersCheck reports unhealthy without a text provider, since no plan can
// be generated, and degraded when a media capability has no provider
func ProvidersCheck(reg *provider.Registry) CheckFunc {
	return func(ctx context.Context) (Status, error) {
		if len(reg.ListText()) == 0 {
			return StatusUnhealthy, fmt.Errorf("no text provider configured")
		}
		var missing []string
		if len(reg.ListImage()) == 0 {
			missing = append(missing, "image")
		}
		if len(reg.ListVideo()) == 0 {
			missing = append(missing, "video")
		}
		if len(reg.ListVoice()) == 0 {
			missing = append(missing, "voice")
		}
		if len(missing) > 0 {
			return StatusDegraded, fmt.Errorf("no provider configured for: %v", missing)
		}
		return StatusHealthy, nil
	}
}

package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/transport"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

// base holds what every HTTP adapter shares: its tag, a display name used in
// user-facing messages, its config and a rate-limited client
type base struct {
	tag     string
	display string
	config  types.ProviderConfig
	client  *transport.Client
}

func newBase(tag, display string, cfg types.ProviderConfig, defaultTimeout time.Duration) base {
	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return base{
		tag:     tag,
		display: display,
		config:  cfg,
		client:  transport.NewClient(display, timeout, transport.NewLimiter(cfg.RateLimitQPS, cfg.Burst)),
	}
}

func (b *base) Name() string {
	return b.tag
}

func (b *base) Close() error {
	return b.client.Close()
}

// apiKey picks the per-request credential, falling back to the configured key
func (b *base) apiKey(credential string) (string, error) {
	if key := strings.TrimSpace(credential); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(b.config.APIKey); key != "" {
		return key, nil
	}
	return "", apperr.Validation(fmt.Sprintf("%s API key is required", b.display))
}

// endpoint returns the configured endpoint or fallback, without a trailing slash
func (b *base) endpoint(fallback string) string {
	endpoint := b.config.Endpoint
	if endpoint == "" {
		endpoint = fallback
	}
	return strings.TrimRight(endpoint, "/")
}

// model returns the requested model, the configured model, or fallback
func (b *base) model(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	if b.config.Model != "" {
		return b.config.Model
	}
	return fallback
}

// truncateForLog flattens and shortens s for single-line logs
func truncateForLog(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

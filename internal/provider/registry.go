package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/jobs"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

// JobSettings configures how queued adapters poll
type JobSettings struct {
	Engine *jobs.Engine
	Image  jobs.Budget
	Video  jobs.Budget
}

// DefaultJobSettings polls with the standard image and video budgets
func DefaultJobSettings() JobSettings {
	return JobSettings{Image: jobs.ImageBudget, Video: jobs.VideoBudget}
}

func (s JobSettings) engine() *jobs.Engine {
	if s.Engine == nil {
		return jobs.NewEngine(nil)
	}
	return s.Engine
}

func (s JobSettings) withDefaults() JobSettings {
	if s.Image.MaxAttempts <= 0 || s.Image.Interval <= 0 {
		s.Image = jobs.ImageBudget
	}
	if s.Video.MaxAttempts <= 0 || s.Video.Interval <= 0 {
		s.Video = jobs.VideoBudget
	}
	return s
}

// Registry manages provider instances, keyed by provider tag
type Registry struct {
	textProviders  map[string]TextProvider
	imageProviders map[string]ImageProvider
	videoProviders map[string]VideoProvider
	voiceProviders map[string]VoiceProvider
	mu             sync.RWMutex
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		textProviders:  make(map[string]TextProvider),
		imageProviders: make(map[string]ImageProvider),
		videoProviders: make(map[string]VideoProvider),
		voiceProviders: make(map[string]VoiceProvider),
	}
}

// RegisterText registers a text provider
func (r *Registry) RegisterText(provider TextProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.textProviders[name]; exists {
		return fmt.Errorf("text provider already registered: %s", name)
	}

	r.textProviders[name] = provider
	return nil
}

// RegisterImage registers an image provider
func (r *Registry) RegisterImage(provider ImageProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.imageProviders[name]; exists {
		return fmt.Errorf("image provider already registered: %s", name)
	}

	r.imageProviders[name] = provider
	return nil
}

// RegisterVideo registers a video provider
func (r *Registry) RegisterVideo(provider VideoProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.videoProviders[name]; exists {
		return fmt.Errorf("video provider already registered: %s", name)
	}

	r.videoProviders[name] = provider
	return nil
}

// RegisterVoice registers a voice provider
func (r *Registry) RegisterVoice(provider VoiceProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.voiceProviders[name]; exists {
		return fmt.Errorf("voice provider already registered: %s", name)
	}

	r.voiceProviders[name] = provider
	return nil
}

// GetText retrieves a text provider by tag
func (r *Registry) GetText(name string) (TextProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.textProviders[name]
	if !exists {
		return nil, apperr.Validation(fmt.Sprintf("text provider not configured: %s", name))
	}
	return provider, nil
}

// GetImage retrieves an image provider by tag
func (r *Registry) GetImage(name string) (ImageProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.imageProviders[name]
	if !exists {
		return nil, apperr.Validation(fmt.Sprintf("image provider not configured: %s", name))
	}
	return provider, nil
}

// GetVideo retrieves a video provider by tag
func (r *Registry) GetVideo(name string) (VideoProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.videoProviders[name]
	if !exists {
		return nil, apperr.Validation(fmt.Sprintf("video provider not configured: %s", name))
	}
	return provider, nil
}

// GetVoice retrieves a voice provider by tag
func (r *Registry) GetVoice(name string) (VoiceProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.voiceProviders[name]
	if !exists {
		return nil, apperr.Validation(fmt.Sprintf("voice provider not configured: %s", name))
	}
	return provider, nil
}

// ListText returns all registered text provider tags, sorted
func (r *Registry) ListText() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.textProviders)
}

// ListImage returns all registered image provider tags, sorted
func (r *Registry) ListImage() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.imageProviders)
}

// ListVideo returns all registered video provider tags, sorted
func (r *Registry) ListVideo() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.videoProviders)
}

// ListVoice returns all registered voice provider tags, sorted
func (r *Registry) ListVoice() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.voiceProviders)
}

func sortedKeys[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type closer interface {
	Close() error
}

// Close closes all registered providers
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	closeAll := func(kind string, providers map[string]closer) {
		for name, provider := range providers {
			if err := provider.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close %s provider %s: %w", kind, name, err))
			}
		}
	}

	closeAll("text", asClosers(r.textProviders))
	closeAll("image", asClosers(r.imageProviders))
	closeAll("video", asClosers(r.videoProviders))
	closeAll("voice", asClosers(r.voiceProviders))

	if len(errs) > 0 {
		return fmt.Errorf("errors closing providers: %v", errs)
	}
	return nil
}

func asClosers[T closer](m map[string]T) map[string]closer {
	out := make(map[string]closer, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// InitializeProviders creates provider instances from configuration. Every
// enabled entry must name a known provider tag.
func (r *Registry) InitializeProviders(cfg types.ProvidersConfig, settings JobSettings) error {
	settings = settings.withDefaults()

	for _, c := range cfg.Text {
		if !c.Enabled {
			continue
		}
		var provider TextProvider
		var err error
		switch TextProviderID(c.Name) {
		case TextOpenAI:
			provider, err = NewOpenAILLMProvider(c)
		case TextGemini:
			provider, err = NewGeminiLLMProvider(c)
		default:
			return fmt.Errorf("unknown text provider: %s", c.Name)
		}
		if err != nil {
			return fmt.Errorf("failed to create text provider %s: %w", c.Name, err)
		}
		if err := r.RegisterText(provider); err != nil {
			return err
		}
	}

	for _, c := range cfg.Image {
		if !c.Enabled {
			continue
		}
		var provider ImageProvider
		var err error
		switch ImageProviderID(c.Name) {
		case ImageOpenAI:
			provider, err = NewOpenAIImageProvider(c)
		case ImageReplicate:
			provider, err = NewReplicateImageProvider(c, settings)
		case ImageFal:
			provider, err = NewFalImageProvider(c, settings)
		default:
			return fmt.Errorf("unknown image provider: %s", c.Name)
		}
		if err != nil {
			return fmt.Errorf("failed to create image provider %s: %w", c.Name, err)
		}
		if err := r.RegisterImage(provider); err != nil {
			return err
		}
	}

	for _, c := range cfg.Video {
		if !c.Enabled {
			continue
		}
		if VideoProviderID(c.Name) != VideoFal {
			return fmt.Errorf("unknown video provider: %s", c.Name)
		}
		provider, err := NewFalVideoProvider(c, settings)
		if err != nil {
			return fmt.Errorf("failed to create video provider %s: %w", c.Name, err)
		}
		if err := r.RegisterVideo(provider); err != nil {
			return err
		}
	}

	for _, c := range cfg.Voice {
		if !c.Enabled {
			continue
		}
		var provider VoiceProvider
		var err error
		switch VoiceProviderID(c.Name) {
		case VoiceOpenAI:
			provider, err = NewOpenAITTSProvider(c)
		case VoiceElevenLabs:
			provider, err = NewElevenLabsTTSProvider(c)
		default:
			return fmt.Errorf("unknown voice provider: %s", c.Name)
		}
		if err != nil {
			return fmt.Errorf("failed to create voice provider %s: %w", c.Name, err)
		}
		if err := r.RegisterVoice(provider); err != nil {
			return err
		}
	}

	return nil
}

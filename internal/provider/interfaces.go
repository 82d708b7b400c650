package provider

import (
	"context"
)

// TextProvider defines the interface for chat-completion providers
type TextProvider interface {
	// Name returns the provider name
	Name() string

	// Stream starts a streamed completion. The returned Stream is cancelled
	// through ctx.
	Stream(ctx context.Context, req CompletionRequest) *Stream

	// Complete runs a non-streamed completion for short generations
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Close cleans up resources
	Close() error
}

// CompletionRequest is one chat completion
type CompletionRequest struct {
	Credential   string // per-request API key, falls back to the configured key
	Model        string // overrides the configured model when set
	SystemPrompt string
	UserPrompt   string
}

// ImageProvider defines the interface for still-image providers
type ImageProvider interface {
	// Name returns the provider name
	Name() string

	// Generate produces one image for req
	Generate(ctx context.Context, req ImageRequest) (*ImageResult, error)

	// Models lists the models this provider accepts
	Models() []ModelInfo

	// Close cleans up resources
	Close() error
}

// ImageRequest contains the prompt and model selection for an image
type ImageRequest struct {
	Credential        string
	Model             string
	Prompt            string
	NegativePrompt    string
	AspectRatio       string // e.g. "16:9"
	ReferenceImageURL string // optional character/style reference
}

// ImageResult is either a remote URL or inline bytes that still need
// publishing
type ImageResult struct {
	URL         string
	Data        []byte
	ContentType string
}

// VideoProvider defines the interface for image-to-video providers
type VideoProvider interface {
	// Name returns the provider name
	Name() string

	// Generate produces a clip starting from req.ImageURL and returns its URL
	Generate(ctx context.Context, req VideoRequest) (string, error)

	// Models lists the models this provider accepts
	Models() []VideoModel

	// Close cleans up resources
	Close() error
}

// VideoRequest contains the prompt, start frame and duration for a clip
type VideoRequest struct {
	Credential string
	Model      string
	Prompt     string
	ImageURL   string
	Duration   int // seconds, clamped to the model maximum
}

// VoiceProvider defines the interface for text-to-speech providers
type VoiceProvider interface {
	// Name returns the provider name
	Name() string

	// Synthesize converts text to speech
	Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResponse, error)

	// ListVoices returns the voices available to credential
	ListVoices(ctx context.Context, credential string) ([]Voice, error)

	// Close cleans up resources
	Close() error
}

// SpeechRequest contains the text and voice settings for synthesis
type SpeechRequest struct {
	Credential string
	Text       string
	Voice      string  // symbolic voice name or provider-specific voice id
	Speed      float64 // 0 uses the provider default
	Format     string  // empty uses the provider default
}

// SpeechResponse contains the synthesized audio
type SpeechResponse struct {
	Audio       []byte
	ContentType string
}

// Voice represents a voice offered by a provider
type Voice struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Languages   []string `json:"languages,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	Accent      string   `json:"accent,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ModelInfo describes a selectable model
type ModelInfo struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	ReferenceConsistency bool   `json:"referenceConsistency,omitempty"`
}

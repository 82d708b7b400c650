package provider

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/transport"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

const (
	defaultOpenAITTSModel = "tts-1"
	defaultOpenAIVoice    = "alloy"
	defaultSpeechSpeed    = 1.0
	defaultSpeechFormat   = "mp3"
)

// openAIVoices is the fixed voice set of the OpenAI speech endpoint
var openAIVoices = []Voice{
	{ID: "alloy", Name: "Alloy", Gender: "neutral", Description: "Balanced and versatile"},
	{ID: "echo", Name: "Echo", Gender: "male", Description: "Warm and resonant"},
	{ID: "fable", Name: "Fable", Gender: "neutral", Accent: "british", Description: "Expressive storyteller"},
	{ID: "onyx", Name: "Onyx", Gender: "male", Description: "Deep and authoritative"},
	{ID: "nova", Name: "Nova", Gender: "female", Description: "Bright and energetic"},
	{ID: "shimmer", Name: "Shimmer", Gender: "female", Description: "Soft and clear"},
}

var speechContentTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"opus": "audio/ogg",
	"aac":  "audio/aac",
	"flac": "audio/flac",
	"wav":  "audio/wav",
	"pcm":  "audio/pcm",
}

// OpenAITTSProvider implements VoiceProvider using OpenAI-compatible TTS APIs
type OpenAITTSProvider struct {
	base
}

// NewOpenAITTSProvider creates a new OpenAI-compatible TTS provider
func NewOpenAITTSProvider(config types.ProviderConfig) (*OpenAITTSProvider, error) {
	if config.Name == "" {
		config.Name = string(VoiceOpenAI)
	}
	// TTS can take longer than text calls
	return &OpenAITTSProvider{
		base: newBase(config.Name, "OpenAI", config, 300*time.Second),
	}, nil
}

// ttsAPIRequest represents the OpenAI TTS API request structure
type ttsAPIRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed"`
	ResponseFormat string  `json:"response_format"`
}

// NormalizeOpenAIVoice returns voice if it is one of the six symbolic voices,
// alloy otherwise
func NormalizeOpenAIVoice(voice string) string {
	for _, v := range openAIVoices {
		if v.ID == voice {
			return voice
		}
	}
	return defaultOpenAIVoice
}

// BuildRequest builds the speech call for req
func (o *OpenAITTSProvider) BuildRequest(req SpeechRequest, apiKey string) transport.Request {
	speed := req.Speed
	if speed <= 0 {
		speed = defaultSpeechSpeed
	}
	format := req.Format
	if format == "" {
		format = defaultSpeechFormat
	}

	return transport.Request{
		Method: http.MethodPost,
		URL:    o.endpoint(defaultOpenAIEndpoint) + "/audio/speech",
		Header: map[string]string{"Authorization": "Bearer " + apiKey},
		Body: ttsAPIRequest{
			Model:          o.model("", defaultOpenAITTSModel),
			Input:          req.Text,
			Voice:          NormalizeOpenAIVoice(req.Voice),
			Speed:          speed,
			ResponseFormat: format,
		},
	}
}

// Synthesize converts text to speech
func (o *OpenAITTSProvider) Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResponse, error) {
	apiKey, err := o.apiKey(req.Credential)
	if err != nil {
		return nil, err
	}
	if req.Text == "" {
		return nil, apperr.Validation("text is required for speech synthesis")
	}

	httpReq := o.BuildRequest(req, apiKey)
	body := httpReq.Body.(ttsAPIRequest)
	log.Printf("[TTS-%s] Request payload: model=%s, voice=%s, input_length=%d chars", o.tag, body.Model, body.Voice, len(req.Text))

	audio, contentType, err := o.client.Bytes(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	if ct, ok := speechContentTypes[body.ResponseFormat]; ok && (contentType == "" || contentType == "application/octet-stream") {
		contentType = ct
	}

	return &SpeechResponse{Audio: audio, ContentType: contentType}, nil
}

// ListVoices returns the fixed OpenAI voice set
func (o *OpenAITTSProvider) ListVoices(ctx context.Context, credential string) ([]Voice, error) {
	return openAIVoices, nil
}

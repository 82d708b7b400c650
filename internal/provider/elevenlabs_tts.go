package provider

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/transport"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

const (
	defaultElevenLabsEndpoint = "https://api.elevenlabs.io/v1"
	defaultElevenLabsModel    = "eleven_multilingual_v2"
	// DefaultElevenLabsVoice is used when a character has no external voice id
	DefaultElevenLabsVoice = "21m00Tcm4TlvDq8ikWAM"
)

// ElevenLabsTTSProvider implements VoiceProvider on the ElevenLabs API
type ElevenLabsTTSProvider struct {
	base
}

// NewElevenLabsTTSProvider creates a new ElevenLabs provider
func NewElevenLabsTTSProvider(config types.ProviderConfig) (*ElevenLabsTTSProvider, error) {
	if config.Name == "" {
		config.Name = string(VoiceElevenLabs)
	}
	return &ElevenLabsTTSProvider{
		base: newBase(config.Name, "ElevenLabs", config, 300*time.Second),
	}, nil
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type elevenLabsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// BuildRequest builds the text-to-speech call for req
func (e *ElevenLabsTTSProvider) BuildRequest(req SpeechRequest, apiKey string) transport.Request {
	voiceID := req.Voice
	if voiceID == "" {
		voiceID = DefaultElevenLabsVoice
	}

	return transport.Request{
		Method: http.MethodPost,
		URL:    e.endpoint(defaultElevenLabsEndpoint) + "/text-to-speech/" + url.PathEscape(voiceID),
		Header: map[string]string{
			"xi-api-key": apiKey,
			"Accept":     "audio/mpeg",
		},
		Body: elevenLabsRequest{
			Text:    req.Text,
			ModelID: e.model("", defaultElevenLabsModel),
			VoiceSettings: voiceSettings{
				Stability:       0.5,
				SimilarityBoost: 0.75,
				Style:           0.0,
				UseSpeakerBoost: true,
			},
		},
	}
}

// Synthesize converts text to speech
func (e *ElevenLabsTTSProvider) Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResponse, error) {
	apiKey, err := e.apiKey(req.Credential)
	if err != nil {
		return nil, err
	}
	if req.Text == "" {
		return nil, apperr.Validation("text is required for speech synthesis")
	}

	httpReq := e.BuildRequest(req, apiKey)
	log.Printf("[TTS-%s] Request: %s, input_length=%d chars", e.tag, httpReq.URL, len(req.Text))

	audio, contentType, err := e.client.Bytes(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "audio/mpeg"
	}
	return &SpeechResponse{Audio: audio, ContentType: contentType}, nil
}

// voicesResponse is the ElevenLabs voice listing
type voicesResponse struct {
	Voices []struct {
		VoiceID     string            `json:"voice_id"`
		Name        string            `json:"name"`
		Description string            `json:"description"`
		Labels      map[string]string `json:"labels"`
	} `json:"voices"`
}

// ListVoices returns the voices available to the account
func (e *ElevenLabsTTSProvider) ListVoices(ctx context.Context, credential string) ([]Voice, error) {
	apiKey, err := e.apiKey(credential)
	if err != nil {
		return nil, err
	}

	var resp voicesResponse
	err = e.client.DecodeJSON(ctx, transport.Request{
		URL:    e.endpoint(defaultElevenLabsEndpoint) + "/voices",
		Header: map[string]string{"xi-api-key": apiKey},
	}, &resp)
	if err != nil {
		return nil, err
	}

	voices := make([]Voice, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		voice := Voice{
			ID:          v.VoiceID,
			Name:        v.Name,
			Gender:      v.Labels["gender"],
			Accent:      v.Labels["accent"],
			Description: v.Description,
		}
		if voice.Description == "" {
			voice.Description = v.Labels["description"]
		}
		voices = append(voices, voice)
	}

	log.Printf("[TTS-%s] Parsed %d voices from response", e.tag, len(voices))
	return voices, nil
}

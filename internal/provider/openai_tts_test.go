package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

func TestNormalizeOpenAIVoice(t *testing.T) {
	tests := []struct {
		voice string
		want  string
	}{
		{"alloy", "alloy"},
		{"echo", "echo"},
		{"fable", "fable"},
		{"onyx", "onyx"},
		{"nova", "nova"},
		{"shimmer", "shimmer"},
		{"", "alloy"},
		{"Nova", "alloy"},
		{"21m00Tcm4TlvDq8ikWAM", "alloy"},
	}

	for _, tt := range tests {
		if got := NormalizeOpenAIVoice(tt.voice); got != tt.want {
			t.Errorf("NormalizeOpenAIVoice(%q) = %q, want %q", tt.voice, got, tt.want)
		}
	}
}

func TestOpenAITTSProvider_Synthesize(t *testing.T) {
	t.Run("SuccessfulSynthesis", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("Expected POST request, got %s", r.Method)
			}
			if r.URL.Path != "/audio/speech" {
				t.Errorf("Expected /audio/speech endpoint, got %s", r.URL.Path)
			}
			if r.Header.Get("Authorization") != "Bearer test-key" {
				t.Errorf("Expected 'Bearer test-key', got '%s'", r.Header.Get("Authorization"))
			}

			var reqBody ttsAPIRequest
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				t.Errorf("Failed to decode request: %v", err)
			}
			if reqBody.Voice != "alloy" {
				t.Errorf("Expected fallback voice alloy, got %s", reqBody.Voice)
			}
			if reqBody.Speed != 1.0 || reqBody.ResponseFormat != "mp3" {
				t.Errorf("Expected default speed and format, got %v %s", reqBody.Speed, reqBody.ResponseFormat)
			}
			if reqBody.Model != "tts-1" {
				t.Errorf("Expected default model tts-1, got %s", reqBody.Model)
			}

			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("fake-mp3-data"))
		}))
		defer server.Close()

		provider, _ := NewOpenAITTSProvider(types.ProviderConfig{Name: "openai", Endpoint: server.URL, APIKey: "test-key"})
		resp, err := provider.Synthesize(context.Background(), SpeechRequest{Text: "Hello", Voice: "not-a-voice"})
		if err != nil {
			t.Fatalf("Synthesize failed: %v", err)
		}
		if !bytes.Equal(resp.Audio, []byte("fake-mp3-data")) {
			t.Errorf("Unexpected audio: %s", resp.Audio)
		}
		if resp.ContentType != "audio/mpeg" {
			t.Errorf("Expected audio/mpeg, got %s", resp.ContentType)
		}
	})

	t.Run("ErrorNormalization", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"message":"bad key"}}`))
		}))
		defer server.Close()

		provider, _ := NewOpenAITTSProvider(types.ProviderConfig{Name: "openai", Endpoint: server.URL, APIKey: "test-key"})
		_, err := provider.Synthesize(context.Background(), SpeechRequest{Text: "Hello", Voice: "nova"})
		if err == nil || err.Error() != "bad key" {
			t.Errorf("Expected 'bad key', got %v", err)
		}
	})

	t.Run("EmptyBody", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		provider, _ := NewOpenAITTSProvider(types.ProviderConfig{Name: "openai", Endpoint: server.URL, APIKey: "test-key"})
		_, err := provider.Synthesize(context.Background(), SpeechRequest{Text: "Hello"})
		if !apperr.IsKind(err, apperr.KindMalformed) {
			t.Errorf("Expected malformed error, got %v", err)
		}
	})

	t.Run("EmptyText", func(t *testing.T) {
		provider, _ := NewOpenAITTSProvider(types.ProviderConfig{Name: "openai", APIKey: "test-key"})
		_, err := provider.Synthesize(context.Background(), SpeechRequest{})
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestOpenAITTSProvider_ListVoices(t *testing.T) {
	provider, _ := NewOpenAITTSProvider(types.ProviderConfig{Name: "openai"})
	voices, err := provider.ListVoices(context.Background(), "")
	if err != nil {
		t.Fatalf("ListVoices failed: %v", err)
	}
	if len(voices) != 6 {
		t.Errorf("Expected 6 voices, got %d", len(voices))
	}
}

func TestElevenLabsTTSProvider_Synthesize(t *testing.T) {
	tests := []struct {
		name      string
		voice     string
		wantVoice string
	}{
		{"DefaultVoice", "", DefaultElevenLabsVoice},
		{"ExternalVoice", "pNInz6obpgDQGcFmaJgB", "pNInz6obpgDQGcFmaJgB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/text-to-speech/"+tt.wantVoice {
					t.Errorf("Unexpected path: %s", r.URL.Path)
				}
				if r.Header.Get("xi-api-key") != "el-key" {
					t.Errorf("Expected xi-api-key header, got %q", r.Header.Get("xi-api-key"))
				}
				if r.Header.Get("Accept") != "audio/mpeg" {
					t.Errorf("Expected Accept audio/mpeg, got %q", r.Header.Get("Accept"))
				}

				var reqBody elevenLabsRequest
				if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
					t.Errorf("Failed to decode request: %v", err)
				}
				if reqBody.ModelID != "eleven_multilingual_v2" {
					t.Errorf("Unexpected model: %s", reqBody.ModelID)
				}
				want := voiceSettings{Stability: 0.5, SimilarityBoost: 0.75, Style: 0.0, UseSpeakerBoost: true}
				if reqBody.VoiceSettings != want {
					t.Errorf("Unexpected voice settings: %+v", reqBody.VoiceSettings)
				}

				w.Write([]byte("ID3-audio"))
			}))
			defer server.Close()

			provider, _ := NewElevenLabsTTSProvider(types.ProviderConfig{Name: "elevenlabs", Endpoint: server.URL})
			resp, err := provider.Synthesize(context.Background(), SpeechRequest{Credential: "el-key", Text: "Hi", Voice: tt.voice})
			if err != nil {
				t.Fatalf("Synthesize failed: %v", err)
			}
			if string(resp.Audio) != "ID3-audio" {
				t.Errorf("Unexpected audio: %s", resp.Audio)
			}
		})
	}
}

func TestElevenLabsTTSProvider_DetailError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"status":"invalid_api_key","message":"Invalid API key"}}`))
	}))
	defer server.Close()

	provider, _ := NewElevenLabsTTSProvider(types.ProviderConfig{Name: "elevenlabs", Endpoint: server.URL, APIKey: "k"})
	_, err := provider.Synthesize(context.Background(), SpeechRequest{Text: "Hi"})
	if err == nil || err.Error() != "Invalid API key" {
		t.Errorf("Expected 'Invalid API key', got %v", err)
	}
}

func TestElevenLabsTTSProvider_ListVoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voices" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"voices":[{"voice_id":"v1","name":"Rachel","labels":{"gender":"female","accent":"american","description":"calm"}}]}`))
	}))
	defer server.Close()

	provider, _ := NewElevenLabsTTSProvider(types.ProviderConfig{Name: "elevenlabs", Endpoint: server.URL, APIKey: "k"})
	voices, err := provider.ListVoices(context.Background(), "")
	if err != nil {
		t.Fatalf("ListVoices failed: %v", err)
	}
	if len(voices) != 1 {
		t.Fatalf("Expected 1 voice, got %d", len(voices))
	}
	v := voices[0]
	if v.ID != "v1" || v.Gender != "female" || v.Accent != "american" || v.Description != "calm" {
		t.Errorf("Unexpected voice: %+v", v)
	}
}

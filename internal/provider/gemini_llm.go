package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/transport"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

const defaultGeminiTextModel = "gemini-2.5-flash"

// GeminiLLMProvider implements TextProvider on the Gemini API
type GeminiLLMProvider struct {
	name    string
	config  types.ProviderConfig
	limiter *rate.Limiter
}

// NewGeminiLLMProvider creates a new Gemini text provider
func NewGeminiLLMProvider(config types.ProviderConfig) (*GeminiLLMProvider, error) {
	if config.Name == "" {
		config.Name = string(TextGemini)
	}
	return &GeminiLLMProvider{
		name:    config.Name,
		config:  config,
		limiter: transport.NewLimiter(config.RateLimitQPS, config.Burst),
	}, nil
}

func (g *GeminiLLMProvider) Name() string {
	return g.name
}

func (g *GeminiLLMProvider) Close() error {
	return nil
}

// newClient builds a client for one call. Credentials arrive per request, so
// clients are not shared.
func (g *GeminiLLMProvider) newClient(ctx context.Context, credential string) (*genai.Client, error) {
	apiKey := strings.TrimSpace(credential)
	if apiKey == "" {
		apiKey = strings.TrimSpace(g.config.APIKey)
	}
	if apiKey == "" {
		return nil, apperr.Validation("Gemini API key is required")
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, apperr.Transport("Gemini", err)
		}
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.config.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.config.Endpoint}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

func (g *GeminiLLMProvider) modelFor(req CompletionRequest) string {
	if req.Model != "" {
		return req.Model
	}
	if g.config.Model != "" {
		return g.config.Model
	}
	return defaultGeminiTextModel
}

// BuildRequest returns the contents and config sent for req
func (g *GeminiLLMProvider) BuildRequest(req CompletionRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: req.UserPrompt}}}}
	config := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}
	return contents, config
}

// Stream starts a streamed generation
func (g *GeminiLLMProvider) Stream(ctx context.Context, req CompletionRequest) *Stream {
	client, err := g.newClient(ctx, req.Credential)
	if err != nil {
		return failedStream(err)
	}
	model := g.modelFor(req)
	contents, config := g.BuildRequest(req)

	log.Printf("[LLM-%s] Streaming: model=%s, prompt_length=%d chars", g.name, model, len(req.UserPrompt))

	return runStream(ctx, func(w *streamWriter) error {
		startTime := time.Now()
		for resp, err := range client.Models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				log.Printf("[LLM-%s] Stream failed after %v: %v", g.name, time.Since(startTime), err)
				return normalizeGeminiError(err)
			}
			if !w.emit(responseText(resp)) {
				return nil
			}
		}
		log.Printf("[LLM-%s] Stream finished: %d chars (took %v)", g.name, w.text.Len(), time.Since(startTime))
		return nil
	})
}

// Complete runs a non-streamed generation
func (g *GeminiLLMProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	client, err := g.newClient(ctx, req.Credential)
	if err != nil {
		return "", err
	}
	contents, config := g.BuildRequest(req)

	resp, err := client.Models.GenerateContent(ctx, g.modelFor(req), contents, config)
	if err != nil {
		return "", normalizeGeminiError(err)
	}
	text := responseText(resp)
	if text == "" {
		return "", apperr.Malformed("Gemini", fmt.Errorf("no candidates in response"))
	}
	return text, nil
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// normalizeGeminiError maps SDK errors onto the shared error kinds
func normalizeGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apperr.Rejection("Gemini", apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apperr.Rejection("Gemini", apiErrPtr.Code, apiErrPtr.Message)
	}
	return apperr.Transport("Gemini", err)
}

package provider

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/transport"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

const (
	defaultOpenAIEndpoint  = "https://api.openai.com/v1"
	defaultOpenAITextModel = "gpt-4o"
)

// OpenAILLMProvider implements TextProvider using OpenAI-compatible APIs
type OpenAILLMProvider struct {
	base
}

// NewOpenAILLMProvider creates a new OpenAI-compatible text provider
func NewOpenAILLMProvider(config types.ProviderConfig) (*OpenAILLMProvider, error) {
	if config.Name == "" {
		config.Name = string(TextOpenAI)
	}
	// Streams stay open for the whole generation, so the default is generous
	return &OpenAILLMProvider{
		base: newBase(config.Name, "OpenAI", config, 300*time.Second),
	}, nil
}

// OpenAI API structures
type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// BuildRequest builds the chat completion call for req
func (o *OpenAILLMProvider) BuildRequest(req CompletionRequest, apiKey string, stream bool) transport.Request {
	body := chatCompletionRequest{
		Model:  o.model(req.Model, defaultOpenAITextModel),
		Stream: stream,
	}
	if req.SystemPrompt != "" {
		body.Messages = append(body.Messages, message{Role: "system", Content: req.SystemPrompt})
	}
	body.Messages = append(body.Messages, message{Role: "user", Content: req.UserPrompt})

	// Only set temperature if explicitly configured
	if tempStr, ok := o.config.Options["temperature"]; ok {
		if temp, err := strconv.ParseFloat(tempStr, 64); err == nil {
			body.Temperature = &temp
		} else {
			log.Printf("[LLM-%s] Warning: Failed to parse temperature value '%s', ignoring", o.tag, tempStr)
		}
	}

	header := map[string]string{"Authorization": "Bearer " + apiKey}
	if stream {
		header["Accept"] = "text/event-stream"
	}

	return transport.Request{
		Method: http.MethodPost,
		URL:    o.endpoint(defaultOpenAIEndpoint) + "/chat/completions",
		Header: header,
		Body:   body,
	}
}

// Stream starts a streamed chat completion
func (o *OpenAILLMProvider) Stream(ctx context.Context, req CompletionRequest) *Stream {
	apiKey, err := o.apiKey(req.Credential)
	if err != nil {
		return failedStream(err)
	}
	httpReq := o.BuildRequest(req, apiKey, true)

	log.Printf("[LLM-%s] Streaming: model=%s, system_length=%d, prompt_length=%d chars",
		o.tag, httpReq.Body.(chatCompletionRequest).Model, len(req.SystemPrompt), len(req.UserPrompt))

	return runStream(ctx, func(w *streamWriter) error {
		resp, err := o.client.Do(ctx, httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		startTime := time.Now()
		err = readChatStream(resp.Body, w.emit, func(frame string, err error) {
			log.Printf("[LLM-%s] Skipping malformed frame: %s", o.tag, truncateForLog(frame, 200))
		})
		if err != nil {
			log.Printf("[LLM-%s] Stream failed after %v: %v", o.tag, time.Since(startTime), err)
			return apperr.Transport(o.display, err)
		}

		log.Printf("[LLM-%s] Stream finished: %d chars (took %v)", o.tag, w.text.Len(), time.Since(startTime))
		return nil
	})
}

// Complete runs a non-streamed chat completion
func (o *OpenAILLMProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	apiKey, err := o.apiKey(req.Credential)
	if err != nil {
		return "", err
	}

	var apiResp chatCompletionResponse
	if err := o.client.DecodeJSON(ctx, o.BuildRequest(req, apiKey, false), &apiResp); err != nil {
		return "", err
	}

	if len(apiResp.Choices) == 0 {
		log.Printf("[LLM-%s] No choices in API response", o.tag)
		return "", apperr.Malformed(o.display, fmt.Errorf("no choices in API response"))
	}

	content := apiResp.Choices[0].Message.Content
	log.Printf("[LLM-%s] Response payload: tokens(prompt=%d, completion=%d, total=%d), finish_reason=%s",
		o.tag, apiResp.Usage.PromptTokens, apiResp.Usage.CompletionTokens, apiResp.Usage.TotalTokens, apiResp.Choices[0].FinishReason)

	return content, nil
}

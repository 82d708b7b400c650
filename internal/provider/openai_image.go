package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/transport"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

const defaultOpenAIImageModel = "dall-e-3"

var openAIImageModels = []ModelInfo{
	{ID: "dall-e-3", Name: "DALL·E 3"},
	{ID: "gpt-image-1", Name: "GPT Image 1"},
}

// openAIImageSizes maps aspect ratios onto the sizes each model accepts
var openAIImageSizes = map[string]map[string]string{
	"dall-e-3": {
		"16:9": "1792x1024",
		"9:16": "1024x1792",
	},
	"gpt-image-1": {
		"16:9": "1536x1024",
		"4:3":  "1536x1024",
		"9:16": "1024x1536",
		"3:4":  "1024x1536",
	},
}

// OpenAIImageProvider implements ImageProvider on the synchronous OpenAI
// images endpoint
type OpenAIImageProvider struct {
	base
}

// NewOpenAIImageProvider creates a new OpenAI image provider
func NewOpenAIImageProvider(config types.ProviderConfig) (*OpenAIImageProvider, error) {
	if config.Name == "" {
		config.Name = string(ImageOpenAI)
	}
	return &OpenAIImageProvider{
		base: newBase(config.Name, "OpenAI", config, 120*time.Second),
	}, nil
}

// Models lists the supported OpenAI image models
func (o *OpenAIImageProvider) Models() []ModelInfo {
	return openAIImageModels
}

// BuildRequest builds the image generation call for req
func (o *OpenAIImageProvider) BuildRequest(req ImageRequest, apiKey string) transport.Request {
	model := o.model(req.Model, defaultOpenAIImageModel)
	size := "1024x1024"
	if s, ok := openAIImageSizes[model][req.AspectRatio]; ok {
		size = s
	}

	return transport.Request{
		Method: http.MethodPost,
		URL:    o.endpoint(defaultOpenAIEndpoint) + "/images/generations",
		Header: map[string]string{"Authorization": "Bearer " + apiKey},
		Body: map[string]any{
			"model":  model,
			"prompt": req.Prompt,
			"n":      1,
			"size":   size,
		},
	}
}

// Generate creates one image. The result is a URL or decoded inline bytes.
func (o *OpenAIImageProvider) Generate(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	apiKey, err := o.apiKey(req.Credential)
	if err != nil {
		return nil, err
	}
	if req.Prompt == "" {
		return nil, apperr.Validation("image prompt is required")
	}
	if req.ReferenceImageURL != "" {
		log.Printf("[IMG-%s] Reference images are not supported by this endpoint, ignoring", o.tag)
	}

	payload, err := o.client.JSON(ctx, o.BuildRequest(req, apiKey))
	if err != nil {
		return nil, err
	}
	return interpretOpenAIImage(o.display, payload)
}

func interpretOpenAIImage(display string, payload any) (*ImageResult, error) {
	if url, ok := transport.FirstString(payload, "data.0.url"); ok {
		return &ImageResult{URL: url}, nil
	}
	if encoded, ok := transport.FirstString(payload, "data.0.b64_json"); ok {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, apperr.Malformed(display, fmt.Errorf("invalid base64 image: %w", err))
		}
		return &ImageResult{Data: data, ContentType: "image/png"}, nil
	}
	return nil, apperr.Extraction(display)
}

package provider

import (
	"context"
	"log"
	"time"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

const defaultFalImageModel = "fal-ai/flux/schnell"

// falImagePaths lists where fal image models put the output URL
var falImagePaths = []string{"images.0.url", "image.url", "data.images.0.url"}

var falImageModels = []ModelInfo{
	{ID: "fal-ai/flux/schnell", Name: "FLUX.1 [schnell]"},
	{ID: "fal-ai/flux/dev", Name: "FLUX.1 [dev]"},
	{ID: "fal-ai/flux-pro/v1.1", Name: "FLUX1.1 [pro]"},
	{ID: "fal-ai/flux-pro/kontext", Name: "FLUX.1 Kontext [pro]", ReferenceConsistency: true},
	{ID: "fal-ai/flux-pro/kontext/max", Name: "FLUX.1 Kontext [max]", ReferenceConsistency: true},
}

// falImageSizes maps aspect ratios onto fal's named image sizes
var falImageSizes = map[string]string{
	"16:9": "landscape_16_9",
	"9:16": "portrait_16_9",
	"4:3":  "landscape_4_3",
	"3:4":  "portrait_4_3",
	"1:1":  "square_hd",
}

// FalImageProvider implements ImageProvider on fal's queue API
type FalImageProvider struct {
	falQueue
}

// NewFalImageProvider creates a new fal image provider
func NewFalImageProvider(config types.ProviderConfig, settings JobSettings) (*FalImageProvider, error) {
	if config.Name == "" {
		config.Name = string(ImageFal)
	}
	return &FalImageProvider{
		falQueue: falQueue{
			base:   newBase(config.Name, "fal.ai", config, 60*time.Second),
			logTag: "IMG-" + config.Name,
			engine: settings.engine(),
			budget: settings.Image,
		},
	}, nil
}

// Models lists the supported fal image models
func (f *FalImageProvider) Models() []ModelInfo {
	return falImageModels
}

// BuildRequest builds the submission body for req
func (f *FalImageProvider) BuildRequest(req ImageRequest) (string, map[string]any) {
	model := f.model(req.Model, defaultFalImageModel)
	body := map[string]any{
		"prompt":     req.Prompt,
		"num_images": 1,
	}
	if size, ok := falImageSizes[req.AspectRatio]; ok {
		body["image_size"] = size
	}
	if req.NegativePrompt != "" {
		body["negative_prompt"] = req.NegativePrompt
	}
	if req.ReferenceImageURL != "" {
		body[referenceField(isReferenceModel(falImageModels, model))] = req.ReferenceImageURL
	}
	return model, body
}

// Generate submits an image job and waits for its URL
func (f *FalImageProvider) Generate(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	apiKey, err := f.apiKey(req.Credential)
	if err != nil {
		return nil, err
	}
	if req.Prompt == "" {
		return nil, apperr.Validation("image prompt is required")
	}

	model, body := f.BuildRequest(req)
	log.Printf("[%s] Generating: model=%s, prompt_length=%d chars", f.logTag, model, len(req.Prompt))

	url, err := f.run(ctx, apiKey, model, body, falImagePaths)
	if err != nil {
		return nil, err
	}
	return &ImageResult{URL: url}, nil
}

func isReferenceModel(models []ModelInfo, id string) bool {
	for _, m := range models {
		if m.ID == id {
			return m.ReferenceConsistency
		}
	}
	return false
}

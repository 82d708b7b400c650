package provider

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/jobs"
	"github.com/unalkalkan/SceneForge/internal/transport"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

const (
	defaultReplicateEndpoint   = "https://api.replicate.com/v1"
	defaultReplicateImageModel = "black-forest-labs/flux-schnell"
	defaultReplicateWait       = 30 // seconds the submit call may block
)

// replicateOutputPaths covers output as a single URL or a list of URLs
var replicateOutputPaths = []string{"output", "output.0"}

var replicateImageModels = []ModelInfo{
	{ID: "black-forest-labs/flux-schnell", Name: "FLUX.1 [schnell]"},
	{ID: "black-forest-labs/flux-dev", Name: "FLUX.1 [dev]"},
	{ID: "black-forest-labs/flux-1.1-pro", Name: "FLUX1.1 [pro]"},
	{ID: "black-forest-labs/flux-kontext-pro", Name: "FLUX.1 Kontext [pro]", ReferenceConsistency: true},
	{ID: "black-forest-labs/flux-kontext-max", Name: "FLUX.1 Kontext [max]", ReferenceConsistency: true},
}

// ReplicateImageProvider implements ImageProvider on Replicate predictions.
// Submission asks the API to wait, so fast models complete without polling.
type ReplicateImageProvider struct {
	base
	engine *jobs.Engine
	budget jobs.Budget
}

// NewReplicateImageProvider creates a new Replicate image provider
func NewReplicateImageProvider(config types.ProviderConfig, settings JobSettings) (*ReplicateImageProvider, error) {
	if config.Name == "" {
		config.Name = string(ImageReplicate)
	}
	return &ReplicateImageProvider{
		base:   newBase(config.Name, "Replicate", config, 90*time.Second),
		engine: settings.engine(),
		budget: settings.Image,
	}, nil
}

// Models lists the supported Replicate image models
func (r *ReplicateImageProvider) Models() []ModelInfo {
	return replicateImageModels
}

func (r *ReplicateImageProvider) waitSeconds() int {
	if v, ok := r.config.Options["wait"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 60 {
			return n
		}
	}
	return defaultReplicateWait
}

// BuildRequest builds the prediction submission for req
func (r *ReplicateImageProvider) BuildRequest(req ImageRequest, apiKey string) transport.Request {
	model := r.model(req.Model, defaultReplicateImageModel)

	input := map[string]any{
		"prompt":        req.Prompt,
		"output_format": "png",
	}
	if req.AspectRatio != "" {
		input["aspect_ratio"] = req.AspectRatio
	}
	if req.ReferenceImageURL != "" {
		input[referenceField(isReferenceModel(replicateImageModels, model))] = req.ReferenceImageURL
	}

	return transport.Request{
		Method: http.MethodPost,
		URL:    r.endpoint(defaultReplicateEndpoint) + "/models/" + strings.Trim(model, "/") + "/predictions",
		Header: map[string]string{
			"Authorization": "Bearer " + apiKey,
			"Prefer":        fmt.Sprintf("wait=%d", r.waitSeconds()),
		},
		Body: map[string]any{"input": input},
	}
}

// Generate submits a prediction and waits for its output URL
func (r *ReplicateImageProvider) Generate(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	apiKey, err := r.apiKey(req.Credential)
	if err != nil {
		return nil, err
	}
	if req.Prompt == "" {
		return nil, apperr.Validation("image prompt is required")
	}

	auth := map[string]string{"Authorization": "Bearer " + apiKey}
	submit := r.BuildRequest(req, apiKey)
	log.Printf("[IMG-%s] Generating: %s, prompt_length=%d chars", r.tag, submit.URL, len(req.Prompt))

	job := jobs.Job{
		Provider: r.display,
		Submit: func(ctx context.Context) (*jobs.Submission, error) {
			payload, err := r.client.JSON(ctx, submit)
			if err != nil {
				return nil, err
			}
			result := interpretReplicateStatus(payload)
			switch result.Outcome {
			case jobs.Succeeded:
				return &jobs.Submission{Immediate: true, Payload: payload}, nil
			case jobs.Failed:
				return nil, apperr.Terminal(r.display, result.Detail)
			}
			id, ok := transport.FirstString(payload, "id")
			if !ok {
				return nil, apperr.Malformed(r.display, fmt.Errorf("prediction without id"))
			}
			return &jobs.Submission{Handle: id}, nil
		},
		Poll: func(ctx context.Context, handle any) (*jobs.PollResult, error) {
			payload, err := r.client.JSON(ctx, transport.Request{
				URL:    r.endpoint(defaultReplicateEndpoint) + "/predictions/" + handle.(string),
				Header: auth,
			})
			if err != nil {
				return nil, err
			}
			return interpretReplicateStatus(payload), nil
		},
		Extract: jobs.ExtractPaths(r.display, replicateOutputPaths...),
	}

	url, err := r.engine.Run(ctx, job, r.budget)
	if err != nil {
		return nil, err
	}
	return &ImageResult{URL: url}, nil
}

// interpretReplicateStatus maps a prediction payload onto a poll outcome
func interpretReplicateStatus(payload any) *jobs.PollResult {
	status, _ := transport.FirstString(payload, "status")
	switch status {
	case "succeeded":
		return &jobs.PollResult{Outcome: jobs.Succeeded, Payload: payload}
	case "failed", "canceled":
		detail, _ := transport.FirstString(payload, "error", "error.message")
		return &jobs.PollResult{Outcome: jobs.Failed, Payload: payload, Detail: detail}
	default:
		return &jobs.PollResult{Outcome: jobs.Pending, Payload: payload}
	}
}

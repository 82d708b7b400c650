package provider

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

const defaultFalVideoModel = "kling-2.1-standard"

// falVideoPaths lists where fal video models put the output URL
var falVideoPaths = []string{"video.url", "data.video.url", "videos.0.url", "video_url"}

// VideoModel describes one image-to-video model on the fal queue
type VideoModel struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Endpoint        string  `json:"endpoint"`
	PricePerSecond  float64 `json:"pricePerSecond"` // USD
	MaxDuration     int     `json:"maxDuration"`    // seconds
	DefaultDuration int     `json:"defaultDuration"`

	// Durations lists the accepted values in ascending order. Empty accepts
	// any value up to MaxDuration.
	Durations []int `json:"durations,omitempty"`
}

var falVideoModels = []VideoModel{
	{
		ID:              "kling-2.1-standard",
		Name:            "Kling 2.1 Standard",
		Endpoint:        "fal-ai/kling-video/v2.1/standard/image-to-video",
		PricePerSecond:  0.05,
		MaxDuration:     10,
		DefaultDuration: 5,
		Durations:       []int{5, 10},
	},
	{
		ID:              "kling-2.1-pro",
		Name:            "Kling 2.1 Pro",
		Endpoint:        "fal-ai/kling-video/v2.1/pro/image-to-video",
		PricePerSecond:  0.09,
		MaxDuration:     10,
		DefaultDuration: 5,
		Durations:       []int{5, 10},
	},
	{
		ID:              "kling-2.1-master",
		Name:            "Kling 2.1 Master",
		Endpoint:        "fal-ai/kling-video/v2.1/master/image-to-video",
		PricePerSecond:  0.28,
		MaxDuration:     10,
		DefaultDuration: 5,
		Durations:       []int{5, 10},
	},
	{
		ID:              "hailuo-02",
		Name:            "MiniMax Hailuo 02",
		Endpoint:        "fal-ai/minimax/hailuo-02/standard/image-to-video",
		PricePerSecond:  0.045,
		MaxDuration:     10,
		DefaultDuration: 6,
		Durations:       []int{6, 10},
	},
	{
		ID:              "seedance-1-pro",
		Name:            "Seedance 1.0 Pro",
		Endpoint:        "fal-ai/bytedance/seedance/v1/pro/image-to-video",
		PricePerSecond:  0.12,
		MaxDuration:     10,
		DefaultDuration: 5,
		Durations:       []int{5, 10},
	},
}

// FalVideoModels returns the supported video model catalog
func FalVideoModels() []VideoModel {
	return falVideoModels
}

// FindVideoModel looks up a video model by id
func FindVideoModel(id string) (VideoModel, bool) {
	for _, m := range falVideoModels {
		if m.ID == id {
			return m, true
		}
	}
	return VideoModel{}, false
}

// ClampDuration bounds requested seconds to the model's range and snaps them
// up to the nearest accepted duration, never past the maximum. Zero asks for
// the model default.
func (m VideoModel) ClampDuration(requested int) int {
	if requested == 0 {
		return m.DefaultDuration
	}
	seconds := min(max(requested, 1), m.MaxDuration)
	if len(m.Durations) == 0 {
		return seconds
	}
	for _, d := range m.Durations {
		if d >= seconds {
			return d
		}
	}
	return m.Durations[len(m.Durations)-1]
}

// EstimateCost returns the USD price of a clip of the given length
func (m VideoModel) EstimateCost(seconds int) float64 {
	return float64(m.ClampDuration(seconds)) * m.PricePerSecond
}

// FalVideoProvider implements VideoProvider on fal's queue API
type FalVideoProvider struct {
	falQueue
}

// NewFalVideoProvider creates a new fal video provider
func NewFalVideoProvider(config types.ProviderConfig, settings JobSettings) (*FalVideoProvider, error) {
	if config.Name == "" {
		config.Name = string(VideoFal)
	}
	return &FalVideoProvider{
		falQueue: falQueue{
			base:   newBase(config.Name, "fal.ai", config, 60*time.Second),
			logTag: "VID-" + config.Name,
			engine: settings.engine(),
			budget: settings.Video,
		},
	}, nil
}

// Models lists the supported video models
func (f *FalVideoProvider) Models() []VideoModel {
	return falVideoModels
}

// BuildRequest resolves the model and builds the submission body for req
func (f *FalVideoProvider) BuildRequest(req VideoRequest) (VideoModel, map[string]any, error) {
	id := f.model(req.Model, defaultFalVideoModel)
	model, ok := FindVideoModel(id)
	if !ok {
		return VideoModel{}, nil, apperr.Validation(fmt.Sprintf("unknown video model: %s", id))
	}

	body := map[string]any{
		"prompt":    req.Prompt,
		"image_url": req.ImageURL,
		"duration":  strconv.Itoa(model.ClampDuration(req.Duration)),
	}
	return model, body, nil
}

// Generate submits an image-to-video job and waits for the clip URL
func (f *FalVideoProvider) Generate(ctx context.Context, req VideoRequest) (string, error) {
	apiKey, err := f.apiKey(req.Credential)
	if err != nil {
		return "", err
	}
	if req.ImageURL == "" {
		return "", apperr.Validation("a start frame image is required for video generation")
	}

	model, body, err := f.BuildRequest(req)
	if err != nil {
		return "", err
	}
	log.Printf("[%s] Generating: model=%s, duration=%ss, est_cost=$%.2f",
		f.logTag, model.ID, body["duration"], model.EstimateCost(req.Duration))

	return f.run(ctx, apiKey, model.Endpoint, body, falVideoPaths)
}

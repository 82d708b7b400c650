package production

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/assets"
	"github.com/unalkalkan/SceneForge/internal/plan"
	"github.com/unalkalkan/SceneForge/internal/prompt"
	"github.com/unalkalkan/SceneForge/internal/provider"
	"github.com/unalkalkan/SceneForge/internal/status"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

// Credentials maps provider tags to API keys supplied by the caller
type Credentials map[string]string

// For returns the credential for tag. An empty result lets the adapter fall
// back to its configured key.
func (c Credentials) For(tag string) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c[tag])
}

// PlanRequest selects the text provider and carries the brief
type PlanRequest struct {
	Provider   string              `json:"provider"`
	Model      string              `json:"model,omitempty"`
	Credential string              `json:"credential,omitempty"`
	Input      types.PlanningInput `json:"input"`
}

// RewriteRequest asks the text provider to rewrite one piece of plan text
type RewriteRequest struct {
	Provider    string `json:"provider"`
	Model       string `json:"model,omitempty"`
	Credential  string `json:"credential,omitempty"`
	Text        string `json:"text"`
	Instruction string `json:"instruction"`
	Context     string `json:"context,omitempty"`
}

// ImageSelection picks the image provider and model for a scene image
type ImageSelection struct {
	Provider          string `json:"provider"`
	Model             string `json:"model,omitempty"`
	ReferenceImageURL string `json:"referenceImageUrl,omitempty"`
}

// VideoSelection picks the video provider and model for a scene clip
type VideoSelection struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Duration int    `json:"duration,omitempty"` // overrides the scene's duration
}

// VoiceSelection picks the voice provider for narration and dialogue. Voice
// overrides the cast voice when set.
type VoiceSelection struct {
	Provider string  `json:"provider"`
	Voice    string  `json:"voice,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
}

// Orchestrator generates plans and per-scene assets, writing results back
// into the plan it is given
type Orchestrator struct {
	providers   *provider.Registry
	publisher   assets.Publisher
	buildPrompt prompt.Builder
}

// NewOrchestrator creates an orchestrator over the configured providers
func NewOrchestrator(providers *provider.Registry, publisher assets.Publisher) *Orchestrator {
	return &Orchestrator{
		providers:   providers,
		publisher:   publisher,
		buildPrompt: prompt.Build,
	}
}

// WithPromptBuilder replaces the planning prompt builder
func (o *Orchestrator) WithPromptBuilder(b prompt.Builder) *Orchestrator {
	if b != nil {
		o.buildPrompt = b
	}
	return o
}

// GeneratePlan streams a plan from the selected text provider and parses it.
// onChunk receives each delta in order and may be nil.
func (o *Orchestrator) GeneratePlan(ctx context.Context, req PlanRequest, onChunk func(string)) (*types.ContentPlan, error) {
	if strings.TrimSpace(req.Input.Concept) == "" {
		return nil, apperr.Validation("a concept is required to generate a plan")
	}
	textProvider, err := o.providers.GetText(req.Provider)
	if err != nil {
		return nil, err
	}

	system, user := o.buildPrompt(req.Input)
	log.Printf("[production] Generating plan with %s (prompt_length=%d chars)", textProvider.Name(), len(user))

	stream := textProvider.Stream(ctx, provider.CompletionRequest{
		Credential:   req.Credential,
		Model:        req.Model,
		SystemPrompt: system,
		UserPrompt:   user,
	})
	for chunk := range stream.Chunks() {
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	text, err := stream.Wait()
	if err != nil {
		log.Printf("[production] Plan stream failed: %v", err)
		return nil, err
	}

	p, err := plan.Parse(text)
	if err != nil {
		log.Printf("[production] Plan parse failed: %v", err)
		return nil, err
	}
	log.Printf("[production] Parsed plan %s with %d scenes", p.Project.ID, len(p.Scenes))
	return p, nil
}

// RewriteText runs a short non-streamed completion over req.Text
func (o *Orchestrator) RewriteText(ctx context.Context, req RewriteRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", apperr.Validation("text to rewrite is required")
	}
	if strings.TrimSpace(req.Instruction) == "" {
		return "", apperr.Validation("a rewrite instruction is required")
	}
	textProvider, err := o.providers.GetText(req.Provider)
	if err != nil {
		return "", err
	}

	system, user := prompt.Rewrite(req.Text, req.Instruction, req.Context)
	out, err := textProvider.Complete(ctx, provider.CompletionRequest{
		Credential:   req.Credential,
		Model:        req.Model,
		SystemPrompt: system,
		UserPrompt:   user,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(plan.StripFences(out)), nil
}

func recorderOrDiscard(rec status.Recorder) status.Recorder {
	if rec == nil {
		return status.Discard
	}
	return rec
}

func findScene(p *types.ContentPlan, sceneID string) (*types.Scene, error) {
	if p == nil {
		return nil, apperr.Validation("no plan loaded")
	}
	scene, ok := p.SceneByID(sceneID)
	if !ok {
		return nil, apperr.Validation(fmt.Sprintf("scene not found: %s", sceneID))
	}
	return scene, nil
}

package provider

import (
	"testing"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

func allEnabledConfig() types.ProvidersConfig {
	var cfg types.ProvidersConfig
	for _, id := range AllTextProviders() {
		cfg.Text = append(cfg.Text, types.ProviderConfig{Name: string(id), Enabled: true})
	}
	for _, id := range AllImageProviders() {
		cfg.Image = append(cfg.Image, types.ProviderConfig{Name: string(id), Enabled: true})
	}
	for _, id := range AllVideoProviders() {
		cfg.Video = append(cfg.Video, types.ProviderConfig{Name: string(id), Enabled: true})
	}
	for _, id := range AllVoiceProviders() {
		cfg.Voice = append(cfg.Voice, types.ProviderConfig{Name: string(id), Enabled: true})
	}
	return cfg
}

func TestRegistry_InitializeAllProviders(t *testing.T) {
	registry := NewRegistry()
	defer registry.Close()

	if err := registry.InitializeProviders(allEnabledConfig(), DefaultJobSettings()); err != nil {
		t.Fatalf("InitializeProviders failed: %v", err)
	}

	if got := registry.ListText(); len(got) != 2 || got[0] != "gemini" || got[1] != "openai" {
		t.Errorf("Unexpected text providers: %v", got)
	}
	if got := registry.ListImage(); len(got) != 3 {
		t.Errorf("Expected 3 image providers, got %v", got)
	}
	if got := registry.ListVideo(); len(got) != 1 || got[0] != "fal" {
		t.Errorf("Unexpected video providers: %v", got)
	}
	if got := registry.ListVoice(); len(got) != 2 {
		t.Errorf("Expected 2 voice providers, got %v", got)
	}

	for _, id := range AllImageProviders() {
		p, err := registry.GetImage(string(id))
		if err != nil {
			t.Fatalf("GetImage(%s) failed: %v", id, err)
		}
		if p.Name() != string(id) {
			t.Errorf("Expected name %s, got %s", id, p.Name())
		}
		if len(p.Models()) == 0 {
			t.Errorf("Expected models for %s", id)
		}
	}
}

func TestRegistry_DisabledProvidersSkipped(t *testing.T) {
	registry := NewRegistry()
	cfg := types.ProvidersConfig{
		Image: []types.ProviderConfig{{Name: "fal", Enabled: false}},
		Voice: []types.ProviderConfig{{Name: "openai", Enabled: true}},
	}
	if err := registry.InitializeProviders(cfg, JobSettings{}); err != nil {
		t.Fatalf("InitializeProviders failed: %v", err)
	}
	if len(registry.ListImage()) != 0 {
		t.Errorf("Disabled provider was registered")
	}
	if len(registry.ListVoice()) != 1 {
		t.Errorf("Expected 1 voice provider")
	}
}

func TestRegistry_UnknownProvider(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.ProvidersConfig
	}{
		{"Text", types.ProvidersConfig{Text: []types.ProviderConfig{{Name: "claude", Enabled: true}}}},
		{"Image", types.ProvidersConfig{Image: []types.ProviderConfig{{Name: "midjourney", Enabled: true}}}},
		{"Video", types.ProvidersConfig{Video: []types.ProviderConfig{{Name: "runway", Enabled: true}}}},
		{"Voice", types.ProvidersConfig{Voice: []types.ProviderConfig{{Name: "polly", Enabled: true}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewRegistry().InitializeProviders(tt.cfg, JobSettings{}); err == nil {
				t.Error("Expected error for unknown provider")
			}
		})
	}
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewRegistry()
	p, _ := NewOpenAITTSProvider(types.ProviderConfig{Name: "openai"})

	if err := registry.RegisterVoice(p); err != nil {
		t.Fatalf("Failed to register voice provider: %v", err)
	}
	if err := registry.RegisterVoice(p); err == nil {
		t.Error("Expected error when registering duplicate provider")
	}
}

func TestRegistry_GetUnconfigured(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.GetVideo("fal")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if err.Error() != "video provider not configured: fal" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
	if apperr.HTTPStatus(err) != 400 {
		t.Errorf("Expected 400, got %d", apperr.HTTPStatus(err))
	}
}

func TestRegistry_Catalog(t *testing.T) {
	registry := NewRegistry()
	cfg := types.ProvidersConfig{
		Text:  []types.ProviderConfig{{Name: "openai", Enabled: true}},
		Image: []types.ProviderConfig{{Name: "fal", Enabled: true}},
		Video: []types.ProviderConfig{{Name: "fal", Enabled: true}},
	}
	if err := registry.InitializeProviders(cfg, JobSettings{}); err != nil {
		t.Fatalf("InitializeProviders failed: %v", err)
	}

	c := registry.Catalog()
	if len(c.Text) != 1 || c.Text[0] != "openai" {
		t.Errorf("Unexpected text catalog: %v", c.Text)
	}
	if len(c.Image) != 1 || c.Image[0].Provider != "fal" {
		t.Fatalf("Unexpected image catalog: %+v", c.Image)
	}
	if len(c.Video) != 1 || len(c.Video[0].Models) != len(FalVideoModels()) {
		t.Errorf("Unexpected video catalog: %+v", c.Video)
	}
	if c.Voice == nil || len(c.Voice) != 0 {
		t.Errorf("Expected empty voice catalog, got %v", c.Voice)
	}
}

package provider

// ProviderModels lists the models of one configured provider
type ProviderModels struct {
	Provider string      `json:"provider"`
	Models   []ModelInfo `json:"models"`
}

// VideoProviderModels lists the models of one configured video provider
type VideoProviderModels struct {
	Provider string       `json:"provider"`
	Models   []VideoModel `json:"models"`
}

// Catalog describes what the configured providers can generate
type Catalog struct {
	Text  []string              `json:"text"`
	Image []ProviderModels      `json:"image"`
	Video []VideoProviderModels `json:"video"`
	Voice []string              `json:"voice"`
}

// Catalog lists the configured providers and their models
func (r *Registry) Catalog() Catalog {
	c := Catalog{
		Text:  r.ListText(),
		Image: []ProviderModels{},
		Video: []VideoProviderModels{},
		Voice: r.ListVoice(),
	}

	for _, name := range r.ListImage() {
		if p, err := r.GetImage(name); err == nil {
			c.Image = append(c.Image, ProviderModels{Provider: name, Models: p.Models()})
		}
	}
	for _, name := range r.ListVideo() {
		if p, err := r.GetVideo(name); err == nil {
			c.Video = append(c.Video, VideoProviderModels{Provider: name, Models: p.Models()})
		}
	}
	return c
}

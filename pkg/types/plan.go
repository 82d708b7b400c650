package types

// PlanningInput is the user intent submitted for plan generation
type PlanningInput struct {
	Concept        string           `json:"concept"`
	Genre          string           `json:"genre"`
	Audience       string           `json:"audience"`
	Tone           string           `json:"tone"`
	StyleReference string           `json:"styleReference"`
	SceneCount     int              `json:"sceneCount"`
	Language       string           `json:"language"` // output language, e.g. "en"
	Characters     []CharacterInput `json:"characters"`
	Constraints    []string         `json:"constraints"`
	Notes          string           `json:"notes"`
}

// CharacterInput is a user-authored character sketch
type CharacterInput struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

// ContentPlan is the generated production document
type ContentPlan struct {
	Project         ProjectMeta `json:"project"`
	Characters      []Character `json:"characters"`
	Scenario        Scenario    `json:"scenario"`
	Scenes          []Scene     `json:"scenes"`
	Constraints     []string    `json:"constraints,omitempty"`
	ProductionNotes []string    `json:"productionNotes,omitempty"`
}

// ProjectMeta holds plan-level metadata
type ProjectMeta struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Logline       string `json:"logline,omitempty"`
	Genre         string `json:"genre,omitempty"`
	Audience      string `json:"audience,omitempty"`
	Tone          string `json:"tone,omitempty"`
	Language      string `json:"language,omitempty"`
	VisualStyle   string `json:"visualStyle,omitempty"`
	TotalDuration int    `json:"totalDuration,omitempty"` // seconds
}

// Character is a cast member with voice casting
type Character struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Role        string       `json:"role,omitempty"` // "protagonist", "narrator", ...
	Description string       `json:"description,omitempty"`
	Appearance  string       `json:"appearance,omitempty"`
	Personality string       `json:"personality,omitempty"`
	Voice       VoiceCasting `json:"voice"`
}

// VoiceCasting is read-only input to voice generation
type VoiceCasting struct {
	Gender          string `json:"gender,omitempty"`
	Tone            string `json:"tone,omitempty"`
	Accent          string `json:"accent,omitempty"`
	TTSVoice        string `json:"ttsVoice,omitempty"`        // one of the six symbolic TTS voices
	ExternalVoiceID string `json:"externalVoiceId,omitempty"` // provider-specific voice id
}

// Scenario is the story outline grouped into acts
type Scenario struct {
	Outline string `json:"outline"`
	Acts    []Act  `json:"acts"`
}

// Act groups scenes
type Act struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
}

// Scene is the unit of production
type Scene struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Act               int            `json:"act"`
	Order             int            `json:"order"`
	DurationSeconds   int            `json:"duration"`
	Setting           string         `json:"setting,omitempty"`
	Mood              string         `json:"mood,omitempty"`
	Description       string         `json:"description,omitempty"`
	Narration         string         `json:"narration,omitempty"`
	Dialogues         []Dialogue     `json:"dialogues"`
	ImagePrompt       ImagePromptSet `json:"imagePrompt"`
	VideoPrompt       VideoPromptSet `json:"videoPrompt"`
	ImageURL          string         `json:"imageUrl,omitempty"`
	VideoURL          string         `json:"videoUrl,omitempty"`
	NarrationAudioURL string         `json:"narrationAudioUrl,omitempty"`
}

// Dialogue is one spoken line within a scene
type Dialogue struct {
	CharacterID   string `json:"characterId"`
	CharacterName string `json:"characterName"`
	Line          string `json:"line"`
	Emotion       string `json:"emotion,omitempty"`
	Action        string `json:"action,omitempty"`
	AudioURL      string `json:"audioUrl,omitempty"`
}

// ImagePromptSet drives still-image generation for a scene
type ImagePromptSet struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negativePrompt,omitempty"`
	Style          string `json:"style,omitempty"`
	AspectRatio    string `json:"aspectRatio,omitempty"` // e.g. "16:9"
}

// VideoPromptSet drives image-to-video generation for a scene
type VideoPromptSet struct {
	Prompt   string `json:"prompt"`
	Camera   string `json:"camera,omitempty"`
	Motion   string `json:"motion,omitempty"`
	Duration int    `json:"duration,omitempty"` // requested seconds
}

// SceneByID returns a pointer into the plan's scene slice
func (p *ContentPlan) SceneByID(id string) (*Scene, bool) {
	for i := range p.Scenes {
		if p.Scenes[i].ID == id {
			return &p.Scenes[i], true
		}
	}
	return nil, false
}

// CharacterByID returns the character with the given id
func (p *ContentPlan) CharacterByID(id string) (*Character, bool) {
	for i := range p.Characters {
		if p.Characters[i].ID == id {
			return &p.Characters[i], true
		}
	}
	return nil, false
}

// Narrator returns the character cast as narrator, if any
func (p *ContentPlan) Narrator() (*Character, bool) {
	for i := range p.Characters {
		if p.Characters[i].Role == "narrator" || p.Characters[i].ID == "narrator" {
			return &p.Characters[i], true
		}
	}
	return nil, false
}

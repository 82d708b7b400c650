package plan

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

// ParseFailedMessage is shown to the user whenever a plan cannot be decoded
const ParseFailedMessage = "Failed to parse the generated plan. Please try generating again."

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?```$")
)

// rawOrders detects which scenes carried an explicit order field
type rawOrders struct {
	Scenes []struct {
		Order *int `json:"order"`
	} `json:"scenes"`
}

// Parse decodes raw model output into a complete plan. It either returns a
// plan with back-filled derived fields and no generated assets, or fails.
func Parse(raw string) (*types.ContentPlan, error) {
	text := StripFences(raw)
	if text == "" {
		return nil, apperr.New(apperr.KindParse, "", ParseFailedMessage, fmt.Errorf("empty plan text"))
	}

	var p types.ContentPlan
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, apperr.New(apperr.KindParse, "", ParseFailedMessage, err)
	}

	var orders rawOrders
	if err := json.Unmarshal([]byte(text), &orders); err != nil {
		return nil, apperr.New(apperr.KindParse, "", ParseFailedMessage, err)
	}

	normalize(&p, orders)
	return &p, nil
}

// StripFences removes a surrounding fenced code block, with or without a
// language label
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = leadingFence.ReplaceAllString(text, "")
		text = trailingFence.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// Marshal re-serializes a plan in the same shape Parse accepts
func Marshal(p *types.ContentPlan) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}
	return string(data), nil
}

func normalize(p *types.ContentPlan, orders rawOrders) {
	if p.Project.ID == "" {
		p.Project.ID = uuid.NewString()
	}

	names := make(map[string]string, len(p.Characters))
	for _, c := range p.Characters {
		names[c.ID] = c.Name
	}

	// explicit ids are reserved up front so back-filled ids cannot take them
	reserved := make(map[string]bool, len(p.Scenes))
	for _, scene := range p.Scenes {
		if scene.ID != "" {
			reserved[scene.ID] = true
		}
	}
	assigned := make(map[string]bool, len(p.Scenes))

	for i := range p.Scenes {
		scene := &p.Scenes[i]
		if i >= len(orders.Scenes) || orders.Scenes[i].Order == nil {
			scene.Order = i + 1
		}
		switch {
		case scene.ID == "":
			scene.ID = uniqueSceneID(fmt.Sprintf("scene-%d", scene.Order), reserved, assigned)
		case assigned[scene.ID]:
			// a repeated explicit id keeps its first scene; later ones get a suffix
			scene.ID = uniqueSceneID(scene.ID, reserved, assigned)
		}
		assigned[scene.ID] = true

		// a freshly parsed plan never carries assets
		scene.ImageURL = ""
		scene.VideoURL = ""
		scene.NarrationAudioURL = ""

		for j := range scene.Dialogues {
			d := &scene.Dialogues[j]
			d.AudioURL = ""
			if d.CharacterName == "" {
				d.CharacterName = names[d.CharacterID]
			}
		}
	}
}

// uniqueSceneID returns base if it is free, else the first free "<base>-<n>"
func uniqueSceneID(base string, reserved, assigned map[string]bool) string {
	if !reserved[base] && !assigned[base] {
		return base
	}
	for n := 1; ; n++ {
		id := fmt.Sprintf("%s-%d", base, n)
		if !reserved[id] && !assigned[id] {
			return id
		}
	}
}
